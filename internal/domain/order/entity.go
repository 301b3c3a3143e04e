// internal/domain/order/entity.go
package order

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Status is the fulfilment status reported by the backend
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// Order is a placed order as the backend returns it
type Order struct {
	ID              string       `json:"_id"`
	Number          Number       `json:"order,omitempty"`
	Name            string       `json:"name"`
	Phone           string       `json:"phone"`
	Email           string       `json:"email"`
	City            string       `json:"city"`
	District        string       `json:"district,omitempty"`
	ShippingAddress string       `json:"shippingAddress"`
	AdditionalInfo  string       `json:"additionalInfo,omitempty"`
	PaymentMethod   string       `json:"paymentMethod"`
	PaymentImage    string       `json:"paymentImage,omitempty"`
	CustomImage     string       `json:"customImage,omitempty"`
	Status          Status       `json:"status"`
	Items           []Item       `json:"orderItems"`
	PriceSummary    PriceSummary `json:"priceSummary"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// Item is one ordered line
type Item struct {
	Name    string     `json:"name"`
	Qty     int        `json:"qty"`
	Image   string     `json:"image"`
	Price   float64    `json:"price"`
	Variant string     `json:"variant"`
	Product ProductRef `json:"product"`
}

// LineTotal is price times quantity
func (i Item) LineTotal() float64 {
	return i.Price * float64(i.Qty)
}

// PriceSummary is the stored price breakdown of an order
type PriceSummary struct {
	PromoCode      *string `json:"promoCode"`
	Total          float64 `json:"total"`
	CouponDiscount float64 `json:"couponDiscount"`
	DiscountAmount float64 `json:"discountAmount,omitempty"`
	DeliveryCharge float64 `json:"deliveryCharge"`
	GrandTotal     float64 `json:"grandTotal"`
}

// Discount returns the money taken off the subtotal. Older orders only
// carry the totals, so it is derived when not stored.
func (p PriceSummary) Discount() float64 {
	if p.DiscountAmount > 0 {
		return p.DiscountAmount
	}
	if d := p.Total + p.DeliveryCharge - p.GrandTotal; d > 0 {
		return d
	}
	return 0
}

// IsPending reports whether the order is still awaiting confirmation
func (o *Order) IsPending() bool {
	return strings.EqualFold(string(o.Status), string(StatusPending))
}

// Reference is the human facing order number, falling back to the id
func (o *Order) Reference() string {
	if o.Number != "" {
		return string(o.Number)
	}
	return o.ID
}

// Number accepts an order number sent as either a JSON number or string
type Number string

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = Number(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// ProductRef is a product reference that may be populated by the backend
type ProductRef struct {
	ID   string `json:"_id"`
	Slug string `json:"slug,omitempty"`
}

func (r *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	type plain ProductRef
	return json.Unmarshal(data, (*plain)(r))
}

func (r ProductRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}
