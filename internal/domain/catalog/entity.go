// internal/domain/catalog/entity.go
package catalog

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
)

// Product represents a product or an offer as served by the backend
type Product struct {
	ID         string       `json:"_id"`
	Name       string       `json:"name"`
	Title      string       `json:"title,omitempty"`
	Slug       string       `json:"slug"`
	Price      Price        `json:"price"`
	Discount   float64      `json:"discount,omitempty"`
	New        bool         `json:"new,omitempty"`
	IsNew      bool         `json:"isNew,omitempty"`
	InStock    *bool        `json:"inStock,omitempty"` // nil counts as in stock
	Image      string       `json:"image"`
	Images     []string     `json:"images,omitempty"`
	Features   []string     `json:"features,omitempty"`
	Category   *CategoryRef `json:"category,omitempty"`
	SaleCount  int          `json:"saleCount,omitempty"`
	TotalViews int          `json:"totalViews,omitempty"`
	UpdatedAt  string       `json:"updatedAt,omitempty"`
}

// IsNewArrival reports whether either "new" flag is set
func (p Product) IsNewArrival() bool {
	return p.New || p.IsNew
}

// Available reports stock, treating a missing flag as in stock
func (p Product) Available() bool {
	return p.InStock == nil || *p.InStock
}

// HasDiscount reports a positive discount
func (p Product) HasDiscount() bool {
	return p.Discount > 0
}

var leadingNumber = regexp.MustCompile(`\d+(\.\d+)?`)

// Price is a product price. The backend sends either a number or a display
// string such as "500" or "500 - 800"; Amount holds the first number found.
type Price struct {
	Amount float64
	Text   string
}

// UnmarshalJSON accepts numbers and strings
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = Price{}
		return nil
	}

	if data[0] != '"' {
		var amount float64
		if err := json.Unmarshal(data, &amount); err != nil {
			return err
		}
		*p = Price{Amount: amount}
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	*p = Price{Text: text}
	if match := leadingNumber.FindString(text); match != "" {
		p.Amount, _ = strconv.ParseFloat(match, 64)
	}
	return nil
}

// MarshalJSON writes the display string when one was received
func (p Price) MarshalJSON() ([]byte, error) {
	if p.Text != "" {
		return json.Marshal(p.Text)
	}
	return json.Marshal(p.Amount)
}

// CategoryRef is the category embedded in a product. The backend sends
// either the populated category or its bare id.
type CategoryRef struct {
	ID     string `json:"_id"`
	Title  string `json:"title,omitempty"`
	Slug   string `json:"slug,omitempty"`
	IsCase bool   `json:"isCase,omitempty"`
	Price  *Price `json:"price,omitempty"`
}

// UnmarshalJSON accepts an id string or an object
func (c *CategoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*c = CategoryRef{}
		return json.Unmarshal(data, &c.ID)
	}

	type plain CategoryRef
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = CategoryRef(v)
	return nil
}

// Category is a single-select product category
type Category struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Image     string `json:"image,omitempty"`
	IsCase    bool   `json:"isCase,omitempty"`
	Price     *Price `json:"price,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Option is a multi-select design facet addressed by its route
type Option struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Route string `json:"route"`
	Image string `json:"image,omitempty"`
}

// Phone is a phone brand with its models
type Phone struct {
	ID     string       `json:"_id"`
	Name   string       `json:"name"`
	Models []PhoneModel `json:"models"`
}

// PhoneModel is a model of a brand with the case types sold for it
type PhoneModel struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	CaseTypes []CaseType `json:"caseTypes"`
}

// CaseType is a purchasable case variant for a phone model
type CaseType struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name"`
	Price Price  `json:"price"`
}

// Video is a showcase video
type Video struct {
	ID         string `json:"_id,omitempty"`
	Title      string `json:"title,omitempty"`
	YoutubeURL string `json:"youtube_url"`
}

// Banner is a hero slider entry
type Banner struct {
	ID    string `json:"_id"`
	Title string `json:"title,omitempty"`
	Image string `json:"image"`
	Link  string `json:"link,omitempty"`
}

// HappyCustomer is a customer photo shown on the home page
type HappyCustomer struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image"`
}

// PromoCode is the discount the backend grants for a code
type PromoCode struct {
	Code      string  `json:"code"`
	Discount  float64 `json:"discount"`  // Percentage
	MaxAmount float64 `json:"maxAmount"` // Cap on the discount amount
}

// ListResult is the normalized page of products or offers
type ListResult struct {
	Products []Product `json:"products"`
	Pages    int       `json:"pages"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Total    int       `json:"total"`
	Success  bool      `json:"success"`
	Error    string    `json:"error,omitempty"`
}

// ListParams are the backend list query parameters
type ListParams struct {
	Page       int
	Limit      int
	Search     string
	Categories string // Single category id
	Options    string // Comma-joined option ids
	Sort       string
}

// Home aggregates the slices the home page renders
type Home struct {
	Categories     []Category      `json:"categories"`
	Options        []Option        `json:"options"`
	NewArrivals    []Product       `json:"newArrivals"`
	MostPopular    []Product       `json:"mostPopular"`
	BestSellers    []Product       `json:"bestSellers"`
	Banners        []Banner        `json:"banners"`
	HappyCustomers []HappyCustomer `json:"happyCustomers"`
	Videos         []Video         `json:"videos"`
}
