// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// Product is the product snapshot stored on a line. ID is empty for ad-hoc
// and offer items.
type Product struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// LineItem is one product+variant entry of the cart
type LineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"` // Unit price at time of adding
	Variant  string  `json:"variant"`
}

// Key returns the identity of the line
func (l LineItem) Key() LineKey {
	return KeyOf(l.Product, l.Variant)
}

// LineKey identifies a line. Lines with a product id are keyed by
// (product id, variant); lines without one by (variant, image).
type LineKey struct {
	ProductID string
	Variant   string
	Image     string
}

// KeyOf derives the line identity for a product and variant
func KeyOf(product Product, variant string) LineKey {
	if product.ID != "" {
		return LineKey{ProductID: product.ID, Variant: variant}
	}
	return LineKey{Variant: variant, Image: product.Image}
}

// Cart is the persisted cart of one browser session
type Cart struct {
	Items     []LineItem `json:"cartItems"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// IsEmpty reports whether checkout should be disabled
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Totals represents calculated cart totals
type Totals struct {
	ItemCount     int     `json:"item_count"`     // Number of distinct lines
	TotalQuantity int     `json:"total_quantity"` // Sum of all quantities
	Subtotal      float64 `json:"subtotal"`
}

// Totals computes the derived values shown in the header badge and drawer
func (c *Cart) Totals() Totals {
	totals := Totals{ItemCount: len(c.Items)}
	for _, item := range c.Items {
		totals.TotalQuantity += item.Quantity
		totals.Subtotal += item.Price * float64(item.Quantity)
	}
	return totals
}

// EventKind names a cart transition
type EventKind string

const (
	EventItemAdded         EventKind = "item_added"
	EventQuantityIncreased EventKind = "quantity_increased"
	EventQuantityDecreased EventKind = "quantity_decreased"
	EventItemRemoved       EventKind = "item_removed"
	EventCleared           EventKind = "cart_cleared"
	EventNoop              EventKind = "noop"
)

// EventLevel is the notification style
type EventLevel string

const (
	LevelSuccess EventLevel = "success"
	LevelError   EventLevel = "error"
)

// Event is the transient notification a mutation emits
type Event struct {
	Kind    EventKind  `json:"kind"`
	Level   EventLevel `json:"level,omitempty"`
	Message string     `json:"message,omitempty"`
}

// Changed reports whether the mutation touched the cart
func (e Event) Changed() bool {
	return e.Kind != EventNoop
}
