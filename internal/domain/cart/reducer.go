// internal/domain/cart/reducer.go
package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuantity is returned for non-positive quantities
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrMissingIdentity is returned when an item names neither product nor image
	ErrMissingIdentity = errors.New("item needs a product id or an image")
)

var noop = Event{Kind: EventNoop}

// Add merges item into the cart, increasing the quantity of an existing line
// with the same key or appending a new one.
func (c *Cart) Add(item LineItem) (Event, error) {
	if item.Quantity <= 0 {
		return noop, ErrInvalidQuantity
	}
	if item.Product.ID == "" && item.Product.Image == "" {
		return noop, ErrMissingIdentity
	}

	if i := c.find(item.Key()); i >= 0 {
		c.Items[i].Quantity += item.Quantity
		return Event{
			Kind:    EventQuantityIncreased,
			Level:   LevelSuccess,
			Message: fmt.Sprintf("%s increased by %d in cart", item.Product.Name, item.Quantity),
		}, nil
	}

	c.Items = append(c.Items, item)
	return Event{
		Kind:    EventItemAdded,
		Level:   LevelSuccess,
		Message: fmt.Sprintf("%s added to cart", item.Product.Name),
	}, nil
}

// Remove deletes every line matching key
func (c *Cart) Remove(key LineKey) Event {
	kept := c.Items[:0]
	var name string
	for _, item := range c.Items {
		if item.Key() == key {
			name = item.Product.Name
			continue
		}
		kept = append(kept, item)
	}
	if len(kept) == len(c.Items) {
		return noop
	}
	c.Items = kept

	return Event{
		Kind:    EventItemRemoved,
		Level:   LevelSuccess,
		Message: fmt.Sprintf("%s removed from cart", name),
	}
}

// SubQuantity lowers the quantity of the matching line by amount. Lines at
// quantity 1 are left untouched and a line never drops below 1; removing a
// line is always an explicit Remove.
func (c *Cart) SubQuantity(key LineKey, amount int) (Event, error) {
	if amount <= 0 {
		return noop, ErrInvalidQuantity
	}

	i := c.find(key)
	if i < 0 || c.Items[i].Quantity <= 1 {
		return noop, nil
	}

	line := &c.Items[i]
	line.Quantity -= amount
	if line.Quantity < 1 {
		line.Quantity = 1
	}

	return Event{
		Kind:    EventQuantityDecreased,
		Level:   LevelError,
		Message: fmt.Sprintf("%s decreased by %d in cart", line.Product.Name, amount),
	}, nil
}

// AddQuantity raises the quantity of the matching line. Missing lines are
// not created.
func (c *Cart) AddQuantity(key LineKey, amount int) (Event, error) {
	if amount <= 0 {
		return noop, ErrInvalidQuantity
	}

	i := c.find(key)
	if i < 0 {
		return noop, nil
	}

	line := &c.Items[i]
	line.Quantity += amount

	return Event{
		Kind:    EventQuantityIncreased,
		Level:   LevelSuccess,
		Message: fmt.Sprintf("%s increased by %d in cart", line.Product.Name, amount),
	}, nil
}

// Clear empties the cart
func (c *Cart) Clear() Event {
	c.Items = []LineItem{}
	return Event{Kind: EventCleared, Level: LevelSuccess, Message: "Cart cleared"}
}

func (c *Cart) find(key LineKey) int {
	for i := range c.Items {
		if c.Items[i].Key() == key {
			return i
		}
	}
	return -1
}
