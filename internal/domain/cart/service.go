// internal/domain/cart/service.go
package cart

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Notification is delivered to subscribers after every effective mutation
type Notification struct {
	SessionID string `json:"session_id"`
	Event     Event  `json:"event"`
	Totals    Totals `json:"totals"`
}

// Service is the single writer of carts. Handlers never mutate a Cart
// directly; every transition goes through the reducer inside
// Repository.Update.
type Service struct {
	repo   Repository
	logger *logrus.Entry

	mu          sync.RWMutex
	subscribers map[int]chan Notification
	nextID      int
}

// NewService creates a new cart service
func NewService(repo Repository, logger *logrus.Entry) *Service {
	return &Service{
		repo:        repo,
		logger:      logger,
		subscribers: make(map[int]chan Notification),
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity" binding:"required,min=1"`
	Price    float64 `json:"price" binding:"min=0"`
	Variant  string  `json:"variant"`
}

// LineRequest addresses an existing line
type LineRequest struct {
	Product Product `json:"product"`
	Variant string  `json:"variant"`
	Amount  int     `json:"amount"`
}

// Key returns the line identity the request addresses
func (r LineRequest) Key() LineKey {
	return KeyOf(r.Product, r.Variant)
}

// CartResponse represents a cart with its totals
type CartResponse struct {
	Items   []LineItem `json:"cartItems"`
	Totals  Totals     `json:"totals"`
	IsEmpty bool       `json:"is_empty"`
	Event   *Event     `json:"event,omitempty"`
}

func newResponse(c *Cart, event *Event) *CartResponse {
	return &CartResponse{
		Items:   c.Items,
		Totals:  c.Totals(),
		IsEmpty: c.IsEmpty(),
		Event:   event,
	}
}

// GetCart restores the cart for a session
func (s *Service) GetCart(ctx context.Context, sessionID string) (*CartResponse, error) {
	c, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return newResponse(c, nil), nil
}

// Snapshot returns the current cart without totals
func (s *Service) Snapshot(ctx context.Context, sessionID string) (*Cart, error) {
	return s.repo.Load(ctx, sessionID)
}

// AddToCart adds an item, merging it into an existing line with the same key
func (s *Service) AddToCart(ctx context.Context, sessionID string, req *AddToCartRequest) (*CartResponse, error) {
	item := LineItem{
		Product:  req.Product,
		Quantity: req.Quantity,
		Price:    req.Price,
		Variant:  req.Variant,
	}
	return s.mutate(ctx, sessionID, func(c *Cart) (Event, error) {
		return c.Add(item)
	})
}

// RemoveFromCart deletes the line addressed by key
func (s *Service) RemoveFromCart(ctx context.Context, sessionID string, key LineKey) (*CartResponse, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) (Event, error) {
		return c.Remove(key), nil
	})
}

// SubQuantity decrements a line without ever removing it
func (s *Service) SubQuantity(ctx context.Context, sessionID string, key LineKey, amount int) (*CartResponse, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) (Event, error) {
		return c.SubQuantity(key, amount)
	})
}

// AddQuantity increments an existing line
func (s *Service) AddQuantity(ctx context.Context, sessionID string, key LineKey, amount int) (*CartResponse, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) (Event, error) {
		return c.AddQuantity(key, amount)
	})
}

// ClearCart empties the cart
func (s *Service) ClearCart(ctx context.Context, sessionID string) (*CartResponse, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) (Event, error) {
		return c.Clear(), nil
	})
}

func (s *Service) mutate(ctx context.Context, sessionID string, op func(*Cart) (Event, error)) (*CartResponse, error) {
	var event Event
	c, err := s.repo.Update(ctx, sessionID, func(c *Cart) error {
		var err error
		event, err = op(c)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !event.Changed() {
		return newResponse(c, nil), nil
	}

	totals := c.Totals()
	s.logger.WithFields(logrus.Fields{
		"session_id":     sessionID,
		"event":          event.Kind,
		"total_quantity": totals.TotalQuantity,
	}).Info(event.Message)

	s.publish(Notification{SessionID: sessionID, Event: event, Totals: totals})

	return newResponse(c, &event), nil
}

// Subscribe registers a listener for cart notifications. The returned
// function unsubscribes and closes the channel. Slow listeners miss
// notifications rather than block writers.
func (s *Service) Subscribe(buffer int) (<-chan Notification, func()) {
	ch := make(chan Notification, buffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Service) publish(n Notification) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- n:
		default:
			s.logger.WithField("event", n.Event.Kind).Warn("Dropping cart notification for slow subscriber")
		}
	}
}
