// internal/domain/order/service.go
package order

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/casemandu/storefront/internal/infrastructure/backend"
)

var (
	// ErrNotFound is returned when the backend has no such order
	ErrNotFound = errors.New("order: not found")
	// ErrTrackFieldsRequired is returned when id or phone is missing
	ErrTrackFieldsRequired = errors.New("order: id and phone are required")
	// ErrReceiptUnavailable is returned when no receipt renderer is wired
	ErrReceiptUnavailable = errors.New("order: receipts are not available")
)

// TrackError carries the backend's explanation for a failed lookup
type TrackError struct {
	Message string
}

func (e *TrackError) Error() string {
	return e.Message
}

// Backend is the part of the backend client orders are read through
type Backend interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
}

// Renderer turns an order into a printable receipt
type Renderer interface {
	RenderReceipt(o *Order) ([]byte, error)
}

// Service reads placed orders
type Service struct {
	backend  Backend
	renderer Renderer
	logger   *logrus.Entry
}

// NewService creates a new order service. renderer may be nil.
func NewService(b Backend, renderer Renderer, logger *logrus.Entry) *Service {
	return &Service{
		backend:  b,
		renderer: renderer,
		logger:   logger,
	}
}

// Get loads an order by id
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}

	body, err := s.backend.Get(ctx, "/api/orders/"+url.PathEscape(id), nil)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.WithError(err).WithField("order_id", id).Error("Failed to fetch order")
		return nil, fmt.Errorf("failed to fetch order %s: %w", id, err)
	}

	o, err := decodeOrder(body)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", id).Warn("Unexpected order response")
		return nil, ErrNotFound
	}
	return o, nil
}

// Track looks an order up by id and the phone number it was placed with
func (s *Service) Track(ctx context.Context, id, phone string) (*Order, error) {
	id, phone = strings.TrimSpace(id), strings.TrimSpace(phone)
	if id == "" || phone == "" {
		return nil, ErrTrackFieldsRequired
	}

	body, err := s.backend.Get(ctx, "/api/orders/track", url.Values{"id": {id}, "ph": {phone}})
	if err != nil {
		// Only the backend's answer about this order is a lookup failure.
		var statusErr *backend.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
			return nil, &TrackError{Message: backend.MessageOf(err, "Failed to track order")}
		}
		s.logger.WithError(err).WithField("order_id", id).Error("Failed to track order")
		return nil, fmt.Errorf("failed to track order %s: %w", id, err)
	}

	o, err := decodeOrder(body)
	if err != nil {
		var tErr *TrackError
		if errors.As(err, &tErr) {
			return nil, tErr
		}
		return nil, &TrackError{Message: "Failed to track order"}
	}
	return o, nil
}

// Receipt renders the receipt of an order
func (s *Service) Receipt(ctx context.Context, id string) (*Order, []byte, error) {
	if s.renderer == nil {
		return nil, nil, ErrReceiptUnavailable
	}

	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	pdf, err := s.renderer.RenderReceipt(o)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", o.ID).Error("Failed to render receipt")
		return nil, nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return o, pdf, nil
}

// decodeOrder accepts {success,data:{...}} or a bare order object. A
// message without an order, or success:false, is a TrackError.
func decodeOrder(body []byte) (*Order, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, errors.New("order response is not an object")
	}

	var envelope struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
		ID      string          `json:"_id"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}

	if envelope.Success != nil && !*envelope.Success {
		return nil, &TrackError{Message: fallback(envelope.Message, "Order not found")}
	}

	raw := body
	if envelope.ID == "" {
		data := bytes.TrimSpace(envelope.Data)
		if len(data) == 0 || data[0] != '{' {
			return nil, &TrackError{Message: fallback(envelope.Message, "Order not found")}
		}
		raw = data
	}

	var o Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}
	if o.ID == "" {
		return nil, &TrackError{Message: fallback(envelope.Message, "Order not found")}
	}
	return &o, nil
}

func fallback(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
