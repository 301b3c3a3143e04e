package order

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casemandu/storefront/internal/infrastructure/backend"
	"github.com/casemandu/storefront/internal/pkg/logger"
)

type stubBackend struct {
	body  string
	err   error
	path  string
	query url.Values
}

func (s *stubBackend) Get(_ context.Context, path string, query url.Values) ([]byte, error) {
	s.path = path
	s.query = query
	return []byte(s.body), s.err
}

type stubRenderer struct {
	rendered *Order
}

func (r *stubRenderer) RenderReceipt(o *Order) ([]byte, error) {
	r.rendered = o
	return []byte("%PDF-1.4"), nil
}

const orderJSON = `{
	"_id": "ord-1",
	"order": 1002,
	"name": "Sita",
	"phone": "9841234567",
	"city": "Kathmandu",
	"shippingAddress": "Baneshwor",
	"paymentMethod": "Esewa",
	"status": "Pending",
	"orderItems": [
		{"name": "Case", "qty": 2, "image": "/a.png", "price": 500, "variant": "iPhone 15", "product": {"_id": "p1", "slug": "case"}},
		{"name": "Cover", "qty": 1, "image": "/b.png", "price": 300, "variant": "", "product": "p2"}
	],
	"priceSummary": {"promoCode": "CASE50", "total": 1300, "couponDiscount": 50, "deliveryCharge": 100, "grandTotal": 1200}
}`

func TestGetAcceptsBareAndWrappedOrders(t *testing.T) {
	for name, body := range map[string]string{
		"bare":    orderJSON,
		"wrapped": `{"success": true, "data": ` + orderJSON + `}`,
	} {
		t.Run(name, func(t *testing.T) {
			b := &stubBackend{body: body}
			svc := NewService(b, nil, logger.Discard())

			o, err := svc.Get(context.Background(), "ord-1")
			require.NoError(t, err)
			assert.Equal(t, "/api/orders/ord-1", b.path)
			assert.Equal(t, "ord-1", o.ID)
			assert.Equal(t, "1002", o.Reference())
			assert.True(t, o.IsPending())
			require.Len(t, o.Items, 2)
			assert.Equal(t, "p1", o.Items[0].Product.ID)
			assert.Equal(t, "p2", o.Items[1].Product.ID)
			assert.Equal(t, 1000.0, o.Items[0].LineTotal())
			assert.Equal(t, 200.0, o.PriceSummary.Discount())
		})
	}
}

func TestGetNotFound(t *testing.T) {
	tests := map[string]*stubBackend{
		"404":           {err: &backend.StatusError{StatusCode: 404}},
		"success false": {body: `{"success": false, "message": "No order"}`},
		"message only":  {body: `{"message": "Order not found"}`},
	}
	for name, b := range tests {
		t.Run(name, func(t *testing.T) {
			svc := NewService(b, nil, logger.Discard())
			_, err := svc.Get(context.Background(), "missing")
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}

	_, err := NewService(&stubBackend{}, nil, logger.Discard()).Get(context.Background(), " ")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetBackendFailure(t *testing.T) {
	svc := NewService(&stubBackend{err: &backend.StatusError{StatusCode: 500}}, nil, logger.Discard())
	_, err := svc.Get(context.Background(), "ord-1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestTrack(t *testing.T) {
	b := &stubBackend{body: orderJSON}
	svc := NewService(b, nil, logger.Discard())

	o, err := svc.Track(context.Background(), " ord-1 ", "9841234567")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", o.ID)
	assert.Equal(t, "/api/orders/track", b.path)
	assert.Equal(t, "ord-1", b.query.Get("id"))
	assert.Equal(t, "9841234567", b.query.Get("ph"))
}

func TestTrackRequiresBothFields(t *testing.T) {
	svc := NewService(&stubBackend{}, nil, logger.Discard())
	_, err := svc.Track(context.Background(), "ord-1", "")
	assert.True(t, errors.Is(err, ErrTrackFieldsRequired))
}

func TestTrackSurfacesBackendMessage(t *testing.T) {
	tests := map[string]struct {
		backend *stubBackend
		message string
	}{
		"error status": {&stubBackend{err: &backend.StatusError{StatusCode: 404, Message: "Phone number does not match"}}, "Phone number does not match"},
		"message body": {&stubBackend{body: `{"error": true, "message": "Order not found"}`}, "Order not found"},
		"garbage":      {&stubBackend{body: `[]`}, "Failed to track order"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			svc := NewService(tt.backend, nil, logger.Discard())
			_, err := svc.Track(context.Background(), "ord-1", "98")
			var tErr *TrackError
			require.True(t, errors.As(err, &tErr))
			assert.Equal(t, tt.message, tErr.Message)
		})
	}
}

func TestTrackKeepsBackendOutagesDistinct(t *testing.T) {
	tests := map[string]struct {
		err    error
		target error
	}{
		"unavailable": {&backend.StatusError{StatusCode: 503, Message: "Down for maintenance"}, backend.ErrUnavailable},
		"timeout":     {context.DeadlineExceeded, context.DeadlineExceeded},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			svc := NewService(&stubBackend{err: tt.err}, nil, logger.Discard())
			_, err := svc.Track(context.Background(), "ord-1", "98")
			require.Error(t, err)
			var tErr *TrackError
			assert.False(t, errors.As(err, &tErr))
			assert.True(t, errors.Is(err, tt.target))
		})
	}
}

func TestReceipt(t *testing.T) {
	renderer := &stubRenderer{}
	svc := NewService(&stubBackend{body: orderJSON}, renderer, logger.Discard())

	o, pdf, err := svc.Receipt(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", o.ID)
	assert.Equal(t, "%PDF-1.4", string(pdf))
	assert.Same(t, o, renderer.rendered)

	_, _, err = NewService(&stubBackend{body: orderJSON}, nil, logger.Discard()).Receipt(context.Background(), "ord-1")
	assert.True(t, errors.Is(err, ErrReceiptUnavailable))
}
