package checkout

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casemandu/storefront/internal/config"
	"github.com/casemandu/storefront/internal/domain/cart"
	"github.com/casemandu/storefront/internal/domain/catalog"
	"github.com/casemandu/storefront/internal/infrastructure/backend"
	"github.com/casemandu/storefront/internal/pkg/logger"
)

const sessionID = "session-1"

type fakePromos struct {
	codes map[string]catalog.PromoCode
	calls int
}

func (f *fakePromos) PromoCode(_ context.Context, code string) (*catalog.PromoCode, error) {
	f.calls++
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, catalog.ErrPromoCodeRequired
	}
	promo, ok := f.codes[code]
	if !ok {
		return nil, catalog.ErrInvalidPromoCode
	}
	promo.Code = code
	return &promo, nil
}

type countingOrders struct {
	calls int
}

func (c *countingOrders) PostMultipart(context.Context, string, *backend.MultipartForm) ([]byte, error) {
	c.calls++
	return []byte(`{"_id":"unused"}`), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Checkout: config.CheckoutConfig{DefaultShippingFee: 150, CODAdvance: 300},
		Upload:   config.UploadConfig{MaxSize: 1 << 20, AllowedExtensions: []string{"jpg", "png"}},
	}
}

type fixture struct {
	svc    *Service
	carts  *cart.Service
	drafts *MemoryDraftRepository
	promos *fakePromos
}

func newFixture(t *testing.T, orders OrderBackend) *fixture {
	t.Helper()
	carts := cart.NewService(cart.NewMemoryRepository(), logger.Discard())
	drafts := NewMemoryDraftRepository()
	promos := &fakePromos{codes: map[string]catalog.PromoCode{
		"CASE50": {Discount: 50, MaxAmount: 200},
	}}
	return &fixture{
		svc:    NewService(carts, promos, orders, drafts, testConfig(), logger.Discard()),
		carts:  carts,
		drafts: drafts,
		promos: promos,
	}
}

func (f *fixture) addItem(t *testing.T, id string, qty int, price float64) {
	t.Helper()
	_, err := f.carts.AddToCart(context.Background(), sessionID, &cart.AddToCartRequest{
		Product:  cart.Product{ID: id, Name: "Case " + id, Image: "/img/" + id + ".png"},
		Quantity: qty,
		Price:    price,
		Variant:  "iPhone 15",
	})
	require.NoError(t, err)
}

func TestApplyPromoCapsDiscount(t *testing.T) {
	f := newFixture(t, &countingOrders{})
	f.addItem(t, "a", 2, 500)
	ctx := context.Background()

	summary, err := f.svc.ApplyPromo(ctx, sessionID, "case50")
	require.NoError(t, err)

	assert.Equal(t, "CASE50", summary.PromoCode)
	assert.True(t, summary.PromoLocked)
	assert.Equal(t, 1000.0, summary.Pricing.Subtotal)
	assert.Equal(t, 200.0, summary.Pricing.Discount)
	assert.Equal(t, 1000.0-200+150, summary.Pricing.Total)
}

func TestApplyPromoLocksAfterDiscount(t *testing.T) {
	f := newFixture(t, &countingOrders{})
	f.addItem(t, "a", 1, 1000)
	ctx := context.Background()

	_, err := f.svc.ApplyPromo(ctx, sessionID, "CASE50")
	require.NoError(t, err)

	_, err = f.svc.ApplyPromo(ctx, sessionID, "OTHER")
	assert.True(t, errors.Is(err, ErrPromoLocked))
	assert.Equal(t, 1, f.promos.calls, "locked code is not resubmitted")
}

func TestApplyPromoRejectedLeavesDraftEditable(t *testing.T) {
	f := newFixture(t, &countingOrders{})
	f.addItem(t, "a", 1, 1000)
	ctx := context.Background()

	_, err := f.svc.ApplyPromo(ctx, sessionID, "NOPE")
	assert.True(t, errors.Is(err, catalog.ErrInvalidPromoCode))

	_, err = f.svc.ApplyPromo(ctx, sessionID, "")
	assert.True(t, errors.Is(err, catalog.ErrPromoCodeRequired))

	summary, err := f.svc.ApplyPromo(ctx, sessionID, "CASE50")
	require.NoError(t, err)
	assert.True(t, summary.PromoLocked)
}

func TestSetDistrictRecomputesShipping(t *testing.T) {
	f := newFixture(t, &countingOrders{})
	f.addItem(t, "a", 1, 1000)
	ctx := context.Background()

	summary, err := f.svc.Summary(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 150.0, summary.Pricing.Shipping)

	_, err = f.svc.ApplyPromo(ctx, sessionID, "CASE50")
	require.NoError(t, err)

	summary, err = f.svc.SetDistrict(ctx, sessionID, "Kathmandu")
	require.NoError(t, err)
	assert.Equal(t, "Kathmandu", summary.District)
	assert.Equal(t, 100.0, summary.Pricing.Shipping)
	assert.Equal(t, 200.0, summary.Pricing.Discount)
	assert.Equal(t, 900.0, summary.Pricing.Total)
}

func TestPlaceOrderMissingEmailSendsNothing(t *testing.T) {
	orders := &countingOrders{}
	f := newFixture(t, orders)
	f.addItem(t, "a", 1, 1000)

	form := validForm()
	form.Email = ""

	_, err := f.svc.PlaceOrder(context.Background(), sessionID, &PlaceOrderRequest{
		Form:         form,
		PaymentImage: &Upload{Filename: "proof.png", Size: 10, Content: strings.NewReader("png")},
	})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "email", verr.Field)
	assert.Zero(t, orders.calls)
}

func TestPlaceOrderChecksPaymentImage(t *testing.T) {
	orders := &countingOrders{}
	f := newFixture(t, orders)
	f.addItem(t, "a", 1, 1000)
	ctx := context.Background()

	tests := []struct {
		name    string
		upload  *Upload
		message string
	}{
		{"missing", nil, msgPaymentImage},
		{"too large", &Upload{Filename: "proof.png", Size: 2 << 20, Content: strings.NewReader("x")}, msgImageSize},
		{"wrong type", &Upload{Filename: "proof.pdf", Size: 10, Content: strings.NewReader("x")}, msgImageExtension},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.PlaceOrder(ctx, sessionID, &PlaceOrderRequest{Form: validForm(), PaymentImage: tt.upload})
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "paymentImage", verr.Field)
			assert.Equal(t, tt.message, verr.Message)
		})
	}
	assert.Zero(t, orders.calls)
}

func newBackendClient(t *testing.T, handler http.HandlerFunc) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &config.Config{Backend: config.BackendConfig{
		BaseURL:        srv.URL,
		Timeout:        5 * time.Second,
		RetryAttempts:  1,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  time.Millisecond,
	}}
	return backend.NewClient(cfg, logger.Discard())
}

func TestPlaceOrderSubmitsMultipartAndClearsState(t *testing.T) {
	client := newBackendClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		assert.Equal(t, "Sita Sharma", r.FormValue("name"))
		assert.Equal(t, "9841234567", r.FormValue("phone"))
		assert.Equal(t, "sita@example.com", r.FormValue("email"))
		assert.Equal(t, "Kathmandu", r.FormValue("city"))
		assert.Equal(t, "Kathmandu", r.FormValue("district"))
		assert.Equal(t, "Baneshwor", r.FormValue("shippingAddress"))
		assert.Equal(t, "Esewa", r.FormValue("paymentMethod"))
		assert.Equal(t, "{}", r.FormValue("customCaseCoordinates"))
		assert.JSONEq(t, `[{"name":"Case a","qty":2,"image":"/img/a.png","price":500,"variant":"iPhone 15","product":"a"}]`,
			r.FormValue("orderItems"))
		assert.JSONEq(t, `{"promoCode":"CASE50","total":1000,"couponDiscount":50,"deliveryCharge":100,"grandTotal":900}`,
			r.FormValue("priceSummary"))

		file, header, err := r.FormFile("paymentImage")
		if assert.NoError(t, err) {
			defer file.Close()
			content, _ := io.ReadAll(file)
			assert.Equal(t, "proof.png", header.Filename)
			assert.Equal(t, "png-bytes", string(content))
		}
		_, _, err = r.FormFile("customImage")
		assert.Error(t, err)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"_id":"ord-42"}}`)
	})

	f := newFixture(t, client)
	f.addItem(t, "a", 2, 500)
	ctx := context.Background()
	_, err := f.svc.ApplyPromo(ctx, sessionID, "CASE50")
	require.NoError(t, err)

	placement, err := f.svc.PlaceOrder(ctx, sessionID, &PlaceOrderRequest{
		Form:         validForm(),
		PaymentImage: &Upload{Filename: "proof.png", Size: 9, Content: strings.NewReader("png-bytes")},
	})
	require.NoError(t, err)
	assert.Equal(t, "ord-42", placement.OrderID)
	assert.Equal(t, "/order/ord-42", placement.Redirect)

	c, err := f.carts.Snapshot(ctx, sessionID)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	d, err := f.drafts.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.False(t, d.PromoLocked())
}

func TestPlaceOrderPricesLikeSummary(t *testing.T) {
	var district, priceSummary string
	client := newBackendClient(t, func(w http.ResponseWriter, r *http.Request) {
		if assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			district = r.FormValue("district")
			priceSummary = r.FormValue("priceSummary")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"_id":"ord-7"}}`)
	})

	f := newFixture(t, client)
	f.addItem(t, "a", 1, 1000)
	ctx := context.Background()

	summary, err := f.svc.SetDistrict(ctx, sessionID, "Jumla")
	require.NoError(t, err)
	assert.Equal(t, 250.0, summary.Pricing.Shipping)

	form := validForm()
	form.District = ""
	require.NoError(t, f.svc.Validate(ctx, sessionID, &form))
	assert.Equal(t, "Jumla", form.District)

	_, err = f.svc.PlaceOrder(ctx, sessionID, &PlaceOrderRequest{
		Form:         validForm(),
		PaymentImage: &Upload{Filename: "proof.png", Size: 3, Content: strings.NewReader("png")},
	})
	require.NoError(t, err)

	assert.Equal(t, "Jumla", district)
	assert.JSONEq(t, `{"promoCode":null,"total":1000,"couponDiscount":0,"deliveryCharge":250,"grandTotal":1250}`, priceSummary)
	assert.Equal(t, 1250.0, summary.Pricing.Total)
}

func TestPlaceOrderFormDistrictWins(t *testing.T) {
	var district string
	client := newBackendClient(t, func(w http.ResponseWriter, r *http.Request) {
		if assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			district = r.FormValue("district")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"_id":"ord-8"}}`)
	})

	f := newFixture(t, client)
	f.addItem(t, "a", 1, 1000)
	ctx := context.Background()

	_, err := f.svc.SetDistrict(ctx, sessionID, "Jumla")
	require.NoError(t, err)

	form := validForm()
	form.District = "Lalitpur"
	_, err = f.svc.PlaceOrder(ctx, sessionID, &PlaceOrderRequest{
		Form:         form,
		PaymentImage: &Upload{Filename: "proof.png", Size: 3, Content: strings.NewReader("png")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Lalitpur", district)
}

func TestPlaceOrderFailureKeepsCart(t *testing.T) {
	var calls int
	client := newBackendClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"message":"Orders are paused"}`)
	})

	f := newFixture(t, client)
	f.addItem(t, "a", 1, 1000)
	ctx := context.Background()

	_, err := f.svc.PlaceOrder(ctx, sessionID, &PlaceOrderRequest{
		Form:         validForm(),
		PaymentImage: &Upload{Filename: "proof.jpg", Size: 3, Content: strings.NewReader("jpg")},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOrderFailed))
	assert.Equal(t, "Orders are paused", backend.MessageOf(err, "Failed to place order. Please try again."))
	assert.Equal(t, 1, calls, "orders are not retried")

	c, err := f.carts.Snapshot(ctx, sessionID)
	require.NoError(t, err)
	assert.False(t, c.IsEmpty())
}

func TestCaseCoordinates(t *testing.T) {
	assert.Equal(t, "{}", caseCoordinates(""))
	assert.Equal(t, "{}", caseCoordinates("{}"))
	assert.Equal(t, "{}", caseCoordinates("not json"))
	assert.Equal(t, `{"x":1}`, caseCoordinates(`{"x":1}`))
}

func TestParseOrderID(t *testing.T) {
	assert.Equal(t, "a", parseOrderID([]byte(`{"_id":"a"}`)))
	assert.Equal(t, "b", parseOrderID([]byte(`{"data":{"_id":"b"}}`)))
	assert.Empty(t, parseOrderID([]byte(`{"success":true}`)))
	assert.Empty(t, parseOrderID([]byte(`oops`)))
}
