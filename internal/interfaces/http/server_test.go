package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casemandu/storefront/internal/config"
	"github.com/casemandu/storefront/internal/domain/cart"
	"github.com/casemandu/storefront/internal/domain/catalog"
	"github.com/casemandu/storefront/internal/domain/checkout"
	"github.com/casemandu/storefront/internal/domain/listing"
	"github.com/casemandu/storefront/internal/domain/order"
	"github.com/casemandu/storefront/internal/infrastructure/backend"
	"github.com/casemandu/storefront/internal/pkg/logger"
	"github.com/casemandu/storefront/internal/pkg/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeHealth struct {
	err error
}

func (f fakeHealth) Health(context.Context) error {
	return f.err
}

type fakeLimiter struct {
	count int64
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, _ string, limit int, _ time.Duration) (bool, int64, error) {
	f.count++
	return f.count <= int64(limit), f.count, nil
}

func testConfig(backendURL string) *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "storefront-test",
			Version:     "test",
			Environment: "test",
			PublicURL:   "https://casemandu.test",
		},
		Server: config.ServerConfig{Port: "0", RequestTimeout: 5 * time.Second},
		Backend: config.BackendConfig{
			BaseURL:        backendURL,
			Timeout:        time.Second,
			RetryBaseDelay: time.Millisecond,
			RetryMaxDelay:  time.Millisecond,
		},
		Session: config.SessionConfig{
			Secret:     "0123456789abcdef0123456789abcdef",
			CookieName: "sf_session",
			TTL:        time.Hour,
		},
		Cart:     config.CartConfig{Namespace: "test", TTL: time.Hour},
		Catalog:  config.CatalogConfig{PageSize: 30},
		Checkout: config.CheckoutConfig{DefaultShippingFee: 150, CODAdvance: 300},
		Security: config.SecurityConfig{
			RateLimitPerMinute: 2,
			CORSAllowedOrigins: []string{"https://casemandu.test"},
			CORSAllowedMethods: []string{"GET", "POST"},
			CORSAllowedHeaders: []string{"Content-Type"},
		},
		Logging: config.LoggingConfig{Level: "error"},
	}
}

func newTestServer(t *testing.T, mutate func(*Dependencies)) *Server {
	t.Helper()

	upstream := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(upstream.Close)

	cfg := testConfig(upstream.URL)
	client := backend.NewClient(cfg, logger.Discard())
	catalogService := catalog.NewService(client, nil, cfg, logger.Discard())
	cartService := cart.NewService(cart.NewMemoryRepository(), logger.Discard())

	deps := Dependencies{
		Cart:     cartService,
		Catalog:  catalogService,
		Listing:  listing.NewService(catalogService, nil, cfg, logger.Discard()),
		Checkout: checkout.NewService(cartService, catalogService, client, checkout.NewMemoryDraftRepository(), cfg, logger.Discard()),
		Orders:   order.NewService(client, nil, logger.Discard()),
		Sessions: session.NewManager(cfg),
	}
	if mutate != nil {
		mutate(&deps)
	}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewServer(cfg, log, deps)
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestReadiness(t *testing.T) {
	s := newTestServer(t, nil)
	w := serve(s, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":false`)

	s = newTestServer(t, func(d *Dependencies) { d.Redis = fakeHealth{} })
	w = serve(s, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":true`)

	s = newTestServer(t, func(d *Dependencies) { d.Redis = fakeHealth{err: errors.New("down")} })
	w = serve(s, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSessionCookieKeepsCart(t *testing.T) {
	s := newTestServer(t, nil)

	body := `{"product":{"_id":"p1","name":"Marble Case"},"quantity":1,"price":500}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := serve(s, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sf_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(cookies[0])
	w = serve(s, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_empty":false`)
	assert.Empty(t, w.Result().Cookies(), "a valid cookie is not reissued")

	w = serve(s, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	assert.Contains(t, w.Body.String(), `"is_empty":true`, "a new visitor gets a new cart")
}

func TestRoutesAreMounted(t *testing.T) {
	s := newTestServer(t, nil)

	cases := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/robots.txt", http.StatusOK},
		{http.MethodGet, "/api/checkout/payment-methods", http.StatusOK},
		{http.MethodGet, "/api/checkout/districts", http.StatusOK},
		{http.MethodGet, "/api/categories", http.StatusOK},
		{http.MethodGet, "/api/orders/track", http.StatusBadRequest},
		{http.MethodGet, "/api/orders/abc/receipt", http.StatusNotImplemented},
		{http.MethodGet, "/api/products/unknown", http.StatusNotFound},
		{http.MethodGet, "/api/nope", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			w := serve(s, httptest.NewRequest(tc.method, tc.target, nil))
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	limiter := &fakeLimiter{}
	s := newTestServer(t, func(d *Dependencies) { d.Limiter = limiter })

	for i := 0; i < 2; i++ {
		w := serve(s, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := serve(s, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}
