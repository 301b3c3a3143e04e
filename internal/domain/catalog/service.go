// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/casemandu/storefront/internal/config"
	"github.com/casemandu/storefront/internal/infrastructure/backend"
)

const (
	homeProductLimit = 30
	homeSectionSize  = 8
	sitemapPageSize  = 100
	sitemapMaxPages  = 50
)

var (
	// ErrNotFound is returned when a product or offer slug does not exist
	ErrNotFound = errors.New("catalog: not found")
	// ErrPromoCodeRequired is returned for an empty promo code
	ErrPromoCodeRequired = errors.New("catalog: promo code required")
	// ErrInvalidPromoCode is returned when the backend rejects a promo code
	ErrInvalidPromoCode = errors.New("catalog: invalid promo code")
	// ErrPromoLookupFailed is returned when the backend could not answer
	ErrPromoLookupFailed = errors.New("catalog: promo code lookup failed")
)

// Backend is the part of the backend client the catalog reads through
type Backend interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
}

// Cache stores lookup lists between requests
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service loads the slices of catalog data each page needs. Loaders absorb
// backend failures and return empty values; only not-found is surfaced.
type Service struct {
	backend   Backend
	cache     Cache
	cacheTTL  time.Duration
	namespace string
	pageSize  int
	logger    *logrus.Entry
}

// NewService creates a new catalog service. cache may be nil.
func NewService(b Backend, cache Cache, cfg *config.Config, logger *logrus.Entry) *Service {
	return &Service{
		backend:   b,
		cache:     cache,
		cacheTTL:  cfg.Catalog.CacheTTL,
		namespace: cfg.Cart.Namespace,
		pageSize:  cfg.Catalog.PageSize,
		logger:    logger,
	}
}

// PageSize is the default listing page size
func (s *Service) PageSize() int {
	return s.pageSize
}

// Values encodes the parameters for the backend, skipping blanks
func (p ListParams) Values(activeOnly bool) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	if activeOnly {
		q.Set("activation", "active")
	}
	if v := strings.TrimSpace(p.Search); v != "" {
		q.Set("search", v)
	}
	if v := strings.TrimSpace(p.Categories); v != "" {
		q.Set("categories", v)
	}
	if v := strings.TrimSpace(p.Options); v != "" {
		q.Set("options", v)
	}
	if v := strings.TrimSpace(p.Sort); v != "" {
		q.Set("sort", v)
	}
	return q
}

func (s *Service) withDefaults(p ListParams) ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = s.pageSize
	}
	return p
}

// ListProducts fetches one page of products
func (s *Service) ListProducts(ctx context.Context, params ListParams) ListResult {
	params = s.withDefaults(params)
	body, err := s.backend.Get(ctx, "/api/products", params.Values(true))
	if err != nil {
		return s.listFailure("products", params, err,
			"Service is temporarily unavailable. The server is waking up. Please try again in a moment.",
			"Failed to fetch products")
	}

	result, shape := NormalizeProducts(body, params.Page, params.Limit)
	s.logShape("products", shape)
	return result
}

// ListOffers fetches one page of offers
func (s *Service) ListOffers(ctx context.Context, params ListParams) ListResult {
	params = s.withDefaults(params)
	body, err := s.backend.Get(ctx, "/api/offers", params.Values(false))
	if err != nil {
		return s.listFailure("offers", params, err,
			"Offers service is temporarily unavailable. Please try again shortly.",
			"Failed to fetch offers")
	}

	result, shape := NormalizeOffers(body, params.Page, params.Limit)
	s.logShape("offers", shape)
	return result
}

func (s *Service) listFailure(resource string, params ListParams, err error, unavailable, fallback string) ListResult {
	s.logger.WithError(err).WithFields(logrus.Fields{
		"resource": resource,
		"page":     params.Page,
	}).Error("Failed to fetch list")

	message := fallback
	if errors.Is(err, backend.ErrUnavailable) {
		message = unavailable
	}
	return ListResult{
		Products: []Product{},
		Pages:    1,
		Page:     params.Page,
		Limit:    params.Limit,
		Success:  false,
		Error:    message,
	}
}

func (s *Service) logShape(resource string, shape Shape) {
	switch shape {
	case ShapeUnknown:
		s.logger.WithField("resource", resource).Warn("Unexpected list response structure")
	case ShapeInvalid:
		s.logger.WithField("resource", resource).Error("Unparsable list response")
	}
}

// ProductBySlug loads a single product
func (s *Service) ProductBySlug(ctx context.Context, slug string) (*Product, error) {
	return s.bySlug(ctx, "/api/products/", slug)
}

// OfferBySlug loads a single offer
func (s *Service) OfferBySlug(ctx context.Context, slug string) (*Product, error) {
	return s.bySlug(ctx, "/api/offers/", slug)
}

func (s *Service) bySlug(ctx context.Context, prefix, slug string) (*Product, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, ErrNotFound
	}

	body, err := s.backend.Get(ctx, prefix+url.PathEscape(slug), nil)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", slug, err)
	}

	var p Product
	found, err := decodeOne(body, &p)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", slug, err)
	}
	if !found || (p.ID == "" && p.Slug == "") {
		return nil, ErrNotFound
	}
	return &p, nil
}

// Categories returns the product categories
func (s *Service) Categories(ctx context.Context) []Category {
	return cachedList[Category](ctx, s, "categories", "/api/categories")
}

// Options returns the design options
func (s *Service) Options(ctx context.Context) []Option {
	return cachedList[Option](ctx, s, "options", "/api/options")
}

// Phones returns phone brands with their models
func (s *Service) Phones(ctx context.Context) []Phone {
	return cachedList[Phone](ctx, s, "phones", "/api/phones")
}

// Videos returns the showcase videos
func (s *Service) Videos(ctx context.Context) []Video {
	return fetchList[Video](ctx, s, "videos", "/api/youtube")
}

// Banners returns the hero slider banners
func (s *Service) Banners(ctx context.Context) []Banner {
	return fetchList[Banner](ctx, s, "banners", "/api/banners")
}

// HappyCustomers returns the customer photo wall
func (s *Service) HappyCustomers(ctx context.Context) []HappyCustomer {
	return fetchList[HappyCustomer](ctx, s, "happy_customers", "/api/happy-customers")
}

func cachedList[T any](ctx context.Context, s *Service, name, path string) []T {
	key := fmt.Sprintf("%s:catalog:%s", s.namespace, name)

	if s.cache != nil {
		var items []T
		ok, err := s.cache.GetJSON(ctx, key, &items)
		if err != nil {
			s.logger.WithError(err).WithField("resource", name).Warn("Failed to read catalog cache")
		}
		if ok {
			return items
		}
	}

	items := fetchList[T](ctx, s, name, path)

	if s.cache != nil && len(items) > 0 {
		if err := s.cache.SetJSON(ctx, key, items, s.cacheTTL); err != nil {
			s.logger.WithError(err).WithField("resource", name).Warn("Failed to write catalog cache")
		}
	}
	return items
}

func fetchList[T any](ctx context.Context, s *Service, name, path string) []T {
	body, err := s.backend.Get(ctx, path, nil)
	if err != nil {
		s.logger.WithError(err).WithField("resource", name).Error("Failed to fetch list")
		return []T{}
	}

	items, err := decodeList[T](body)
	if err != nil {
		s.logger.WithError(err).WithField("resource", name).Warn("Unexpected list response structure")
		return []T{}
	}
	return items
}

// PromoCode looks up the discount for code. Backend rejection text is kept
// in the returned error.
func (s *Service) PromoCode(ctx context.Context, code string) (*PromoCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrPromoCodeRequired
	}

	body, err := s.backend.Get(ctx, "/api/promocodes/"+url.PathEscape(code), nil)
	if err != nil {
		var statusErr *backend.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPromoCode, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrPromoLookupFailed, err)
	}

	var promo PromoCode
	found, err := decodeOne(body, &promo)
	if err != nil || !found {
		return nil, ErrInvalidPromoCode
	}
	promo.Code = code
	return &promo, nil
}

// Home loads every home page slice concurrently
func (s *Service) Home(ctx context.Context) (*Home, error) {
	home := &Home{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		home.Categories = s.Categories(ctx)
		return nil
	})
	g.Go(func() error {
		home.Options = s.Options(ctx)
		return nil
	})
	g.Go(func() error {
		products := s.ListProducts(ctx, ListParams{Page: 1, Limit: homeProductLimit}).Products
		home.NewArrivals = NewArrivals(products, homeSectionSize)
		home.MostPopular = MostPopular(products, homeSectionSize)
		home.BestSellers = BestSellers(products, homeSectionSize)
		return nil
	})
	g.Go(func() error {
		home.Banners = s.Banners(ctx)
		return nil
	})
	g.Go(func() error {
		home.HappyCustomers = s.HappyCustomers(ctx)
		return nil
	})
	g.Go(func() error {
		home.Videos = s.Videos(ctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return home, nil
}

// NewArrivals keeps products flagged new, in backend order
func NewArrivals(products []Product, n int) []Product {
	out := make([]Product, 0, n)
	for _, p := range products {
		if len(out) == n {
			break
		}
		if p.IsNewArrival() {
			out = append(out, p)
		}
	}
	return out
}

// MostPopular orders products by views, highest first
func MostPopular(products []Product, n int) []Product {
	return topBy(products, n, func(p Product) int { return p.TotalViews })
}

// BestSellers orders products by sales, highest first
func BestSellers(products []Product, n int) []Product {
	return topBy(products, n, func(p Product) int { return p.SaleCount })
}

func topBy(products []Product, n int, score func(Product) int) []Product {
	sorted := make([]Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return score(sorted[i]) > score(sorted[j])
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Sitemap lists the records that get their own public URL
type Sitemap struct {
	Products   []Product
	Categories []Category
	Offers     []Product
}

// SitemapEntries collects every product, category and offer slug. Each part
// is best effort.
func (s *Service) SitemapEntries(ctx context.Context) *Sitemap {
	sm := &Sitemap{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sm.Products = s.allProducts(ctx)
		return nil
	})
	g.Go(func() error {
		sm.Categories = s.Categories(ctx)
		return nil
	})
	g.Go(func() error {
		sm.Offers = s.ListOffers(ctx, ListParams{Page: 1, Limit: sitemapPageSize}).Products
		return nil
	})

	_ = g.Wait()
	return sm
}

func (s *Service) allProducts(ctx context.Context) []Product {
	var products []Product
	for page := 1; page <= sitemapMaxPages; page++ {
		result := s.ListProducts(ctx, ListParams{Page: page, Limit: sitemapPageSize})
		if !result.Success {
			break
		}
		products = append(products, result.Products...)
		if page >= result.Pages || len(result.Products) == 0 {
			break
		}
	}
	return products
}
