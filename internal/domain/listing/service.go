// internal/domain/listing/service.go
package listing

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/casemandu/storefront/internal/config"
	"github.com/casemandu/storefront/internal/domain/catalog"
)

// Kind selects the collection a listing pages through
type Kind string

const (
	KindProducts Kind = "products"
	KindOffers   Kind = "offers"
)

// Catalog is what the listing needs from the catalog service
type Catalog interface {
	ListProducts(ctx context.Context, params catalog.ListParams) catalog.ListResult
	ListOffers(ctx context.Context, params catalog.ListParams) catalog.ListResult
	Categories(ctx context.Context) []catalog.Category
	Options(ctx context.Context) []catalog.Option
}

// SnapshotStore keeps the last good page per query
type SnapshotStore interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error
}

// snapshotTTL is how long a last-good page can stand in for a failed fetch
const snapshotTTL = 24 * time.Hour

// Service answers stateless listing requests by mounting a controller on
// the request URL.
type Service struct {
	catalog   Catalog
	snapshots SnapshotStore
	namespace string
	pageSize  int
	debounce  time.Duration
	logger    *logrus.Entry
}

// NewService creates a listing service. snapshots may be nil.
func NewService(c Catalog, snapshots SnapshotStore, cfg *config.Config, logger *logrus.Entry) *Service {
	return &Service{
		catalog:   c,
		snapshots: snapshots,
		namespace: cfg.Cart.Namespace,
		pageSize:  cfg.Catalog.PageSize,
		debounce:  cfg.Catalog.SearchDebounce,
		logger:    logger,
	}
}

// Request is one listing page request
type Request struct {
	Kind          Kind
	Values        url.Values
	SearchEnabled bool
}

// Page is the listing response
type Page struct {
	State
	Facets     *Facets    `json:"facets"`
	PriceRange [2]float64 `json:"price_range"`
	Stale      bool       `json:"stale"` // Products come from the last good response
}

// Load decodes the URL, fetches the page, clamps the page number and
// applies the secondary filter.
func (s *Service) Load(ctx context.Context, req Request) *Page {
	facets := NewFacets(s.catalog.Categories(ctx), s.catalog.Options(ctx))

	var stale bool
	fetcher := FetcherFunc(func(ctx context.Context, params catalog.ListParams) catalog.ListResult {
		result := s.list(ctx, req.Kind, params)
		key := s.snapshotKey(req.Kind, params)

		if result.Success {
			stale = false
			s.saveSnapshot(ctx, key, result)
			return result
		}

		if snapshot, ok := s.loadSnapshot(ctx, key); ok {
			stale = true
			snapshot.Success = true
			return snapshot
		}
		return result
	})

	ctrl := NewController(fetcher, facets, s.controllerOptions(req))
	defer ctrl.Close()

	ctrl.Mount(ctx, req.Values.Encode())
	state := ctrl.SetFilter(ParseFilter(req.Values))

	if stale {
		state.Error = "Showing previously loaded results. The service is temporarily unavailable."
	}

	lo, hi := PriceBounds(state.Products)
	return &Page{
		State:      state,
		Facets:     facets,
		PriceRange: [2]float64{lo, hi},
		Stale:      stale,
	}
}

func (s *Service) controllerOptions(req Request) ControllerOptions {
	return ControllerOptions{
		Limit:          s.pageSize,
		SearchEnabled:  req.SearchEnabled,
		SearchDebounce: s.debounce,
	}
}

func (s *Service) list(ctx context.Context, kind Kind, params catalog.ListParams) catalog.ListResult {
	if kind == KindOffers {
		return s.catalog.ListOffers(ctx, params)
	}
	return s.catalog.ListProducts(ctx, params)
}

func (s *Service) snapshotKey(kind Kind, params catalog.ListParams) string {
	return fmt.Sprintf("%s:listing:%s:%s", s.namespace, kind, params.Values(false).Encode())
}

func (s *Service) saveSnapshot(ctx context.Context, key string, result catalog.ListResult) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.SetJSON(ctx, key, result, snapshotTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to store listing snapshot")
	}
}

func (s *Service) loadSnapshot(ctx context.Context, key string) (catalog.ListResult, bool) {
	var result catalog.ListResult
	if s.snapshots == nil {
		return result, false
	}
	ok, err := s.snapshots.GetJSON(ctx, key, &result)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read listing snapshot")
		return result, false
	}
	return result, ok
}
