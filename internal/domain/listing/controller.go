// internal/domain/listing/controller.go
package listing

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/casemandu/storefront/internal/domain/catalog"
)

// maxClampRounds bounds the refetches a shrinking result set can cause
const maxClampRounds = 3

const defaultFetchError = "Failed to load products"

// Fetcher loads one page for the given parameters
type Fetcher interface {
	Fetch(ctx context.Context, params catalog.ListParams) catalog.ListResult
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context, params catalog.ListParams) catalog.ListResult

// Fetch calls f
func (f FetcherFunc) Fetch(ctx context.Context, params catalog.ListParams) catalog.ListResult {
	return f(ctx, params)
}

// State is a snapshot of the controller
type State struct {
	Query    Query             `json:"query"`
	URL      string            `json:"url"` // Encoded query string, without "?"
	Products []catalog.Product `json:"products"`
	Visible  []catalog.Product `json:"visible"` // Products after the secondary filter
	Filter   Filter            `json:"filter"`
	Pages    int               `json:"pages"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Loading  bool              `json:"loading"`
	Error    string            `json:"error,omitempty"`
	HasPrev  bool              `json:"has_prev"`
	HasNext  bool              `json:"has_next"`
}

// ControllerOptions configures a Controller
type ControllerOptions struct {
	Limit          int
	SearchEnabled  bool
	SearchDebounce time.Duration // Quiet period for TypeSearch
	// OnURLChange receives every URL the controller commits, e.g. the
	// clamp rewrite after a fetch.
	OnURLChange func(rawQuery string)
}

// Controller reconciles URL, listing state and fetch results. Every
// committed change runs exactly one fetch; filter changes reset the page
// before that fetch is issued. Each fetch carries a sequence number and a
// response older than the latest issued fetch is discarded.
type Controller struct {
	fetcher Fetcher
	facets  *Facets
	opts    ControllerOptions
	typing  *Debouncer

	mu       sync.Mutex
	query    Query
	lastURL  string
	products []catalog.Product
	filter   Filter
	pages    int
	total    int
	limit    int
	loading  bool
	err      string
	seq      uint64
	fetches  int
}

// NewController creates a controller that has not been mounted yet
func NewController(fetcher Fetcher, facets *Facets, opts ControllerOptions) *Controller {
	return &Controller{
		fetcher:  fetcher,
		facets:   facets,
		opts:     opts,
		typing:   NewDebouncer(opts.SearchDebounce),
		query:    NewQuery(),
		products: []catalog.Product{},
		filter:   DefaultFilter(),
		pages:    1,
		limit:    opts.Limit,
	}
}

// Mount parses the initial URL and runs the first fetch
func (c *Controller) Mount(ctx context.Context, rawQuery string) State {
	values, _ := url.ParseQuery(rawQuery)

	c.mu.Lock()
	c.query = Decode(values, c.facets, c.opts.SearchEnabled)
	c.lastURL = rawQuery
	c.mu.Unlock()

	return c.fetch(ctx)
}

// ToggleCategory selects or deselects a category
func (c *Controller) ToggleCategory(ctx context.Context, id string) State {
	return c.apply(ctx, func(q Query) Query { return q.ToggleCategory(id) })
}

// ToggleOption selects or deselects an option
func (c *Controller) ToggleOption(ctx context.Context, id string) State {
	return c.apply(ctx, func(q Query) Query { return q.ToggleOption(id) })
}

// SetSort changes the order
func (c *Controller) SetSort(ctx context.Context, s Sort) State {
	return c.apply(ctx, func(q Query) Query { return q.WithSort(s) })
}

// SetSearch commits search text. Ignored when search is disabled.
func (c *Controller) SetSearch(ctx context.Context, text string) State {
	if !c.opts.SearchEnabled {
		return c.State()
	}
	return c.apply(ctx, func(q Query) Query { return q.WithSearch(text) })
}

// TypeSearch commits text once no further keystroke arrived within the
// search quiet period.
func (c *Controller) TypeSearch(ctx context.Context, text string) {
	if !c.opts.SearchEnabled {
		return
	}
	c.typing.Trigger(func() {
		c.SetSearch(ctx, text)
	})
}

// Close cancels a pending search
func (c *Controller) Close() {
	c.typing.Stop()
}

// SetPage moves to another page
func (c *Controller) SetPage(ctx context.Context, page int) State {
	return c.apply(ctx, func(q Query) Query { return q.WithPage(page) })
}

// ClearFilters drops every selection, search and sort and resets the
// secondary filter.
func (c *Controller) ClearFilters(ctx context.Context) State {
	c.mu.Lock()
	c.filter = DefaultFilter()
	c.err = ""
	c.mu.Unlock()
	return c.apply(ctx, func(Query) Query { return NewQuery() })
}

// SetFilter changes the secondary filter; no fetch is issued
func (c *Controller) SetFilter(f Filter) State {
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
	return c.State()
}

// Navigate handles an externally changed URL, such as back/forward. The
// state is replaced and refetched only when the URL decodes to a different
// query.
func (c *Controller) Navigate(ctx context.Context, rawQuery string) State {
	c.mu.Lock()
	if rawQuery == c.lastURL {
		c.mu.Unlock()
		return c.State()
	}
	c.lastURL = rawQuery

	values, _ := url.ParseQuery(rawQuery)
	next := Decode(values, c.facets, c.opts.SearchEnabled)
	if next.Equal(c.query) {
		c.mu.Unlock()
		return c.State()
	}
	c.query = next
	c.mu.Unlock()

	return c.fetch(ctx)
}

// Retry re-runs the fetch for the current state
func (c *Controller) Retry(ctx context.Context) State {
	return c.fetch(ctx)
}

// Fetches reports how many fetches were issued
func (c *Controller) Fetches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

// State returns the current snapshot
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// apply commits a state change and, when it changed anything, rewrites the
// URL and fetches once.
func (c *Controller) apply(ctx context.Context, change func(Query) Query) State {
	c.mu.Lock()
	next := change(c.query)
	if next.Equal(c.query) {
		c.mu.Unlock()
		return c.State()
	}
	c.query = next
	c.commitURL()
	c.mu.Unlock()

	return c.fetch(ctx)
}

// commitURL must be called with mu held
func (c *Controller) commitURL() {
	c.lastURL = Encode(c.query, c.facets, c.opts.SearchEnabled).Encode()
	if c.opts.OnURLChange != nil {
		c.opts.OnURLChange(c.lastURL)
	}
}

func (c *Controller) fetch(ctx context.Context) State {
	for round := 0; ; round++ {
		c.mu.Lock()
		c.seq++
		token := c.seq
		c.fetches++
		c.loading = true
		params := c.query.BackendParams(c.opts.Limit)
		c.mu.Unlock()

		result := c.fetcher.Fetch(ctx, params)

		c.mu.Lock()
		if token != c.seq {
			// A newer fetch was issued meanwhile.
			state := c.snapshot()
			c.mu.Unlock()
			return state
		}
		c.loading = false

		if !result.Success {
			c.err = result.Error
			if c.err == "" {
				c.err = defaultFetchError
			}
			state := c.snapshot()
			c.mu.Unlock()
			return state
		}

		c.err = ""
		c.products = result.Products
		if c.products == nil {
			c.products = []catalog.Product{}
		}
		if result.Limit > 0 {
			c.limit = result.Limit
		}
		c.total = result.Total
		c.pages = EffectivePages(result.Pages, result.Total, c.limit)

		clamped := ClampPage(c.query.Page, c.pages)
		if clamped == c.query.Page || round >= maxClampRounds {
			state := c.snapshot()
			c.mu.Unlock()
			return state
		}

		c.query.Page = clamped
		c.commitURL()
		c.mu.Unlock()
	}
}

// snapshot must be called with mu held
func (c *Controller) snapshot() State {
	products := make([]catalog.Product, len(c.products))
	copy(products, c.products)
	return State{
		Query:    c.query,
		URL:      c.lastURL,
		Products: products,
		Visible:  c.filter.Apply(products),
		Filter:   c.filter,
		Pages:    c.pages,
		Total:    c.total,
		Limit:    c.limit,
		Loading:  c.loading,
		Error:    c.err,
		HasPrev:  c.query.Page > 1,
		HasNext:  c.query.Page < c.pages,
	}
}
