// internal/domain/listing/query.go
package listing

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/casemandu/storefront/internal/domain/catalog"
)

// Sort is the listing order
type Sort string

const (
	SortFeatured  Sort = "featured"
	SortNewest    Sort = "newest"
	SortPopular   Sort = "popular"
	SortPriceAsc  Sort = "price-asc"
	SortPriceDesc Sort = "price-desc"
)

// ParseSort maps a URL value to a Sort. The storefront's older
// price-low/price-high spellings are accepted; anything else is featured.
func ParseSort(value string) Sort {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "newest":
		return SortNewest
	case "popular":
		return SortPopular
	case "price-asc", "price-low":
		return SortPriceAsc
	case "price-desc", "price-high":
		return SortPriceDesc
	default:
		return SortFeatured
	}
}

// Backend returns the value sent as the backend "sort" parameter
func (s Sort) Backend() string {
	if s == SortFeatured || s == "" {
		return ""
	}
	return string(s)
}

// URL query keys
const (
	keyCategory = "type"
	keyOption   = "option"
	keyPage     = "page"
	keySearch   = "search"
	keySort     = "sort"
)

// Query is the URL-addressable listing state
type Query struct {
	CategoryID string   `json:"category_id,omitempty"` // At most one category
	OptionIDs  []string `json:"option_ids"`
	Page       int      `json:"page"`
	Search     string   `json:"search,omitempty"`
	Sort       Sort     `json:"sort"`
}

// NewQuery returns the state of a listing with nothing selected
func NewQuery() Query {
	return Query{OptionIDs: []string{}, Page: 1, Sort: SortFeatured}
}

// Equal compares two queries, treating option ids as a set
func (q Query) Equal(other Query) bool {
	return q.CategoryID == other.CategoryID &&
		q.Page == other.Page &&
		q.Search == other.Search &&
		q.Sort == other.Sort &&
		sameSet(q.OptionIDs, other.OptionIDs)
}

// FilterEqual is Equal ignoring the page
func (q Query) FilterEqual(other Query) bool {
	q.Page = other.Page
	return q.Equal(other)
}

// HasOption reports whether id is selected
func (q Query) HasOption(id string) bool {
	for _, selected := range q.OptionIDs {
		if selected == id {
			return true
		}
	}
	return false
}

// ToggleCategory selects id, or clears the selection when id is already
// selected. Page resets to 1.
func (q Query) ToggleCategory(id string) Query {
	if q.CategoryID == id {
		q.CategoryID = ""
	} else {
		q.CategoryID = id
	}
	q.Page = 1
	return q
}

// ToggleOption adds id to the selected options or removes it when present.
// Page resets to 1.
func (q Query) ToggleOption(id string) Query {
	options := make([]string, 0, len(q.OptionIDs)+1)
	found := false
	for _, selected := range q.OptionIDs {
		if selected == id {
			found = true
			continue
		}
		options = append(options, selected)
	}
	if !found {
		options = append(options, id)
	}
	q.OptionIDs = options
	q.Page = 1
	return q
}

// WithSort changes the order. Page resets to 1 when the order changed.
func (q Query) WithSort(s Sort) Query {
	if q.Sort == s {
		return q
	}
	q.Sort = s
	q.Page = 1
	return q
}

// WithSearch changes the search text. Page resets to 1 when it changed.
func (q Query) WithSearch(text string) Query {
	text = strings.TrimSpace(text)
	if q.Search == text {
		return q
	}
	q.Search = text
	q.Page = 1
	return q
}

// WithPage moves to page, never below 1
func (q Query) WithPage(page int) Query {
	if page < 1 {
		page = 1
	}
	q.Page = page
	return q
}

// BackendParams builds the backend list parameters for q
func (q Query) BackendParams(limit int) catalog.ListParams {
	return catalog.ListParams{
		Page:       q.Page,
		Limit:      limit,
		Search:     q.Search,
		Categories: q.CategoryID,
		Options:    strings.Join(q.OptionIDs, ","),
		Sort:       q.Sort.Backend(),
	}
}

// Decode parses URL values into a Query. Unknown slugs and routes are
// dropped; search is read only when enabled.
func Decode(values url.Values, facets *Facets, searchEnabled bool) Query {
	q := NewQuery()

	if raw := values.Get(keyCategory); raw != "" && raw != "all" {
		slug := strings.TrimSpace(strings.Split(raw, ",")[0])
		if category, ok := facets.CategoryBySlug(slug); ok {
			q.CategoryID = category.ID
		}
	}

	if raw := values.Get(keyOption); raw != "" {
		for _, route := range strings.Split(raw, ",") {
			route = strings.TrimSpace(route)
			if route == "" {
				continue
			}
			if option, ok := facets.OptionByRoute(route); ok && !q.HasOption(option.ID) {
				q.OptionIDs = append(q.OptionIDs, option.ID)
			}
		}
	}

	if page, err := strconv.Atoi(values.Get(keyPage)); err == nil && page > 0 {
		q.Page = page
	}

	if searchEnabled {
		q.Search = strings.TrimSpace(values.Get(keySearch))
	}

	q.Sort = ParseSort(values.Get(keySort))

	return q
}

// Encode renders q as URL values. Page is written only above 1, search only
// when enabled and non-empty, sort only when not featured.
func Encode(q Query, facets *Facets, searchEnabled bool) url.Values {
	values := url.Values{}

	if q.CategoryID != "" {
		if category, ok := facets.CategoryByID(q.CategoryID); ok && category.Slug != "" {
			values.Set(keyCategory, category.Slug)
		}
	}

	routes := make([]string, 0, len(q.OptionIDs))
	for _, id := range q.OptionIDs {
		if option, ok := facets.OptionByID(id); ok {
			if route := trimRoute(option.Route); route != "" {
				routes = append(routes, route)
			}
		}
	}
	if len(routes) > 0 {
		values.Set(keyOption, strings.Join(routes, ","))
	}

	if q.Page > 1 {
		values.Set(keyPage, strconv.Itoa(q.Page))
	}

	if searchEnabled && q.Search != "" {
		values.Set(keySearch, q.Search)
	}

	if q.Sort != SortFeatured && q.Sort != "" {
		values.Set(keySort, string(q.Sort))
	}

	return values
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
