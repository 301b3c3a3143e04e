// internal/domain/listing/facets.go
package listing

import (
	"strings"

	"github.com/casemandu/storefront/internal/domain/catalog"
)

// Facets resolves the URL names of categories and options. Slugs and
// routes match case-insensitively and routes ignore a leading "/".
type Facets struct {
	Categories []catalog.Category `json:"categories"`
	Options    []catalog.Option   `json:"options"`
}

// NewFacets creates a lookup over the given categories and options
func NewFacets(categories []catalog.Category, options []catalog.Option) *Facets {
	return &Facets{Categories: categories, Options: options}
}

// CategoryBySlug finds a category by slug
func (f *Facets) CategoryBySlug(slug string) (catalog.Category, bool) {
	if f == nil || slug == "" {
		return catalog.Category{}, false
	}
	for _, c := range f.Categories {
		if strings.EqualFold(c.Slug, slug) {
			return c, true
		}
	}
	return catalog.Category{}, false
}

// CategoryByID finds a category by id
func (f *Facets) CategoryByID(id string) (catalog.Category, bool) {
	if f == nil {
		return catalog.Category{}, false
	}
	for _, c := range f.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return catalog.Category{}, false
}

// OptionByRoute finds an option by route
func (f *Facets) OptionByRoute(route string) (catalog.Option, bool) {
	route = trimRoute(route)
	if f == nil || route == "" {
		return catalog.Option{}, false
	}
	for _, o := range f.Options {
		if strings.EqualFold(trimRoute(o.Route), route) {
			return o, true
		}
	}
	return catalog.Option{}, false
}

// OptionByID finds an option by id
func (f *Facets) OptionByID(id string) (catalog.Option, bool) {
	if f == nil {
		return catalog.Option{}, false
	}
	for _, o := range f.Options {
		if o.ID == id {
			return o, true
		}
	}
	return catalog.Option{}, false
}

func trimRoute(route string) string {
	return strings.TrimPrefix(strings.TrimSpace(route), "/")
}
