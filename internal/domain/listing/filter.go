// internal/domain/listing/filter.go
package listing

import (
	"net/url"
	"strconv"

	"github.com/casemandu/storefront/internal/domain/catalog"
)

// Default price slider bounds
const (
	DefaultMinPrice = 0
	DefaultMaxPrice = 10000
)

// Filter narrows an already fetched page in memory. It is never sent to the
// backend.
type Filter struct {
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	DiscountOnly bool    `json:"discount_only"`
	NewOnly      bool    `json:"new_only"`
	InStockOnly  bool    `json:"in_stock_only"`
}

// DefaultFilter lets every product through
func DefaultFilter() Filter {
	return Filter{MinPrice: DefaultMinPrice, MaxPrice: DefaultMaxPrice}
}

// ParseFilter reads minPrice, maxPrice, discount, new and inStock
func ParseFilter(values url.Values) Filter {
	f := DefaultFilter()
	if v, err := strconv.ParseFloat(values.Get("minPrice"), 64); err == nil {
		f.MinPrice = v
	}
	if v, err := strconv.ParseFloat(values.Get("maxPrice"), 64); err == nil {
		f.MaxPrice = v
	}
	f.DiscountOnly, _ = strconv.ParseBool(values.Get("discount"))
	f.NewOnly, _ = strconv.ParseBool(values.Get("new"))
	f.InStockOnly, _ = strconv.ParseBool(values.Get("inStock"))
	return f
}

// Apply runs the price, discount, new and stock predicates in that order
func (f Filter) Apply(products []catalog.Product) []catalog.Product {
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if p.Price.Amount < f.MinPrice || p.Price.Amount > f.MaxPrice {
			continue
		}
		if f.DiscountOnly && !p.HasDiscount() {
			continue
		}
		if f.NewOnly && !p.IsNewArrival() {
			continue
		}
		if f.InStockOnly && !p.Available() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// PriceBounds returns the lowest and highest positive price on the page, or
// the default slider bounds when there is none.
func PriceBounds(products []catalog.Product) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, p := range products {
		amount := p.Price.Amount
		if amount <= 0 {
			continue
		}
		if lo == 0 || amount < lo {
			lo = amount
		}
		if amount > hi {
			hi = amount
		}
	}
	if hi == 0 {
		return DefaultMinPrice, DefaultMaxPrice
	}
	return lo, hi
}
