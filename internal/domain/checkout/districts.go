// internal/domain/checkout/districts.go
package checkout

import (
	"sort"
	"strings"
)

// District is a delivery destination with its shipping charge
type District struct {
	Name  string `json:"district"`
	Price int64  `json:"price"`
}

// districtFees is the per-district delivery charge.
// Anything missing falls back to the configured default fee.
var districtFees = map[string]int64{
	"Kathmandu":      100,
	"Lalitpur":       100,
	"Bhaktapur":      100,
	"Kavrepalanchok": 150,
	"Nuwakot":        150,
	"Dhading":        150,
	"Makwanpur":      150,
	"Chitwan":        150,
	"Kaski":          150,
	"Rupandehi":      150,
	"Morang":         150,
	"Sunsari":        150,
	"Jhapa":          150,
	"Parsa":          150,
	"Banke":          200,
	"Kailali":        200,
	"Kanchanpur":     200,
	"Surkhet":        200,
	"Dang":           200,
	"Humla":          250,
	"Jumla":          250,
	"Mugu":           250,
	"Dolpa":          250,
	"Mustang":        250,
	"Manang":         250,
	"Solukhumbu":     250,
	"Taplejung":      250,
}

// ShippingFee returns the delivery charge for district, matched without
// regard to case, or fallback when the district has no entry.
func ShippingFee(district string, fallback int64) int64 {
	district = strings.TrimSpace(district)
	if district == "" {
		return fallback
	}
	for name, price := range districtFees {
		if strings.EqualFold(name, district) {
			return price
		}
	}
	return fallback
}

// Districts returns the shipping table sorted by name
func Districts() []District {
	out := make([]District, 0, len(districtFees))
	for name, price := range districtFees {
		out = append(out, District{Name: name, Price: price})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
