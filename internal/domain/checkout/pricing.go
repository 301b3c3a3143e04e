// internal/domain/checkout/pricing.go
package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/casemandu/storefront/internal/domain/cart"
)

var hundred = decimal.NewFromInt(100)

// Pricing is the price breakdown shown on the checkout page
type Pricing struct {
	Subtotal    float64 `json:"subtotal"`
	Shipping    float64 `json:"shipping"`
	DiscountPct float64 `json:"discount"`
	MaxAmount   float64 `json:"maxAmount"`
	Discount    float64 `json:"disAmount"`
	Total       float64 `json:"total"`
}

// Subtotal sums price times quantity over the cart lines
func Subtotal(items []cart.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// ComputePricing applies the promo discount and the shipping fee to
// subtotal. The discount is subtotal*pct/100 capped at maxAmount.
func ComputePricing(subtotal decimal.Decimal, shipping int64, pct, maxAmount float64) Pricing {
	ship := decimal.NewFromInt(shipping)

	discount := decimal.Zero
	if pct > 0 {
		discount = subtotal.Mul(decimal.NewFromFloat(pct)).Div(hundred)
		if limit := decimal.NewFromFloat(maxAmount); discount.GreaterThan(limit) {
			discount = limit
		}
	}

	total := subtotal.Sub(discount).Add(ship)

	return Pricing{
		Subtotal:    subtotal.Round(2).InexactFloat64(),
		Shipping:    ship.InexactFloat64(),
		DiscountPct: pct,
		MaxAmount:   maxAmount,
		Discount:    discount.Round(2).InexactFloat64(),
		Total:       total.Round(2).InexactFloat64(),
	}
}

// PriceSummary is the priceSummary document attached to an order
type PriceSummary struct {
	PromoCode      *string `json:"promoCode"`
	Total          float64 `json:"total"`
	CouponDiscount float64 `json:"couponDiscount"`
	DeliveryCharge float64 `json:"deliveryCharge"`
	GrandTotal     float64 `json:"grandTotal"`
}

// Summary converts the breakdown into the order document. The promo code
// is only recorded when a discount was applied.
func (p Pricing) Summary(promoCode string) PriceSummary {
	summary := PriceSummary{
		Total:          p.Subtotal,
		CouponDiscount: p.DiscountPct,
		DeliveryCharge: p.Shipping,
		GrandTotal:     p.Total,
	}
	if p.DiscountPct > 0 && promoCode != "" {
		code := promoCode
		summary.PromoCode = &code
	}
	return summary
}
