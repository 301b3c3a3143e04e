package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casemandu/storefront/internal/config"
	"github.com/casemandu/storefront/internal/domain/order"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "Rs 0", money(0))
	assert.Equal(t, "Rs 950", money(950))
	assert.Equal(t, "Rs 1,200", money(1200))
	assert.Equal(t, "Rs 1,234,567.50", money(1234567.5))
	assert.Equal(t, "-Rs 200", money(-200))
}

func TestGenerateHTML(t *testing.T) {
	svc := NewService(&config.Config{Company: config.CompanyConfig{
		Name:    "Casemandu",
		Address: "Kathmandu, Nepal",
		Email:   "hello@casemandu.com.np",
		Website: "https://casemandu.com.np",
	}})
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	code := "CASE50"
	o := &order.Order{
		ID:              "ord-1",
		Number:          "1002",
		Name:            "Sita <Sharma>",
		Phone:           "9841234567",
		City:            "Kathmandu",
		ShippingAddress: "Baneshwor",
		PaymentMethod:   "Esewa",
		Status:          order.StatusPending,
		Items: []order.Item{
			{Name: "Case", Qty: 2, Price: 500, Variant: "iPhone 15"},
		},
		PriceSummary: order.PriceSummary{PromoCode: &code, Total: 1000, DeliveryCharge: 100, GrandTotal: 900},
	}

	html, err := svc.generateHTML(svc.receiptData(o))
	require.NoError(t, err)

	assert.Contains(t, html, "RCPT-1002")
	assert.Contains(t, html, "March 1, 2026")
	assert.Contains(t, html, "Sita &lt;Sharma&gt;")
	assert.Contains(t, html, "iPhone 15")
	assert.Contains(t, html, "Rs 1,000")
	assert.Contains(t, html, "Discount (CASE50):")
	assert.Contains(t, html, "-Rs 200")
	assert.Contains(t, html, "Rs 900")
	assert.Contains(t, html, "status-pending")
}
