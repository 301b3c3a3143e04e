// internal/domain/checkout/payment.go
package checkout

import "strings"

// CashOnDelivery is the payment method that only needs an advance
const CashOnDelivery = "Cash on Delivery"

// PaymentMethod is a way of paying for an order. Every method, cash on
// delivery included, needs a payment screenshot.
type PaymentMethod struct {
	Name    string `json:"name"`
	Image   string `json:"image"`
	QRImage string `json:"qrImage"`
	Advance int64  `json:"advance,omitempty"`
	Note    string `json:"note,omitempty"`
}

var paymentMethods = []PaymentMethod{
	{
		Name:    "Esewa",
		Image:   "/images/payments/esewa.png",
		QRImage: "/images/payments/esewa-qr.png",
	},
	{
		Name:    "Khalti",
		Image:   "/images/payments/khalti.jpg",
		QRImage: "/images/payments/khalti-qr.png",
	},
	{
		Name:    "GBIME Bank",
		Image:   "/images/payments/gbime.png",
		QRImage: "/images/payments/gbime-qr.png",
	},
}

// PaymentMethods lists the accepted payment methods. codAdvance is the
// amount a cash on delivery order must pay up front.
func PaymentMethods(codAdvance int64) []PaymentMethod {
	methods := make([]PaymentMethod, len(paymentMethods), len(paymentMethods)+1)
	copy(methods, paymentMethods)
	return append(methods, PaymentMethod{
		Name:    CashOnDelivery,
		Image:   "/images/payments/cod.png",
		QRImage: "/images/payments/esewa-qr.png",
		Advance: codAdvance,
		Note:    "Initial payment must be done for Cash on Delivery orders.",
	})
}

func isPaymentMethod(name string) bool {
	if strings.EqualFold(name, CashOnDelivery) {
		return true
	}
	for _, m := range paymentMethods {
		if strings.EqualFold(m.Name, name) {
			return true
		}
	}
	return false
}
