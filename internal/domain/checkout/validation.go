// internal/domain/checkout/validation.go
package checkout

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	msgEmptyCart       = "Your cart is empty. Please add items to cart."
	msgPaymentMethod   = "Please select a payment method."
	msgRequiredFields  = "Please fill all the required fields."
	msgPaymentImage    = "Please upload the payment screenshot"
	msgImageExtension  = "Payment screenshot must be an image"
	msgImageSize       = "Payment screenshot is too large"
	fieldCart          = "cartItems"
	fieldPaymentMethod = "paymentMethod"
	fieldPaymentImage  = "paymentImage"
)

// ValidationError is the single blocking problem found in a checkout form
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// OrderForm holds the shipping and payment fields of an order
type OrderForm struct {
	Name            string `json:"name" form:"name" validate:"required"`
	Phone           string `json:"phone" form:"phone" validate:"required"`
	Email           string `json:"email" form:"email" validate:"required"`
	City            string `json:"city" form:"city" validate:"required"`
	District        string `json:"district" form:"district"`
	ShippingAddress string `json:"shippingAddress" form:"shippingAddress" validate:"required"`
	PaymentMethod   string `json:"paymentMethod" form:"paymentMethod" validate:"required,payment_method"`
	AdditionalInfo  string `json:"additionalInfo" form:"additionalInfo"`
}

func (f *OrderForm) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Email = strings.TrimSpace(f.Email)
	f.City = strings.TrimSpace(f.City)
	f.District = strings.TrimSpace(f.District)
	f.ShippingAddress = strings.TrimSpace(f.ShippingAddress)
	f.PaymentMethod = strings.TrimSpace(f.PaymentMethod)
	f.AdditionalInfo = strings.TrimSpace(f.AdditionalInfo)
	if f.District == "" {
		f.District = f.City
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return isPaymentMethod(fl.Field().String())
	})
	return v
}

// ValidateOrder checks an order in the order the checkout page does and
// returns only the first failure: empty cart, payment method, then the
// required shipping fields.
func ValidateOrder(cartEmpty bool, form *OrderForm) *ValidationError {
	if cartEmpty {
		return &ValidationError{Field: fieldCart, Message: msgEmptyCart}
	}

	form.normalize()
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: msgRequiredFields}
	}
	for _, fe := range fieldErrs {
		if fe.Field() == fieldPaymentMethod {
			return &ValidationError{Field: fieldPaymentMethod, Message: msgPaymentMethod}
		}
	}
	return &ValidationError{Field: fieldErrs[0].Field(), Message: msgRequiredFields}
}
