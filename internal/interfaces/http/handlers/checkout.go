// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casemandu/storefront/internal/domain/catalog"
	"github.com/casemandu/storefront/internal/domain/checkout"
	"github.com/casemandu/storefront/internal/infrastructure/backend"
	"github.com/casemandu/storefront/internal/interfaces/http/middleware"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// GetSummary handles GET /checkout
func (h *CheckoutHandler) GetSummary(c *gin.Context) {
	summary, err := h.checkoutService.Summary(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout summary retrieved successfully",
		"data":    summary,
	})
}

// GetPaymentMethods handles GET /checkout/payment-methods
func (h *CheckoutHandler) GetPaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Payment methods retrieved successfully",
		"data":    h.checkoutService.PaymentMethods(),
	})
}

// GetDistricts handles GET /checkout/districts
func (h *CheckoutHandler) GetDistricts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Districts retrieved successfully",
		"data":    checkout.Districts(),
	})
}

// SetDistrictRequest selects the delivery district
type SetDistrictRequest struct {
	District string `json:"district" binding:"required"`
}

// SetDistrict handles PUT /checkout/district
func (h *CheckoutHandler) SetDistrict(c *gin.Context) {
	var req SetDistrictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	summary, err := h.checkoutService.SetDistrict(c.Request.Context(), middleware.GetSessionID(c), req.District)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipping updated successfully",
		"data":    summary,
	})
}

// ApplyPromoRequest carries a promo code
type ApplyPromoRequest struct {
	Code string `json:"code"`
}

// ApplyPromo handles POST /checkout/promo
func (h *CheckoutHandler) ApplyPromo(c *gin.Context) {
	var req ApplyPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	summary, err := h.checkoutService.ApplyPromo(c.Request.Context(), middleware.GetSessionID(c), req.Code)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Promo code applied successfully.",
		"data":    summary,
	})
}

// ValidateOrder handles POST /checkout/validate. It runs the same checks as
// PlaceOrder without contacting the backend.
func (h *CheckoutHandler) ValidateOrder(c *gin.Context) {
	var form checkout.OrderForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.checkoutService.Validate(c.Request.Context(), middleware.GetSessionID(c), &form); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order details are valid",
		"data":    form,
	})
}

// PlaceOrder handles POST /checkout/orders (multipart/form-data)
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var form checkout.OrderForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	paymentImage, closePayment, err := formUpload(c, "paymentImage")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read the payment screenshot",
		})
		return
	}
	defer closePayment()

	customImage, closeCustom, err := formUpload(c, "customImage")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read the custom image",
		})
		return
	}
	defer closeCustom()

	placement, err := h.checkoutService.PlaceOrder(c.Request.Context(), middleware.GetSessionID(c), &checkout.PlaceOrderRequest{
		Form:                  form,
		PaymentImage:          paymentImage,
		CustomImage:           customImage,
		CustomCaseCoordinates: c.PostForm("customCaseCoordinates"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully.",
		"data":    placement,
	})
}

// formUpload opens an optional file field. A missing field yields nil.
func formUpload(c *gin.Context, field string) (*checkout.Upload, func(), error) {
	noop := func() {}

	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}

	var file multipart.File
	if file, err = header.Open(); err != nil {
		return nil, noop, err
	}

	return &checkout.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	}, func() { _ = file.Close() }, nil
}

func (h *CheckoutHandler) respondError(c *gin.Context, err error) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": verr.Message,
			"field": verr.Field,
		})
	case errors.Is(err, checkout.ErrPromoLocked):
		c.JSON(http.StatusConflict, gin.H{
			"error": "A promo code has already been applied.",
		})
	case errors.Is(err, catalog.ErrPromoCodeRequired):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Please enter a promo code.",
		})
	case errors.Is(err, catalog.ErrPromoLookupFailed):
		respondUpstreamError(c, err, "Failed to check promo code. Please try again.")
	case errors.Is(err, catalog.ErrInvalidPromoCode):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": backend.MessageOf(err, "Invalid promo code."),
		})
	case errors.Is(err, checkout.ErrOrderFailed):
		respondUpstreamError(c, err, "Failed to place order. Please try again.")
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Something went wrong. Please try again.",
		})
	}
}
