// internal/interfaces/http/handlers/order.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/casemandu/storefront/internal/domain/order"
)

// OrderHandler serves placed orders
type OrderHandler struct {
	orderService *order.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, err := h.orderService.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, order.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
		return
	}
	if err != nil {
		respondUpstreamError(c, err, "Failed to retrieve order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// TrackOrder handles GET /orders/track?id=&ph=
func (h *OrderHandler) TrackOrder(c *gin.Context) {
	o, err := h.orderService.Track(c.Request.Context(), c.Query("id"), c.Query("ph"))
	if errors.Is(err, order.ErrTrackFieldsRequired) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Please fill all the fields",
		})
		return
	}
	var trackErr *order.TrackError
	if errors.As(err, &trackErr) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": trackErr.Message,
		})
		return
	}
	if err != nil {
		respondUpstreamError(c, err, "Failed to track order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order found",
		"data": gin.H{
			"order":    o,
			"redirect": "/order/" + o.ID,
		},
	})
}

// GetReceipt handles GET /orders/:id/receipt
func (h *OrderHandler) GetReceipt(c *gin.Context) {
	o, pdf, err := h.orderService.Receipt(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, order.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
		return
	case errors.Is(err, order.ErrReceiptUnavailable):
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Receipts are not available",
		})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate receipt",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", o.Reference()))
	c.Header("Content-Length", strconv.Itoa(len(pdf)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
