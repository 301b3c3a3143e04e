// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casemandu/storefront/internal/domain/cart"
	"github.com/casemandu/storefront/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	cartResponse, err := h.cartService.GetCart(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    cartResponse,
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cartResponse, err := h.cartService.AddToCart(c.Request.Context(), middleware.GetSessionID(c), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    cartResponse,
	})
}

// IncrementItem handles PATCH /cart/items/increment
func (h *CartHandler) IncrementItem(c *gin.Context) {
	req, ok := bindLine(c)
	if !ok {
		return
	}

	cartResponse, err := h.cartService.AddQuantity(c.Request.Context(), middleware.GetSessionID(c), req.Key(), req.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    cartResponse,
	})
}

// DecrementItem handles PATCH /cart/items/decrement. A line is never
// removed this way; it stops at quantity one.
func (h *CartHandler) DecrementItem(c *gin.Context) {
	req, ok := bindLine(c)
	if !ok {
		return
	}

	cartResponse, err := h.cartService.SubQuantity(c.Request.Context(), middleware.GetSessionID(c), req.Key(), req.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    cartResponse,
	})
}

// RemoveFromCart handles DELETE /cart/items
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	req, ok := bindLine(c)
	if !ok {
		return
	}

	cartResponse, err := h.cartService.RemoveFromCart(c.Request.Context(), middleware.GetSessionID(c), req.Key())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    cartResponse,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	cartResponse, err := h.cartService.ClearCart(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
		"data":    cartResponse,
	})
}

// Events handles GET /cart/events, streaming this session's cart changes
// as server-sent events until the client goes away.
func (h *CartHandler) Events(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	notifications, unsubscribe := h.cartService.Subscribe(16)
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case n, ok := <-notifications:
			if !ok {
				return false
			}
			if n.SessionID == sessionID {
				c.SSEvent(string(n.Event.Kind), gin.H{
					"event":  n.Event,
					"totals": n.Totals,
				})
			}
			return true
		}
	})
}

func (h *CartHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, cart.ErrInvalidQuantity) || errors.Is(err, cart.ErrMissingIdentity) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Failed to update cart",
	})
}

func bindLine(c *gin.Context) (cart.LineRequest, bool) {
	var req cart.LineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return req, false
	}
	if req.Amount == 0 {
		req.Amount = 1
	}
	return req, true
}
