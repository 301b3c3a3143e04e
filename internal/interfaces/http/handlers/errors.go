// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casemandu/storefront/internal/infrastructure/backend"
)

// respondUpstreamError writes a failure that came from the commerce backend,
// surfacing the backend's own message when it sent one.
func respondUpstreamError(c *gin.Context, err error, fallback string) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, backend.ErrUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	_ = c.Error(err)
	c.JSON(status, gin.H{
		"error": backend.MessageOf(err, fallback),
	})
}
