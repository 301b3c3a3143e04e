// internal/interfaces/http/middleware/session.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/casemandu/storefront/internal/config"
	"github.com/casemandu/storefront/internal/pkg/session"
)

// SessionIDKey is the gin context key holding the browser session id
const SessionIDKey = "session_id"

// Session resolves the anonymous browser session from its signed cookie,
// starting a new one when the cookie is missing or invalid.
func Session(manager *session.Manager, cfg *config.Config, logger *logrus.Entry) gin.HandlerFunc {
	name := cfg.Session.CookieName
	maxAge := int(manager.TTL().Seconds())

	return func(c *gin.Context) {
		if token, err := c.Cookie(name); err == nil && token != "" {
			if sessionID, err := manager.Validate(token); err == nil {
				c.Set(SessionIDKey, sessionID)
				c.Next()
				return
			}
		}

		sessionID, token, err := manager.Issue()
		if err != nil {
			logger.WithError(err).Error("Failed to issue session")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to start session",
			})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(name, token, maxAge, "/", "", cfg.Session.Secure, true)
		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}

// GetSessionID returns the session id stored by Session
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
