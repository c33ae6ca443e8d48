// internal/interfaces/http/middleware/session.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/config"
	"github.com/your-org/mesa-pedidos/internal/pkg/auth"
)

// SessionIDKey is the context key holding the visitor session id
const SessionIDKey = "session_id"

// Session makes sure every request belongs to a visitor session. A missing
// or invalid cookie starts a new session.
func Session(sessions *auth.SessionManager, cfg config.SessionConfig, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(cfg.CookieName); err == nil && token != "" {
			if id, err := sessions.Validate(token); err == nil {
				c.Set(SessionIDKey, id)
				c.Next()
				return
			}
			log.WithField("request_id", c.GetString(RequestIDKey)).Debug("Replacing invalid session cookie")
		}

		id, token, err := sessions.NewSession()
		if err != nil {
			log.WithError(err).Error("Failed to start visitor session")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to start session",
			})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, token, int(sessions.TTL().Seconds()), "/", "", cfg.Secure, true)
		c.Set(SessionIDKey, id)
		c.Next()
	}
}

// GetSessionID returns the visitor session id of the request
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
