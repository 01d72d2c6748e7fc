package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/iitp-cep/portal-service/internal/services"
	"github.com/iitp-cep/portal-service/internal/session"
	"github.com/iitp-cep/portal-service/internal/utils"
)

// Context keys set by the session middleware.
const (
	ctxSessionID = "session_id"
	ctxUsername  = "username"
	ctxIsAdmin   = "is_admin"
)

// RequestIDMiddleware assigns every request an id for log correlation.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
			c.Request.Header.Set("X-Request-ID", requestID)
		}
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// CORSMiddleware allows browser clients on other origins.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware sets baseline response headers.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// SessionMiddleware resolves the visitor's session from the cookie and
// stores identity in the request context. Each hit refreshes the
// session TTL and the user's presence.
type SessionMiddleware struct {
	sessions   *session.Store
	auth       services.AuthService
	cookieName string
	logger     utils.Logger
}

func NewSessionMiddleware(sessions *session.Store, auth services.AuthService, cookieName string, logger utils.Logger) *SessionMiddleware {
	return &SessionMiddleware{
		sessions:   sessions,
		auth:       auth,
		cookieName: cookieName,
		logger:     logger,
	}
}

// RequireSession rejects requests without a valid session.
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(m.cookieName)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Not logged in"})
			return
		}

		sess, err := m.sessions.Get(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Session expired"})
				return
			}
			m.logger.LogError(err, "Failed to load session")
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
			return
		}

		c.Set(ctxSessionID, sessionID)
		c.Set(ctxUsername, sess.Username)
		c.Set(ctxIsAdmin, sess.IsAdmin)

		if err := m.sessions.Touch(c.Request.Context(), sessionID); err != nil {
			m.logger.Warn("Failed to refresh session TTL", "error", err)
		}

		// A ban or an admin taking the portal offline takes effect on
		// the next request, not at session expiry.
		if err := m.auth.Heartbeat(c.Request.Context(), sess.Username); err != nil {
			switch {
			case errors.Is(err, services.ErrUserBanned):
				if derr := m.sessions.Destroy(c.Request.Context(), sessionID); derr != nil {
					m.logger.Warn("Failed to destroy banned user's session", "username", sess.Username, "error", derr)
				}
				c.SetCookie(m.cookieName, "", -1, "/", "", false, true)
				c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Account banned"})
				return
			case errors.Is(err, services.ErrSystemOffline):
				if !sess.IsAdmin {
					c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Portal is offline"})
					return
				}
			default:
				m.logger.Warn("Failed to refresh presence", "username", sess.Username, "error", err)
			}
		}

		c.Next()
	}
}

// RequireAdmin gates the admin console. Must run after RequireSession.
func (m *SessionMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ctxIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Admin access required"})
			return
		}
		c.Next()
	}
}
