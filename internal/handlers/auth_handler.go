package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iitp-cep/portal-service/internal/services"
	"github.com/iitp-cep/portal-service/internal/utils"
)

// AuthHandler serves the portal gate: PIN login and logout.
type AuthHandler struct {
	BaseHandler
	authService services.AuthService
	cookieName  string
	sessionTTL  time.Duration
}

func NewAuthHandler(authService services.AuthService, cookieName string, sessionTTL time.Duration, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		cookieName:  cookieName,
		sessionTTL:  sessionTTL,
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	h.LogRequest(c, "Login attempt")

	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, result.SessionID, int(h.sessionTTL.Seconds()), "/", "", false, true)

	h.RespondWithSuccess(c, http.StatusOK, "Logged in", result)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := c.GetString(ctxSessionID)
	username := c.GetString(ctxUsername)

	if err := h.authService.Logout(c.Request.Context(), sessionID, username); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	h.RespondWithSuccess(c, http.StatusOK, "Logged out", nil)
}
