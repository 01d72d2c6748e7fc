package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iitp-cep/portal-service/internal/services"
	"github.com/iitp-cep/portal-service/internal/session"
	"github.com/iitp-cep/portal-service/internal/utils"
)

type stubAuthService struct {
	heartbeats   []string
	heartbeatErr error
}

func (s *stubAuthService) Login(ctx context.Context, req *services.LoginRequest) (*services.LoginResult, error) {
	return nil, nil
}

func (s *stubAuthService) Logout(ctx context.Context, sessionID, username string) error {
	return nil
}

func (s *stubAuthService) Heartbeat(ctx context.Context, username string) error {
	s.heartbeats = append(s.heartbeats, username)
	return s.heartbeatErr
}

func newSessionTestRouter(t *testing.T) (*gin.Engine, *session.Store, *stubAuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	sessions := session.NewStore(client, time.Hour)
	auth := &stubAuthService{}
	mw := NewSessionMiddleware(sessions, auth, "portal_session", utils.NewDevelopmentLogger())

	router := gin.New()
	router.GET("/me", mw.RequireSession(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"username": c.GetString(ctxUsername),
			"is_admin": c.GetBool(ctxIsAdmin),
		})
	})
	router.GET("/admin", mw.RequireSession(), mw.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router, sessions, auth
}

func TestRequireSessionWithoutCookie(t *testing.T) {
	router, _, _ := newSessionTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireSessionWithUnknownCookie(t *testing.T) {
	router, _, _ := newSessionTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: "expired"})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Session expired")
}

func TestRequireSessionPopulatesContext(t *testing.T) {
	router, sessions, auth := newSessionTestRouter(t)

	sessionID, err := sessions.Create(context.Background(), "alice", false)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: sessionID})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
	assert.Equal(t, []string{"alice"}, auth.heartbeats, "each hit refreshes presence")
}

func TestRequireSessionEvictsBannedUser(t *testing.T) {
	router, sessions, auth := newSessionTestRouter(t)
	auth.heartbeatErr = services.ErrUserBanned

	sessionID, err := sessions.Create(context.Background(), "mallory", false)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: sessionID})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Account banned")

	// The ban flushes the session rather than waiting for TTL expiry.
	_, err = sessions.Get(context.Background(), sessionID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestRequireSessionWhileOffline(t *testing.T) {
	router, sessions, auth := newSessionTestRouter(t)
	auth.heartbeatErr = services.ErrSystemOffline

	memberID, err := sessions.Create(context.Background(), "bob", false)
	require.NoError(t, err)
	adminID, err := sessions.Create(context.Background(), "root", true)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: memberID})
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Portal is offline")

	// Admins stay in so they can bring the portal back.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: adminID})
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	router, sessions, _ := newSessionTestRouter(t)

	memberID, err := sessions.Create(context.Background(), "bob", false)
	require.NoError(t, err)
	adminID, err := sessions.Create(context.Background(), "root", true)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: memberID})
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: adminID})
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
