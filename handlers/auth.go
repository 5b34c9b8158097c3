package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ytdash/ytdash/backend/go-services/internal/config"
	"github.com/ytdash/ytdash/backend/go-services/internal/models"
	"github.com/ytdash/ytdash/backend/go-services/internal/sessions"
	"github.com/ytdash/ytdash/backend/go-services/internal/tokens"
	"github.com/ytdash/ytdash/backend/go-services/pkg/logger"
	"github.com/ytdash/ytdash/backend/go-services/pkg/metrics"
	"github.com/ytdash/ytdash/backend/go-services/pkg/middleware"
)

const stateCookieName = "oauth_state"

// LoginProvider is the identity provider side of the login flow.
type LoginProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*models.Identity, error)
}

// SessionManager creates and destroys server-side sessions.
type SessionManager interface {
	CreateSession(ctx context.Context, id *models.Identity) (*sessions.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg      *config.Config
	provider LoginProvider
	sessions SessionManager
	cookie   middleware.CookieConfig
}

func NewAuthHandler(cfg *config.Config, p LoginProvider, s SessionManager, cookie middleware.CookieConfig) *AuthHandler {
	return &AuthHandler{cfg: cfg, provider: p, sessions: s, cookie: cookie}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.GET("/google", h.Login)
	a.GET("/google/callback", h.Callback)
	a.GET("/logout", h.Logout)
	a.GET("/status", h.Status)
}

// Login starts the Google consent flow. The state parameter is a signed
// token bound to a nonce held in a short-lived cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	nonce, err := tokens.NewNonce()
	if err != nil {
		logger.Errorf("login: nonce: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}
	state, err := tokens.GenerateState(h.cfg.Session.Secret, nonce, h.cfg.Session.StateTTL)
	if err != nil {
		logger.Errorf("login: state token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}
	h.setStateCookie(c, nonce, int(h.cfg.Session.StateTTL.Seconds()))
	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

// Callback completes the flow and redirects to the dashboard. Every
// failure redirects to the frontend root instead.
func (h *AuthHandler) Callback(c *gin.Context) {
	failure := h.cfg.Frontend.URL
	if failure == "" {
		failure = "/"
	}
	fail := func(format string, v ...interface{}) {
		logger.Warnf("oauth callback: "+format, v...)
		c.Redirect(http.StatusFound, failure)
	}

	nonce, _ := c.Cookie(stateCookieName)
	h.setStateCookie(c, "", -1)

	if e := c.Query("error"); e != "" {
		fail("provider returned error %q", e)
		return
	}
	if nonce == "" {
		fail("missing state cookie")
		return
	}
	if err := tokens.VerifyState(h.cfg.Session.Secret, c.Query("state"), nonce); err != nil {
		fail("%v", err)
		return
	}
	code := c.Query("code")
	if code == "" {
		fail("missing code")
		return
	}

	ident, err := h.provider.Exchange(c.Request.Context(), code)
	if err != nil {
		fail("exchange: %v", err)
		return
	}
	// a fresh login never reuses the session id presented with the request
	if old := c.GetString(middleware.SessionIDKey); old != "" {
		if err := h.sessions.DeleteSession(c.Request.Context(), old); err != nil {
			logger.Warnf("oauth callback: drop previous session: %v", err)
		}
	}
	sess, err := h.sessions.CreateSession(c.Request.Context(), ident)
	if err != nil {
		fail("create session: %v", err)
		return
	}
	metrics.SessionsCreated.Inc()
	h.cookie.Set(c, sess.ID)
	logger.Infof("user %s signed in", ident.Profile.ID)
	c.Redirect(http.StatusFound, h.cfg.Frontend.URL+"/dashboard")
}

// Logout destroys the server-side session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	sid := c.GetString(middleware.SessionIDKey)
	if sid == "" {
		sid, _ = c.Cookie(h.cookie.Name)
	}
	if err := h.sessions.DeleteSession(c.Request.Context(), sid); err != nil {
		logger.Errorf("logout: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}
	h.cookie.Clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) Status(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok || !id.Valid() {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": id.Profile})
}

func (h *AuthHandler) setStateCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     stateCookieName,
		Value:    value,
		Path:     "/auth",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
