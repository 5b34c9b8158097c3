package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ytdash/ytdash/backend/go-services/internal/models"
	"github.com/ytdash/ytdash/backend/go-services/internal/sessions"
	"github.com/ytdash/ytdash/backend/go-services/pkg/logger"
)

// SessionIDKey is the gin context key holding the resolved session id.
const SessionIDKey = "sessionID"

// SessionResolver is the part of sessions.Service the middleware needs.
type SessionResolver interface {
	ValidateSession(ctx context.Context, id string) (*sessions.Session, error)
	Touch(ctx context.Context, sess *sessions.Session) error
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Set writes the session cookie with a Max-Age of the session TTL.
func (cc CookieConfig) Set(c *gin.Context, value string) {
	cc.write(c, value, int(cc.TTL.Seconds()))
}

// Clear expires the session cookie on the client.
func (cc CookieConfig) Clear(c *gin.Context) {
	cc.write(c, "", -1)
}

func (cc CookieConfig) write(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cc.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Sessions resolves the session cookie, slides its expiry and attaches the
// session's identity to the request context. Requests without a valid
// session pass through unauthenticated; RequireAuth decides what to do
// with them.
func Sessions(res SessionResolver, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookie.Name)
		if err != nil || id == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		sess, err := res.ValidateSession(ctx, id)
		if err != nil {
			logger.Errorf("session lookup failed: %v", err)
			c.Next()
			return
		}
		if sess == nil {
			cookie.Clear(c)
			c.Next()
			return
		}
		if err := res.Touch(ctx, sess); err != nil {
			logger.Warnf("session touch failed: %v", err)
		} else {
			cookie.Set(c, sess.ID)
		}
		c.Set(SessionIDKey, sess.ID)
		c.Request = c.Request.WithContext(models.ContextWithIdentity(ctx, sess.Identity()))
		c.Next()
	}
}
