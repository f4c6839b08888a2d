package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/folio-space/folio/internal/backend"
	"github.com/folio-space/folio/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// CookieName carries the session token for browser clients.
	CookieName = "folio_token"

	contextKeyState = "auth_state"
)

// Middleware builds the State of every request from the Authorization
// header or the session cookie and attaches caller details to the request
// context for the identity provider.
func Middleware(identity backend.Identity, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := backend.WithClient(c.Request.Context(), backend.ClientInfo{
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)

		state := NewState(identity, logger)
		state.Init(ctx, ExtractToken(c))
		c.Set(contextKeyState, state)
		c.Next()
	}
}

// FromContext returns the request State. Requests that bypassed Middleware
// get an unauthenticated state.
func FromContext(c *gin.Context) *State {
	if v, ok := c.Get(contextKeyState); ok {
		if s, ok := v.(*State); ok {
			return s
		}
	}
	s := NewState(noIdentity{}, nil)
	s.Init(c.Request.Context(), "")
	return s
}

// noIdentity backs states built outside Middleware.
type noIdentity struct{}

func (noIdentity) SignIn(context.Context, string, string) (*backend.Session, error) {
	return nil, backend.ErrInvalidCredentials
}

func (noIdentity) SignOut(context.Context, string) error { return backend.ErrNoSession }

func (noIdentity) GetSession(context.Context, string) (*backend.Session, error) {
	return nil, backend.ErrNoSession
}

// RequireAPI answers 401 to unauthenticated requests.
func RequireAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !FromContext(c).Authenticated() {
			response.Unauthorized(c)
			return
		}
		c.Next()
	}
}

// RequirePage redirects unauthenticated requests to loginPath, remembering
// where they were headed.
func RequirePage(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !FromContext(c).Authenticated() {
			target := loginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ExtractToken reads the bearer token, falling back to the session cookie.
func ExtractToken(c *gin.Context) string {
	if token := NormalizeToken(c.GetHeader("Authorization")); token != "" {
		return token
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}

// SetCookie stores the session token for browser clients.
func SetCookie(c *gin.Context, sess *backend.Session, secure bool) {
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, sess.Token, maxAge, "/", "", secure, true)
}

// ClearCookie removes the session cookie.
func ClearCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}
