package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-salon-backend/internal/auth"
	"github.com/tbourn/go-salon-backend/internal/services"
)

const callerKey = "caller"

// TokenParser verifies a bearer token. *auth.TokenMaker implements it.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Authenticate resolves an "Authorization: Bearer <token>" header into a
// services.Caller stored on the context. Requests without the header pass
// through anonymously; a present but invalid token is rejected with 401.
func Authenticate(p TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := strings.TrimSpace(c.GetHeader("Authorization"))
		if h == "" {
			c.Next()
			return
		}
		scheme, token, found := strings.Cut(h, " ")
		token = strings.TrimSpace(token)
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abortUnauthorized(c, "malformed Authorization header")
			return
		}
		claims, err := p.Parse(token)
		if err != nil {
			LoggerFrom(c).Debug().Err(err).Msg("token rejected")
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		c.Set(callerKey, services.Caller{ID: claims.Subject, IsSalonOwner: claims.IsSalonOwner})
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CallerFrom(c); !ok {
			abortUnauthorized(c, "authentication required")
			return
		}
		c.Next()
	}
}

// CallerFrom returns the authenticated caller, if any.
func CallerFrom(c *gin.Context) (services.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return services.Caller{}, false
	}
	caller, ok := v.(services.Caller)
	return caller, ok && caller.ID != ""
}

// SetCaller stores caller on the context. Used by tests and internal tooling.
func SetCaller(c *gin.Context, caller services.Caller) {
	c.Set(callerKey, caller)
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": RequestIDFrom(c),
		"code":       "unauthorized",
		"message":    msg,
	})
}
