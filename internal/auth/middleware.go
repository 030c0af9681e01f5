package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"schoolportal/internal/users"
)

const identityKey = "identity"

// Resolver turns a session cookie value into an identity.
type Resolver interface {
	Resolve(ctx context.Context, token string) (Identity, error)
}

// Gate resolves the session cookie and stores the identity on the gin and request contexts.
// Requests without a valid session continue as anonymous.
func Gate(resolver Resolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id Identity
		if token, err := c.Cookie(cookieName); err == nil && token != "" {
			if resolved, err := resolver.Resolve(c.Request.Context(), token); err == nil {
				id = resolved
			}
		}
		c.Set(identityKey, id)
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// IdentityFrom returns the identity stored by Gate, or anonymous.
func IdentityFrom(c *gin.Context) Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return FromContext(c.Request.Context())
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return RequireRole()
}

// RequireRole allows only identities holding one of roles. Anonymous API calls get 401 and
// anonymous page loads are redirected to /login; a wrong role gets 403 either way.
func RequireRole(roles ...users.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := Authorize(IdentityFrom(c), roles...)
		switch {
		case err == nil:
			c.Next()
		case err == ErrAuthenticationRequired && IsAPI(c):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		case err == ErrAuthenticationRequired:
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
		case IsAPI(c):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Access Denied"})
		default:
			c.String(http.StatusForbidden, "Access Denied")
			c.Abort()
		}
	}
}

// IsAPI reports whether the request targets the JSON API.
func IsAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}
