package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/projectshelf/internal/domain/auth"
)

const authClaimsKey = "auth_claims"

type claimsContextKey struct{}

// setClaims stores the verified claims on the gin context and on the request
// context so code below the transport can read them too.
func setClaims(c *gin.Context, claims auth.Claims) {
	c.Set(authClaimsKey, claims)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), claimsContextKey{}, claims))
}

func getClaims(c *gin.Context) (auth.Claims, bool) {
	value, ok := c.Get(authClaimsKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := value.(auth.Claims)
	return claims, ok
}

// ClaimsFromContext returns the caller identity attached by the session middleware.
func ClaimsFromContext(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(auth.Claims)
	return claims, ok
}
