package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	utils "secureweb-backend/shared/utils/auth"
)

const identityKey = "identity"

// AuthMiddleware resolves the Authorization header into an Identity and
// stores it in the request context. A missing, malformed, expired or
// revoked token leaves the request unauthenticated; whether that matters
// is decided per route by RequireAuth.
func AuthMiddleware(tokens *utils.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := tokens.ResolveJWT(c.Request.Context(), c.GetHeader("Authorization"))
		if identity != nil {
			c.Set(identityKey, identity)
			c.Set("userID", identity.ID)
		}
		c.Next()
	}
}

// RequireAuth rejects requests that carry no resolved identity
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity attached by AuthMiddleware
func CurrentIdentity(c *gin.Context) (*utils.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*utils.Identity)
	return identity, ok
}
