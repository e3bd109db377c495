package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"taskplanner/internal/apperr"
	"taskplanner/internal/identity"
)

const identityKey = "identity"

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", apperr.Unauthorized("authorization header is required")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", apperr.Unauthorized("authorization header must use a bearer token")
	}
	return strings.TrimPrefix(authHeader, "Bearer "), nil
}

// RequireIdentity verifies the bearer token against the identity
// gateway and stores the resolved identity in the request context.
// Every request verifies remotely; there is no caching.
func RequireIdentity(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := BearerToken(c)
		if err != nil {
			abortWithError(c, err)
			return
		}

		ident, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(identityKey, ident)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by RequireIdentity.
func IdentityFrom(c *gin.Context) (identity.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return identity.Identity{}, false
	}
	ident, ok := value.(identity.Identity)
	return ident, ok
}

func abortWithError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal || kind == apperr.KindUnavailable {
		log.Printf("identity verification failed: %v", err)
	}

	message := "internal server error"
	var appErr *apperr.Error
	if errors.As(err, &appErr) && kind != apperr.KindInternal {
		message = appErr.Message
	}

	c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{
		"error":   apperr.Code(kind),
		"message": message,
	})
}
