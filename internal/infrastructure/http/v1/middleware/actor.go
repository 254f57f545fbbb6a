package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"velora/internal/core/appcontext"
	"velora/internal/core/apperror"
)

// TokenValidator verifies access tokens and extracts the actor.
type TokenValidator interface {
	ValidateToken(tokenString string) (*appcontext.Actor, error)
}

// Actor validates the bearer token and attaches the actor identity to the
// request context. Mutating operations record it for audit attribution.
func Actor(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		actor, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := appcontext.WithActor(c.Request.Context(), actor)
		c.Request = c.Request.WithContext(ctx)
		c.Set("user_id", actor.UserID)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
