package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/errs"
	"github.com/pageza/foodgram/backend/internal/types"
)

const actorKey = "actor"

// TokenValidator resolves a bearer token to the actor it was issued for.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.Actor, error)
}

// RequireAuth rejects requests without a valid token.
func RequireAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortWith(c, errs.ErrUnauthenticated)
			return
		}
		if !authenticate(c, validator, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuth sets the actor when a token is supplied and leaves the request
// anonymous otherwise. A token that is present but invalid is still rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if !authenticate(c, validator, token) {
				return
			}
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, validator TokenValidator, token string) bool {
	actor, err := validator.ValidateToken(c.Request.Context(), token)
	if err != nil {
		abortWith(c, err)
		return false
	}
	SetActor(c, *actor)
	return true
}

// bearerToken accepts both "Bearer <token>" and "Token <token>".
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || (!strings.EqualFold(scheme, "Bearer") && !strings.EqualFold(scheme, "Token")) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// SetActor stores the requester on the gin context.
func SetActor(c *gin.Context, actor types.Actor) {
	c.Set(actorKey, actor)
	c.Set("user_id", actor.ID)
}

// ActorFrom returns the requester, or the anonymous actor when none is set.
func ActorFrom(c *gin.Context) types.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(types.Actor); ok {
			return actor
		}
	}
	return types.Actor{}
}

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
