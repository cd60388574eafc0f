package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/walletcore/wallet-engine/pkg/jsonresponse"
)

// ActorHeaderKey carries the identity every mutation is attributed to in the
// audit fields.
const ActorHeaderKey = "X-Actor"

// ActorContextKey is the gin context key the resolved actor is stored under.
const ActorContextKey = "actor"

// ErrActorNotFound indicates a mutating request without an actor identity.
var ErrActorNotFound = errors.New("X-Actor header is not provided")

// Actor requires the X-Actor header and stores it for handlers to attribute
// audit fields with.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader(ActorHeaderKey)
		if actor == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, jsonresponse.Error(ErrActorNotFound))
			return
		}

		c.Set(ActorContextKey, actor)
		c.Next()
	}
}

// ActorFromContext returns the actor stored by the Actor middleware.
func ActorFromContext(c *gin.Context) string {
	return c.GetString(ActorContextKey)
}
