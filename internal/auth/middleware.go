package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// AnonymousActor is recorded when no valid bearer token accompanies a
// request.
const AnonymousActor = "anonymous"

// ActorFromToken resolves the audit actor from an optional Authorization
// header. Endpoints stay open; the token only attributes who did what.
func ActorFromToken(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			if claims, err := Parse(token, signingKey, issuer); err == nil && claims.Subject != "" {
				c.Set(actorKey, claims.Subject)
			}
		}
		c.Next()
	}
}

// Actor returns the resolved actor for the request.
func Actor(c *gin.Context) string {
	if v, ok := c.Get(actorKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return AnonymousActor
}
