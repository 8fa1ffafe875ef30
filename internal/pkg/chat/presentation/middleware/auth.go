package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"crm-chat/internal/identity"
)

// ContextUserID is the gin context key under which the authenticated user id
// is stored.
const ContextUserID = "auth_user_id"

// ContextRole is the gin context key for the resolved role.
const ContextRole = "auth_role"

// RequireAuth extracts the bearer credential, resolves it, and stores the
// resulting identity in the request context. Requests without a valid
// credential never reach a handler.
func RequireAuth(resolver identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := bearerToken(c.GetHeader("Authorization"))
		if credential == "" {
			// Websocket clients cannot set headers from browsers; accept the
			// credential as a query parameter on upgrade requests only.
			if websocketUpgrade(c.Request) {
				credential = c.Query("token")
			}
		}

		id, err := resolver.Resolve(c.Request.Context(), credential)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":  "UNAUTHORIZED",
				"error": "invalid or missing credential",
			})
			return
		}

		c.Set(ContextUserID, id.UserID)
		c.Set(ContextRole, id.Role)
		c.Next()
	}
}

// UserID reads the authenticated user id set by RequireAuth.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func websocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
