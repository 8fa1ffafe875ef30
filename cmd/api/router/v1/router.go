package v1

import (
	"github.com/gin-gonic/gin"

	"crm-chat/internal/identity"
	httpHandler "crm-chat/internal/pkg/chat/presentation/http"
	"crm-chat/internal/pkg/chat/presentation/middleware"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1. Every chat
// route sits behind the auth middleware.
func RegisterRoutes(r *gin.Engine, resolver identity.Resolver, deps httpHandler.Deps) {
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RequireAuth(resolver))
	httpHandler.RegisterRoutes(v1, deps)
}
