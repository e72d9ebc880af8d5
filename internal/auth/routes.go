package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes registers Auth routes
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, devTokens bool) {
	authGroup := r.Group("/auth")
	{
		authGroup.GET("/ping", handler.Ping)
		authGroup.GET("/me", Middleware(handler.tokens), handler.Me)
		if devTokens {
			authGroup.POST("/dev-token", handler.IssueDevToken)
		}
	}
}
