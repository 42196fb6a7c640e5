package main

import (
	"github.com/gin-gonic/gin"

	"github.com/thelocal/backend/internal/middleware"
	"github.com/thelocal/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/settings", svc.settingsHandler.Get)
		api.POST("/settings", svc.settingsHandler.Update)

		api.GET("/dashboard", svc.dashboardHandler.Get)
		api.PATCH("/system-settings", svc.dashboardHandler.UpdateSystemSettings)

		api.POST("/users", svc.userHandler.Create)
		api.PATCH("/users/:id", svc.userHandler.Update)
		api.DELETE("/users/:id", svc.userHandler.Delete)

		api.POST("/invites", svc.inviteHandler.Create)
		api.DELETE("/invites/:id", svc.inviteHandler.Delete)

		api.GET("/tailscale", svc.tailscaleHandler.Get)
		api.POST("/tailscale", svc.tailscaleHandler.Update)
		api.POST("/tailscale/verify", svc.tailscaleHandler.Verify)
		api.GET("/tailscale/peers", svc.tailscaleHandler.Peers)

		api.GET("/storage", svc.storageHandler.Get)

		api.POST("/tools/ping", svc.toolsHandler.Ping)
		api.GET("/tools/qr", svc.toolsHandler.QR)

		api.GET("/models/openai", svc.modelsHandler.OpenAI)
		api.GET("/models/ollama", svc.modelsHandler.Ollama)

		api.POST("/openai", svc.chatHandler.OpenAI)
		api.POST("/ollama", svc.chatHandler.Ollama)
	}
}
