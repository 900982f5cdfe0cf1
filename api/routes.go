package api

import (
	"github.com/gin-gonic/gin"

	"androidmirror/config"
	"androidmirror/service"
)

func SetupRoutes(router *gin.Engine, dm *service.DeviceManager,
	sm *service.SessionManager, store *config.Store, wsHub *WebSocketHub) {
	// Enable CORS
	router.Use(CORSMiddleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		devices := api.Group("/devices")
		{
			devices.GET("", func(c *gin.Context) {
				GetDevices(c, dm)
			})
			devices.POST("/scan", func(c *gin.Context) {
				ScanDevices(c, dm)
			})
			devices.POST("/:id/session", func(c *gin.Context) {
				StartSession(c, dm, sm)
			})
			devices.DELETE("/:id/session", func(c *gin.Context) {
				StopSession(c, sm)
			})
			devices.GET("/:id/settings", func(c *gin.Context) {
				GetInputSettings(c, store)
			})
			devices.PUT("/:id/settings", func(c *gin.Context) {
				PutInputSettings(c, store)
			})
			devices.GET("/:id/touchmap", func(c *gin.Context) {
				GetTouchmap(c, sm)
			})
			devices.POST("/:id/touchmap", func(c *gin.Context) {
				LoadTouchmap(c, sm)
			})
			devices.DELETE("/:id/touchmap", func(c *gin.Context) {
				ClearTouchmap(c, sm)
			})
		}
	}

	// WebSocket route
	router.GET("/ws", func(c *gin.Context) {
		HandleWebSocket(wsHub, sm, c)
	})
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
