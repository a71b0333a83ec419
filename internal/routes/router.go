package routes

import (
	"todo-bot/internal/controller"
	"todo-bot/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Router builds the HTTP handler: probes plus the signed webhook route.
func Router(webhookPath string, webhook *controller.Webhook) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// Health for load balancers and K8s probes
	router.GET("/health", controller.Health)
	router.GET("/ready", webhook.Ready)

	// Platform events: signature required
	router.POST(webhookPath, middleware.WebhookSignature(webhook.Secret), webhook.Receive)

	return router
}
