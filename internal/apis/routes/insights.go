package routes

import (
	"clave-insights/internal/di"
	"log"

	"github.com/gin-gonic/gin"
)

func SetupInsightRoutes(router *gin.Engine) {
	insightHandler, err := di.GetInsightHandler()
	if err != nil {
		log.Fatalf("Failed to get insight handler: %v", err)
	}

	api := router.Group("/api/insights")
	{
		// SSE endpoint: streams progress, insight chunks, and the result
		api.POST("/ask", insightHandler.Ask)
		api.GET("/interactions", insightHandler.ListInteractions)
	}
}
