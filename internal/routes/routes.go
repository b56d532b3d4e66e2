package routes

import (
	"dealflow_backend/internal/handlers"
	"dealflow_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the HTTP API under /api/v1.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers) {
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.HealthHandler.RegisterRoutes(api)
		appHandlers.MatchingHandler.RegisterRoutes(api)
		appHandlers.AvailabilityHandler.RegisterRoutes(api)
		appHandlers.CalendarHandler.RegisterRoutes(api)
		appHandlers.SchedulingHandler.RegisterRoutes(api)
		appHandlers.MeetingHandler.RegisterRoutes(api)
		appHandlers.NotificationHandler.RegisterRoutes(api)
	}

	logger.Info("HTTP routes registered", "routes", len(ginRouter.Routes()))
}
