package routes

import (
	"net/http"

	"tradewizard_backend/internal/handlers"
	"tradewizard_backend/internal/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterRoutes registers every HTTP route under /api/v1.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers, base *handlers.BaseHandler) {
	ginRouter.GET("/health", healthHandler(base))

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.UserHandler.RegisterRoutes(api)
		appHandlers.RobotHandler.RegisterRoutes(api)
		appHandlers.RobotRequestHandler.RegisterRoutes(api)
		appHandlers.PaymentHandler.RegisterRoutes(api)
		appHandlers.SubscriptionHandler.RegisterRoutes(api)
		appHandlers.NotificationHandler.RegisterRoutes(api)
		appHandlers.ChatHandler.RegisterRoutes(api)
	}

	logger.Info("routes registered", "prefix", "/api/v1")
}

// healthHandler pings the database pool that DBMiddleware put in the context.
func healthHandler(base *handlers.BaseHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := base.GetDB(c)
		if err := pingDB(db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func pingDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
