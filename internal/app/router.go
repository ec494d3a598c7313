package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/app/config"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/kvstore"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/logger"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/middleware/security"
)

// NewRouter moteur gin; les routes métier sont enregistrées par les modules (fx.Invoke)
func NewRouter(cfg *config.Config, lm *logger.LoggerMiddleware, corsHandler security.CORSHandler, store kvstore.Store) *gin.Engine {
	configureGinMode(cfg.Environment)

	// Create router without default middleware for custom configuration
	r := gin.New()

	r.Use(lm.GinRecovery())
	r.Use(lm.GinLogger())
	r.Use(gin.HandlerFunc(corsHandler))

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Magasin indisponible",
				"details": gin.H{
					"code":    "STORE_UNAVAILABLE",
					"backend": cfg.Store.Backend,
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"status":  "healthy",
				"backend": cfg.Store.Backend,
			},
		})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"status": "ready",
			},
		})
	})

	return r
}

// configureGinMode configure le mode Gin selon l'environnement
func configureGinMode(environment string) {
	switch environment {
	case "docker":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
}
