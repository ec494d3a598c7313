package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LoggerMiddleware struct {
	logger *zap.Logger
}

var skipPaths = map[string]bool{"/health": true, "/ready": true}

// GinLogger journal d'accès structuré
func (lm *LoggerMiddleware) GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		if skipPaths[path] {
			return
		}

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if user := c.GetHeader("X-User-Id"); user != "" {
			fields = append(fields, zap.String("user", user))
		}
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			fields = append(fields, zap.String("error", msg))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			lm.logger.Error("requête", fields...)
		case status >= http.StatusBadRequest:
			lm.logger.Warn("requête", fields...)
		default:
			lm.logger.Info("requête", fields...)
		}
	}
}

// GinRecovery capture les panics et répond avec l'enveloppe d'erreur standard
func (lm *LoggerMiddleware) GinRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		lm.logger.Error("panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Stack("stack"),
		)

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Une erreur interne est survenue.",
			"details": gin.H{
				"code": "INTERNAL_ERROR",
			},
		})
	})
}
