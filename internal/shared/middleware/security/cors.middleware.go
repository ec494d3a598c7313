package security

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/app/config"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/authz"
)

// CORSHandler type spécifique pour Fx
type CORSHandler gin.HandlerFunc

// CORSMiddleware configure les règles CORS du back-office
func CORSMiddleware(appConfig *config.Config) CORSHandler {
	corsConfig := appConfig.GetCORS()

	allowed := make(map[string]bool, len(corsConfig.AllowedOrigins))
	for _, origin := range corsConfig.AllowedOrigins {
		allowed[origin] = true
	}

	headers := append([]string{}, corsConfig.AllowedHeaders...)
	headers = append(headers, authz.HeaderUserID, authz.HeaderUserRole, "X-Request-Id")

	return CORSHandler(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowed["*"] || allowed[origin]
		},
		AllowMethods:     corsConfig.AllowedMethods,
		AllowHeaders:     headers,
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: corsConfig.AllowCredentials,
		MaxAge:           time.Duration(corsConfig.MaxAge) * time.Second,
	}))
}
