package system

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/system/controllers"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/system/services"
)

// Module regroupe tous les providers du domaine System
var Module = fx.Options(
	fx.Provide(services.NewSystemService),
	fx.Provide(controllers.NewSystemController),
	fx.Invoke(RegisterSystemRoutes),
)

// RegisterSystemRoutes configure les routes Gin pour System
func RegisterSystemRoutes(r *gin.Engine, ctrl *controllers.SystemController) {
	api := r.Group("/api/v1/system")
	{
		api.GET("/info", ctrl.GetSystemInfo)
	}
}
