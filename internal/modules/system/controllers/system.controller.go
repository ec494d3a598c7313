package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/system/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/system/services"
)

type SystemController struct {
	service *services.SystemService
}

func NewSystemController(service *services.SystemService) *SystemController {
	return &SystemController{
		service: service,
	}
}

// GetSystemInfo - GET /api/v1/system/info
func (c *SystemController) GetSystemInfo(ctx *gin.Context) {
	systemInfo, err := c.service.GetSystemInfo(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error": "Erreur récupération informations système",
			"details": map[string]interface{}{
				"code":          "STORE_ERROR",
				"error_message": err.Error(),
			},
		})
		return
	}

	ctx.JSON(http.StatusOK, dto.StandardAPIResponse{
		Success: true,
		Data:    systemInfo,
		Alertes: c.service.GenerateAlertes(systemInfo),
	})
}
