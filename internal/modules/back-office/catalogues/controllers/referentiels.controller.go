package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	coredto "github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/queries"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/services"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/authz"
)

type ReferentielsController struct {
	service   *services.ReferentielService
	validator *validator.Validate
}

func NewReferentielsController(service *services.ReferentielService) *ReferentielsController {
	return &ReferentielsController{
		service:   service,
		validator: newValidator(),
	}
}

// ListReferentiels GET /referentiels?includeDeleted=true
func (c *ReferentielsController) ListReferentiels(ctx *gin.Context) {
	refs, err := c.service.Referentiels(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err, "Erreur lors de la lecture du référentiel")
		return
	}
	activeOnly := ctx.Query("includeDeleted") != "true"
	out := gin.H{}
	for _, key := range queries.ReferentielKeys {
		out[key], _ = services.Collection(refs, key, activeOnly)
	}
	success(ctx, http.StatusOK, out)
}

func (c *ReferentielsController) GetReferentiel(ctx *gin.Context) {
	key := ctx.Param("key")
	refs, err := c.service.Referentiels(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err, "Erreur lors de la lecture du référentiel")
		return
	}
	items, ok := services.Collection(refs, key, ctx.Query("includeDeleted") != "true")
	if !ok {
		respondError(ctx, coredto.NewNotFoundError("référentiel", key), "")
		return
	}
	success(ctx, http.StatusOK, items)
}

func (c *ReferentielsController) ListValueTypes(ctx *gin.Context) {
	types, err := c.service.ValueTypes(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err, "Erreur lors de la lecture des types de valeur")
		return
	}
	success(ctx, http.StatusOK, types)
}

// ReplaceReferentiel PUT /referentiels/:key, le corps est la collection complète
func (c *ReferentielsController) ReplaceReferentiel(ctx *gin.Context) {
	key := ctx.Param("key")
	raw, err := ctx.GetRawData()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Corps de requête illisible",
			"details": map[string]interface{}{
				"code":    "VALIDATION_ERROR",
				"message": err.Error(),
			},
		})
		return
	}
	refs, err := c.service.Replace(ctx.Request.Context(), authz.UserFromContext(ctx), key, raw)
	if err != nil {
		respondError(ctx, err, "Erreur lors du remplacement du référentiel")
		return
	}
	items, _ := services.Collection(refs, key, false)
	success(ctx, http.StatusOK, items)
}

func (c *ReferentielsController) MoveCategory(ctx *gin.Context) {
	dir, ok := direction(ctx, c.validator)
	if !ok {
		return
	}
	moved, err := c.service.MoveCategory(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"), dir)
	if err != nil {
		respondError(ctx, err, "Erreur lors du déplacement de la catégorie")
		return
	}
	success(ctx, http.StatusOK, gin.H{"moved": moved})
}

func (c *ReferentielsController) MoveAct(ctx *gin.Context) {
	dir, ok := direction(ctx, c.validator)
	if !ok {
		return
	}
	moved, err := c.service.MoveAct(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"), dir)
	if err != nil {
		respondError(ctx, err, "Erreur lors du déplacement de l'acte")
		return
	}
	success(ctx, http.StatusOK, gin.H{"moved": moved})
}
