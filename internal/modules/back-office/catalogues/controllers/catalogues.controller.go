package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	dto "github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/back-office/catalogues/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/services"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/authz"
)

type CataloguesController struct {
	service   *services.CatalogueService
	validator *validator.Validate
}

func NewCataloguesController(service *services.CatalogueService) *CataloguesController {
	return &CataloguesController{
		service:   service,
		validator: newValidator(),
	}
}

func catalogueInput(req dto.CatalogueRequest) services.CatalogueInput {
	return services.CatalogueInput{
		OfferID:              req.OfferID,
		Risk:                 req.Risk,
		Year:                 req.Year,
		Version:              req.Version,
		Status:               req.Status,
		ValidFrom:            req.ValidFrom,
		ValidTo:              req.ValidTo,
		AllowMultipleNiveaux: req.AllowMultipleNiveaux,
		DefaultNiveauSetID:   req.DefaultNiveauSetID,
		CatPersonnelIDs:      req.CatPersonnelIDs,
	}
}

func (c *CataloguesController) ListCatalogues(ctx *gin.Context) {
	catalogues, err := c.service.List(ctx.Request.Context(), ctx.Query("includeDeleted") == "true")
	if err != nil {
		respondError(ctx, err, "Erreur lors de la lecture des catalogues")
		return
	}
	success(ctx, http.StatusOK, catalogues)
}

func (c *CataloguesController) GetCatalogue(ctx *gin.Context) {
	catalogue, err := c.service.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err, "Erreur lors de la lecture du catalogue")
		return
	}
	success(ctx, http.StatusOK, catalogue)
}

func (c *CataloguesController) CreateCatalogue(ctx *gin.Context) {
	var req dto.CatalogueRequest
	if !bind(ctx, c.validator, &req) {
		return
	}
	catalogue, err := c.service.Create(ctx.Request.Context(), authz.UserFromContext(ctx), catalogueInput(req))
	if err != nil {
		respondError(ctx, err, "Erreur lors de la création du catalogue")
		return
	}
	success(ctx, http.StatusCreated, catalogue)
}

func (c *CataloguesController) UpdateCatalogue(ctx *gin.Context) {
	var req dto.CatalogueRequest
	if !bind(ctx, c.validator, &req) {
		return
	}
	catalogue, err := c.service.Update(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"), catalogueInput(req))
	if err != nil {
		respondError(ctx, err, "Erreur lors de la modification du catalogue")
		return
	}
	success(ctx, http.StatusOK, catalogue)
}

func (c *CataloguesController) DeleteCatalogue(ctx *gin.Context) {
	if err := c.service.Delete(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id")); err != nil {
		respondError(ctx, err, "Erreur lors de la suppression du catalogue")
		return
	}
	success(ctx, http.StatusOK, gin.H{"id": ctx.Param("id")})
}

func (c *CataloguesController) RestoreCatalogue(ctx *gin.Context) {
	catalogue, err := c.service.Restore(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err, "Erreur lors de la restauration du catalogue")
		return
	}
	success(ctx, http.StatusOK, catalogue)
}

func (c *CataloguesController) ExportCatalogue(ctx *gin.Context) {
	export, err := c.service.Export(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err, "Erreur lors de l'export du catalogue")
		return
	}
	success(ctx, http.StatusOK, export)
}

func (c *CataloguesController) ListModules(ctx *gin.Context) {
	modules, err := c.service.Modules(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err, "Erreur lors de la lecture des modules")
		return
	}
	success(ctx, http.StatusOK, modules)
}

func (c *CataloguesController) AddModule(ctx *gin.Context) {
	var req dto.ModuleRequest
	if !bind(ctx, c.validator, &req) {
		return
	}
	module, err := c.service.AddModule(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"), req.ModuleID, req.CategoryIDs)
	if err != nil {
		respondError(ctx, err, "Erreur lors de l'ajout du module")
		return
	}
	success(ctx, http.StatusCreated, module)
}

func (c *CataloguesController) UpdateModule(ctx *gin.Context) {
	var req dto.ModuleCategoriesRequest
	if !bind(ctx, c.validator, &req) {
		return
	}
	module, err := c.service.UpdateModuleCategories(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"), ctx.Param("moduleId"), req.CategoryIDs)
	if err != nil {
		respondError(ctx, err, "Erreur lors de la modification du module")
		return
	}
	success(ctx, http.StatusOK, module)
}

func (c *CataloguesController) RemoveModule(ctx *gin.Context) {
	if err := c.service.RemoveModule(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"), ctx.Param("moduleId")); err != nil {
		respondError(ctx, err, "Erreur lors du retrait du module")
		return
	}
	success(ctx, http.StatusOK, gin.H{"moduleId": ctx.Param("moduleId")})
}

func (c *CataloguesController) MoveModule(ctx *gin.Context) {
	dir, ok := direction(ctx, c.validator)
	if !ok {
		return
	}
	moved, err := c.service.MoveModule(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"), ctx.Param("moduleId"), dir)
	if err != nil {
		respondError(ctx, err, "Erreur lors du déplacement du module")
		return
	}
	success(ctx, http.StatusOK, gin.H{"moved": moved})
}
