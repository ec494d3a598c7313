package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	dto "github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/back-office/catalogues/dto"
	coredto "github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/services"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/authz"
)

type GrilleController struct {
	grille    *services.GrilleService
	cells     *services.CellService
	validator *validator.Validate
}

func NewGrilleController(grille *services.GrilleService, cells *services.CellService) *GrilleController {
	return &GrilleController{
		grille:    grille,
		cells:     cells,
		validator: newValidator(),
	}
}

func cellKey(ctx *gin.Context) coredto.CellKey {
	return coredto.CellKey{
		GroupID: ctx.Param("groupId"),
		ActID:   ctx.Param("actId"),
		LevelID: ctx.Param("levelId"),
		Kind:    coredto.Kind(ctx.Param("kind")),
	}
}

func (c *GrilleController) GetGrille(ctx *gin.Context) {
	grille, err := c.grille.Grille(ctx.Request.Context(), ctx.Param("id"), ctx.Param("groupId"))
	if err != nil {
		respondError(ctx, err, "Erreur lors de la construction de la grille")
		return
	}
	success(ctx, http.StatusOK, grille)
}

func (c *GrilleController) ListCellules(ctx *gin.Context) {
	cells, err := c.cells.Cells(ctx.Request.Context(), ctx.Param("id"), ctx.Param("groupId"))
	if err != nil {
		respondError(ctx, err, "Erreur lors de la lecture des valeurs")
		return
	}
	success(ctx, http.StatusOK, cells)
}

// OpenCellule GET .../cellules/:actId/:levelId/:kind, brouillon prérempli
func (c *GrilleController) OpenCellule(ctx *gin.Context) {
	draft, err := c.cells.BeginEdit(ctx.Request.Context(), ctx.Param("id"), cellKey(ctx))
	if err != nil {
		respondError(ctx, err, "Erreur lors de l'ouverture de la cellule")
		return
	}
	out := dto.CellDraftResponse{Key: draft.Key, Exists: draft.Exists}
	if draft.Exists {
		out.Content = cellContent(draft.Content)
	}
	success(ctx, http.StatusOK, out)
}

// SaveCellule PUT .../cellules/:actId/:levelId/:kind; un contenu vide efface la valeur
func (c *GrilleController) SaveCellule(ctx *gin.Context) {
	var req dto.CellRequest
	if !bind(ctx, c.validator, &req) {
		return
	}
	content, err := cellInput(req)
	if err != nil {
		respondError(ctx, err, "")
		return
	}
	draft, err := c.cells.BeginEdit(ctx.Request.Context(), ctx.Param("id"), cellKey(ctx))
	if err != nil {
		respondError(ctx, err, "Erreur lors de l'ouverture de la cellule")
		return
	}
	draft.Content = content
	cell, err := c.cells.CommitEdit(ctx.Request.Context(), authz.UserFromContext(ctx), draft)
	if err != nil {
		respondError(ctx, err, "Erreur lors de l'enregistrement de la cellule")
		return
	}
	success(ctx, http.StatusOK, cell)
}

func (c *GrilleController) ClearCellule(ctx *gin.Context) {
	if err := c.cells.Clear(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"), cellKey(ctx)); err != nil {
		respondError(ctx, err, "Erreur lors de l'effacement de la cellule")
		return
	}
	success(ctx, http.StatusOK, gin.H{"key": cellKey(ctx).String()})
}
