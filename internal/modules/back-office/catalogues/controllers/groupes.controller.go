package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	dto "github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/back-office/catalogues/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/services"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/authz"
)

type GroupesController struct {
	service   *services.GroupService
	validator *validator.Validate
}

func NewGroupesController(service *services.GroupService) *GroupesController {
	return &GroupesController{
		service:   service,
		validator: newValidator(),
	}
}

func groupInput(req dto.GroupRequest) services.GroupInput {
	return services.GroupInput{
		ModuleID:               req.ModuleID,
		Nom:                    req.Nom,
		Priorite:               req.Priorite,
		SelectionType:          req.SelectionType,
		CategorySelectionTypes: req.CategorySelectionTypes,
		NiveauSetBaseID:        req.NiveauSetBaseID,
		NiveauSetSurcoID:       req.NiveauSetSurcoID,
		SubItems:               req.SubItems,
	}
}

// ListGroupes GET /catalogues/:id/groupes?moduleId=
func (c *GroupesController) ListGroupes(ctx *gin.Context) {
	groups, err := c.service.List(ctx.Request.Context(), ctx.Param("id"), ctx.Query("moduleId"))
	if err != nil {
		respondError(ctx, err, "Erreur lors de la lecture des groupes")
		return
	}
	success(ctx, http.StatusOK, groups)
}

func (c *GroupesController) GetGroupe(ctx *gin.Context) {
	group, err := c.service.Get(ctx.Request.Context(), ctx.Param("id"), ctx.Param("groupId"))
	if err != nil {
		respondError(ctx, err, "Erreur lors de la lecture du groupe")
		return
	}
	success(ctx, http.StatusOK, group)
}

func (c *GroupesController) CreateGroupe(ctx *gin.Context) {
	var req dto.GroupRequest
	if !bind(ctx, c.validator, &req) {
		return
	}
	group, err := c.service.Create(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"), groupInput(req))
	if err != nil {
		respondError(ctx, err, "Erreur lors de la création du groupe")
		return
	}
	success(ctx, http.StatusCreated, group)
}

func (c *GroupesController) UpdateGroupe(ctx *gin.Context) {
	var req dto.GroupRequest
	if !bind(ctx, c.validator, &req) {
		return
	}
	group, err := c.service.Update(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"), ctx.Param("groupId"), groupInput(req))
	if err != nil {
		respondError(ctx, err, "Erreur lors de la modification du groupe")
		return
	}
	success(ctx, http.StatusOK, group)
}

func (c *GroupesController) DeleteGroupe(ctx *gin.Context) {
	if err := c.service.Delete(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"), ctx.Param("groupId")); err != nil {
		respondError(ctx, err, "Erreur lors de la suppression du groupe")
		return
	}
	success(ctx, http.StatusOK, gin.H{"id": ctx.Param("groupId")})
}

func (c *GroupesController) MoveGroupe(ctx *gin.Context) {
	dir, ok := direction(ctx, c.validator)
	if !ok {
		return
	}
	moved, err := c.service.Move(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"), ctx.Param("groupId"), dir)
	if err != nil {
		respondError(ctx, err, "Erreur lors du déplacement du groupe")
		return
	}
	success(ctx, http.StatusOK, gin.H{"moved": moved})
}

func (c *GroupesController) ListMembres(ctx *gin.Context) {
	members, err := c.service.Members(ctx.Request.Context(), ctx.Param("id"), ctx.Param("groupId"))
	if err != nil {
		respondError(ctx, err, "Erreur lors de la lecture des actes du groupe")
		return
	}
	success(ctx, http.StatusOK, members)
}

func (c *GroupesController) SetMembres(ctx *gin.Context) {
	var req dto.MembersRequest
	if !bind(ctx, c.validator, &req) {
		return
	}
	members, err := c.service.SetMembers(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"), ctx.Param("groupId"), req.ActIDs)
	if err != nil {
		respondError(ctx, err, "Erreur lors de la mise à jour des actes du groupe")
		return
	}
	success(ctx, http.StatusOK, members)
}

func (c *GroupesController) MoveMembre(ctx *gin.Context) {
	dir, ok := direction(ctx, c.validator)
	if !ok {
		return
	}
	moved, err := c.service.MoveMember(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"), ctx.Param("groupId"), ctx.Param("actId"), dir)
	if err != nil {
		respondError(ctx, err, "Erreur lors du déplacement de l'acte")
		return
	}
	success(ctx, http.StatusOK, gin.H{"moved": moved})
}

func (c *GroupesController) MoveCategorie(ctx *gin.Context) {
	dir, ok := direction(ctx, c.validator)
	if !ok {
		return
	}
	moved, err := c.service.MoveCategory(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"), ctx.Param("groupId"), ctx.Param("categoryId"), dir)
	if err != nil {
		respondError(ctx, err, "Erreur lors du déplacement de la catégorie")
		return
	}
	success(ctx, http.StatusOK, gin.H{"moved": moved})
}

func (c *GroupesController) ListLibelles(ctx *gin.Context) {
	buckets, err := c.service.Labels(ctx.Request.Context(), ctx.Param("id"), ctx.Param("groupId"), ctx.Param("categoryId"))
	if err != nil {
		respondError(ctx, err, "Erreur lors de la lecture des libellés")
		return
	}
	success(ctx, http.StatusOK, buckets)
}

func (c *GroupesController) CreateLibelle(ctx *gin.Context) {
	var req dto.LabelRequest
	if !bind(ctx, c.validator, &req) {
		return
	}
	label, err := c.service.CreateLabel(ctx.Request.Context(), authz.UserFromContext(ctx),
		ctx.Param("id"), ctx.Param("groupId"), ctx.Param("categoryId"), req.Libelle, req.ActIDs)
	if err != nil {
		respondError(ctx, err, "Erreur lors de la création du libellé")
		return
	}
	success(ctx, http.StatusCreated, label)
}

func (c *GroupesController) UpdateLibelle(ctx *gin.Context) {
	var req dto.LabelRequest
	if !bind(ctx, c.validator, &req) {
		return
	}
	label, err := c.service.UpdateLabel(ctx.Request.Context(), authz.UserFromContext(ctx),
		ctx.Param("id"), ctx.Param("groupId"), ctx.Param("categoryId"), ctx.Param("labelId"), req.Libelle, req.ActIDs)
	if err != nil {
		respondError(ctx, err, "Erreur lors de la modification du libellé")
		return
	}
	success(ctx, http.StatusOK, label)
}

func (c *GroupesController) DeleteLibelle(ctx *gin.Context) {
	err := c.service.DeleteLabel(ctx.Request.Context(), authz.UserFromContext(ctx),
		ctx.Param("id"), ctx.Param("groupId"), ctx.Param("categoryId"), ctx.Param("labelId"))
	if err != nil {
		respondError(ctx, err, "Erreur lors de la suppression du libellé")
		return
	}
	success(ctx, http.StatusOK, gin.H{"id": ctx.Param("labelId")})
}

// Verrouiller POST /catalogues/:id/groupes/:groupId/verrouiller, enregistre la grille puis verrouille
func (c *GroupesController) Verrouiller(ctx *gin.Context) {
	var req dto.GridRequest
	if !bind(ctx, c.validator, &req) {
		return
	}
	in := services.GridInput{MemberOrder: req.MemberOrder, CatOrder: req.CatOrder}
	for _, cell := range req.Cells {
		content, err := cellInput(cell.CellRequest)
		if err != nil {
			respondError(ctx, err, "")
			return
		}
		content.ActID, content.LevelID, content.Kind = cell.ActID, cell.LevelID, cell.Kind
		in.Cells = append(in.Cells, content)
	}
	group, err := c.service.SaveGrid(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"), ctx.Param("groupId"), in)
	if err != nil {
		respondError(ctx, err, "Erreur lors de l'enregistrement de la grille")
		return
	}
	success(ctx, http.StatusOK, group)
}

func (c *GroupesController) Deverrouiller(ctx *gin.Context) {
	group, err := c.service.Unlock(ctx.Request.Context(), authz.UserFromContext(ctx), ctx.Param("id"), ctx.Param("groupId"))
	if err != nil {
		respondError(ctx, err, "Erreur lors du déverrouillage du groupe")
		return
	}
	success(ctx, http.StatusOK, group)
}
