package catalogues

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/back-office/catalogues/controllers"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/authz"
)

var Module = fx.Options(
	fx.Provide(controllers.NewReferentielsController),
	fx.Provide(controllers.NewCataloguesController),
	fx.Provide(controllers.NewGroupesController),
	fx.Provide(controllers.NewGrilleController),
	fx.Invoke(RegisterCataloguesRoutes),
)

func RegisterCataloguesRoutes(
	r *gin.Engine,
	refs *controllers.ReferentielsController,
	catalogues *controllers.CataloguesController,
	groupes *controllers.GroupesController,
	grille *controllers.GrilleController,
) {
	api := r.Group("/api/v1")
	api.Use(authz.IdentityMiddleware())

	referentiels := api.Group("/referentiels")
	{
		referentiels.GET("", refs.ListReferentiels)
		referentiels.GET("/value-types", refs.ListValueTypes)
		referentiels.GET("/:key", refs.GetReferentiel)
		referentiels.PUT("/:key", refs.ReplaceReferentiel)
		referentiels.POST("/categories/:id/move", refs.MoveCategory)
		referentiels.POST("/acts/:id/move", refs.MoveAct)
	}

	cat := api.Group("/catalogues")
	{
		cat.GET("", catalogues.ListCatalogues)
		cat.POST("", catalogues.CreateCatalogue)
		cat.GET("/:id", catalogues.GetCatalogue)
		cat.PUT("/:id", catalogues.UpdateCatalogue)
		cat.DELETE("/:id", catalogues.DeleteCatalogue)
		cat.POST("/:id/restore", catalogues.RestoreCatalogue)
		cat.GET("/:id/export", catalogues.ExportCatalogue)

		cat.GET("/:id/modules", catalogues.ListModules)
		cat.POST("/:id/modules", catalogues.AddModule)
		cat.PUT("/:id/modules/:moduleId", catalogues.UpdateModule)
		cat.DELETE("/:id/modules/:moduleId", catalogues.RemoveModule)
		cat.POST("/:id/modules/:moduleId/move", catalogues.MoveModule)
	}

	grp := cat.Group("/:id/groupes")
	{
		grp.GET("", groupes.ListGroupes)
		grp.POST("", groupes.CreateGroupe)
		grp.GET("/:groupId", groupes.GetGroupe)
		grp.PUT("/:groupId", groupes.UpdateGroupe)
		grp.DELETE("/:groupId", groupes.DeleteGroupe)
		grp.POST("/:groupId/move", groupes.MoveGroupe)

		grp.GET("/:groupId/membres", groupes.ListMembres)
		grp.PUT("/:groupId/membres", groupes.SetMembres)
		grp.POST("/:groupId/membres/:actId/move", groupes.MoveMembre)
		grp.POST("/:groupId/categories/:categoryId/move", groupes.MoveCategorie)

		grp.GET("/:groupId/categories/:categoryId/libelles", groupes.ListLibelles)
		grp.POST("/:groupId/categories/:categoryId/libelles", groupes.CreateLibelle)
		grp.PUT("/:groupId/categories/:categoryId/libelles/:labelId", groupes.UpdateLibelle)
		grp.DELETE("/:groupId/categories/:categoryId/libelles/:labelId", groupes.DeleteLibelle)

		grp.POST("/:groupId/verrouiller", groupes.Verrouiller)
		grp.POST("/:groupId/deverrouiller", groupes.Deverrouiller)

		grp.GET("/:groupId/grille", grille.GetGrille)
		grp.GET("/:groupId/cellules", grille.ListCellules)
		grp.GET("/:groupId/cellules/:actId/:levelId/:kind", grille.OpenCellule)
		grp.PUT("/:groupId/cellules/:actId/:levelId/:kind", grille.SaveCellule)
		grp.DELETE("/:groupId/cellules/:actId/:levelId/:kind", grille.ClearCellule)
	}
}
