package catalogue

import (
	"go.uber.org/fx"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/sanitize"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/services"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/audit"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/idgen"
)

// Module services métier du catalogue de garanties.
// Les endpoints sont portés par back-office/catalogues.
var Module = fx.Options(
	// Tampons d'audit et identifiants
	fx.Provide(audit.NewStamper),
	fx.Provide(idgen.NewUUIDGenerator),

	// Assainissement et accès au magasin
	fx.Provide(sanitize.NewPipeline),
	fx.Provide(services.NewRepository),
	fx.Provide(services.NewCore),

	// Services
	fx.Provide(services.NewCellService),
	fx.Provide(services.NewGroupService),
	fx.Provide(services.NewCatalogueService),
	fx.Provide(services.NewReferentielService),
	fx.Provide(services.NewGrilleService),
)
