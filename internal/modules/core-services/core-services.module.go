package core_services

import (
	"go.uber.org/fx"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue"
)

// Module regroupe les services métier centralisés (Core Services)
// Ces services sont réutilisables par plusieurs modules sans avoir d'endpoints propres
var Module = fx.Options(
	// Catalogue de garanties (assainissement, ordonnancement, évaluation)
	catalogue.Module,
)
