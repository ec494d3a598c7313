package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/app/config"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/kvstore"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/seeds"
	coredto "github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	catalogue "github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/services"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/system/dto"
)

type SystemService struct {
	config     *config.Config
	seeds      seeds.SeedingService
	catalogues *catalogue.CatalogueService
	refs       *catalogue.ReferentielService
}

func NewSystemService(
	store kvstore.Store,
	seedsConfig *seeds.Config,
	config *config.Config,
	catalogues *catalogue.CatalogueService,
	refs *catalogue.ReferentielService,
	logger *zap.Logger,
) *SystemService {
	return &SystemService{
		config:     config,
		seeds:      seeds.NewSeedingService(store, seedsConfig, logger),
		catalogues: catalogues,
		refs:       refs,
	}
}

// GetSystemInfo état du magasin et du référentiel
func (s *SystemService) GetSystemInfo(ctx context.Context) (*dto.SystemInfoResponse, error) {
	status, err := s.seeds.CheckSeedDataExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("lecture de l'état du seed: %w", err)
	}

	all, err := s.catalogues.List(ctx, true)
	if err != nil {
		return nil, err
	}
	counts := dto.CataloguesStatusDTO{ParStatut: map[string]int{}}
	for _, c := range all {
		if !coredto.IsActive(c) {
			counts.Supprimes++
			continue
		}
		counts.Actifs++
		counts.ParStatut[string(c.Status)]++
	}

	types, err := s.refs.ValueTypes(ctx)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(types))
	for _, vt := range types {
		codes = append(codes, vt.Code)
	}

	return &dto.SystemInfoResponse{
		Environment: s.config.Environment,
		Backend:     s.config.Store.Backend,
		MaxDepth:    s.config.Eval.MaxDepth,
		Referentiel: dto.ReferentielStatusDTO{
			Present: status.Present,
			Missing: status.Missing,
		},
		Catalogues: counts,
		ValueTypes: codes,
	}, nil
}

// GenerateAlertes génère les alertes système appropriées
func (s *SystemService) GenerateAlertes(info *dto.SystemInfoResponse) []dto.AlerteDTO {
	var alertes []dto.AlerteDTO

	if len(info.Referentiel.Missing) > 0 {
		alertes = append(alertes, dto.AlerteDTO{
			Type:    "error",
			Code:    "REFERENTIEL_INCOMPLETE",
			Message: fmt.Sprintf("%d collection(s) de référence absente(s)", len(info.Referentiel.Missing)),
			Details: map[string]interface{}{
				"missing":         info.Referentiel.Missing,
				"required_action": "Lancer catalogctl seed ou activer SEEDS_ENABLED",
			},
		})
	}

	if info.Backend == database.BackendMemory {
		alertes = append(alertes, dto.AlerteDTO{
			Type:    "warning",
			Code:    "STORE_NOT_PERSISTENT",
			Message: "Magasin en mémoire, les données sont perdues à l'arrêt",
		})
	}

	return alertes
}
