package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/seeds"
)

// SeedingManager seed les collections de référence manquantes, jamais celles déjà présentes
type SeedingManager struct {
	seedService seeds.SeedingService
	logger      *zap.Logger
}

// NewSeedingManager crée une nouvelle instance du gestionnaire de seeding
func NewSeedingManager(seedService seeds.SeedingService, logger *zap.Logger) *SeedingManager {
	return &SeedingManager{
		seedService: seedService,
		logger:      logger.Named("seeding"),
	}
}

// CheckSeedDataExists vérifie quelles collections existent déjà
func (sm *SeedingManager) CheckSeedDataExists(ctx context.Context) (*seeds.SeedDataStatus, error) {
	status, err := sm.seedService.CheckSeedDataExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("erreur vérification données seeding: %w", err)
	}
	sm.logger.Debug("état du référentiel",
		zap.Strings("present", status.Present),
		zap.Strings("missing", status.Missing))
	return status, nil
}

// Apply phase de bootstrap: seed puis résumé
func (sm *SeedingManager) Apply(ctx context.Context) (string, error) {
	status, err := sm.CheckSeedDataExists(ctx)
	if err != nil {
		return "", err
	}
	if status.IsComplete() {
		return "référentiel déjà présent", nil
	}

	report, err := sm.seedService.SeedReferentiels(ctx)
	if err != nil {
		return "", fmt.Errorf("échec seeding référentiel: %w", err)
	}
	return fmt.Sprintf("collections seedées: %s", strings.Join(report.Seeded, ", ")), nil
}
