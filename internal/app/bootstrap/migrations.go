package bootstrap

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/services"
)

// MigrationManager réassainit les collections écrites par une version antérieure.
// Une seule migration à la fois.
type MigrationManager struct {
	repo       *services.Repository
	logger     *zap.Logger
	mutex      sync.Mutex
	inProgress bool
}

// NewMigrationManager crée le gestionnaire de migration
func NewMigrationManager(repo *services.Repository, logger *zap.Logger) *MigrationManager {
	return &MigrationManager{
		repo:   repo,
		logger: logger.Named("migration"),
	}
}

// Apply phase de bootstrap: migration puis résumé
func (mm *MigrationManager) Apply(ctx context.Context) (string, error) {
	mm.mutex.Lock()
	if mm.inProgress {
		mm.mutex.Unlock()
		return "", fmt.Errorf("migration déjà en cours")
	}
	mm.inProgress = true
	mm.mutex.Unlock()

	defer func() {
		mm.mutex.Lock()
		mm.inProgress = false
		mm.mutex.Unlock()
	}()

	report, err := mm.repo.Migrate(ctx)
	if err != nil {
		return "", fmt.Errorf("migration legacy: %w", err)
	}
	for _, key := range report.Rewritten {
		mm.logger.Info("collection réécrite", zap.String("key", key))
	}
	for _, key := range report.Removed {
		mm.logger.Info("collection orpheline retirée", zap.String("key", key))
	}
	return fmt.Sprintf("%d réécrite(s), %d retirée(s), %d inchangée(s)",
		len(report.Rewritten), len(report.Removed), report.Unchanged), nil
}
