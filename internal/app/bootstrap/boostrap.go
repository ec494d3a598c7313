package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/app/config"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/kvstore"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/seeds"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/services"
)

// BootstrapSystem prépare le magasin avant le démarrage du serveur HTTP.
// 3 phases séquentielles: magasin joignable, seeding du référentiel, migration legacy.
type BootstrapSystem struct {
	store            kvstore.Store
	seedingManager   *SeedingManager
	migrationManager *MigrationManager
	config           *config.Config
	logger           *zap.Logger
	timeout          time.Duration
}

// BootstrapResult contient le résultat d'exécution du bootstrap
type BootstrapResult struct {
	Success        bool          `json:"success"`
	TotalDuration  time.Duration `json:"total_duration"`
	PhasesExecuted []PhaseResult `json:"phases_executed"`
	ErrorMessage   string        `json:"error_message,omitempty"`
}

// PhaseResult contient le résultat d'une phase du bootstrap
type PhaseResult struct {
	Phase       string        `json:"phase"`
	Success     bool          `json:"success"`
	Skipped     bool          `json:"skipped,omitempty"`
	Duration    time.Duration `json:"duration"`
	Description string        `json:"description"`
	Error       string        `json:"error,omitempty"`
}

type phase struct {
	name        string
	description string
	enabled     bool
	run         func(ctx context.Context) (string, error)
}

// NewBootstrapSystem crée une nouvelle instance du système de bootstrap
func NewBootstrapSystem(
	store kvstore.Store,
	seedingManager *SeedingManager,
	migrationManager *MigrationManager,
	cfg *config.Config,
	logger *zap.Logger,
) *BootstrapSystem {
	return &BootstrapSystem{
		store:            store,
		seedingManager:   seedingManager,
		migrationManager: migrationManager,
		config:           cfg,
		logger:           logger.Named("bootstrap"),
		timeout:          5 * time.Minute,
	}
}

func (bs *BootstrapSystem) phases() []phase {
	return []phase{
		{
			name:        "Phase 0: Magasin",
			description: "Vérification du magasin " + bs.config.Store.Backend,
			enabled:     true,
			run: func(ctx context.Context) (string, error) {
				if err := bs.store.Ping(ctx); err != nil {
					return "", fmt.Errorf("magasin injoignable: %w", err)
				}
				return "magasin joignable", nil
			},
		},
		{
			name:        "Phase 1: Seeding référentiel",
			description: "Écriture des collections de référence absentes",
			enabled:     bs.config.Seeds.Enabled,
			run:         bs.seedingManager.Apply,
		},
		{
			name:        "Phase 2: Migration legacy",
			description: "Réassainissement des collections stockées",
			enabled:     bs.config.Seeds.Migrate,
			run:         bs.migrationManager.Apply,
		},
	}
}

// Execute lance les phases dans l'ordre; la première en échec arrête le bootstrap
func (bs *BootstrapSystem) Execute(parent context.Context) (*BootstrapResult, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(parent, bs.timeout)
	defer cancel()

	bs.logger.Info("démarrage du bootstrap", zap.Duration("timeout", bs.timeout))

	result := &BootstrapResult{
		Success:        true,
		PhasesExecuted: []PhaseResult{},
	}

	for i, p := range bs.phases() {
		pr := bs.executePhase(ctx, p)
		result.PhasesExecuted = append(result.PhasesExecuted, pr)
		if !pr.Success {
			result.Success = false
			result.ErrorMessage = fmt.Sprintf("%s échouée: %s", p.name, pr.Error)
			return bs.finalizeResult(result, startTime), fmt.Errorf("bootstrap failed at phase %d: %s", i, pr.Error)
		}
	}

	result = bs.finalizeResult(result, startTime)
	bs.logger.Info("bootstrap terminé", zap.Duration("duration", result.TotalDuration))
	return result, nil
}

func (bs *BootstrapSystem) executePhase(ctx context.Context, p phase) PhaseResult {
	if !p.enabled {
		bs.logger.Info("phase désactivée", zap.String("phase", p.name))
		return PhaseResult{Phase: p.name, Success: true, Skipped: true, Description: p.description}
	}

	startTime := time.Now()
	bs.logger.Info("démarrage phase", zap.String("phase", p.name))

	summary, err := p.run(ctx)
	duration := time.Since(startTime)
	if err != nil {
		bs.logger.Error("phase échouée",
			zap.String("phase", p.name),
			zap.Duration("duration", duration),
			zap.Error(err))
		return PhaseResult{
			Phase:       p.name,
			Success:     false,
			Duration:    duration,
			Description: p.description,
			Error:       err.Error(),
		}
	}

	bs.logger.Info("phase terminée",
		zap.String("phase", p.name),
		zap.Duration("duration", duration),
		zap.String("summary", summary))
	return PhaseResult{
		Phase:       p.name,
		Success:     true,
		Duration:    duration,
		Description: summary,
	}
}

// finalizeResult finalise le résultat avec la durée totale
func (bs *BootstrapSystem) finalizeResult(result *BootstrapResult, startTime time.Time) *BootstrapResult {
	result.TotalDuration = time.Since(startTime)
	return result
}

// SetTimeout configure un nouveau timeout (utile pour les tests)
func (bs *BootstrapSystem) SetTimeout(timeout time.Duration) {
	bs.timeout = timeout
}

// Providers Fx pour le système de bootstrap

// NewBootstrapSeedingManager provider pour le gestionnaire de seeding
func NewBootstrapSeedingManager(store kvstore.Store, cfg *seeds.Config, logger *zap.Logger) *SeedingManager {
	return NewSeedingManager(seeds.NewSeedingService(store, cfg, logger), logger)
}

// NewBootstrapMigrationManager provider pour le gestionnaire de migration
func NewBootstrapMigrationManager(repo *services.Repository, logger *zap.Logger) *MigrationManager {
	return NewMigrationManager(repo, logger)
}

// RegisterBootstrapLifecycle enregistre le système de bootstrap dans le cycle de vie Fx
func RegisterBootstrapLifecycle(lc fx.Lifecycle, bootstrap *BootstrapSystem) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if _, err := bootstrap.Execute(ctx); err != nil {
				return fmt.Errorf("bootstrap system failed: %w", err)
			}
			return nil
		},
	})
}
