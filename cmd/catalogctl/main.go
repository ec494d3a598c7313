package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/app/config"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/logger"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/sanitize"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/services"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/audit"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/idgen"
)

var (
	backendFlag string
	sqliteFlag  string
	timeoutFlag time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Outils d'exploitation du catalogue de garanties",
	Long: `catalogctl agit directement sur le magasin configuré (STORE_BACKEND):
seeding du référentiel, réassainissement des collections et export d'un catalogue.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Magasin: memory, redis, mongodb, postgres ou sqlite (défaut: STORE_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&sqliteFlag, "sqlite", "", "Fichier SQLite (défaut: SQLITE_PATH)")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 2*time.Minute, "Durée maximale de la commande")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env dépendances d'une commande, ouvertes sur le magasin choisi
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  database.ClosableStore
	repo   *services.Repository
	core   *services.Core
}

func openEnv(ctx context.Context) (*env, error) {
	if backendFlag != "" {
		os.Setenv("STORE_BACKEND", backendFlag)
	}
	if sqliteFlag != "" {
		os.Setenv("SQLITE_PATH", sqliteFlag)
	}
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.NewLogger(config.NewLoggerConfig(cfg))
	if err != nil {
		return nil, err
	}
	store, err := database.Open(ctx, config.NewStoreSettings(cfg), log)
	if err != nil {
		return nil, fmt.Errorf("ouverture du magasin %s: %w", cfg.Store.Backend, err)
	}
	gate, err := config.NewAuthzGate(cfg)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	stamper := audit.NewStamper()
	ids := idgen.NewUUIDGenerator()
	repo := services.NewRepository(store, sanitize.NewPipeline(stamper, ids), log)
	return &env{
		cfg:    cfg,
		logger: log,
		store:  store,
		repo:   repo,
		core:   services.NewCore(repo, gate, stamper, ids, config.NewServiceSettings(cfg), log),
	}, nil
}

func (e *env) Close(ctx context.Context) {
	if err := e.store.Close(ctx); err != nil {
		e.logger.Warn("fermeture du magasin", zap.Error(err))
	}
	_ = e.logger.Sync()
}

// run ouvre l'environnement, exécute fn puis libère le magasin
func run(fn func(ctx context.Context, e *env) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeoutFlag)
	defer cancel()

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close(context.Background())
	return fn(ctx, e)
}
