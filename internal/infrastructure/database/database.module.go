package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/kvstore"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/mongodb"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/postgres"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/redis"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/sqlite"
)

// Backends supportés (STORE_BACKEND)
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMongoDB  = "mongodb"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Backends liste des valeurs acceptées
var Backends = []string{BackendMemory, BackendRedis, BackendMongoDB, BackendPostgres, BackendSQLite}

// StoreSettings choix du backend et configuration de chacun
type StoreSettings struct {
	Backend  string
	Redis    *redis.RedisConfig
	MongoDB  *mongodb.MongoConfig
	Postgres *postgres.DatabaseConfig
	SQLite   *sqlite.Config
}

// ClosableStore magasin avec libération des connexions
type ClosableStore interface {
	kvstore.Store
	Close(ctx context.Context) error
}

type memoryStore struct {
	*kvstore.MemoryStore
}

func (m memoryStore) Close(context.Context) error {
	m.MemoryStore.Close()
	return nil
}

var Module = fx.Options(
	fx.Provide(NewStore),
)

// Open ouvre le backend choisi
func Open(ctx context.Context, settings *StoreSettings, logger *zap.Logger) (ClosableStore, error) {
	switch settings.Backend {
	case BackendMemory, "":
		return memoryStore{kvstore.NewMemoryStore()}, nil
	case BackendRedis:
		return redis.Open(settings.Redis)
	case BackendMongoDB:
		return mongodb.Open(settings.MongoDB)
	case BackendPostgres:
		return postgres.Open(ctx, settings.Postgres, logger.Named("postgres"))
	case BackendSQLite:
		return sqlite.Open(settings.SQLite)
	}
	return nil, fmt.Errorf("backend de stockage inconnu: %s", settings.Backend)
}

// NewStore provider Fx: ouvre le magasin et le ferme à l'arrêt
func NewStore(lc fx.Lifecycle, settings *StoreSettings, logger *zap.Logger) (kvstore.Store, error) {
	log := logger.Named("database")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	store, err := Open(ctx, settings, logger)
	if err != nil {
		return nil, fmt.Errorf("ouverture du magasin %s: %w", settings.Backend, err)
	}
	log.Info("magasin ouvert", zap.String("backend", settings.Backend))

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return store.Ping(timeoutCtx)
		},
		OnStop: func(ctx context.Context) error {
			log.Info("fermeture du magasin", zap.String("backend", settings.Backend))
			return store.Close(ctx)
		},
	})
	return store, nil
}
