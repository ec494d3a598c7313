package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/mongodb"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/postgres"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/redis"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/seeds"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/sqlite"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/logger"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/queries"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/services"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/authz"
)

// Uniquement variables d'environnement

// Config structure unifiée
type Config struct {
	Environment string
	Server      ServerConfig
	Store       StoreConfig
	Redis       RedisConfig
	MongoDB     MongoConfig
	Postgres    PostgresConfig
	SQLite      SQLiteConfig
	Authz       AuthzConfig
	Seeds       SeedsConfig
	Eval        EvalConfig
	Logging     LoggingConfig
	CORS        CORSConfig
}

// ServerConfig configuration serveur HTTP
type ServerConfig struct {
	Host         string        `env:"SERVER_HOST"`
	Port         int           `env:"SERVER_PORT"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT"`
}

// StoreConfig choix du magasin clé-valeur
type StoreConfig struct {
	Backend string `env:"STORE_BACKEND"`
}

// RedisConfig configuration Redis
type RedisConfig struct {
	Host        string        `env:"REDIS_HOST"`
	Port        int           `env:"REDIS_PORT"`
	Password    string        `env:"REDIS_PASSWORD"`
	Database    int           `env:"REDIS_DATABASE"`
	MaxRetries  int           `env:"REDIS_MAX_RETRIES"`
	PoolSize    int           `env:"REDIS_POOL_SIZE"`
	PoolTimeout time.Duration `env:"REDIS_POOL_TIMEOUT"`
	Namespace   string        `env:"REDIS_NAMESPACE"`
}

// MongoConfig configuration MongoDB
type MongoConfig struct {
	URI            string        `env:"MONGODB_URI"`
	Database       string        `env:"MONGODB_DATABASE"`
	ConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT"`
	MaxPoolSize    int           `env:"MONGODB_MAX_POOL_SIZE"`
}

// PostgresConfig configuration PostgreSQL
type PostgresConfig struct {
	Host           string        `env:"DB_HOST"`
	Port           int           `env:"DB_PORT"`
	Database       string        `env:"DB_NAME"`
	Username       string        `env:"DB_USERNAME"`
	Password       string        `env:"DB_PASSWORD"`
	MaxConnections int           `env:"DB_MAX_CONNECTIONS"`
	ConnectionTTL  time.Duration `env:"DB_CONNECTION_TTL"`
	QueryTimeout   time.Duration `env:"DB_QUERY_TIMEOUT"`
	SSLMode        string        `env:"DB_SSL_MODE"`
}

// SQLiteConfig fichier du magasin SQLite
type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH"`
}

// AuthzConfig table rôle → capacités, format "admin:create|update|delete,lecteur:"
type AuthzConfig struct {
	Roles string `env:"AUTHZ_ROLES"`
}

// SeedsConfig source du référentiel initial
type SeedsConfig struct {
	Path    string `env:"SEEDS_PATH"`
	Enabled bool   `env:"SEEDS_ENABLED"`
	Migrate bool   `env:"LEGACY_MIGRATION_ENABLED"`
}

// EvalConfig évaluation des dépendances
type EvalConfig struct {
	MaxDepth int `env:"EVAL_MAX_DEPTH"`
}

// LoggingConfig configuration logging
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"`
	Format string `env:"LOG_FORMAT"`
}

// CORSConfig configuration CORS
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"`
	MaxAge           int      `env:"CORS_MAX_AGE"`
}

// NewConfig charge la configuration depuis les variables d'environnement uniquement
func NewConfig() (*Config, error) {
	// Charger le fichier .env (optionnel)
	_ = godotenv.Load(".env")
	return Load()
}

// Load lit l'environnement courant sans fichier .env
func Load() (*Config, error) {
	config := &Config{}

	config.Environment = getEnv("APP_ENV", "development")

	config.Server = ServerConfig{
		Host:         getEnv("SERVER_HOST", "localhost"),
		Port:         getEnvInt("SERVER_PORT", 4000),
		ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 30) * time.Second,
		WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30) * time.Second,
	}

	config.Store = StoreConfig{
		Backend: strings.ToLower(getEnv("STORE_BACKEND", database.BackendMemory)),
	}

	config.Redis = RedisConfig{
		Host:        getEnv("REDIS_HOST", "localhost"),
		Port:        getEnvInt("REDIS_PORT", 6379),
		Password:    getEnv("REDIS_PASSWORD", ""),
		Database:    getEnvInt("REDIS_DATABASE", 0),
		MaxRetries:  getEnvInt("REDIS_MAX_RETRIES", 3),
		PoolSize:    getEnvInt("REDIS_POOL_SIZE", 10),
		PoolTimeout: getEnvDuration("REDIS_POOL_TIMEOUT", 30) * time.Second,
		Namespace:   getEnv("REDIS_NAMESPACE", config.Environment),
	}

	defaultMongoURI := ""
	if config.Environment == "development" {
		defaultMongoURI = "mongodb://localhost:27017"
	}
	config.MongoDB = MongoConfig{
		URI:            getEnv("MONGODB_URI", defaultMongoURI),
		Database:       getEnv("MONGODB_DATABASE", "admin_catalog"),
		ConnectTimeout: getEnvDuration("MONGODB_CONNECT_TIMEOUT", 10) * time.Second,
		MaxPoolSize:    getEnvInt("MONGODB_MAX_POOL_SIZE", 100),
	}

	config.Postgres = PostgresConfig{
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           getEnvInt("DB_PORT", 5432),
		Database:       getEnv("DB_NAME", "admin_catalog"),
		Username:       getEnv("DB_USERNAME", "postgres"),
		Password:       getEnv("DB_PASSWORD", ""),
		MaxConnections: getEnvInt("DB_MAX_CONNECTIONS", 20),
		ConnectionTTL:  getEnvDuration("DB_CONNECTION_TTL", 300) * time.Second,
		QueryTimeout:   getEnvDuration("DB_QUERY_TIMEOUT", 30) * time.Second,
		SSLMode:        getEnv("DB_SSL_MODE", "disable"),
	}

	config.SQLite = SQLiteConfig{
		Path: getEnv("SQLITE_PATH", "data/catalogue.db"),
	}

	config.Authz = AuthzConfig{
		Roles: getEnv("AUTHZ_ROLES", ""),
	}

	config.Seeds = SeedsConfig{
		Path:    getEnv("SEEDS_PATH", ""),
		Enabled: getEnvBool("SEEDS_ENABLED", true),
		Migrate: getEnvBool("LEGACY_MIGRATION_ENABLED", true),
	}

	config.Eval = EvalConfig{
		MaxDepth: getEnvInt("EVAL_MAX_DEPTH", 16),
	}

	defaultFormat := "json"
	if config.Environment == "development" {
		defaultFormat = "console"
	}
	config.Logging = LoggingConfig{
		Level:  getEnv("LOG_LEVEL", "debug"),
		Format: getEnv("LOG_FORMAT", defaultFormat),
	}

	config.CORS = CORSConfig{
		AllowedOrigins:   getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		AllowedMethods:   getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders:   getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
		MaxAge:           getEnvInt("CORS_MAX_AGE", 3600),
	}

	// Validation configuration critique
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("validation configuration échouée: %w", err)
	}
	return config, nil
}

func (c *Config) GetServer() ServerConfig   { return c.Server }
func (c *Config) GetLogging() LoggingConfig { return c.Logging }
func (c *Config) GetCORS() CORSConfig       { return c.CORS }

// Convertisseurs vers les configurations infrastructure

func NewStoreSettings(config *Config) *database.StoreSettings {
	return &database.StoreSettings{
		Backend: config.Store.Backend,
		Redis: &redis.RedisConfig{
			Host:        config.Redis.Host,
			Port:        config.Redis.Port,
			Password:    config.Redis.Password,
			Database:    config.Redis.Database,
			MaxRetries:  config.Redis.MaxRetries,
			PoolSize:    config.Redis.PoolSize,
			PoolTimeout: config.Redis.PoolTimeout,
			Namespace:   config.Redis.Namespace,
		},
		MongoDB: &mongodb.MongoConfig{
			URI:            config.MongoDB.URI,
			Database:       config.MongoDB.Database,
			ConnectTimeout: config.MongoDB.ConnectTimeout,
			MaxPoolSize:    config.MongoDB.MaxPoolSize,
		},
		Postgres: &postgres.DatabaseConfig{
			Host:           config.Postgres.Host,
			Port:           config.Postgres.Port,
			Database:       config.Postgres.Database,
			Username:       config.Postgres.Username,
			Password:       config.Postgres.Password,
			SSLMode:        config.Postgres.SSLMode,
			MaxConnections: config.Postgres.MaxConnections,
			ConnectionTTL:  config.Postgres.ConnectionTTL,
			QueryTimeout:   config.Postgres.QueryTimeout,
		},
		SQLite: &sqlite.Config{Path: config.SQLite.Path},
	}
}

func NewLoggerConfig(config *Config) *logger.Config {
	return &logger.Config{
		Level:  config.Logging.Level,
		Format: config.Logging.Format,
	}
}

func NewSeedsConfig(config *Config) *seeds.Config {
	return &seeds.Config{
		Path: config.Seeds.Path,
		Keys: queries.ReferentielKeys,
	}
}

// NewAuthzGate gate des rôles; DefaultRoles quand AUTHZ_ROLES est vide
func NewAuthzGate(config *Config) (authz.Gate, error) {
	roles := authz.DefaultRoles
	if strings.TrimSpace(config.Authz.Roles) != "" {
		parsed, err := authz.ParseRoles(config.Authz.Roles)
		if err != nil {
			return nil, fmt.Errorf("AUTHZ_ROLES: %w", err)
		}
		roles = parsed
	}
	return authz.NewRoleGate(roles), nil
}

func NewServiceSettings(config *Config) *services.Settings {
	return &services.Settings{MaxDepth: config.Eval.MaxDepth}
}

// Helpers pour parsing variables d'environnement
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds))
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

// validateConfig valide la configuration selon l'environnement
func validateConfig(config *Config) error {
	env := config.Environment

	if env != "development" && env != "docker" && env != "test" {
		return fmt.Errorf("environnement non supporté: %s (utilisez 'development', 'docker' ou 'test')", env)
	}

	known := false
	for _, b := range database.Backends {
		if config.Store.Backend == b {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("STORE_BACKEND inconnu: %s (valeurs: %s)", config.Store.Backend, strings.Join(database.Backends, ", "))
	}

	if config.Eval.MaxDepth <= 0 {
		return fmt.Errorf("EVAL_MAX_DEPTH doit être positif: %d", config.Eval.MaxDepth)
	}

	if strings.TrimSpace(config.Authz.Roles) != "" {
		if _, err := authz.ParseRoles(config.Authz.Roles); err != nil {
			return fmt.Errorf("AUTHZ_ROLES invalide: %w", err)
		}
	}

	missingVars := []string{}

	// Variables critiques en mode docker selon le backend choisi
	if env == "docker" {
		switch config.Store.Backend {
		case database.BackendPostgres:
			if config.Postgres.Password == "" {
				missingVars = append(missingVars, "DB_PASSWORD")
			}
		case database.BackendMongoDB:
			if config.MongoDB.URI == "" {
				missingVars = append(missingVars, "MONGODB_URI")
			}
		case database.BackendMemory:
			missingVars = append(missingVars, "STORE_BACKEND")
		}
	}
	if config.Store.Backend == database.BackendMongoDB && config.MongoDB.URI == "" && env != "docker" {
		missingVars = append(missingVars, "MONGODB_URI")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("variables critiques manquantes pour environnement %s: %v", env, missingVars)
	}

	return nil
}
