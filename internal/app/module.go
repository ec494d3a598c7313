package app

import (
	"go.uber.org/fx"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/app/bootstrap"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/app/config"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/logger"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/back-office/catalogues"
	coreservices "github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/system"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/middleware"
)

var AppModule = fx.Options(
	// Configuration (doit être fournie en premier)
	fx.Provide(config.NewConfig),
	fx.Provide(config.NewStoreSettings),
	fx.Provide(config.NewLoggerConfig),
	fx.Provide(config.NewSeedsConfig),
	fx.Provide(config.NewAuthzGate),
	fx.Provide(config.NewServiceSettings),

	// Infrastructure
	logger.Module,
	database.Module,

	// Middlewares partagés (après infrastructure, avant modules métier)
	middleware.Module,

	// Router
	fx.Provide(NewRouter),

	// Modules métier
	coreservices.Module,
	catalogues.Module,
	system.Module,

	// Bootstrap System - Providers
	fx.Provide(bootstrap.NewBootstrapSeedingManager),
	fx.Provide(bootstrap.NewBootstrapMigrationManager),
	fx.Provide(bootstrap.NewBootstrapSystem),

	// Application
	fx.Provide(NewApplication),

	// Lifecycle management: bootstrap avant le serveur HTTP
	fx.Invoke(bootstrap.RegisterBootstrapLifecycle),
	fx.Invoke((*Application).Start),
)
