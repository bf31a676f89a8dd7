//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"statusdash/internal"
	"statusdash/internal/controllers"
	"statusdash/internal/persistence"
	"statusdash/internal/persistence/interfaces"
	"statusdash/internal/providers"
	"statusdash/internal/scheduler"
	"statusdash/internal/services"
	"statusdash/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		persistence.NewFileManager,
		persistence.NewConfigStore,
		persistence.NewCacheStore,
		persistence.NewZstdCompressor,
		wire.Bind(new(interfaces.ConfigStoreInterface), new(*persistence.ConfigStore)),
		wire.Bind(new(interfaces.CacheStoreInterface), new(*persistence.CacheStore)),

		services.NewWidgetService,
		wire.Bind(new(services.WidgetServiceInterface), new(*services.WidgetService)),

		controllers.NewApiController,
		controllers.NewConfigController,
		controllers.NewHealthController,
		scheduler.NewScheduler,
		wire.Bind(new(scheduler.HealthRecorder), new(*controllers.HealthController)),
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
