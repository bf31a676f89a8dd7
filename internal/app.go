package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"statusdash/internal/controllers"
	"statusdash/internal/persistence/interfaces"
	"statusdash/internal/providers"
	schedulerInterfaces "statusdash/internal/scheduler/interfaces"
	"statusdash/internal/structures"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	WebServer *http.Server

	conf             *structures.Config
	logger           providers.Logger
	configStore      interfaces.ConfigStoreInterface
	healthController *controllers.HealthController
	scheduler        schedulerInterfaces.SchedulerInterface
}

func NewApp(healthController *controllers.HealthController, scheduler schedulerInterfaces.SchedulerInterface, configStore interfaces.ConfigStoreInterface, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) *App {
	// Inner mux: API routes
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	// Wrap API routes with metrics middleware
	instrumentedAPI := providers.MetricsMiddleware(metrics, apiMux)

	// Outer mux: infrastructure + instrumented API
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthController.Health)
	mux.HandleFunc("GET /healthz", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", instrumentedAPI)

	return &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      providers.RequestLogMiddleware(logger, providers.CompressionMiddleware(mux)),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		conf:             conf,
		logger:           logger,
		configStore:      configStore,
		healthController: healthController,
		scheduler:        scheduler,
	}
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts down gracefully.
func (app *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return app.Serve(ctx)
}

// Serve serves HTTP until ctx is done or the listener fails.
func (app *App) Serve(ctx context.Context) error {
	app.logStartup()
	app.healthController.RecordStartup()
	app.scheduler.Sweep()
	app.scheduler.Init()
	defer app.scheduler.Stop()

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Infof(providers.TypeApp, "Listening HTTP clients on %s", app.WebServer.Addr)
		if err := app.WebServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		app.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.WebServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	app.logger.Infof(providers.TypeApp, "gracefully stopped")
	return nil
}

func (app *App) logStartup() {
	app.logger.Infof(providers.TypeApp, "Starting %s", app.conf.AppName)
	doc, err := app.configStore.Read()
	if err != nil {
		app.logger.Errorf(providers.TypeApp, "Configuration %s is unreadable: %s", app.configStore.Path(), err)
		return
	}
	app.logger.Infof(providers.TypeApp, "Configuration %s loaded (rotation %s, timezone %s, storm mode %t)",
		app.configStore.Path(), doc.Display.Rotation, doc.Display.Timezone, doc.StormMode.Enabled)
	app.logger.Infof(providers.TypeApp, "Cache directory %s, widget max age %s", app.conf.Paths.CacheDir, app.conf.Widgets.MaxAge)
}
