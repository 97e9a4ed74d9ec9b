package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/99minutos/route-tracking/internal/api"
	"github.com/99minutos/route-tracking/internal/core/ports"
	"github.com/99minutos/route-tracking/internal/core/service"
	"github.com/99minutos/route-tracking/internal/infrastructure/cache"
	"github.com/99minutos/route-tracking/internal/infrastructure/config"
	mongodb "github.com/99minutos/route-tracking/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/route-tracking/internal/infrastructure/db/redis"
	"github.com/99minutos/route-tracking/internal/infrastructure/geo"
	"github.com/99minutos/route-tracking/internal/infrastructure/http/handlers"
	"github.com/99minutos/route-tracking/internal/infrastructure/notify"
	"github.com/99minutos/route-tracking/internal/infrastructure/queue"
	"github.com/99minutos/route-tracking/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title                       Route Tracking API
// @version                     1.0
// @description                 Last-mile route planning and package status tracking.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "route-tracking",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     "route-tracking",
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
		Timeout:     cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	packageRepo := mongodb.NewPackageRepository(db)
	routeRepo := mongodb.NewRouteRepository(db)
	if err := packageRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := routeRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	readiness := map[string]handlers.Pinger{
		"mongodb": handlers.MongoPinger(db),
		"redis":   handlers.RedisPinger(rdb),
	}

	// --- Providers ---
	nominatim, err := geo.NewNominatimClient(geo.NominatimConfig{
		BaseURL:     cfg.Geocoder.BaseURL,
		UserAgent:   cfg.Geocoder.UserAgent,
		CountryCode: cfg.Geocoder.CountryCode,
		Timeout:     cfg.Geocoder.Timeout,
	})
	if err != nil {
		return err
	}
	osrm, err := geo.NewOSRMClient(geo.OSRMConfig{
		BaseURL:   cfg.Router.BaseURL,
		Profile:   cfg.Router.Profile,
		UserAgent: cfg.Geocoder.UserAgent,
		Timeout:   cfg.Router.Timeout,
	})
	if err != nil {
		return err
	}

	var geocoder ports.Geocoder = nominatim
	if cfg.GeocodeCache.DSN != "" {
		store, err := cache.Open(ctx, cfg.GeocodeCache.Driver, cfg.GeocodeCache.DSN)
		if err != nil {
			return err
		}
		defer store.Close()
		geocoder = cache.NewCachedGeocoder(nominatim, store, log)
		readiness["geocode_cache"] = store
		log.Info().Str("driver", cfg.GeocodeCache.Driver).Msg("geocode cache enabled")
	}

	// --- Notifications ---
	notifications := service.NewNotificationService(
		notify.NewLogSink(log),
		redisdb.NewNotificationDedup(rdb, cfg.Notifier.DedupTTL),
		log,
	)
	dispatcher := queue.NewDispatcher(cfg.Notifier.Workers, notifications, log)
	dispatcher.Start(ctx)

	// --- Services ---
	builder := service.NewItineraryBuilder(geocoder, osrm, cfg.Geocoder.Concurrency, log)
	tracker := service.NewPackageTracker(
		packageRepo,
		redisdb.NewPackageLocker(rdb, cfg.Tracker.LockTTL, cfg.Tracker.LockWait),
		dispatcher,
		log,
	)
	routes := service.NewRouteService(builder, tracker, packageRepo, routeRepo, log)

	e := api.NewRouter(api.Dependencies{
		Routes:    routes,
		Tracker:   tracker,
		JWTSecret: cfg.JWTSecret,
		Readiness: readiness,
		Log:       log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Planning waits on geocoding and routing.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
