package main

import (
	"alcyxob/marathon-tracker/internal/api"
	"alcyxob/marathon-tracker/internal/config"
	"alcyxob/marathon-tracker/internal/logging"
	"alcyxob/marathon-tracker/internal/metrics"
	"alcyxob/marathon-tracker/internal/repository"
	"alcyxob/marathon-tracker/internal/repository/memory"
	"alcyxob/marathon-tracker/internal/repository/mongo"
	"alcyxob/marathon-tracker/internal/repository/postgres"
	"alcyxob/marathon-tracker/internal/service"
	"alcyxob/marathon-tracker/internal/storage"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

// @title Marathon Tracker API
// @version 1.0
// @description Training plans, workout progress and weekly stats for marathon runners.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.ToStdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	log.Info("starting marathon tracker server...")

	catalog, err := cfg.Catalog()
	if err != nil {
		log.Fatalf("invalid plan catalog: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Store ---
	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("could not open %s store: %v", cfg.Database.Backend, err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := store.Close(closeCtx); err != nil {
			log.Errorf("failed to close store: %v", err)
		}
	}()
	log.WithField("backend", cfg.Database.Backend).Info("store ready")

	// --- Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled {
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("failed to initialize S3 storage: %v", err)
		}
	} else {
		log.Info("S3 storage disabled, progress export unavailable")
	}

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsManager := metrics.NewManager("marathon", "server", registry)

	// --- Services ---
	now := time.Now
	generator := service.NewGenerator(now, cfg.Training.FallbackWeeks)
	planService := service.NewPlanService(catalog, store.Definitions, generator, cfg.Training.WorkoutsPerWeek)
	progressService := service.NewProgressService(catalog, store.Definitions, store.Progress, store.Users, metricsManager)
	userService := service.NewUserService(store.Users, catalog, now)
	authService := service.NewAuthService(store.Users, cfg.JWT.Secret, cfg.JWT.Expiration)
	exportService := service.NewExportService(userService, planService, progressService, fileStorage, metricsManager, now)

	bootstrapCtx, bootstrapCancel := context.WithTimeout(ctx, time.Minute)
	if err := planService.EnsureWorkouts(bootstrapCtx); err != nil {
		log.Fatalf("failed to generate plan workouts: %v", err)
	}
	if cfg.Admin.Password != "" {
		if err := authService.EnsureAdmin(bootstrapCtx, cfg.Admin.Name, cfg.Admin.Password); err != nil {
			log.Fatalf("failed to create admin account: %v", err)
		}
	} else {
		log.Warn("admin.password is not set, no admin account seeded")
	}
	bootstrapCancel()

	// --- HTTP ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())

	limiter := api.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go limiter.Cleanup(ctx, time.Minute, 3*time.Minute)

	api.SetupRoutes(router, cfg.JWT.Secret, api.Services{
		Auth:     authService,
		Users:    userService,
		Plans:    planService,
		Progress: progressService,
		Export:   exportService,
	}, limiter, metricsManager, registry)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}
	log.Info("server exiting")
}

// openStore connects the configured backend and prepares its schema or indexes.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (repository.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil

	case config.BackendMongo:
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return repository.Store{}, err
		}
		indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(indexCtx, client.Database(cfg.Name)); err != nil {
			_ = mongo.DisconnectDB(client)
			return repository.Store{}, err
		}
		return mongo.NewStore(client, cfg.Name), nil

	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.URI)
		if err != nil {
			return repository.Store{}, err
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return repository.Store{}, err
		}
		return postgres.NewStore(pool), nil

	default:
		return repository.Store{}, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
