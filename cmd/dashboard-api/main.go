package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/interaction-dashboard-api/internal/client/analytics"
	"github.com/noah-isme/interaction-dashboard-api/internal/handler"
	"github.com/noah-isme/interaction-dashboard-api/internal/repository"
	"github.com/noah-isme/interaction-dashboard-api/internal/router"
	"github.com/noah-isme/interaction-dashboard-api/internal/service"
	"github.com/noah-isme/interaction-dashboard-api/pkg/cache"
	"github.com/noah-isme/interaction-dashboard-api/pkg/config"
	"github.com/noah-isme/interaction-dashboard-api/pkg/database"
	"github.com/noah-isme/interaction-dashboard-api/pkg/export"
	"github.com/noah-isme/interaction-dashboard-api/pkg/logger"
)

// @title Interaction Dashboard API
// @version 1.0.0
// @description Session-cached material interaction table with filters and exports.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	store, closeStore := newCacheStore(ctx, cfg, logr, metrics)
	defer closeStore()
	cacheSvc := service.NewCacheService(store, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	source, closeSource, err := newInteractionSource(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to init interaction source", zap.Error(err))
	}
	defer closeSource()

	loc, err := service.LoadDisplayLocation(cfg.Dashboard.DisplayTimezone)
	if err != nil {
		logr.Fatal("failed to load display timezone", zap.Error(err))
	}

	interactions := service.NewInteractionCacheService(source, cacheSvc, metrics, service.InteractionCacheConfig{
		Location:     loc,
		TTL:          cfg.Cache.TTL,
		KeyPrefix:    cfg.Cache.KeyPrefix,
		SourceName:   cfg.Source.Driver,
		FetchTimeout: cfg.Source.Timeout,
	})

	validate := validator.New()
	dashboard, err := service.NewDashboardService(interactions, validate, service.DashboardServiceConfig{
		DateMin: cfg.Dashboard.DateMin,
		DateMax: cfg.Dashboard.DateMax,
	})
	if err != nil {
		logr.Fatal("invalid dashboard date window", zap.Error(err))
	}
	exports := service.NewExportService(dashboard, validate, export.NewCSVExporter(), export.NewPDFExporter())

	engine := router.New(router.Options{
		Env:            cfg.Env,
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logr,
		Metrics:        metrics,
	}, router.Handlers{
		Dashboard: handler.NewDashboardHandler(dashboard, exports),
		Sessions:  handler.NewSessionHandler(service.NewSessionService()),
		Metrics:   handler.NewMetricsHandler(metrics),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "cache_driver", cfg.Cache.Driver, "source", cfg.Source.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newCacheStore picks the backing store for the interaction cache. An
// unreachable Redis degrades to the in-process LRU.
func newCacheStore(ctx context.Context, cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService) (service.CacheRepository, func()) {
	memory := func() (service.CacheRepository, func()) {
		return repository.NewMemoryCacheRepository(cfg.Cache.Threshold, cfg.Cache.TTL, metrics.RecordCacheEvictions), func() {}
	}
	if cfg.Cache.Driver != config.CacheDriverRedis {
		return memory()
	}

	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		return memory()
	}
	repo := repository.NewCacheRepository(client, logr, repository.CacheRepositoryConfig{
		IndexKey:  cfg.Cache.KeyPrefix + ":interactions:index",
		Threshold: cfg.Cache.Threshold,
		OnEvict:   metrics.RecordCacheEvictions,
	})
	return repo, func() {
		if err := repo.Close(); err != nil {
			logr.Warn("close redis", zap.Error(err))
		}
	}
}

func newInteractionSource(ctx context.Context, cfg *config.Config, logr *zap.Logger) (service.InteractionSource, func(), error) {
	switch cfg.Source.Driver {
	case config.SourceDriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewInteractionRepository(db), func() { _ = db.Close() }, nil
	case config.SourceDriverGraphQL:
		client, err := analytics.NewClient(ctx, analytics.Config{
			URI:          cfg.Source.URI,
			TokenURI:     cfg.Source.TokenURI,
			Audience:     cfg.Source.Audience,
			ClientID:     cfg.Source.ClientID,
			ClientSecret: cfg.Source.ClientSecret,
			ChunkSize:    cfg.Source.ChunkSize,
			Timeout:      cfg.Source.Timeout,
		}, logr.Named("analytics"))
		if err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown source driver %q", cfg.Source.Driver)
	}
}
