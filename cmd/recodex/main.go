package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/config"
	"github.com/kailas-cloud/recodex/internal/db"
	dbValkey "github.com/kailas-cloud/recodex/internal/db/valkey"
	"github.com/kailas-cloud/recodex/internal/domain/catalog"
	"github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/domain/similarity"
	logpkg "github.com/kailas-cloud/recodex/internal/logger"
	"github.com/kailas-cloud/recodex/internal/metrics"
	catalogrepo "github.com/kailas-cloud/recodex/internal/repository/catalog"
	"github.com/kailas-cloud/recodex/internal/repository/reccache"
	chiTransport "github.com/kailas-cloud/recodex/internal/transport/chi"
	healthuc "github.com/kailas-cloud/recodex/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/recodex/internal/usecase/recommend"
	"github.com/kailas-cloud/recodex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting recodex API server",
		zap.String("build", version.String()),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_source", cfg.Catalog.Source),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	// Register metrics explicitly (no init())
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database is optional: required only for the store catalog source and the cache.
	var store db.Store
	if cfg.Database.Enabled() {
		s, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer s.Close()

		if err := s.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database")
		store = s
	}

	// Phase 1: catalog index
	products, err := loadCatalog(ctx, cfg.Catalog, store)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	idx, err := catalog.Build(products)
	if err != nil {
		logger.Fatal("Failed to build catalog index", zap.Error(err))
	}

	// Phase 2: similarity
	buildStart := time.Now()
	engine, err := recommenduc.Build(ctx, idx, recommenduc.EngineOptions{
		Mode:    similarity.Mode(cfg.Recommend.Similarity),
		Workers: cfg.Recommend.Workers,
	})
	if err != nil {
		logger.Fatal("Failed to build recommendation engine", zap.Error(err))
	}
	buildTime := time.Since(buildStart)

	metrics.CatalogProducts.Set(float64(idx.Len()))
	metrics.CatalogVocabularyTerms.Set(float64(idx.VocabularySize()))
	metrics.SimilarityBuildSeconds.Set(buildTime.Seconds())

	logger.Info("Recommendation engine ready",
		zap.Int("products", idx.Len()),
		zap.Int("vocabulary", idx.VocabularySize()),
		zap.String("similarity", cfg.Recommend.Similarity),
		zap.Duration("build_latency", buildTime),
		zap.String("fingerprint", idx.Fingerprint()),
	)

	svc := recommenduc.NewService(engine, logger).
		WithK(cfg.Recommend.K).
		WithMaxHistory(cfg.Recommend.MaxHistory)
	if cfg.Cache.Enabled {
		svc.WithCache(reccache.New(store, cfg.Catalog.KeyPrefix, time.Duration(cfg.Cache.TTLSec)*time.Second, logger))
		logger.Info("Recommendation cache enabled", zap.Int("ttl_sec", cfg.Cache.TTLSec))
	}

	// Pass a nil interface (not a typed nil pointer) when no database is configured.
	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(svc, pinger).
		WithTimeout(time.Duration(cfg.Database.PingTimeout) * time.Second)

	server := chiTransport.NewServer(svc, healthSvc, version.Version, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterOptions{
		APIKeys: cfg.Auth.APIKeys,
		CORS: chiTransport.CORSOptions{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           time.Duration(cfg.CORS.MaxAgeSec) * time.Second,
		},
		RateLimit: chiTransport.RateLimitOptions{
			Disabled: cfg.RateLimit.Disabled,
			Requests: cfg.RateLimit.Requests,
			Window:   time.Duration(cfg.RateLimit.WindowSec) * time.Second,
		},
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// loadCatalog reads the product list from the configured source.
func loadCatalog(ctx context.Context, cfg config.CatalogConfig, store db.Store) ([]product.Product, error) {
	switch cfg.Source {
	case config.CatalogSourceCSV:
		return catalogrepo.LoadCSVFile(cfg.Path)
	case config.CatalogSourceStore:
		if store == nil {
			return nil, errors.New("catalog source store requires a database")
		}
		return catalogrepo.New(store, cfg.KeyPrefix).Load(ctx)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}
