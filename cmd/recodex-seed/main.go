// Command recodex-seed imports a products CSV into Valkey/Redis so that the API
// can run with catalog.source: store.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/config"
	dbValkey "github.com/kailas-cloud/recodex/internal/db/valkey"
	"github.com/kailas-cloud/recodex/internal/domain/catalog"
	logpkg "github.com/kailas-cloud/recodex/internal/logger"
	catalogrepo "github.com/kailas-cloud/recodex/internal/repository/catalog"
)

func main() {
	var (
		csvPath   = flag.String("csv", "data/products.csv", "products CSV to import")
		addr      = flag.String("addr", "", "database address (default: from config)")
		keyPrefix = flag.String("key-prefix", "", "key prefix (default: from config)")
	)
	flag.Parse()

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

	addrs := cfg.Database.Addrs
	if *addr != "" {
		addrs = []string{*addr}
	}
	prefix := cfg.Catalog.KeyPrefix
	if *keyPrefix != "" {
		prefix = *keyPrefix
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	products, err := catalogrepo.LoadCSVFile(*csvPath)
	if err != nil {
		logger.Fatal("Failed to read CSV", zap.Error(err))
	}
	// Same checks the API runs at startup: reject what it would refuse to serve.
	idx, err := catalog.Build(products)
	if err != nil {
		logger.Fatal("Catalog rejected", zap.Error(err))
	}

	store, err := dbValkey.NewStore(dbValkey.Config{Addrs: addrs, Password: cfg.Database.Password})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	if err := catalogrepo.New(store, prefix).Save(ctx, idx.All()); err != nil {
		logger.Fatal("Failed to save catalog", zap.Error(err))
	}

	logger.Info("Catalog imported",
		zap.String("csv", *csvPath),
		zap.Int("products", idx.Len()),
		zap.Int("vocabulary", idx.VocabularySize()),
		zap.String("key_prefix", prefix),
		zap.String("fingerprint", idx.Fingerprint()),
	)
}
