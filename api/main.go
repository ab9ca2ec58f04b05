package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"feedcore/lib/cache"
	"feedcore/lib/feed"
	"feedcore/lib/metrics"
	"feedcore/lib/store"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("no .env file loaded: %s", err)
	}
	config := setConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %s", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	st, err := store.Open(ctx, config.db.driver, config.db.dsn, logger)
	if err != nil {
		logger.Fatal("connect primary store", zap.Error(err))
	}
	defer st.Close()
	if err := st.EnsureSchema(ctx); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	var cacheStore cache.Store
	if config.cache.enabled {
		cacheStore = cache.NewRedisStore(cache.RedisOptions{
			Addr:     config.cache.addr,
			Password: config.cache.password,
			DB:       config.cache.db,
		}, logger)
	} else {
		cacheStore = cache.NewNoopStore()
	}
	defer cacheStore.Close()
	if !cacheStore.Connect(ctx) {
		// Not fatal: every read path falls through to the primary store.
		logger.Warn("cache unavailable, serving from primary store only")
	}

	caches := cache.New(cacheStore, m)
	hub := cache.NewHub(caches)
	assembler := feed.NewAssembler(st, caches.Users, caches.Posts, logger, m)

	app := newApp(config, logger, st, caches, hub, assembler, registry)
	router := app.mount()
	if err := app.run(router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
