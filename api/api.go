package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"feedcore/lib/cache"
	"feedcore/lib/env"
	"feedcore/lib/feed"
	"feedcore/lib/store"
)

type appConfig struct {
	addr  string
	db    dbConfig
	cache cacheConfig
}

type dbConfig struct {
	driver string
	dsn    string
}

type cacheConfig struct {
	enabled  bool
	addr     string
	password string
	db       int
}

func setConfig() appConfig {
	return appConfig{
		addr: env.GetString("ADDR", "127.0.0.1:8080"),
		db: dbConfig{
			driver: env.GetString("DB_DRIVER", "sqlite3"),
			dsn:    env.GetString("DB_PATH", "./feedcore.sqlite3"),
		},
		cache: cacheConfig{
			enabled:  env.GetBool("CACHE_ENABLED", true),
			addr:     env.GetString("REDIS_ADDR", "localhost:6379"),
			password: env.GetString("REDIS_PASSWORD", ""),
			db:       env.GetInt("REDIS_DB", 0),
		},
	}
}

type app struct {
	config    appConfig
	log       *zap.Logger
	store     *store.Store
	caches    *cache.Caches
	hub       *cache.Hub
	assembler *feed.Assembler
	validate  *validator.Validate
	registry  *prometheus.Registry
}

func newApp(config appConfig, log *zap.Logger, st *store.Store, caches *cache.Caches, hub *cache.Hub, assembler *feed.Assembler, registry *prometheus.Registry) *app {
	return &app{
		config:    config,
		log:       log,
		store:     st,
		caches:    caches,
		hub:       hub,
		assembler: assembler,
		validate:  validator.New(),
		registry:  registry,
	}
}

func (app *app) mount() *chi.Mux {
	route := chi.NewRouter()

	route.Route("/feed", func(r chi.Router) {
		r.Get("/home/{userID}", app.getHomeFeedHandler)
		r.Get("/recent", app.getRecentFeedHandler)
	})
	route.Route("/posts", func(r chi.Router) {
		r.Post("/", app.createPostHandler)
		r.Patch("/{postID}", app.updatePostHandler)
		r.Put("/{postID}/reaction", app.setReactionHandler)
		r.Get("/{postID}/comments", app.getCommentsHandler)
		r.Post("/{postID}/comments", app.createCommentHandler)
	})
	route.Route("/users", func(r chi.Router) {
		r.Patch("/{userID}", app.updateProfileHandler)
		r.Post("/{userID}/follow/{targetID}", app.followHandler)
		r.Delete("/{userID}/follow/{targetID}", app.unfollowHandler)
	})
	route.Get("/tags/trending", app.getTrendingTagsHandler)
	route.Get("/notifications/count/{userID}", app.getNotificationCountHandler)
	route.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	route.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	return route
}

func (app *app) run(r *chi.Mux) error {
	server := &http.Server{
		Addr:         app.config.addr,
		Handler:      r,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	app.log.Info("server listening", zap.String("addr", app.config.addr))
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
