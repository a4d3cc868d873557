package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/notabhay/ghibligroceries/internal/ai/gemini"
	"github.com/notabhay/ghibligroceries/internal/ai/openai"
	"github.com/notabhay/ghibligroceries/internal/cache"
	"github.com/notabhay/ghibligroceries/internal/config"
	"github.com/notabhay/ghibligroceries/internal/domain"
	logpkg "github.com/notabhay/ghibligroceries/internal/logger"
	"github.com/notabhay/ghibligroceries/internal/metrics"
	catalogrepo "github.com/notabhay/ghibligroceries/internal/repository/catalog"
	"github.com/notabhay/ghibligroceries/internal/repository/catcache"
	"github.com/notabhay/ghibligroceries/internal/transport/httpapi"
	browseuc "github.com/notabhay/ghibligroceries/internal/usecase/browse"
	healthuc "github.com/notabhay/ghibligroceries/internal/usecase/health"
	searchuc "github.com/notabhay/ghibligroceries/internal/usecase/search"
	"github.com/notabhay/ghibligroceries/internal/version"
)

// enhancer is what the search path and the health probe need from an AI
// provider.
type enhancer interface {
	Enhance(ctx context.Context, prompt string) (string, error)
	HealthCheck(ctx context.Context) error
}

func main() {
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

	logger.Info("Starting ghibligroceries API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.Bool("fallback_enabled", cfg.FallbackEnabled()),
	)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	catalog := catalogrepo.New(pool, logger)

	// Optional read-through cache for catalog browsing.
	var store *cache.Store
	browseCatalog := browseuc.Catalog(catalog)
	if cfg.Cache.Enabled {
		store, err = cache.NewStore(cache.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		browseCatalog = catcache.New(
			catalog, store,
			time.Duration(cfg.Cache.CategoryTTLSec)*time.Second,
			time.Duration(cfg.Cache.ProductTTLSec)*time.Second,
			metrics.CatalogCacheTotal,
			logger,
		)
		logger.Info("Catalog cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	enh := buildEnhancer(cfg, logger)

	// The search prompt context reads categories through the same cached
	// reader as browsing; search queries themselves always hit Postgres.
	searchCat := searchuc.Catalog(catalog)
	if cfg.Cache.Enabled {
		searchCat = cachedContextCatalog{Repository: catalog, reader: browseCatalog}
	}

	searchSvc := searchuc.New(searchCat, enh, logger).
		WithFallback(cfg.FallbackEnabled()).
		WithLimit(cfg.Search.DefaultLimit)
	browseSvc := browseuc.New(browseCatalog, logger).
		WithFeaturedCount(cfg.Search.FeaturedCount).
		WithMaxFeaturedCount(cfg.Search.MaxFeaturedCount)

	// Pass nil interface (not typed nil pointer!) when cache is off.
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(catalog, cachePinger, enh)

	server := httpapi.NewServer(searchSvc, browseSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(httpapi.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(httpapi.WideEvent(logger))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// cachedContextCatalog serves the search path: category context comes
// from the cached reader, the ranked queries from the repository.
type cachedContextCatalog struct {
	*catalogrepo.Repository
	reader browseuc.Catalog
}

func (c cachedContextCatalog) Categories(ctx context.Context) ([]domain.Category, error) {
	return c.reader.Categories(ctx)
}

// buildEnhancer picks the configured AI provider.
func buildEnhancer(cfg config.Config, logger *zap.Logger) enhancer {
	timeout := time.Duration(cfg.AI.TimeoutSec) * time.Second

	switch cfg.AI.Provider {
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:      cfg.AI.OpenAI.APIKey,
			BaseURL:     cfg.AI.OpenAI.BaseURL,
			Model:       cfg.AI.OpenAI.Model,
			Temperature: cfg.AI.Temperature,
			Timeout:     timeout,
			Logger:      logger,
		})
	default:
		return gemini.NewClient(gemini.Config{
			APIKey:      cfg.AI.Gemini.APIKey,
			Endpoint:    cfg.AI.Gemini.Endpoint,
			Temperature: cfg.AI.Temperature,
			Timeout:     timeout,
			Logger:      logger,
		})
	}
}
