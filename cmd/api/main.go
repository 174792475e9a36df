package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bistro/internal/api"
	"bistro/internal/catalog"
	"bistro/internal/cms"
	"bistro/internal/config"
	"bistro/internal/domain"
	"bistro/internal/events"
	"bistro/internal/logging"
	"bistro/internal/metrics"
	"bistro/internal/models"
	"bistro/internal/repository"
	"bistro/internal/service"
	"bistro/internal/session"
	"bistro/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config, but starting API application. Check your config.")
	}

	static, categories := loadStaticMenu(cfg, logger)

	redisClient := initRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	cache := initCache(redisClient, cfg, logger)

	bus := events.NewEventBus()
	bus.Subscribe(func(e *events.Event) error {
		metrics.IncStoreEvent(e.Type)
		return nil
	}, events.StoreEventTypes...)

	cmsClient := cms.NewClient(cfg.CMS, logging.Component(logger, "cms"))
	cmsClient.UseCache(cache, cfg.CMS.CacheTTL())

	cat := catalog.NewCatalog(cmsClient, static, categories, bus, logging.Component(logger, "catalog"))
	registry := session.NewRegistry(cfg.Session.IdleTTL(), bus, logging.Component(logger, "sessions"))
	defer registry.CloseAll()

	serviceLogger := logging.Component(logger, "service")
	deps := api.Deps{
		Catalog:  cat,
		Sessions: registry,
		Auth:     service.NewAuthService(cmsClient, cache, cfg.Auth.LoginAttempts, cfg.Auth.LoginWindow(), serviceLogger),
		Reviews:  service.NewReviewService(cmsClient, bus, serviceLogger),
		Menu:     service.NewMenuService(cmsClient, cat, bus, serviceLogger),
		Ready: func(context.Context) error {
			if cat.RefreshedAt().IsZero() && len(static) == 0 {
				return errors.New("menu is not loaded yet")
			}
			return nil
		},
	}
	httpServer := api.NewHTTPServer(&cfg.API, deps, logging.Component(logger, "http"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, logger)

	go registry.Run(ctx, cfg.Session.SweepInterval())

	refresher := worker.NewMenuRefresher(cat, cfg.Menu.RefreshInterval(), worker.RetryPolicy{}, logging.Component(logger, "menu-refresher"))
	go refresher.Start(ctx)

	return startServer(ctx, httpServer, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, logging.Component(baseLogger, "api-main"), closer, nil
}

// loadStaticMenu читает статическое меню. Без файла приложение работает
// только с меню из CMS. Плитки из файла меню заменяют плитки из конфига.
func loadStaticMenu(cfg *config.Config, logger *zerolog.Logger) (catalog.Buckets, []models.Category) {
	menuPath := os.Getenv("MENU_PATH")
	if menuPath == "" {
		menuPath = cfg.Menu.Path
	}
	categories := cfg.Menu.Categories
	if menuPath == "" {
		return nil, categories
	}

	static, fileCategories, err := catalog.LoadStaticMenu(menuPath)
	if err != nil {
		logger.Warn().Err(err).Str("menu_path", menuPath).Msg("static menu unavailable")
		return nil, categories
	}
	if len(fileCategories) > 0 {
		if err := config.ValidateCategories(fileCategories); err != nil {
			logger.Warn().Err(err).Str("menu_path", menuPath).Msg("invalid categories in static menu, using config")
		} else {
			categories = fileCategories
		}
	}

	logger.Info().Str("menu_path", menuPath).Int("items", static.Len()).Msg("static menu loaded")
	return static, categories
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with in-memory cache")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initCache: Redis с резервным in-memory кэшем, без Redis только память.
func initCache(redisClient *redis.Client, cfg *config.Config, logger *zerolog.Logger) domain.CacheRepository {
	memory := repository.NewMemoryCacheRepository()
	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisCacheRepository(redisClient, cfg.Redis.Prefix)
	return repository.NewFailoverCacheRepository(primary, memory, logging.Component(logger, "cache"))
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			errCh <- err
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		logger.Error().Err(err).Msg("http server stopped")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
