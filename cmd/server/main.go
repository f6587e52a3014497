package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"atlas/internal/country/directory"
	"atlas/internal/country/handler"
	countrymetrics "atlas/internal/country/metrics"
	"atlas/internal/country/service"
	"atlas/internal/country/store"
	"atlas/internal/platform/config"
	"atlas/internal/platform/httpserver"
	"atlas/internal/platform/logger"
	"atlas/internal/platform/metrics"
	"atlas/internal/platform/redis"
	"atlas/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/country.
func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	httpMetrics := metrics.New()
	countryMetrics := countrymetrics.New()

	client, err := directory.New(cfg.Directory.BaseURL,
		directory.WithTimeout(cfg.Directory.Timeout),
		directory.WithMetrics(countryMetrics),
	)
	if err != nil {
		return err
	}

	handlerOpts := []handler.Option{handler.WithRequestTimeout(cfg.RequestTimeout)}
	var cache store.Cache
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		redisClient, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		cache = store.NewRedisCache(redisClient.Client, cfg.Cache.TTL)
		handlerOpts = append(handlerOpts, handler.WithHealthCheck("redis", redisClient.Health))
		log.Info("using redis directory cache", "ttl", cfg.Cache.TTL)
	default:
		cache = store.NewInMemoryCache(cfg.Cache.TTL)
		log.Info("using in-memory directory cache", "ttl", cfg.Cache.TTL)
	}

	cached := store.NewCachedDirectory(client, cache,
		store.WithBreaker(circuit.New("directory",
			circuit.WithFailureThreshold(cfg.Directory.FailureThreshold),
			circuit.WithSuccessThreshold(cfg.Directory.SuccessThreshold),
		)),
		store.WithLogger(log),
		store.WithMetrics(countryMetrics),
	)

	svc := service.New(cached,
		service.WithLogger(log),
		service.WithMetrics(countryMetrics),
		service.WithBorderConcurrency(cfg.Borders.Concurrency),
		service.WithStrictBorders(cfg.Borders.Strict),
	)

	handlerOpts = append(handlerOpts, handler.WithDegraded(cached.Degraded))
	countryHandler := handler.New(svc, log, httpMetrics, handlerOpts...)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	countryHandler.Register(router)

	srv := httpserver.New(cfg.Addr, router, log)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting atlas",
			"addr", cfg.Addr,
			"directory", cfg.Directory.BaseURL,
			"strict_borders", cfg.Borders.Strict,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
