package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/prospect-pipeline/internal/api/router"
	"github.com/wolfman30/prospect-pipeline/internal/app/bootstrap"
	appconfig "github.com/wolfman30/prospect-pipeline/internal/config"
	"github.com/wolfman30/prospect-pipeline/internal/followup"
	httpmiddleware "github.com/wolfman30/prospect-pipeline/internal/http/middleware"
	"github.com/wolfman30/prospect-pipeline/internal/observability/metrics"
	"github.com/wolfman30/prospect-pipeline/internal/preferences"
	"github.com/wolfman30/prospect-pipeline/internal/prospects"
	"github.com/wolfman30/prospect-pipeline/pkg/logging"
)

const (
	rateLimitJanitorInterval = time.Minute
	rateLimitIdleTimeout     = 10 * time.Minute
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting prospect-pipeline API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"timezone", cfg.Location().String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := buildServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer srv.close()
	srv.startBackground(ctx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	srv.waitBackground(shutdownCtx)

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// server is everything the API process owns besides the listener.
type server struct {
	handler   http.Handler
	store     *prospects.Store
	limiter   *httpmiddleware.RateLimiter
	scheduler *followup.Scheduler
	logger    *logging.Logger

	storage     *bootstrap.Storage
	redisClient *redis.Client
}

func setupMetrics() (http.Handler, *metrics.PipelineMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewPipelineMetrics(reg)
}

func buildServer(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*server, error) {
	metricsHandler, pipelineMetrics := setupMetrics()
	loc := cfg.Location()

	storage, err := bootstrap.BuildStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	srv := &server{storage: storage, logger: logger}

	srv.store = prospects.NewStore(storage.Repository, logger).
		WithEventLog(storage.Events).
		WithClock(prospects.SystemClock{Location: loc}).
		WithMetrics(pipelineMetrics)

	healthChecks := storage.HealthChecks
	srv.redisClient = bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if srv.redisClient != nil {
		client := srv.redisClient
		healthChecks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	prefsHandler := preferences.NewHandler(bootstrap.BuildPreferencesStore(srv.redisClient, logger), logger).
		WithTouchGoalFallback(cfg.TouchGoal)
	prospectsHandler := prospects.NewHandler(srv.store, logger).
		WithQueryDefaults(prefsHandler.QueryDefaults).
		WithTouchGoalDefault(prefsHandler.TouchGoal)

	sender, err := bootstrap.BuildEmailSender(ctx, cfg, logger)
	if err != nil {
		srv.close()
		return nil, err
	}
	srv.scheduler, err = bootstrap.BuildDigestScheduler(cfg, srv.store, sender, pipelineMetrics, loc, logger)
	if err != nil {
		srv.close()
		return nil, err
	}

	if cfg.RateLimitRPS > 0 {
		srv.limiter = httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set; API runs unauthenticated as the default coach")
	}

	srv.handler = router.New(&router.Config{
		Logger:             logger,
		Prospects:          prospectsHandler,
		Preferences:        prefsHandler,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        srv.limiter,
		AuthSecret:         cfg.AdminJWTSecret,
		HealthChecks:       healthChecks,
	})
	return srv, nil
}

func (s *server) startBackground(ctx context.Context) {
	if s.scheduler != nil {
		s.scheduler.Start(ctx)
	}
	if s.limiter != nil {
		go s.limiter.RunJanitor(ctx, rateLimitJanitorInterval, rateLimitIdleTimeout)
	}
}

// waitBackground blocks until a running digest finishes or ctx expires.
func (s *server) waitBackground(ctx context.Context) {
	if s.scheduler == nil {
		return
	}
	select {
	case <-s.scheduler.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("digest still running at shutdown")
	}
}

func (s *server) close() {
	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}
	if s.storage != nil {
		s.storage.Close()
	}
}
