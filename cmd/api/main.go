package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/schooladmin/schooladmin/internal/app"
	"github.com/schooladmin/schooladmin/internal/config"
	"github.com/schooladmin/schooladmin/internal/httpapi"
	"github.com/schooladmin/schooladmin/internal/httpmiddleware"
	"github.com/schooladmin/schooladmin/internal/logging"
	"github.com/schooladmin/schooladmin/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := runHTTP(cfg, logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, logger *zap.Logger) error {
	ctx := context.Background()

	db, err := app.OpenDB(ctx, cfg, logger)
	if err != nil {
		return errors.Wrap(err, "database")
	}
	defer func() { _ = db.Close() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var (
		redisClient *store.Redis
		limiter     httpmiddleware.Limiter
	)
	switch cfg.RateLimitStore {
	case "redis":
		redisClient, err = store.NewRedis(cfg.RedisAddr)
		if err != nil {
			return errors.Wrap(err, "redis")
		}
		defer func() { _ = redisClient.Close() }()
		if !redisClient.Healthy(ctx) {
			logger.Warn("redis not reachable, rate limiting fails open until it is", zap.String("addr", cfg.RedisAddr))
		}
		limiter = httpmiddleware.NewRedisLimiter(redisClient.Client, cfg.RateLimitPerMin)
	case "off", "none":
	default:
		limiter = httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	}

	svc := app.NewServices(db, logger, reg)
	r := httpapi.NewRouter(httpapi.Deps{
		Students:  svc.Students,
		Recorder:  svc.Recorder,
		Viewer:    svc.Viewer,
		Collector: svc.Collector,
		Ledger:    svc.Ledger,
		Dashboard: svc.Dashboard,
		DB:        db,
		Redis:     redisClient,
		Limiter:   limiter,
		Registry:  reg,
		Log:       logger,
		Now:       time.Now,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}
