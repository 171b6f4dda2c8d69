package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/loan-calculator/internal/cache"
	"github.com/iwvelando/loan-calculator/internal/logging"
	"github.com/iwvelando/loan-calculator/internal/server"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"go.uber.org/zap"
)

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override, e.g. :8080")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": %q}\n", *configLocation, err.Error())
		os.Exit(1)
	}
	if *address != "" {
		cfg.Address = *address
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	responseCache, closeCache := newCache(logger, cfg.Cache)
	defer closeCache()

	handler := server.New(logger, cfg, responseCache)
	defer handler.Close()

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting loan-calculator server",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.Int64("maxBodySize", cfg.BodySizeBytes()),
			zap.Int("rateLimitRequests", cfg.RateLimit.Requests),
			zap.Duration("rateLimitWindow", cfg.RateLimit.Window),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return
	case sig := <-quit:
		logger.Info("shutting down server",
			zap.String("op", "main"),
			zap.String("signal", sig.String()),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("error during server shutdown",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	logger.Info("server exited", zap.String("op", "main"))
}

// newCache builds the configured response cache. A nil cache disables caching.
func newCache(logger *zap.Logger, cfg server.CacheConfig) (cache.Cache, func()) {
	if !cfg.Enabled {
		return nil, func() {}
	}

	if cfg.RedisAddr == "" {
		logger.Info("using in-memory response cache",
			zap.String("op", "main"),
			zap.Int("maxEntries", cfg.MaxEntries),
		)
		return cache.NewMemory(cfg.MaxEntries, cfg.TTL), func() {}
	}

	rc := cache.NewRedis(cfg.RedisAddr, cfg.TTL)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		// Misses are served from the calculator, so an unreachable redis only
		// costs the cache.
		logger.Warn("redis is unreachable, responses will be computed on every request",
			zap.String("op", "main"),
			zap.String("redisAddr", cfg.RedisAddr),
			zap.Error(err),
		)
	}
	return rc, func() {
		if err := rc.Close(); err != nil {
			logger.Warn("failed to close redis client",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}
