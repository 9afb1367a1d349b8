package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"btl-quote/catalog"
	"btl-quote/config"
	httpLayer "btl-quote/http"
	"btl-quote/repository"
	"btl-quote/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger := cfg.NewLogger()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatalf("load catalog: %v", err)
	}

	cache, closeCache := newCache(cfg, logger)
	defer closeCache()

	quoteService := service.NewQuoteService(cat, cache, logger)
	submissionService := service.NewSubmissionService(quoteService, cfg.WebhookURL, cfg.WebhookTimeout, logger)
	if cfg.WebhookURL == "" {
		logger.Warn("WEBHOOK_URL not set, quote submission is disabled")
	}

	quoteHandler := httpLayer.NewQuoteHandler(quoteService, submissionService, logger)

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	defer rateLimiter.Stop()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpLayer.NewRouter(quoteHandler, rateLimiter, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15*time.Second + 2*cfg.WebhookTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.WithField("addr", server.Addr).Info("quote API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.WithError(err).Error("server failed")
		return
	case <-quit:
		logger.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("server shutdown")
	}

	logger.Info("server exited")
}

// newCache connects to Redis when configured and reachable, otherwise it
// falls back to the in-memory cache.
func newCache(cfg *config.Config, logger *logrus.Logger) (repository.CacheRepository, func()) {
	memory := repository.NewMemoryCache(cfg.CacheSize, cfg.CacheTTL)
	if cfg.RedisAddr == "" {
		logger.Info("using in-memory quote cache")
		return memory, func() {}
	}

	redisCache := repository.NewRedisCache(cfg.RedisAddr, cfg.CacheTTL)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisCache.Ping(ctx); err != nil {
		logger.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unreachable, using in-memory quote cache")
		_ = redisCache.Close()
		return memory, func() {}
	}

	logger.WithField("addr", cfg.RedisAddr).Info("using redis quote cache")
	return redisCache, func() {
		if err := redisCache.Close(); err != nil {
			logger.WithError(err).Warn("close redis")
		}
	}
}
