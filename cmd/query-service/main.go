// cmd/query-service/main.go
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

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"report-query-engine/internal/common/config"
	"report-query-engine/internal/common/genai"
	"report-query-engine/internal/common/logger"
	"report-query-engine/internal/common/observability"
	"report-query-engine/internal/intent"
	"report-query-engine/internal/queries"
	"report-query-engine/internal/session"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting query service...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("query-service")
	defer obs.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Init Redis (optional classification cache) with retry ---
	var cache *redis.Client
	if cfg.Redis.Enabled {
		err = retryWithBackoff(func() error {
			cache = redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Address,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			return cache.Ping(ctx).Err()
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer cache.Close()
		zapLog.Info("Redis connected successfully")
	} else {
		zapLog.Info("Redis disabled, classification cache off")
	}

	// --- Init GenAI client ---
	ai := genai.NewClient(&genai.Config{
		BaseURL:     cfg.GenAI.BaseURL,
		APIKey:      cfg.GenAI.APIKey,
		Timeout:     config.GetDuration(cfg.GenAI.Timeout),
		MaxRetries:  cfg.GenAI.MaxRetries,
		MaxTokens:   cfg.GenAI.MaxTokens,
		Temperature: cfg.GenAI.Temperature,
	}, log)
	zapLog.Info("GenAI client initialized", zap.String("baseURL", cfg.GenAI.BaseURL))

	// --- Wire recognizer, engine and sessions ---
	recognizer := intent.NewEnhanced(&intent.EnhancedConfig{
		ConfidenceThreshold: cfg.Recognizer.ConfidenceThreshold,
		CacheTTL:            config.GetSeconds(cfg.Recognizer.CacheTTL),
	}, ai, cache, obs, log)

	engine := queries.NewEngine(&queries.Config{
		MaxFlattenDepth: cfg.Engine.MaxFlattenDepth,
	}, ai, obs, log)

	filter := session.NewFilter(ai, obs, log)

	manager := session.NewManager(&session.Config{
		IdleTTL:       config.GetSeconds(cfg.Session.IdleTTL),
		SweepInterval: config.GetSeconds(cfg.Session.SweepInterval),
	}, recognizer, engine, filter, log)
	manager.StartSweeper(ctx)

	// --- HTTP server ---
	server := NewServer(manager, cfg.App.Version, log)
	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: server.Routes(),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Query service stopped gracefully")
}
