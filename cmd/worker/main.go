package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"abdig/internal/config"
	"abdig/internal/logging"
	"abdig/internal/queue"
	"abdig/internal/report"
	"abdig/internal/store"
)

// Worker consumes summary jobs from redis, calls Gemini, and publishes the results.
func main() {
	cfg := config.Load()
	logger, err := logging.New(cfg.Production(), cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.QueueBackend != "redis" {
		logger.Fatal("worker needs QUEUE_BACKEND=redis; the in-memory backend runs inside cmd/api")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Client.Close()
	if !redisClient.Healthy(ctx) {
		logger.Warn("redis not reachable, will keep retrying", zap.String("addr", cfg.RedisAddr))
	}

	gemini := report.NewGemini(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.SummaryTimeout)
	gemini.Location = cfg.Location()
	gemini.Log = logger.Named("gemini")
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, summaries will return a placeholder")
	}

	w := &report.Worker{
		Requests:   queue.NewRedisQueue(redisClient.Client, store.SummaryRequestsKey),
		Results:    queue.NewRedisQueue(redisClient.Client, store.SummaryResultsKey),
		Summarizer: gemini,
		Timeout:    cfg.SummaryTimeout,
		Log:        logger,
	}

	logger.Info("worker started, waiting for summary jobs")
	if err := w.Run(ctx); err != nil {
		logger.Fatal("queue consume init failed", zap.Error(err))
	}
	logger.Info("worker stopped")
}
