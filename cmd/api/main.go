package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"abdig/internal/attendance"
	"abdig/internal/config"
	"abdig/internal/handler"
	"abdig/internal/httpmiddleware"
	"abdig/internal/logging"
	"abdig/internal/queue"
	"abdig/internal/report"
	"abdig/internal/roster"
	"abdig/internal/session"
	"abdig/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Production(), cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	// Set Gin mode based on environment
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

// summaryGrace covers queueing on top of the generator timeout.
const summaryGrace = 10 * time.Second

func runHTTP(cfg config.App, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc := cfg.Location()
	ctl := session.NewController(
		roster.NewDirectory(roster.SeedUsers()),
		attendance.NewJournal(attendance.SeedRecords(time.Now().In(loc).Format(attendance.DateLayout))),
		roster.DefaultSchool,
		loc,
		session.WithLogger(logger.Named("session")),
		session.WithSummaryDeadline(cfg.SummaryTimeout+summaryGrace),
	)

	var (
		redisClient   *store.Redis
		jobs, results queue.Queue
	)
	if cfg.QueueBackend == "redis" {
		redisClient = store.NewRedis(cfg.RedisAddr)
		if !redisClient.Healthy(ctx) {
			logger.Warn("redis not reachable at startup", zap.String("addr", cfg.RedisAddr))
		}
		jobs = queue.NewRedisQueue(redisClient.Client, store.SummaryRequestsKey)
		results = queue.NewRedisQueue(redisClient.Client, store.SummaryResultsKey)
		logger.Info("summary jobs go to redis; run cmd/worker to process them")
	} else {
		jobs = queue.NewInMemory(64)
		results = queue.NewInMemory(64)
		w := &report.Worker{
			Requests:   jobs,
			Results:    results,
			Summarizer: newGemini(cfg, loc, logger),
			Timeout:    cfg.SummaryTimeout,
			Log:        logger.Named("worker"),
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Error("summary worker stopped", zap.Error(err))
			}
		}()
	}
	go func() {
		apply := func(r report.Result) bool { return ctl.ApplySummary(r.Ticket, r.Text) }
		if err := report.Deliver(ctx, results, apply, logger.Named("deliver")); err != nil {
			logger.Error("summary delivery stopped", zap.Error(err))
		}
	}()

	h := handler.New(ctl, jobs, redisClient, handler.Options{
		JWTIssuer:       cfg.JWTIssuer,
		JWTSigningKey:   cfg.JWTSigningKey,
		SessionTTL:      cfg.SessionTTL,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Log:             logger.Named("http"),
	})

	r := gin.New()

	r.Use(gin.Recovery())

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           24 * time.Hour,
	}))

	r.Use(securityHeaders())
	r.Use(httpmiddleware.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("queue", cfg.QueueBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")
	cancel()

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Client.Close()
	}

	logger.Info("server exited")
	return nil
}

func newGemini(cfg config.App, loc *time.Location, logger *zap.Logger) *report.Gemini {
	g := report.NewGemini(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.SummaryTimeout)
	g.Location = loc
	g.Log = logger.Named("gemini")
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, summaries will return a placeholder")
	}
	return g
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
