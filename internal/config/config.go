package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env             string
	HTTPPort        string
	RedisAddr       string
	QueueBackend    string
	JWTIssuer       string
	JWTSigningKey   string
	SessionTTL      time.Duration
	GeminiAPIKey    string
	GeminiModel     string
	GeminiBaseURL   string
	SummaryTimeout  time.Duration
	RateLimitPerMin int
	Timezone        string
	LogLevel        string
}

// Load returns application config populated from environment variables with sensible defaults.
// A .env file in the working directory is read first when present; real
// environment variables win over it.
func Load() App {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}
	return App{
		Env:             getEnv("APP_ENV", "dev"),
		HTTPPort:        getEnv("HTTP_PORT", "8081"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		QueueBackend:    getEnv("QUEUE_BACKEND", "memory"),
		JWTIssuer:       getEnv("JWT_ISSUER", "abdig"),
		JWTSigningKey:   getEnv("JWT_SIGNING_KEY", "dev-signing-secret-change"),
		SessionTTL:      durationEnv("SESSION_TTL", 8*time.Hour),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:   getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		SummaryTimeout:  durationEnv("SUMMARY_TIMEOUT", 20*time.Second),
		RateLimitPerMin: intEnv("RATE_LIMIT_PER_MIN", 30),
		Timezone:        getEnv("SCHOOL_TIMEZONE", "Asia/Jakarta"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

// Production reports whether the app runs with production settings.
func (a App) Production() bool {
	return a.Env == "production" || a.Env == "prod"
}

// Location resolves the school time zone, falling back to WIB (UTC+7).
func (a App) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		log.Printf("invalid timezone %q: %v, using WIB", a.Timezone, err)
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
