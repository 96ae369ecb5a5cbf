package config

import (
	"os"
	"strconv"
	"time"

	"cardtable/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	// Durable store (required)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Optional match archive
	DatabaseURL string

	LogLevel string
	LogJSON  bool

	AllowedOrigin string
	StaticDir     string

	// Per-IP websocket connection limiter
	WSRateLimit  int
	WSRateWindow time.Duration

	// Snapshot expiry; zero keeps rooms forever
	SnapshotTTL time.Duration
}

// Load reads configuration from the environment, falling back to .env.
func Load() *Config {
	_ = godotenv.Load()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		logger.Fatal("REDIS_ADDR is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./web"
	}

	cfg := &Config{
		AppPort:       port,
		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		LogJSON:       os.Getenv("LOG_JSON") == "true",
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
		StaticDir:     staticDir,
		WSRateLimit:   envInt("WS_RATE_LIMIT", 30),
		WSRateWindow:  time.Duration(envInt("WS_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}

	if hours := envInt("SNAPSHOT_TTL_HOURS", 0); hours > 0 {
		cfg.SnapshotTTL = time.Duration(hours) * time.Hour
	}

	return cfg
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
