package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the bot process reads from the environment.
type Config struct {
	Database struct {
		URL string
	}

	// Backend is the analysis/summary/registration API.
	Backend struct {
		BaseURL         string
		SummaryTimeout  time.Duration
		RegisterTimeout time.Duration
		AnalyzeTimeout  time.Duration
	}

	// Platform is the chat platform HTTP API used to send and edit messages
	// and to resolve file download URLs.
	Platform struct {
		APIBase     string
		BotToken    string
		SendTimeout time.Duration
	}

	// Redis backs session snapshots. An empty Addr disables snapshotting and
	// sessions live only in process memory.
	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	OpenAI struct {
		APIKey string
		Model  string
	}

	HTTP struct {
		Port string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables, applying defaults.
// Timeout defaults follow the backend API contract: 25s for summary fetches,
// 60s for report analysis.
func Load() *Config {
	cfg := &Config{}

	cfg.Database.URL = getEnv("DATABASE_URL", "")

	cfg.Backend.BaseURL = getEnv("BACKEND_API_BASE_URL", "http://localhost:8000")
	cfg.Backend.SummaryTimeout = getDuration("SUMMARY_TIMEOUT_SECONDS", 25)
	cfg.Backend.RegisterTimeout = getDuration("REGISTER_TIMEOUT_SECONDS", 15)
	cfg.Backend.AnalyzeTimeout = getDuration("ANALYZE_TIMEOUT_SECONDS", 60)

	cfg.Platform.APIBase = getEnv("PLATFORM_API_BASE", "https://api.telegram.org")
	cfg.Platform.BotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.Platform.SendTimeout = getDuration("PLATFORM_SEND_TIMEOUT_SECONDS", 10)

	cfg.Redis.Addr = getEnv("SESSION_REDIS_ADDR", "")
	cfg.Redis.Password = getEnv("SESSION_REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.OpenAI.APIKey = getEnv("OPENAI_API_KEY", "")
	cfg.OpenAI.Model = getEnv("OPENAI_MODEL_CHAT", "gpt-4o-mini")

	cfg.HTTP.Port = getEnv("PORT", "8080")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultSeconds int) time.Duration {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return time.Duration(v) * time.Second
	}
	return time.Duration(defaultSeconds) * time.Second
}
