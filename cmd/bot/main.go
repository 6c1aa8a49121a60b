package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"matruraksha-bot/internal/api"
	"matruraksha-bot/internal/config"
	"matruraksha-bot/internal/core"
	"matruraksha-bot/internal/db"
	httpserver "matruraksha-bot/internal/http"
	"matruraksha-bot/internal/llm"
	"matruraksha-bot/internal/session"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := newLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	database, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	if err := db.Migrate(context.Background(), database); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	repo := db.NewRepository(database, logger)

	backend := api.NewBackendClient(
		cfg.Backend.BaseURL,
		cfg.Backend.SummaryTimeout,
		cfg.Backend.RegisterTimeout,
		cfg.Backend.AnalyzeTimeout,
		logger,
	)
	messenger := api.NewMessenger(cfg.Platform.APIBase, cfg.Platform.BotToken, cfg.Platform.SendTimeout, logger)

	var kv session.KVStore
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		kv = session.NewRedisKVStore(client)
		logger.Info("session snapshots enabled", zap.String("redis_addr", cfg.Redis.Addr))
	}
	sessions := session.NewStore(kv, logger)

	var answerer core.Answerer
	if cfg.OpenAI.APIKey != "" {
		answerer = llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	} else {
		logger.Warn("OPENAI_API_KEY not set, free-text questions get the help reply")
	}

	bot := core.NewBot(sessions, repo, backend, messenger, answerer, logger)
	server := httpserver.NewServer(bot, logger)

	addr := ":" + cfg.HTTP.Port
	logger.Info("bot listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, server); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	if format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
