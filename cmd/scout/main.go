// cmd/scout/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	tgclient "github.com/gotd/td/telegram"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"apartment-scout/internal/bot"
	"apartment-scout/internal/common/config"
	"apartment-scout/internal/common/database"
	"apartment-scout/internal/common/logger"
	"apartment-scout/internal/criteria"
	"apartment-scout/internal/inference"
	"apartment-scout/internal/matching"
	"apartment-scout/internal/pipeline"
	"apartment-scout/internal/telegram"
	"apartment-scout/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff.
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")

	zapLog.Info("Starting apartment scout...")

	// All required credentials are checked here, before any network client
	// is constructed.
	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Metrics endpoint ---
	if cfg.Metrics.Enabled {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			http.Handle("/metrics", promhttp.Handler())
			zapLog.Info("metrics server listening", zap.String("addr", addr))
			if err := http.ListenAndServe(addr, nil); err != nil {
				zapLog.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	// --- Optional criteria cache ---
	var criteriaCache *criteria.Cache
	if cfg.Redis.Enabled() {
		rdb, err := database.NewRedis(cfg.Redis)
		if err != nil {
			zapLog.Warn("redis client init failed, criteria caching disabled", zap.Error(err))
		} else {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = rdb.Ping(pingCtx)
			cancel()
			if err != nil {
				zapLog.Warn("redis unreachable, criteria caching disabled", zap.Error(err))
			} else {
				defer rdb.Close()
				criteriaCache = criteria.NewCache(rdb.GetClient(), cfg.Redis.CriteriaTTL(), log)
				zapLog.Info("criteria cache enabled", zap.String("addr", cfg.Redis.Address))
			}
		}
	}

	// --- Inference client ---
	inferenceClient := inference.NewClient(inference.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     cfg.OpenAI.Timeout(),
		MaxRetries:  cfg.OpenAI.MaxRetries,
		RateLimit:   cfg.OpenAI.RateLimit,
		RateBurst:   cfg.OpenAI.RateBurst,
	}, log)

	// --- Channel registry ---
	channelRegistry, err := registry.LoadRegistry(cfg.Search.RegistryPath)
	if err != nil {
		zapLog.Warn("channel registry not loaded, using builtin channels",
			zap.String("path", cfg.Search.RegistryPath), zap.Error(err))
		channelRegistry = registry.Default()
	}
	channels := channelRegistry.Enabled()
	if len(channels) == 0 {
		zapLog.Fatal("no enabled channels in registry")
	}

	// --- Bot API client with retry ---
	var botAPI *tgbotapi.BotAPI
	err = retryWithBackoff(func() error {
		var err error
		botAPI, err = tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		return err
	}, 5, 2*time.Second, zapLog, "Bot API initialization")
	if err != nil {
		zapLog.Fatal("bot api failed after retries", zap.Error(err))
	}
	zapLog.Info("bot api connected", zap.String("username", botAPI.Self.UserName))

	// --- MTProto client; everything search-related runs inside its session ---
	mtproto := tgclient.NewClient(cfg.Telegram.APIID, cfg.Telegram.APIHash, tgclient.Options{
		Logger: zapLog.Named("mtproto"),
	})

	err = mtproto.Run(ctx, func(ctx context.Context) error {
		status, err := mtproto.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("auth status: %w", err)
		}
		if !status.Authorized {
			if _, err := mtproto.Auth().Bot(ctx, cfg.Telegram.BotToken); err != nil {
				return fmt.Errorf("bot auth: %w", err)
			}
		}
		zapLog.Info("mtproto session authorized")

		reader := telegram.NewReader(mtproto.API(), log)
		synthesizer := criteria.NewSynthesizer(inferenceClient, criteriaCache, log)
		matcher := matching.NewMatcher(inferenceClient, log)

		searchPipeline := pipeline.New(pipeline.Config{
			Channels:     channels,
			MessageLimit: cfg.Search.MessageLimit,
		}, synthesizer, reader, matcher, log)

		commandBot := bot.New(botAPI, searchPipeline, bot.Config{
			MaxResults:    cfg.Search.MaxResults,
			SearchTimeout: cfg.Search.Timeout(),
			PollTimeout:   cfg.Search.PollTimeoutSec,
		}, log)

		return commandBot.Run(ctx)
	})
	if err != nil && ctx.Err() == nil {
		zapLog.Fatal("mtproto client stopped", zap.Error(err))
	}

	zapLog.Info("shutdown complete")
	os.Exit(0)
}
