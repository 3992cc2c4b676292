// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// Enable ENV override like TELEGRAM_BOT_TOKEN
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// The env names the bot has always used, without the section prefix.
	bindLegacyEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyLegacyMessageLimit(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("telegram.api_id", "API_ID")
	_ = v.BindEnv("telegram.api_hash", "API_HASH")
	_ = v.BindEnv("telegram.bot_token", "BOT_TOKEN")
	_ = v.BindEnv("redis.address", "REDIS_ADDRESS")
}

// applyLegacyMessageLimit honors the MESSAGE_LIMIT env var the bot has always
// used. An unset or invalid value falls back to the default of 100.
func applyLegacyMessageLimit(cfg *Config) {
	raw := os.Getenv("MESSAGE_LIMIT")
	if raw == "" {
		return
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		cfg.Search.MessageLimit = n
	}
}

// loadEnvFile loads .env from the working directory or any parent up to the
// module root, so the binary and the tests see the same credentials.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up the directory tree looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "apartment-scout"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.OpenAI.TimeoutMS <= 0 {
		cfg.OpenAI.TimeoutMS = 60000
	}
	if cfg.OpenAI.MaxRetries <= 0 {
		cfg.OpenAI.MaxRetries = 3
	}
	if cfg.OpenAI.RateLimit <= 0 {
		cfg.OpenAI.RateLimit = 3
	}
	if cfg.OpenAI.RateBurst <= 0 {
		cfg.OpenAI.RateBurst = 5
	}
	if cfg.Redis.CriteriaTTLMin <= 0 {
		cfg.Redis.CriteriaTTLMin = 30
	}
	// An unset or invalid MESSAGE_LIMIT falls back to 100.
	if cfg.Search.MessageLimit <= 0 {
		cfg.Search.MessageLimit = 100
	}
	if cfg.Search.RegistryPath == "" {
		cfg.Search.RegistryPath = "configs/channels.json"
	}
	if cfg.Search.MaxResults <= 0 {
		cfg.Search.MaxResults = 10
	}
	if cfg.Search.TimeoutMS <= 0 {
		cfg.Search.TimeoutMS = 300000
	}
	if cfg.Search.PollTimeoutSec <= 0 {
		cfg.Search.PollTimeoutSec = 30
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Metrics.Port <= 0 {
		cfg.Metrics.Port = 9102
	}
}
