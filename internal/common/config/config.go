// internal/common/config/config.go
package config

import (
	"time"

	apperrors "apartment-scout/internal/common/errors"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Search   SearchConfig   `mapstructure:"search"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// TelegramConfig holds the MTProto and Bot API credentials. All three are
// required at startup.
type TelegramConfig struct {
	APIID    int    `mapstructure:"api_id"`
	APIHash  string `mapstructure:"api_hash"`
	BotToken string `mapstructure:"bot_token"`
}

// OpenAIConfig holds the inference service settings.
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"` // empty means the public API
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	TimeoutMS   int     `mapstructure:"timeout"` // milliseconds, per call
	MaxRetries  int     `mapstructure:"max_retries"`
	RateLimit   float64 `mapstructure:"rate_limit"` // requests per second
	RateBurst   int     `mapstructure:"rate_burst"`
}

func (o OpenAIConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutMS) * time.Millisecond
}

// RedisConfig configures the optional criteria cache. An empty address
// disables caching entirely.
type RedisConfig struct {
	Address        string `mapstructure:"address"`
	Password       string `mapstructure:"password"`
	DB             int    `mapstructure:"db"`
	CriteriaTTLMin int    `mapstructure:"criteria_ttl_minutes"`
}

func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

func (r RedisConfig) CriteriaTTL() time.Duration {
	return time.Duration(r.CriteriaTTLMin) * time.Minute
}

// SearchConfig holds the per-search pipeline settings.
type SearchConfig struct {
	MessageLimit  int    `mapstructure:"message_limit"` // per-channel fetch limit
	RegistryPath  string `mapstructure:"registry_path"` // channel registry JSON
	MaxResults    int    `mapstructure:"max_results"`   // replies per search
	TimeoutMS     int    `mapstructure:"timeout"`       // milliseconds, whole search
	PollTimeoutSec int   `mapstructure:"poll_timeout"`  // bot long-poll, seconds
}

func (s SearchConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Validate enforces the fatal startup contract: every required credential must
// be present before any network client is constructed.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return apperrors.NewConfigMissingError("OPENAI_API_KEY")
	}
	if c.Telegram.APIID == 0 {
		return apperrors.NewConfigMissingError("API_ID")
	}
	if c.Telegram.APIHash == "" {
		return apperrors.NewConfigMissingError("API_HASH")
	}
	if c.Telegram.BotToken == "" {
		return apperrors.NewConfigMissingError("BOT_TOKEN")
	}
	return nil
}
