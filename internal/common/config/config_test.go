package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "apartment-scout/internal/common/errors"
)

// ==========================
// Test Helper Functions
// ==========================

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			APIID:    12345,
			APIHash:  "abc123hash",
			BotToken: "123456:bot-token",
		},
		OpenAI: OpenAIConfig{APIKey: "sk-test"},
	}
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("API_ID", "12345")
	t.Setenv("API_HASH", "abc123hash")
	t.Setenv("BOT_TOKEN", "123456:bot-token")
}

// ==========================
// Validation Tests
// ==========================

func TestValidate_RequiredCredentials(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		missing string
	}{
		{"missing openai key", func(c *Config) { c.OpenAI.APIKey = "" }, "OPENAI_API_KEY"},
		{"missing api id", func(c *Config) { c.Telegram.APIID = 0 }, "API_ID"},
		{"missing api hash", func(c *Config) { c.Telegram.APIHash = "" }, "API_HASH"},
		{"missing bot token", func(c *Config) { c.Telegram.BotToken = "" }, "BOT_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeConfigMissing, apperrors.CodeOf(err))
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestValidate_CompleteConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

// ==========================
// Defaults Tests
// ==========================

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	applyDefaults(cfg)

	assert.Equal(t, 100, cfg.Search.MessageLimit)
	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 3, cfg.OpenAI.MaxRetries)
	assert.Equal(t, "configs/channels.json", cfg.Search.RegistryPath)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestApplyDefaults_DoesNotOverrideExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.Search.MessageLimit = 25
	cfg.OpenAI.Model = "gpt-4o"

	applyDefaults(cfg)

	assert.Equal(t, 25, cfg.Search.MessageLimit)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
}

func TestApplyLegacyMessageLimit(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"valid", "50", 50},
		{"unset", "", 100},
		{"not a number", "many", 100},
		{"negative", "-5", 100},
		{"zero", "0", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MESSAGE_LIMIT", tt.value)

			cfg := validConfig()
			applyLegacyMessageLimit(cfg)
			applyDefaults(cfg)

			assert.Equal(t, tt.want, cfg.Search.MessageLimit)
		})
	}
}

// ==========================
// Load Tests
// ==========================

func TestLoad_FromEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MESSAGE_LIMIT", "42")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, 12345, cfg.Telegram.APIID)
	assert.Equal(t, "abc123hash", cfg.Telegram.APIHash)
	assert.Equal(t, "123456:bot-token", cfg.Telegram.BotToken)
	assert.Equal(t, 42, cfg.Search.MessageLimit)
}

func TestLoad_MissingCredentialIsFatal(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BOT_TOKEN", "")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigMissing, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestRedisConfig_Enabled(t *testing.T) {
	assert.False(t, RedisConfig{}.Enabled())
	assert.True(t, RedisConfig{Address: "localhost:6379"}.Enabled())
}
