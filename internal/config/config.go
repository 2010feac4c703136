// Package config loads the service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/nyinsen/internal/llm"
	"github.com/terraincognita07/nyinsen/internal/scheduler"
	"go-simpler.org/env"
)

const minSecretKeyLength = 32

var placeholderSecrets = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type Config struct {
	AppEnv       string        `env:"APP_ENV" default:"development"`
	Port         int           `env:"PORT" default:"8080"`
	DBPath       string        `env:"DB_PATH" default:"data/nyinsen.db"`
	TZ           string        `env:"TZ" default:"UTC"`
	SecretKey    string        `env:"SECRET_KEY"`
	CookieSecure bool          `env:"COOKIE_SECURE" default:"false"`
	SessionTTL   time.Duration `env:"SESSION_TTL" default:"168h"`
	LogLevel     string        `env:"LOG_LEVEL" default:"info"`
	LogFormat    string        `env:"LOG_FORMAT" default:"text"`

	ChatProvider    string        `env:"CHAT_PROVIDER" default:"anthropic"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string        `env:"ANTHROPIC_MODEL"`
	AnthropicURL    string        `env:"ANTHROPIC_URL"`
	GeminiAPIKey    string        `env:"GEMINI_API_KEY"`
	GeminiModel     string        `env:"GEMINI_MODEL"`
	GeminiURL       string        `env:"GEMINI_URL"`
	ChatMaxTokens   int           `env:"CHAT_MAX_TOKENS" default:"500"`
	ChatRateLimit   int           `env:"CHAT_RATE_LIMIT" default:"10"`
	ChatRateWindow  time.Duration `env:"CHAT_RATE_WINDOW" default:"60s"`
	RedisURL        string        `env:"REDIS_URL"`

	APIRatePerSecond float64 `env:"API_RATE_PER_SECOND" default:"20"`
	APIRateBurst     int     `env:"API_RATE_BURST" default:"40"`

	TelegramBotToken   string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID     int64  `env:"TELEGRAM_CHAT_ID"`
	TelegramReminders  bool   `env:"TELEGRAM_REMINDERS" default:"false"`
	PeriodReminderDays int    `env:"PERIOD_REMINDER_DAYS" default:"2"`
	NotifyFertility    bool   `env:"NOTIFY_FERTILITY" default:"true"`
	ReminderCron       string `env:"REMINDER_CRON" default:"0 9 * * *"`

	location *time.Location
}

// Load reads an optional .env file, decodes the environment and validates
// the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if err := ValidateSecretKey(cfg.SecretKey); err != nil {
		return err
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return errors.New("DB_PATH is required")
	}

	location, err := time.LoadLocation(cfg.TZ)
	if err != nil {
		return fmt.Errorf("TZ %q is not a known time zone: %w", cfg.TZ, err)
	}
	cfg.location = location

	if cfg.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}

	switch strings.ToLower(cfg.ChatProvider) {
	case llm.ProviderAnthropic, llm.ProviderGemini, llm.ProviderDisabled:
		cfg.ChatProvider = strings.ToLower(cfg.ChatProvider)
	default:
		return fmt.Errorf("CHAT_PROVIDER must be one of anthropic, gemini, disabled, got %q", cfg.ChatProvider)
	}
	if cfg.ChatMaxTokens <= 0 {
		return errors.New("CHAT_MAX_TOKENS must be positive")
	}
	if cfg.ChatRateLimit <= 0 {
		return errors.New("CHAT_RATE_LIMIT must be positive")
	}
	if cfg.ChatRateWindow < time.Second {
		return errors.New("CHAT_RATE_WINDOW must be at least 1s")
	}
	if cfg.APIRatePerSecond <= 0 || cfg.APIRateBurst <= 0 {
		return errors.New("API_RATE_PER_SECOND and API_RATE_BURST must be positive")
	}

	if cfg.TelegramBotToken != "" && cfg.TelegramChatID == 0 {
		return errors.New("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	if cfg.PeriodReminderDays < 0 {
		return errors.New("PERIOD_REMINDER_DAYS must not be negative")
	}
	if err := scheduler.ValidateSpec(cfg.ReminderCron); err != nil {
		return fmt.Errorf("REMINDER_CRON: %w", err)
	}

	return nil
}

// ValidateSecretKey rejects empty, placeholder and short signing keys.
func ValidateSecretKey(secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return errors.New("SECRET_KEY is required")
	}
	if _, placeholder := placeholderSecrets[strings.ToLower(secret)]; placeholder {
		return errors.New("SECRET_KEY must be replaced with a random value")
	}
	if len(secret) < minSecretKeyLength {
		return fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return nil
}

// Location is the zone used to resolve "today". It is UTC until the config
// has been validated.
func (cfg *Config) Location() *time.Location {
	if cfg.location == nil {
		return time.UTC
	}
	return cfg.location
}

func (cfg *Config) Addr() string {
	return fmt.Sprintf(":%d", cfg.Port)
}

func (cfg *Config) IsProduction() bool {
	switch strings.ToLower(cfg.AppEnv) {
	case "production", "staging":
		return true
	default:
		return false
	}
}

func (cfg *Config) TelegramEnabled() bool {
	return cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0
}

// RemindersToTelegram reports whether per-user cycle reminders may go to the
// shared care-team chat. They stay in the log unless explicitly enabled.
func (cfg *Config) RemindersToTelegram() bool {
	return cfg.TelegramEnabled() && cfg.TelegramReminders
}

func (cfg *Config) LLM() llm.Config {
	return llm.Config{
		Provider:        cfg.ChatProvider,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		AnthropicModel:  cfg.AnthropicModel,
		AnthropicURL:    cfg.AnthropicURL,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
		GeminiURL:       cfg.GeminiURL,
		MaxTokens:       cfg.ChatMaxTokens,
	}
}
