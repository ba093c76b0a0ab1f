package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingAPIKey    = errors.New("GEMINI_API_KEY environment variable is required")
	ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable is required")
)

type Config struct {
	GeminiAPIKey string
	GeminiModel  string
	DatabaseURL  string
	HTTPPort     string
	LogLevel     string
	LogFormat    string
	JWTSecret    string
	TokenTTL     time.Duration

	ChatMaxOutputTokens int32
	ChatTemperature     float32
	ConversationIdleTTL time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxyHeaders makes X-Forwarded-For and X-Real-IP the client
	// address. Only enable behind a proxy that sets them.
	TrustProxyHeaders bool
}

// LoadConfig loads a .env file when one exists and reads the environment on
// top of the defaults. It does not validate; call Validate before serving.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash-latest")
	v.SetDefault("DATABASE_URL", "mindbridge.db")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("CHAT_MAX_OUTPUT_TOKENS", 500)
	v.SetDefault("CHAT_TEMPERATURE", 0.75)
	v.SetDefault("CONVERSATION_IDLE_TTL", "24h")
	v.SetDefault("RATE_LIMIT_RPS", 1.0)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("TRUST_PROXY_HEADERS", false)
	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	ttl, err := time.ParseDuration(v.GetString("TOKEN_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	idleTTL, err := time.ParseDuration(v.GetString("CONVERSATION_IDLE_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONVERSATION_IDLE_TTL: %w", err)
	}

	cfg := &Config{
		GeminiAPIKey:        v.GetString("GEMINI_API_KEY"),
		GeminiModel:         v.GetString("GEMINI_MODEL"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		HTTPPort:            v.GetString("HTTP_PORT"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		LogFormat:           v.GetString("LOG_FORMAT"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		TokenTTL:            ttl,
		ChatMaxOutputTokens: v.GetInt32("CHAT_MAX_OUTPUT_TOKENS"),
		ChatTemperature:     float32(v.GetFloat64("CHAT_TEMPERATURE")),
		ConversationIdleTTL: idleTTL,
		RateLimitRPS:        v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:      v.GetInt("RATE_LIMIT_BURST"),
		TrustProxyHeaders:   v.GetBool("TRUST_PROXY_HEADERS"),
	}

	if cfg.ChatMaxOutputTokens <= 0 {
		return nil, fmt.Errorf("CHAT_MAX_OUTPUT_TOKENS must be positive, got %d", cfg.ChatMaxOutputTokens)
	}
	if cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be positive, got %d", cfg.RateLimitBurst)
	}
	return cfg, nil
}

// Validate checks the settings the HTTP service cannot start without.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return ErrMissingAPIKey
	}
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}
