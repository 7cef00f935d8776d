package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "test", "password",
}

type Config struct {
	Port int `env:"PORT" envDefault:"8080"`

	// DataDir holds the session/bill snapshot files. Ignored when
	// DATABASE_URL selects the Postgres-backed store.
	DataDir     string `env:"DATA_DIR" envDefault:"data"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	GatewayBaseURL   string `env:"GATEWAY_BASE_URL" envDefault:"https://api.gateway.example"`
	GatewayKeyID     string `env:"GATEWAY_KEY_ID"`
	GatewayKeySecret string `env:"GATEWAY_KEY_SECRET,required"`

	NotifyTimeoutSeconds int    `env:"NOTIFY_TIMEOUT_SECONDS" envDefault:"5"`
	CheckoutRatePerMin   int    `env:"CHECKOUT_RATE_PER_MIN" envDefault:"30"`
	LogLevel             string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.NotifyTimeoutSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if isProduction {
		if err := validateSecret("GATEWAY_KEY_SECRET", c.GatewayKeySecret); err != nil {
			return err
		}
		if c.GatewayKeyID == "" {
			log.Warn().Msg("GATEWAY_KEY_ID is empty in production: gateway order creation will be rejected upstream")
		}
	}
	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 16 {
		return fmt.Errorf("%s must be at least 16 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
