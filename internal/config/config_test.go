package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("NotifyTimeout converts seconds to duration", func(t *testing.T) {
		cfg := &Config{NotifyTimeoutSeconds: 5}
		assert.Equal(t, 5*time.Second, cfg.NotifyTimeout())
	})
}

func TestLoad(t *testing.T) {
	originalEnv := map[string]string{
		"PORT":                   os.Getenv("PORT"),
		"DATA_DIR":               os.Getenv("DATA_DIR"),
		"DATABASE_URL":           os.Getenv("DATABASE_URL"),
		"REDIS_URL":              os.Getenv("REDIS_URL"),
		"GATEWAY_KEY_SECRET":     os.Getenv("GATEWAY_KEY_SECRET"),
		"NOTIFY_TIMEOUT_SECONDS": os.Getenv("NOTIFY_TIMEOUT_SECONDS"),
		"LOG_LEVEL":              os.Getenv("LOG_LEVEL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	t.Run("loads config with defaults", func(t *testing.T) {
		os.Setenv("GATEWAY_KEY_SECRET", "unit-test-secret")
		os.Unsetenv("PORT")
		os.Unsetenv("DATA_DIR")
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("NOTIFY_TIMEOUT_SECONDS")
		os.Unsetenv("LOG_LEVEL")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "data", cfg.DataDir)
		assert.Empty(t, cfg.DatabaseURL)
		assert.Equal(t, 5, cfg.NotifyTimeoutSeconds)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("loads custom values", func(t *testing.T) {
		os.Setenv("GATEWAY_KEY_SECRET", "unit-test-secret")
		os.Setenv("PORT", "3000")
		os.Setenv("DATA_DIR", "/var/lib/checkout")
		os.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, "/var/lib/checkout", cfg.DataDir)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("fails without required GATEWAY_KEY_SECRET", func(t *testing.T) {
		os.Unsetenv("GATEWAY_KEY_SECRET")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Run("accepts any secret outside production", func(t *testing.T) {
		cfg := &Config{GatewayKeySecret: "short"}
		assert.NoError(t, cfg.Validate(false))
	})

	t.Run("rejects short secret in production", func(t *testing.T) {
		cfg := &Config{GatewayKeySecret: "short"}
		assert.Error(t, cfg.Validate(true))
	})

	t.Run("rejects known weak secret in production", func(t *testing.T) {
		cfg := &Config{GatewayKeySecret: "dev-secret-change-me"}
		assert.Error(t, cfg.Validate(true))
	})

	t.Run("accepts strong secret in production", func(t *testing.T) {
		cfg := &Config{GatewayKeySecret: "2f9c62e1a4b84d7f9f3a50c1", GatewayKeyID: "rzp_live_key"}
		assert.NoError(t, cfg.Validate(true))
	})
}
