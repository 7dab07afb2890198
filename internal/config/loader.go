// Package config provides configuration management for the quant-trader application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix("QUANT_TRADER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields, tolerating a missing config file
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix("QUANT_TRADER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "quant-trader")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("trading.strategy_tier", "moderate")
	v.SetDefault("trading.initial_bankroll", 10000.0)
	v.SetDefault("trading.bankroll_buffer", 0.05)
	v.SetDefault("trading.max_match_exposure", 500.0)
	v.SetDefault("trading.max_daily_loss", 1000.0)
	v.SetDefault("trading.max_concurrent_bets", 10)
	v.SetDefault("trading.max_risk_score", 0.8)
	v.SetDefault("trading.daily_loss_reset_cron", "0 0 * * *")

	v.SetDefault("market.bookmaker", "simulated")
	v.SetDefault("market.min_margin", 0.02)
	v.SetDefault("market.max_margin", 0.08)
	v.SetDefault("market.movement_cron", "@every 30s")
	v.SetDefault("market.movement_time_factor", 0.5)

	v.SetDefault("model.active", "ensemble")
	v.SetDefault("model.learning_rate", 0.01)
	v.SetDefault("model.cache_ttl_seconds", 300)
	v.SetDefault("model.cache_sweep_seconds", 600)
	v.SetDefault("model.enable_feedback_loop", true)

	v.SetDefault("feed.source", "synthetic")
	v.SetDefault("feed.events_per_second", 2.0)
	v.SetDefault("feed.retry_max", 3)
	v.SetDefault("feed.timeout_seconds", 10)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 10)
	v.SetDefault("server.write_timeout_seconds", 10)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// ReloadFromEnv reloads the configuration from an alternate path set in the
// environment
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv("QUANT_TRADER_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}
	return nil
}
