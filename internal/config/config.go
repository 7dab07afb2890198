// Package config provides configuration management for the quant-trader application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Trading  TradingConfig  `mapstructure:"trading" validate:"required"`
	Market   MarketConfig   `mapstructure:"market" validate:"required"`
	Model    ModelConfig    `mapstructure:"model" validate:"required"`
	Feed     FeedConfig     `mapstructure:"feed" validate:"required"`
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents the optional persistence collaborator. When
// Enabled is false the pipeline runs fully in memory.
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required_if=Enabled true"`
	User           string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// TradingConfig represents staking and risk management configuration
type TradingConfig struct {
	StrategyTier       string  `mapstructure:"strategy_tier" validate:"required,strategytier"`
	InitialBankroll    float64 `mapstructure:"initial_bankroll" validate:"required,gt=0"`
	BankrollBuffer     float64 `mapstructure:"bankroll_buffer" validate:"gte=0,lt=1"`
	MaxMatchExposure   float64 `mapstructure:"max_match_exposure" validate:"required,gt=0"`
	MaxDailyLoss       float64 `mapstructure:"max_daily_loss" validate:"required,gt=0"`
	MaxConcurrentBets  int     `mapstructure:"max_concurrent_bets" validate:"required,gt=0"`
	MaxRiskScore       float64 `mapstructure:"max_risk_score" validate:"required,gt=0,lte=1"`
	DailyLossResetCron string  `mapstructure:"daily_loss_reset_cron" validate:"required"`
}

// MarketConfig represents the odds simulator configuration
type MarketConfig struct {
	Bookmaker          string  `mapstructure:"bookmaker" validate:"required"`
	MinMargin          float64 `mapstructure:"min_margin" validate:"gte=0,lt=1"`
	MaxMargin          float64 `mapstructure:"max_margin" validate:"gt=0,lt=1"`
	MovementCron       string  `mapstructure:"movement_cron" validate:"required"`
	MovementTimeFactor float64 `mapstructure:"movement_time_factor" validate:"gte=0,lte=1"`
}

// ModelConfig represents prediction model configuration
type ModelConfig struct {
	Active             string  `mapstructure:"active" validate:"required,oneof=logistic poisson ensemble"`
	LearningRate       float64 `mapstructure:"learning_rate" validate:"required,gt=0"`
	CacheTTLSeconds    int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheSweepSeconds  int     `mapstructure:"cache_sweep_seconds" validate:"required,gt=0"`
	EnableFeedbackLoop bool    `mapstructure:"enable_feedback_loop"`
}

// FeedConfig represents the event feed configuration
type FeedConfig struct {
	Source          string  `mapstructure:"source" validate:"required,oneof=synthetic external"`
	EventsPerSecond float64 `mapstructure:"events_per_second" validate:"required,gt=0"`
	ExternalAPIURL  string  `mapstructure:"external_api_url" validate:"required_if=Source external,omitempty,url"`
	ExternalAPIKey  string  `mapstructure:"external_api_key"`
	RetryMax        int     `mapstructure:"retry_max" validate:"gte=0"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
}

// ServerConfig represents the HTTP query surface configuration
type ServerConfig struct {
	Port                int `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// FeedTimeout returns the external feed request timeout as a duration
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.Feed.TimeoutSeconds) * time.Second
}
