package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Server         ServerConfig   `mapstructure:"server"`
	Pipeline       PipelineConfig `mapstructure:"pipeline"`
	Settings       SettingsConfig `mapstructure:"settings"`
	Templates      TemplateConfig `mapstructure:"templates"`
	Feed           FeedConfig     `mapstructure:"feed"`
	TelegramCEX    TelegramConfig `mapstructure:"telegram_cex"`
	TelegramMarket TelegramConfig `mapstructure:"telegram_market"`
	Logging        LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds the ingest/ops HTTP server configuration
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// PipelineConfig holds merge-window and bus tuning
type PipelineConfig struct {
	MergeWindow   time.Duration `mapstructure:"merge_window"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	BusBuffer     int           `mapstructure:"bus_buffer"`
}

// SettingsConfig holds the filter-settings store configuration
type SettingsConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// TemplateConfig holds the notification template store configuration
type TemplateConfig struct {
	Path string `mapstructure:"path"`
}

// FeedConfig holds the built-in exchange websocket producer configuration
type FeedConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	WSURL   string   `mapstructure:"ws_url"`
	Symbols []string `mapstructure:"symbols"`
}

// TelegramConfig holds one delivery bot's configuration
type TelegramConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
	RatePerSecond  float64       `mapstructure:"rate_per_second"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvPrefix("CRYPTOHAWK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)

	v.SetDefault("pipeline.merge_window", "30s")
	v.SetDefault("pipeline.sweep_interval", "30s")
	v.SetDefault("pipeline.bus_buffer", 64)

	v.SetDefault("settings.db_path", "./data/settings.db")
	v.SetDefault("templates.path", "configs/templates.json")

	v.SetDefault("feed.enabled", false)
	v.SetDefault("feed.ws_url", "wss://stream.binance.com:9443")

	for _, section := range []string{"telegram_cex", "telegram_market"} {
		v.SetDefault(section+".enabled", false)
		v.SetDefault(section+".max_retries", 3)
		v.SetDefault(section+".retry_delay_base", "1s")
		v.SetDefault(section+".rate_per_second", 1.0)
	}

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if c.Pipeline.MergeWindow < time.Second {
		return fmt.Errorf("pipeline.merge_window must be at least 1 second")
	}
	if c.Pipeline.SweepInterval < time.Second {
		return fmt.Errorf("pipeline.sweep_interval must be at least 1 second")
	}
	if c.Pipeline.BusBuffer < 1 {
		return fmt.Errorf("pipeline.bus_buffer must be at least 1")
	}

	if c.Templates.Path == "" {
		return fmt.Errorf("templates.path is required")
	}

	if c.Feed.Enabled {
		if c.Feed.WSURL == "" {
			return fmt.Errorf("feed.ws_url is required when feed is enabled")
		}
		if len(c.Feed.Symbols) == 0 {
			return fmt.Errorf("feed.symbols must contain at least one symbol when feed is enabled")
		}
	}

	if err := validateTelegram("telegram_cex", c.TelegramCEX); err != nil {
		return err
	}
	if err := validateTelegram("telegram_market", c.TelegramMarket); err != nil {
		return err
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

func validateTelegram(section string, tc TelegramConfig) error {
	if !tc.Enabled {
		return nil
	}
	if tc.BotToken == "" {
		return fmt.Errorf("%s.bot_token is required when %s is enabled", section, section)
	}
	if tc.ChatID == "" {
		return fmt.Errorf("%s.chat_id is required when %s is enabled", section, section)
	}
	if tc.RatePerSecond <= 0 {
		return fmt.Errorf("%s.rate_per_second must be positive", section)
	}
	return nil
}
