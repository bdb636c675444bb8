package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 3000\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Pipeline.MergeWindow != 30*time.Second {
		t.Errorf("Pipeline.MergeWindow = %v, want 30s", cfg.Pipeline.MergeWindow)
	}
	if cfg.Pipeline.BusBuffer != 64 {
		t.Errorf("Pipeline.BusBuffer = %d, want 64", cfg.Pipeline.BusBuffer)
	}
	if cfg.Templates.Path != "configs/templates.json" {
		t.Errorf("Templates.Path = %q", cfg.Templates.Path)
	}
	if cfg.Feed.Enabled {
		t.Error("feed must default to disabled")
	}
	if cfg.TelegramCEX.MaxRetries != 3 || cfg.TelegramCEX.RetryDelayBase != time.Second {
		t.Errorf("unexpected telegram defaults: %+v", cfg.TelegramCEX)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
pipeline:
  merge_window: 45s
  bus_buffer: 128
feed:
  enabled: true
  symbols:
    - BTCUSDT
telegram_cex:
  enabled: true
  bot_token: token
  chat_id: "-100123"
  rate_per_second: 0.5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Pipeline.MergeWindow != 45*time.Second {
		t.Errorf("Pipeline.MergeWindow = %v, want 45s", cfg.Pipeline.MergeWindow)
	}
	if !cfg.Feed.Enabled || len(cfg.Feed.Symbols) != 1 {
		t.Errorf("unexpected feed config: %+v", cfg.Feed)
	}
	if cfg.TelegramCEX.RatePerSecond != 0.5 {
		t.Errorf("TelegramCEX.RatePerSecond = %v, want 0.5", cfg.TelegramCEX.RatePerSecond)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() must fail on a missing file")
	}
}

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 3000},
		Pipeline: PipelineConfig{MergeWindow: 30 * time.Second, SweepInterval: 30 * time.Second, BusBuffer: 64},
		Templates: TemplateConfig{
			Path: "configs/templates.json",
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"merge window too small", func(c *Config) { c.Pipeline.MergeWindow = 100 * time.Millisecond }, true},
		{"sweep interval too small", func(c *Config) { c.Pipeline.SweepInterval = 0 }, true},
		{"bus buffer zero", func(c *Config) { c.Pipeline.BusBuffer = 0 }, true},
		{"templates path missing", func(c *Config) { c.Templates.Path = "" }, true},
		{"feed enabled without symbols", func(c *Config) { c.Feed = FeedConfig{Enabled: true, WSURL: "wss://x"} }, true},
		{"feed enabled without url", func(c *Config) { c.Feed = FeedConfig{Enabled: true, Symbols: []string{"BTCUSDT"}} }, true},
		{"telegram enabled without token", func(c *Config) {
			c.TelegramCEX = TelegramConfig{Enabled: true, ChatID: "1", RatePerSecond: 1}
		}, true},
		{"telegram enabled without chat id", func(c *Config) {
			c.TelegramMarket = TelegramConfig{Enabled: true, BotToken: "t", RatePerSecond: 1}
		}, true},
		{"telegram disabled skips checks", func(c *Config) {
			c.TelegramCEX = TelegramConfig{Enabled: false}
		}, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
