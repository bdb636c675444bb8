package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/cryptohawk/cryptohawk/internal/bus"
	"github.com/cryptohawk/cryptohawk/internal/config"
	"github.com/cryptohawk/cryptohawk/internal/feed"
	"github.com/cryptohawk/cryptohawk/internal/logger"
	"github.com/cryptohawk/cryptohawk/internal/merge"
	"github.com/cryptohawk/cryptohawk/internal/models"
	"github.com/cryptohawk/cryptohawk/internal/processor"
	"github.com/cryptohawk/cryptohawk/internal/server"
	"github.com/cryptohawk/cryptohawk/internal/settings"
	"github.com/cryptohawk/cryptohawk/internal/telegram"
	"github.com/cryptohawk/cryptohawk/internal/templates"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	tmplStore, err := templates.Load(cfg.Templates.Path)
	if err != nil {
		logger.Fatal("Failed to load templates: %v", err)
	}
	logger.Info("Loaded %d notification templates", tmplStore.Len())

	settingsStore, err := settings.Open(cfg.Settings.DBPath)
	if err != nil {
		logger.Fatal("Failed to open settings store: %v", err)
	}
	defer func() {
		if err := settingsStore.Close(); err != nil {
			logger.Error("Failed to close settings store: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cexStore := merge.NewStore(cfg.Pipeline.MergeWindow)
	marketStore := merge.NewStore(cfg.Pipeline.MergeWindow)
	cexStore.StartSweeper(ctx, cfg.Pipeline.SweepInterval)
	marketStore.StartSweeper(ctx, cfg.Pipeline.SweepInterval)

	cexBus := bus.New("cex")
	marketBus := bus.New("market_stats")
	defer cexBus.Close()
	defer marketBus.Close()

	cexProc := processor.New(models.DomainCEX, settingsStore, tmplStore, cexStore, cexBus)
	marketProc := processor.New(models.DomainMarketStats, settingsStore, tmplStore, marketStore, marketBus)

	startSink(ctx, "CEX", cfg.TelegramCEX, cexBus, cfg.Pipeline.BusBuffer, settingsStore)
	startSink(ctx, "MarketStats", cfg.TelegramMarket, marketBus, cfg.Pipeline.BusBuffer, settingsStore)

	if cfg.Feed.Enabled {
		f := feed.New(cfg.Feed.WSURL, cfg.Feed.Symbols, cexProc.Process, marketProc.Process)
		go f.Run(ctx)
		logger.Info("Exchange feed started for %d symbol(s)", len(cfg.Feed.Symbols))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	srv := server.New(cfg.Server.Port, cexProc, marketProc)
	logger.Info("Starting event pipeline (merge window: %v, port: %d)", cfg.Pipeline.MergeWindow, cfg.Server.Port)
	if err := srv.Run(ctx); err != nil {
		logger.Fatal("HTTP server failed: %v", err)
	}
	logger.Info("Service stopped")
}

// startSink attaches one Telegram sink to a domain bus when configured.
func startSink(ctx context.Context, name string, tc config.TelegramConfig, b *bus.Bus, buffer int, store *settings.Store) {
	if !tc.Enabled {
		logger.Debug("%s Telegram delivery disabled", name)
		return
	}
	sink, err := telegram.NewSink(name, tc.BotToken, tc.ChatID, tc.MaxRetries, tc.RetryDelayBase, tc.RatePerSecond)
	if err != nil {
		logger.Fatal("Failed to initialize %s Telegram sink: %v", name, err)
	}
	sink.ListenForCommands(ctx, func() string { return formatStatus(store) })
	go sink.Run(ctx, b.Subscribe(buffer))
	logger.Info("%s Telegram sink initialized", name)
}

// formatStatus renders the per-category active flags for the /status command.
func formatStatus(store *settings.Store) string {
	all, err := store.All()
	if err != nil {
		return fmt.Sprintf("Failed to read settings: %v", err)
	}
	if len(all) == 0 {
		return ""
	}
	cats := make([]string, 0, len(all))
	for cat := range all {
		cats = append(cats, string(cat))
	}
	sort.Strings(cats)

	var b strings.Builder
	b.WriteString("Category status:\n")
	for _, cat := range cats {
		state := "off"
		if all[models.Category(cat)].Active {
			state = "on"
		}
		fmt.Fprintf(&b, "%s: %s\n", cat, state)
	}
	return strings.TrimRight(b.String(), "\n")
}
