package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/puckydev/puckswap-client-go/config"
	"github.com/puckydev/puckswap-client-go/statecache"
	"github.com/puckydev/puckswap-client-go/streams/monitor"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	rootLogHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	})
	rootLogger := slog.New(rootLogHandler)
	prometheusRegistry := prometheus.DefaultRegisterer

	// Create a context that cancels when the OS sends an interrupt (Ctrl+C) or termination signal.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache, err := statecache.New(rootLogger.With("component", "statecache"), prometheusRegistry)
	if err != nil {
		rootLogger.Error("Failed to initialize state cache", "error", err)
		os.Exit(1)
	}

	feed, err := monitor.NewClient(ctx, monitor.Config{
		URL:        cfg.FeedURL,
		Logger:     rootLogger.With("component", "monitor"),
		BufferSize: cfg.BufferSize,
		Registry:   prometheusRegistry,
	})
	if err != nil {
		rootLogger.Error("Failed to initialize pool-state feed", "error", err)
		os.Exit(1)
	}

	rootLogger.Info("Client started",
		"feed_url", cfg.FeedURL,
		"default_slippage_bps", cfg.DefaultSlippageToleranceBps,
	)

	for {
		select {
		case <-ctx.Done():
			rootLogger.Info("Shutting down.")
			return
		case err, ok := <-feed.Err():
			if !ok {
				return
			}
			rootLogger.Error("Feed failed", "error", err)
			return
		case snapshot, ok := <-feed.Snapshots():
			if !ok {
				return
			}
			monitor.Feed(cache, snapshot)
			rootLogger.Info("Pool state updated",
				"slot", snapshot.Slot,
				"pools", len(snapshot.Pools),
			)
		}
	}
}

func loadConfig() (*config.ClientConfig, error) {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file.")
	flag.Parse()
	log.Printf("Loading configuration from: %s", *configPath)
	return config.LoadConfig(*configPath)
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
