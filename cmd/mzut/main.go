package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/cache"
	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/config"
	appLog "github.com/Kejlo523/mzut-v2-pwa-sub000/internal/log"
	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/planapi"
	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/schedule"
	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	mode       string
	date       string
	once       bool
	debug      bool
}

func main() {
	// .env is optional; a missing file is fine.
	_ = godotenv.Load()

	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	appLog.Info("mzut starting", "version", "2.0.0-dev")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI/env overrides take precedence over the config file.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if album := os.Getenv("MZUT_ALBUM"); album != "" {
		conf.Album = album
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"base_url", conf.BaseURL,
		"cache_backend", conf.CacheBackend,
		"refresh", conf.RefreshCron,
		"once", flags.once,
	)

	store, err := openStore(conf)
	if err != nil {
		appLog.Error("failed to open cache store", err, "backend", conf.CacheBackend)
		os.Exit(1)
	}
	defer store.Close()

	plan := planapi.NewClient(conf.BaseURL)
	srv := web.NewServer(conf, plan, store, nil)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once {
		runOnce(ctx, srv, flags, conf.Album)
		return
	}

	// Periodic cache warming for the current week.
	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, func() {
		if err := srv.WarmCurrentWeek(ctx); err != nil {
			appLog.Error("cache warm failed", err)
		}
	}); err != nil {
		appLog.Error("invalid refresh cron expression", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	if err := web.StartServer(ctx, srv); err != nil {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}
	appLog.Info("mzut exiting")
}

// runOnce computes a single schedule view and prints it as JSON.
func runOnce(ctx context.Context, srv *web.Server, flags flagConfig, album string) {
	q := schedule.Query{
		Mode:   schedule.ParseMode(flags.mode),
		Anchor: flags.date,
		Album:  album,
	}
	sched, err := srv.Compute(ctx, q, false)
	if err != nil {
		appLog.Error("schedule computation failed", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sched); err != nil {
		appLog.Error("failed to encode schedule", err)
		os.Exit(1)
	}
}

func openStore(conf *config.Config) (cache.Store, error) {
	if conf.CacheBackend == "sqlite" {
		return cache.NewSQLiteStore(conf.CachePath, nil)
	}
	return cache.NewMemoryStore(nil), nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/mzut/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.mode, "mode", "week", "View mode for -once (day|week|month)")
	flag.StringVar(&cfg.date, "date", "", "Anchor date YYYY-MM-DD for -once (default today)")
	flag.BoolVar(&cfg.once, "once", false, "Compute one schedule view, print JSON, and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
