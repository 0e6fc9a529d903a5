package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/setlog/internal/catalog"
	"github.com/meltforce/setlog/internal/config"
	"github.com/meltforce/setlog/internal/mcp"
	"github.com/meltforce/setlog/internal/progress"
	"github.com/meltforce/setlog/internal/store"
	"github.com/meltforce/setlog/internal/tracker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Serves MCP over stdio. Two modes: -url points the tools at a running
// setlog server's REST API (remote mode, e.g. over Tailscale); without it the
// data files from the config are opened directly.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	baseURL := flag.String("url", "", "base URL of a running setlog server (remote mode)")
	flag.Parse()

	// Logs go to stderr: stdout carries the MCP protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *baseURL != "" {
		ds = mcp.NewHTTPClient(*baseURL)
		log.Info("setlog-mcp starting", "version", Version, "mode", "remote", "url", *baseURL)
	} else {
		local, err := openLocal(*configPath, log)
		if err != nil {
			log.Error("failed to open local data", "error", err)
			os.Exit(1)
		}
		ds = local
		log.Info("setlog-mcp starting", "version", Version, "mode", "local")
	}

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

func openLocal(configPath string, log *slog.Logger) (*mcp.Local, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	var cat *catalog.Catalog
	if cfg.Catalog.Path != "" {
		cat, err = catalog.Load(cfg.Catalog.Path)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return nil, err
	}

	gw, err := store.NewGateway(cfg.Storage.SessionPath(), cfg.Storage.HistoryPath(), log)
	if err != nil {
		return nil, err
	}
	sessions := store.OpenSession(gw, cat, store.Limits{MaxWeightKg: cfg.Limits.MaxWeightKg, MaxRPE: cfg.Limits.MaxRPE}, log)
	history := store.OpenHistory(gw, log)

	tr := tracker.New(cat, sessions, history, tracker.Options{
		Modifier: progress.NewModifierRule(
			cfg.Training.ReducedVolume.SubtractSets,
			cfg.Training.ReducedVolume.Floor,
			cfg.Training.ReducedVolume.Categories,
		),
		DefaultRestSec:      cfg.Training.DefaultRestSec,
		StreakToleranceDays: cfg.Analytics.StreakToleranceDays,
		RPEThreshold:        cfg.Analytics.RPEThreshold,
		RPEWindow:           cfg.Analytics.RPEWindow,
	}, log)
	return mcp.NewLocal(tr), nil
}
