package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tailscale.com/tsnet"

	"github.com/meltforce/setlog/internal/catalog"
	"github.com/meltforce/setlog/internal/config"
	"github.com/meltforce/setlog/internal/progress"
	"github.com/meltforce/setlog/internal/server"
	"github.com/meltforce/setlog/internal/store"
	"github.com/meltforce/setlog/internal/tracker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("setlog starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		log.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	log.Info("catalog loaded", "days", len(cat.Days()))

	gw, err := store.NewGateway(cfg.Storage.SessionPath(), cfg.Storage.HistoryPath(), log)
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
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

	srv := server.New(tr, log)

	// Start server — tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Path != "" {
		return catalog.Load(cfg.Catalog.Path)
	}
	return catalog.Default()
}
