package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/meltforce/setlog/internal/config"
	"github.com/meltforce/setlog/internal/store"
	"github.com/meltforce/setlog/internal/sync"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Pushes the local history log to a remote setlog server (e.g. over
// Tailscale). The server deduplicates on entry ID, so re-running is safe.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	serverURL := flag.String("server", "", "setlog server URL (e.g. https://setlog.tail1234.ts.net)")
	dryRun := flag.Bool("dry-run", false, "read and report but don't push")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("setlog-sync", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Usage: setlog-sync -config config.yaml -server <URL> [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	gw, err := store.NewGateway(cfg.Storage.SessionPath(), cfg.Storage.HistoryPath(), log)
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	history := store.OpenHistory(gw, log)
	log.Info("local history loaded", "entries", history.Len())

	if *dryRun {
		log.Info("DRY RUN mode — nothing will be pushed", "would_push", history.Len())
		return
	}

	export, err := history.Export()
	if err != nil {
		log.Error("failed to export history", "error", err)
		os.Exit(1)
	}

	client := sync.NewClient(*serverURL)

	before, err := client.RemoteCount()
	if err != nil {
		log.Warn("could not read remote summary", "error", err)
	} else {
		log.Info("remote history", "entries", before)
	}

	added, err := client.PushHistory(export)
	if err != nil {
		log.Error("push failed", "error", err)
		os.Exit(1)
	}

	log.Info("sync complete", "pushed", history.Len(), "added_remotely", added)
}
