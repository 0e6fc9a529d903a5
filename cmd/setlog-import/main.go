package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/meltforce/setlog/internal/config"
	"github.com/meltforce/setlog/internal/store"
)

// Restores a history export into the configured history log, deduplicating
// on entry ID so re-running an import is safe.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	filePath := flag.String("file", "", "path to exported history JSON (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without writing the history file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *filePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: setlog-import -config config.yaml -file workout_history.json [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Error("failed to read export file", "error", err)
		os.Exit(1)
	}

	entries, err := store.DecodeHistory(data)
	if err != nil {
		log.Error("export file is not a valid history resource", "error", err)
		os.Exit(1)
	}
	log.Info("export parsed", "entries", len(entries))

	gw, err := store.NewGateway(cfg.Storage.SessionPath(), cfg.Storage.HistoryPath(), log)
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	history := store.OpenHistory(gw, log)
	log.Info("history loaded", "existing", history.Len())

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written")
		wouldAdd := 0
		for _, e := range entries {
			if e.Meta.ID != uuid.Nil {
				if _, exists := history.Get(e.Meta.ID); exists {
					continue
				}
			}
			wouldAdd++
		}
		log.Info("would merge", "added", wouldAdd, "skipped", len(entries)-wouldAdd)
		return
	}

	added, err := history.Merge(entries)
	if err != nil {
		log.Error("merge failed", "error", err)
		os.Exit(1)
	}

	log.Info("import complete",
		"added", added,
		"skipped", len(entries)-added,
		"total", history.Len(),
	)
}
