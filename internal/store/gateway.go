// Package store holds the durable state of the tracker: the current-session
// resource and the history resource, each a single JSON file rewritten in
// full on every mutation. There is exactly one writer (the acting user), so
// there is no locking; a crash mid-write is tolerated by falling back to an
// empty default on the next load.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/meltforce/setlog/internal/models"
)

// Gateway serializes the session-state and history resources to disk.
type Gateway struct {
	sessionPath string
	historyPath string
	log         *slog.Logger
}

// NewGateway creates a Gateway writing to the given paths, creating the
// parent directory if needed.
func NewGateway(sessionPath, historyPath string, log *slog.Logger) (*Gateway, error) {
	for _, p := range []string{sessionPath, historyPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, fmt.Errorf("creating storage dir for %s: %w", p, err)
		}
	}
	return &Gateway{sessionPath: sessionPath, historyPath: historyPath, log: log}, nil
}

// LoadSessionRaw reads the session-state resource as untyped JSON for the
// migrator. A missing or unreadable or corrupt file yields nil: the caller
// starts from an empty default and keeps working.
func (g *Gateway) LoadSessionRaw() map[string]any {
	data, err := os.ReadFile(g.sessionPath)
	if err != nil {
		if !os.IsNotExist(err) {
			g.log.Warn("session state unreadable, starting empty", "path", g.sessionPath, "error", err)
		}
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		g.log.Warn("session state corrupt, starting empty", "path", g.sessionPath, "error", err)
		return nil
	}
	return raw
}

// SaveSession writes the full session state, tagged with the current schema
// version, as a whole-file overwrite.
func (g *Gateway) SaveSession(state models.SessionState) error {
	obj := make(map[string]any, len(state)+1)
	obj["_schema"] = models.SchemaVersion
	for day, dayState := range state {
		obj[string(day)] = dayState
	}

	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session state: %w", err)
	}
	if err := os.WriteFile(g.sessionPath, data, 0o644); err != nil {
		return fmt.Errorf("writing session state: %w", err)
	}
	return nil
}

// LoadHistory reads the history resource. Missing or corrupt files fall back
// to an empty log with a warning.
func (g *Gateway) LoadHistory() []models.HistoryEntry {
	data, err := os.ReadFile(g.historyPath)
	if err != nil {
		if !os.IsNotExist(err) {
			g.log.Warn("history unreadable, starting empty", "path", g.historyPath, "error", err)
		}
		return nil
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		g.log.Warn("history corrupt, starting empty", "path", g.historyPath, "error", err)
		return nil
	}
	return entries
}

// SaveHistory writes the full history log as a whole-file overwrite.
func (g *Gateway) SaveHistory(entries []models.HistoryEntry) error {
	data, err := EncodeHistory(entries)
	if err != nil {
		return err
	}
	if err := os.WriteFile(g.historyPath, data, 0o644); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// EncodeHistory renders entries in the history resource format. Export
// serves exactly these bytes.
func EncodeHistory(entries []models.HistoryEntry) ([]byte, error) {
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding history: %w", err)
	}
	return data, nil
}

// DecodeHistory parses bytes in the history resource format.
func DecodeHistory(data []byte) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	return entries, nil
}
