package store

import (
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/meltforce/setlog/internal/models"
)

// HistoryLog is the append-only sequence of finalized sessions. Entries are
// never mutated after a successful append; the only destructive operations
// are the explicit bulk Clear and a Merge during restore.
type HistoryLog struct {
	gw      *Gateway
	log     *slog.Logger
	entries []models.HistoryEntry
}

// OpenHistory loads the persisted history log.
func OpenHistory(gw *Gateway, log *slog.Logger) *HistoryLog {
	return &HistoryLog{gw: gw, log: log, entries: gw.LoadHistory()}
}

// Append adds a finalized entry and persists the log. The append is
// all-or-nothing: if the write fails the in-memory log is rolled back so the
// caller can retry without duplicating the entry.
func (h *HistoryLog) Append(entry models.HistoryEntry) error {
	h.entries = append(h.entries, entry)
	if err := h.gw.SaveHistory(h.entries); err != nil {
		h.entries = h.entries[:len(h.entries)-1]
		return err
	}
	return nil
}

// All returns a deep copy of every entry in append order.
func (h *HistoryLog) All() []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Clone()
	}
	return out
}

// Recent returns up to limit entries, most recent first by timestamp.
// limit <= 0 means all.
func (h *HistoryLog) Recent(limit int) []models.HistoryEntry {
	out := h.All()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Get returns the entry with the given ID.
func (h *HistoryLog) Get(id uuid.UUID) (models.HistoryEntry, bool) {
	for _, e := range h.entries {
		if e.Meta.ID == id {
			return e.Clone(), true
		}
	}
	return models.HistoryEntry{}, false
}

// Len returns the number of entries.
func (h *HistoryLog) Len() int {
	return len(h.entries)
}

// Clear removes every entry and persists the empty log.
func (h *HistoryLog) Clear() error {
	old := h.entries
	h.entries = nil
	if err := h.gw.SaveHistory(h.entries); err != nil {
		h.entries = old
		return err
	}
	return nil
}

// Export returns the history resource verbatim, suitable for download and
// for a later Merge restore.
func (h *HistoryLog) Export() ([]byte, error) {
	return EncodeHistory(h.entries)
}

// Merge adds entries not already present, deduplicating on entry ID so that
// restoring an export over a live log is safe. Entries without an ID (from
// hand-edited files) are always added. Returns the number added.
func (h *HistoryLog) Merge(entries []models.HistoryEntry) (int, error) {
	seen := make(map[uuid.UUID]bool, len(h.entries))
	for _, e := range h.entries {
		if e.Meta.ID != uuid.Nil {
			seen[e.Meta.ID] = true
		}
	}

	// The merge is built in a fresh slice so a failed persist leaves
	// h.entries untouched; appending and sorting in place would share the
	// old backing array and make rollback unsound.
	merged := append([]models.HistoryEntry(nil), h.entries...)
	added := 0
	for _, e := range entries {
		if e.Meta.ID != uuid.Nil {
			if seen[e.Meta.ID] {
				continue
			}
			seen[e.Meta.ID] = true
		}
		merged = append(merged, e.Clone())
		added++
	}
	if added == 0 {
		return 0, nil
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	if err := h.gw.SaveHistory(merged); err != nil {
		return 0, err
	}
	h.entries = merged
	return added, nil
}
