package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/nao1215/webwatch/internal/model"
)

// HistoryStore is the in-memory history state for one run, loaded from and
// flushed back to history.json. Appends happen only on the success path; the
// monitor never records failed checks here.
//
// HistoryStore is not safe for concurrent use. The run loop is strictly
// sequential, so the state needs no locking; the single writer owns it.
type HistoryStore struct {
	// path is the history.json location.
	path string

	// entries is the working state, keyed by site id, most-recent-last.
	entries model.History
}

// NewHistoryStore creates a store for the given history.json path.
// Call Load before appending.
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{
		path:    path,
		entries: model.History{},
	}
}

// Path returns the backing file path.
func (h *HistoryStore) Path() string {
	return h.path
}

// Load reads the persisted history. A missing file or one holding JSON null
// loads as empty history; an unparsable file is an error. Oversized site
// lists are trimmed to the newest MaxEntriesPerSite entries so the bound
// holds even for hand-edited files.
func (h *HistoryStore) Load() error {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", h.path, err)
	}

	var entries model.History
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse %s: %w", h.path, err)
	}
	if entries == nil {
		// JSON null decodes into a nil map, which Append cannot write to.
		entries = model.History{}
	}

	for id, list := range entries {
		if len(list) > MaxEntriesPerSite {
			entries[id] = list[len(list)-MaxEntriesPerSite:]
		}
	}
	h.entries = entries
	return nil
}

// Append records one completed check for the site and enforces the per-site
// bound, dropping the oldest entries first.
func (h *HistoryStore) Append(siteID string, entry model.HistoryEntry) {
	list := append(h.entries[siteID], entry)
	if len(list) > MaxEntriesPerSite {
		list = list[len(list)-MaxEntriesPerSite:]
	}
	h.entries[siteID] = list
}

// Entries returns the current list for a site, most-recent-last.
func (h *HistoryStore) Entries(siteID string) []model.HistoryEntry {
	return h.entries[siteID]
}

// Sites returns the number of sites with recorded history.
func (h *HistoryStore) Sites() int {
	return len(h.entries)
}

// Write replaces the whole history file with the in-memory state.
func (h *HistoryStore) Write() error {
	data, err := json.MarshalIndent(h.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	data = append(data, '\n')

	return writeFileAtomic(h.path, data)
}
