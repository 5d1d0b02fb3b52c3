package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/nao1215/webwatch/internal/model"
)

// StatusStore reads and replaces the status.json snapshot.
type StatusStore struct {
	// path is the status.json location.
	path string
}

// NewStatusStore creates a store for the given status.json path.
func NewStatusStore(path string) *StatusStore {
	return &StatusStore{path: path}
}

// Path returns the backing file path.
func (s *StatusStore) Path() string {
	return s.path
}

// Load reads the previous snapshot. A missing file is a first run and loads
// as an empty snapshot; an unreadable or unparsable file is an error.
func (s *StatusStore) Load() (*model.StatusSnapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &model.StatusSnapshot{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var snapshot model.StatusSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return &snapshot, nil
}

// Write replaces the whole snapshot file. LastUpdated is recomputed from the
// entries so the snapshot-level timestamp can never drift from its sites.
func (s *StatusStore) Write(snapshot *model.StatusSnapshot) error {
	snapshot.ComputeLastUpdated()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status snapshot: %w", err)
	}
	data = append(data, '\n')

	return writeFileAtomic(s.path, data)
}
