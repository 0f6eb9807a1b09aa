package app

import (
	"errors"
	"fmt"
	"os"

	"influencemap/engine"
	"influencemap/storage"
)

// A session is the influence state of one map, persisted as a named snapshot.
// Segmentation is recomputed from the image on every launch.

// SaveSession writes the map's influence to the named snapshot.
func SaveSession(m *engine.Map, mapName, name string) error {
	snap := storage.NewSnapshot(mapName, m.Snapshot(), m.GlobalInfluence())
	if err := storage.SaveSnapshot(name, snap); err != nil {
		return fmt.Errorf("failed to save session %s: %w", name, err)
	}
	return nil
}

// LoadSession restores influence from the named snapshot. A missing snapshot
// is not an error and restores nothing.
func LoadSession(m *engine.Map, name string) (int, error) {
	snap, err := storage.LoadSnapshot(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load session %s: %w", name, err)
	}
	return m.Restore(snap.Influence), nil
}

// ListSessions returns the names of saved sessions.
func ListSessions() ([]string, error) {
	return storage.ListSnapshots()
}
