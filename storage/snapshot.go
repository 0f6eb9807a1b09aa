package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pierrec/lz4"
)

const (
	snapshotDir     = "snapshots"
	snapshotExt     = ".lz4"
	snapshotType    = "influence_snapshot"
	snapshotVersion = "1.0"
)

var (
	ErrSnapshotName = errors.New("invalid snapshot name")
	ErrSnapshotType = errors.New("file is not an influence snapshot")
)

// Snapshot is the saved gameplay state of one map: territory influence by
// name. Segmentation results are never stored; they are rebuilt from the image.
type Snapshot struct {
	Type            string             `json:"type"`
	Version         string             `json:"version"`
	Timestamp       time.Time          `json:"timestamp"`
	Map             string             `json:"map"`
	Influence       map[string]float64 `json:"influence"`
	GlobalInfluence float64            `json:"globalInfluence"`
}

// NewSnapshot stamps a snapshot of the given map's influence.
func NewSnapshot(mapName string, influence map[string]float64, global float64) *Snapshot {
	return &Snapshot{
		Type:            snapshotType,
		Version:         snapshotVersion,
		Timestamp:       time.Now(),
		Map:             mapName,
		Influence:       influence,
		GlobalInfluence: global,
	}
}

func snapshotFile(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%q: %w", name, ErrSnapshotName)
	}
	return filepath.Join(snapshotDir, name+snapshotExt), nil
}

// SaveSnapshot writes s as LZ4-compressed JSON under the snapshots directory.
func SaveSnapshot(name string, s *Snapshot) error {
	file, err := snapshotFile(name)
	if err != nil {
		return err
	}

	jsonData, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	compressed, err := compressLZ4(jsonData)
	if err != nil {
		return fmt.Errorf("failed to compress snapshot: %w", err)
	}
	if err := WriteDataFile(file, compressed, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	fmt.Printf("[SNAPSHOT] Saved %s (%d territories, JSON: %d bytes, Compressed: %d bytes)\n",
		name, len(s.Influence), len(jsonData), len(compressed))
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(name string) (*Snapshot, error) {
	file, err := snapshotFile(name)
	if err != nil {
		return nil, err
	}
	compressed, err := ReadDataFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	jsonData, err := decompressLZ4(compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(jsonData, &s); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if s.Type != snapshotType {
		return nil, fmt.Errorf("%s: %w", name, ErrSnapshotType)
	}
	if s.Influence == nil {
		s.Influence = map[string]float64{}
	}
	return &s, nil
}

// ListSnapshots returns saved snapshot names, sorted.
func ListSnapshots() ([]string, error) {
	entries, err := os.ReadDir(DataFile(snapshotDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), snapshotExt))
	}
	sort.Strings(names)
	return names, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := lz4.NewWriter(&buf)

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressLZ4(data []byte) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
