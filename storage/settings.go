package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"influencemap/typedef"
)

const settingsFile = "settings.json"

// LoadSettings reads settings.json from the data directory. A missing file
// yields defaults; fields absent from the file keep their default values.
func LoadSettings() (typedef.Settings, error) {
	s := typedef.DefaultSettings()
	data, err := ReadDataFile(settingsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return typedef.DefaultSettings(), fmt.Errorf("failed to parse settings: %w", err)
	}
	typedef.NormalizeSettings(&s)
	return s, nil
}

// SaveSettings writes settings.json to the data directory.
func SaveSettings(s typedef.Settings) error {
	typedef.NormalizeSettings(&s)
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return WriteDataFile(settingsFile, data, 0o644)
}
