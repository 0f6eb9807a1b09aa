package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

const appDirName = "InfluenceMap"

var (
	dataDirOnce sync.Once
	dataDirPath string
)

// DataDir returns the platform-appropriate writable data directory and creates it if missing.
func DataDir() string {
	dataDirOnce.Do(func() {
		dataDirPath = resolveDataDir()
		_ = os.MkdirAll(dataDirPath, 0o755)
	})
	return dataDirPath
}

// DataFile joins the data directory with the provided relative name.
func DataFile(name string) string {
	return filepath.Join(DataDir(), name)
}

// ReadDataFile reads a file from the data directory.
func ReadDataFile(name string) ([]byte, error) {
	return os.ReadFile(DataFile(name))
}

// WriteDataFile writes data to the data directory, ensuring the parent directory exists.
// The file is written to a temporary name first so a crash never leaves a truncated file.
func WriteDataFile(name string, data []byte, perm os.FileMode) error {
	path := DataFile(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func resolveDataDir() string {
	if custom := os.Getenv("INFLUENCEMAP_DATA_DIR"); custom != "" {
		return custom
	}

	switch runtime.GOOS {
	case "windows":
		if base := os.Getenv("APPDATA"); base != "" {
			return filepath.Join(base, appDirName)
		}
		if base := os.Getenv("LOCALAPPDATA"); base != "" {
			return filepath.Join(base, appDirName)
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support", appDirName)
		}
	default: // Linux and others
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName)
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".local", "share", appDirName)
		}
	}

	// Final fallback: use current directory
	return "./" + appDirName
}
