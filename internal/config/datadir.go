package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "lifeos"

// DataDir returns LIFEOS_HOME when set, else the OS default data directory.
func DataDir() string {
	if dir := os.Getenv("LIFEOS_HOME"); dir != "" {
		return dir
	}
	return DefaultDataDir()
}

// DefaultDataDir returns the OS-appropriate data directory for lifeos.
//
//   - macOS:   ~/Library/Application Support/lifeos
//   - Linux:   $XDG_DATA_HOME/lifeos (fallback ~/.local/share/lifeos)
//   - Windows: %LOCALAPPDATA%\lifeos (fallback %APPDATA%\lifeos)
func DefaultDataDir() string {
	return defaultDataDirForOS(runtime.GOOS)
}

func defaultDataDirForOS(goos string) string {
	home, _ := os.UserHomeDir()

	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appName)
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, appName)
		}
		if dir := os.Getenv("APPDATA"); dir != "" {
			return filepath.Join(dir, appName)
		}
		return filepath.Join(home, appName)
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return filepath.Join(dir, appName)
		}
		return filepath.Join(home, ".local", "share", appName)
	}
}

// EnsureDataDir creates the directory holding the store.
func (c *Config) EnsureDataDir() error {
	dir := c.DataDir
	if c.Storage.Backend == BackendSQLite && c.Storage.Path != ":memory:" {
		dir = filepath.Dir(c.Storage.Path)
	} else if c.Storage.Backend == BackendDiskv {
		dir = c.Storage.Path
	}
	return os.MkdirAll(dir, 0o755)
}
