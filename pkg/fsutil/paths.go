package fsutil

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used below the user's config, data and cache directories.
const AppName = "vguard"

// GetCacheDir returns the per-user cache directory for vguard.
func GetCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, AppName), nil
}

// GetDataDir returns the per-user data directory for vguard.
// XDG_DATA_HOME wins when set, otherwise the user config directory is used.
func GetDataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}
