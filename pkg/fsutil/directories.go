package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
)

// EnsureDir creates a directory and its parents with DirModeDefault.
func EnsureDir(path string) error {
	return os.MkdirAll(path, DirModeDefault)
}

// EnsureFileDir creates the parent directory of a file path.
func EnsureFileDir(filePath string) error {
	return EnsureDir(filepath.Dir(filePath))
}

// Exists reports whether path exists. Stat errors other than not-exist count as existing.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !os.IsNotExist(err)
}

// IsDir reports whether path is an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// DirSize returns the total size in bytes and the number of regular files below path.
// Unreadable entries are skipped.
func DirSize(path string) (int64, int, error) {
	var size int64
	var files int
	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			info, infoErr := d.Info()
			if infoErr != nil {
				return nil
			}
			size += info.Size()
			files++
		}
		return nil
	})
	return size, files, err
}

// DirSizeMB is DirSize expressed in megabytes. Missing paths count as zero.
func DirSizeMB(path string) float64 {
	size, _, err := DirSize(path)
	if err != nil {
		return 0
	}
	return float64(size) / BytesPerMB
}
