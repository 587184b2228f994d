package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
)

// WriteReadOnly creates or truncates path with the given content and marks it read-only.
// An existing read-only file is made writable first.
func WriteReadOnly(path string, content []byte) error {
	if err := EnsureFileDir(path); err != nil {
		return err
	}
	if Exists(path) {
		if err := os.Chmod(path, FileModeDefault); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, content, FileModeDefault); err != nil {
		return err
	}
	return os.Chmod(path, FileModeReadOnly)
}

// IsReadOnly reports whether path exists and has no owner write bit.
func IsReadOnly(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0o200 == 0
}

// ClearReadOnly makes path writable by its owner. Missing files are ignored.
func ClearReadOnly(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return os.Chmod(path, info.Mode().Perm()|0o200)
}

// RemoveAllForce removes path after clearing read-only bits on everything below it.
func RemoveAllForce(path string) error {
	_ = filepath.WalkDir(path, func(p string, _ fs.DirEntry, err error) error {
		if err == nil {
			_ = ClearReadOnly(p)
		}
		return nil
	})
	return os.RemoveAll(path)
}
