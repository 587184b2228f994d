// Package cache measures and removes the application's disposable cache directories.
package cache

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/fsutil"
	"github.com/glorpus-work/vguard/pkg/model"
)

// DefaultManager implements the Manager interface for an install root.
type DefaultManager struct {
	root  string
	names []string
}

// NewManager creates a cache manager for the install root.
func NewManager(root string) *DefaultManager {
	return &DefaultManager{
		root:  root,
		names: DefaultDirs,
	}
}

// GetDirectory returns the directory holding the cache directories.
func (cm *DefaultManager) GetDirectory() string {
	return filepath.Join(cm.root, UserDataDir)
}

// GetInfo returns the size of every cache directory. Missing directories count as empty.
func (cm *DefaultManager) GetInfo() (*Info, error) {
	if cm.root == "" {
		return nil, ErrCacheDirectory
	}
	info := &Info{Directory: cm.GetDirectory()}
	for _, name := range cm.names {
		path := filepath.Join(info.Directory, name)
		di := DirInfo{Name: name, Path: path, Exists: fsutil.IsDir(path)}
		if di.Exists {
			size, files, err := fsutil.DirSize(path)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to get cache info for %s", name)
			}
			di.Size, di.Files = size, files
		}
		info.TotalSize += di.Size
		info.Dirs = append(info.Dirs, di)
	}
	return info, nil
}

// Clean removes the selected cache directories.
func (cm *DefaultManager) Clean(ctx context.Context, options CleanOptions) (*CleanResult, error) {
	if cm.root == "" {
		return nil, ErrCacheDirectory
	}
	names, err := cm.selected(options.Dirs)
	if err != nil {
		return nil, err
	}

	result := &CleanResult{Freed: make(map[string]int64)}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		path := filepath.Join(cm.GetDirectory(), name)
		if !fsutil.IsDir(path) {
			continue
		}

		size, _, _ := fsutil.DirSize(path)
		result.Logs = append(result.Logs, fmt.Sprintf("Cleaning: %s (%.1f MB)", name, float64(size)/fsutil.BytesPerMB))
		if err := fsutil.RemoveAllForce(path); err != nil {
			logger.Warn("Failed to clean cache directory", logger.Fields{"dir": path, "error": err.Error()})
			result.Failed = append(result.Failed, name)
			result.Logs = append(result.Logs, model.WarnLine(fmt.Sprintf("Failed to clean %s: %v", name, err)))
			continue
		}
		result.Freed[name] = size
		result.TotalFreed += size
	}

	result.Logs = append(result.Logs, model.OKLine(fmt.Sprintf("Cleaned %.1f MB of cache", float64(result.TotalFreed)/fsutil.BytesPerMB)))
	logger.Debug("Cache cleaned", logger.Fields{"root": cm.root, "freed": result.TotalFreed, "failed": len(result.Failed)})
	return result, nil
}

func (cm *DefaultManager) selected(dirs []string) ([]string, error) {
	if len(dirs) == 0 {
		return cm.names, nil
	}
	for _, d := range dirs {
		found := false
		for _, n := range cm.names {
			if n == d {
				found = true
				break
			}
		}
		if !found {
			return nil, errors.Wrapf(ErrUnknownCacheDir, "%q", d)
		}
	}
	return dirs, nil
}

// Result converts a clean into the shape backends return.
func (r *CleanResult) Result() model.CacheCleanResult {
	return model.CacheCleanResult{
		Success:   true,
		CleanedMB: float64(r.TotalFreed) / fsutil.BytesPerMB,
		Logs:      r.Logs,
	}
}

// FormatBytes converts bytes to a human-readable string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"K", "M", "G", "T", "P", "E"}
	if exp < len(units) {
		return fmt.Sprintf("%.1f %sB", float64(bytes)/float64(div), units[exp])
	}
	return fmt.Sprintf("%d B", bytes)
}
