package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/fsutil"
	"github.com/glorpus-work/vguard/pkg/model"
)

// activeName returns the version directory recorded by the marker, or "" when the
// marker is missing or names a directory that no longer exists.
func (b *Backend) activeName(p Paths) string {
	data, err := os.ReadFile(filepath.Join(p.Apps, ActiveMarker))
	if err != nil {
		return ""
	}
	name := strings.TrimSpace(string(data))
	if name == "" || !fsutil.IsDir(filepath.Join(p.Apps, name)) {
		return ""
	}
	return name
}

// SwitchVersion implements backend.Backend by recording path as the active version.
// Nothing is deleted and the version directories are left untouched.
func (b *Backend) SwitchVersion(ctx context.Context, path string) (model.SwitchResult, error) {
	p, ok := b.Paths()
	if !ok {
		return model.SwitchResult{Message: b.notFound()}, nil
	}
	if !p.IsVersionDir(path) {
		return model.SwitchResult{Message: fmt.Sprintf("Not a version directory: %s", path)}, nil
	}

	running, err := b.procs.Running(ctx, b.opts.ProcessNames)
	if err != nil {
		return model.SwitchResult{}, fmt.Errorf("failed to list processes: %w", err)
	}
	if running {
		return model.SwitchResult{Message: b.stillRunning()}, nil
	}

	name := filepath.Base(filepath.Clean(path))
	if err := os.WriteFile(filepath.Join(p.Apps, ActiveMarker), []byte(name+"\n"), fsutil.FileModeDefault); err != nil {
		return model.SwitchResult{Message: fmt.Sprintf("Failed to record active version: %v", err)}, nil
	}
	logger.Info("Switched active version", logger.Fields{"version": name})
	return model.SwitchResult{Success: true, Message: fmt.Sprintf("Switched to %s", name)}, nil
}
