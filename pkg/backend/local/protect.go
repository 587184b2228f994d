package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/cache"
	"github.com/glorpus-work/vguard/pkg/fsutil"
	"github.com/glorpus-work/vguard/pkg/model"
)

const (
	// ConfigFile is the launcher configuration below Apps.
	ConfigFile = "configure.ini"
	// LockedVersionLine pins the recorded version so the launcher never sees itself as outdated.
	LockedVersionLine = "last_version=1.0.0.0"
	lastVersionKey    = "last_version"

	// ProductInfoBlocker replaces the launcher's product manifest below Apps.
	ProductInfoBlocker = "ProductInfo.xml"
	backupReason       = "Version deleted during protection"
)

// updateBlocker is where the updater downloads its installer.
func updateBlocker(p Paths) string {
	return filepath.Join(p.Root, cache.UserDataDir, "Download", "update.exe")
}

func productInfo(p Paths) string {
	return filepath.Join(p.Apps, ProductInfoBlocker)
}

// ApplyProtection implements backend.Backend. Each step appends to the log; the first
// failing step ends the run with Success false.
func (b *Backend) ApplyProtection(ctx context.Context, req model.ProtectionRequest) (model.ProtectionResult, error) {
	res := model.ProtectionResult{Logs: []string{"Checking system state..."}}
	fail := func(msg string) (model.ProtectionResult, error) {
		res.Error = msg
		logger.Warn("Protection failed", logger.Fields{"error": msg})
		return res, nil
	}

	running, err := b.procs.Running(ctx, b.opts.ProcessNames)
	if err != nil {
		return fail(fmt.Sprintf("Could not check running processes: %v", err))
	}
	if running {
		return fail(b.stillRunning())
	}
	res.Logs = append(res.Logs, model.OKLine("No running instances"))

	p, ok := b.Paths()
	if !ok {
		return fail(b.notFound())
	}

	if msg := b.deleteVersions(ctx, p, req.VersionsToDelete, &res.Logs); msg != "" {
		return fail(msg)
	}

	if req.CleanCache {
		res.Logs = append(res.Logs, "Cleaning cache directories...")
		cr, err := cache.NewManager(p.Root).Clean(ctx, cache.CleanOptions{})
		if err != nil {
			return fail(fmt.Sprintf("Cache cleaning interrupted: %v", err))
		}
		res.Logs = append(res.Logs, cr.Logs...)
	} else {
		res.Logs = append(res.Logs, "Skipping cache cleaning (disabled)")
	}

	if !req.LockConfig && !req.CreateBlockers {
		res.Logs = append(res.Logs, "Skipping protection (all options disabled)")
		res.Success = true
		return res, nil
	}

	if req.LockConfig {
		res.Logs = append(res.Logs, "Modifying config...")
		if err := lockConfiguration(p); err != nil {
			return fail(err.Error())
		}
		res.Logs = append(res.Logs, model.OKLine("Configuration locked"))
	} else {
		res.Logs = append(res.Logs, "Skipping config lock (disabled)")
	}

	if req.CreateBlockers {
		res.Logs = append(res.Logs, "Creating blockers...")
		if err := createBlockers(p); err != nil {
			return fail(err.Error())
		}
		res.Logs = append(res.Logs, model.OKLine("Update blockers created"))
	} else {
		res.Logs = append(res.Logs, "Skipping blocker creation (disabled)")
	}

	res.Success = true
	logger.Info("Protection applied", logger.Fields{"deleted": len(req.VersionsToDelete), "root": p.Root})
	return res, nil
}

// deleteVersions removes each path, backing it up first when enabled. A failed backup is
// a warning; a failed delete or a path outside Apps returns the error message.
func (b *Backend) deleteVersions(ctx context.Context, p Paths, paths []string, logs *[]string) string {
	for _, path := range paths {
		if !p.IsVersionDir(path) {
			return fmt.Sprintf("Refusing to delete %s: not a version directory", path)
		}
	}

	active := b.activeName(p)
	backedUp := false
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return fmt.Sprintf("Protection interrupted: %v", err)
		}
		name := filepath.Base(path)

		if b.opts.BackupBeforeDelete {
			*logs = append(*logs, "Backing up: "+name)
			meta, err := b.backups.Create(ctx, path, backupReason)
			if err != nil {
				*logs = append(*logs,
					model.WarnLine(fmt.Sprintf("Backup failed: %v", err)),
					model.WarnLine("Proceeding with deletion (backup unavailable)"))
			} else {
				backedUp = true
				*logs = append(*logs, model.OKLine("Backup created: "+meta.ID))
			}
		}

		*logs = append(*logs, "Deleting: "+name)
		if err := fsutil.RemoveAllForce(path); err != nil {
			return fmt.Sprintf("Failed to delete %s: %v", name, err)
		}
		if name == active {
			_ = os.Remove(filepath.Join(p.Apps, ActiveMarker))
		}
	}

	if len(paths) == 0 {
		*logs = append(*logs, model.OKLine("No versions to delete"))
		return ""
	}
	*logs = append(*logs, model.OKLine(fmt.Sprintf("Deleted %d version(s)", len(paths))))
	if backedUp {
		*logs = append(*logs, model.OKLine("Backups available for recovery"))
	}
	return ""
}

// lockConfiguration rewrites every last_version line of configure.ini to the locked
// value, appending one when missing.
func lockConfiguration(p Paths) error {
	path := filepath.Join(p.Apps, ConfigFile)
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	var lines []string
	found := false
	for _, line := range splitLines(string(content)) {
		if strings.HasPrefix(strings.TrimSpace(line), lastVersionKey) {
			lines = append(lines, LockedVersionLine)
			found = true
			continue
		}
		lines = append(lines, line)
	}
	if !found {
		lines = append(lines, LockedVersionLine)
	}

	if err := fsutil.EnsureDir(p.Apps); err != nil {
		return fmt.Errorf("failed to create %s: %w", p.Apps, err)
	}
	_ = fsutil.ClearReadOnly(path)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), fsutil.FileModeDefault); err != nil {
		return fmt.Errorf("failed to write %s: %w", ConfigFile, err)
	}
	return nil
}

func createBlockers(p Paths) error {
	for _, path := range []string{productInfo(p), updateBlocker(p)} {
		if fsutil.IsDir(path) {
			if err := fsutil.RemoveAllForce(path); err != nil {
				return fmt.Errorf("failed to replace %s: %w", path, err)
			}
		}
		if err := fsutil.WriteReadOnly(path, nil); err != nil {
			return fmt.Errorf("failed to create blocker %s: %w", path, err)
		}
	}
	return nil
}

func isBlocker(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() == 0 && fsutil.IsReadOnly(path)
}

// ProtectionStatus implements backend.Admin. A missing install reports nothing in place.
func (b *Backend) ProtectionStatus(context.Context) (model.ProtectionStatus, error) {
	var st model.ProtectionStatus
	p, ok := b.Paths()
	if !ok {
		return st, nil
	}
	st.BlockersExist = isBlocker(productInfo(p)) || isBlocker(updateBlocker(p))
	if content, err := os.ReadFile(filepath.Join(p.Apps, ConfigFile)); err == nil {
		st.ConfigLocked = strings.Contains(string(content), LockedVersionLine)
	}
	st.IsProtected = st.BlockersExist || st.ConfigLocked
	return st, nil
}

// RemoveProtection implements backend.Admin. Individual removal failures are logged as
// warnings and do not fail the call.
func (b *Backend) RemoveProtection(context.Context) (model.ProtectionResult, error) {
	p, ok := b.Paths()
	if !ok {
		return model.ProtectionResult{Error: b.notFound(), Logs: []string{}}, nil
	}
	var logs []string

	for _, blocker := range []string{productInfo(p), updateBlocker(p)} {
		if !fsutil.Exists(blocker) {
			continue
		}
		name := filepath.Base(blocker)
		logs = append(logs, fmt.Sprintf("Removing %s blocker...", name))
		_ = fsutil.ClearReadOnly(blocker)
		if err := os.Remove(blocker); err != nil {
			logs = append(logs, model.WarnLine(fmt.Sprintf("Could not remove %s: %v", name, err)))
			continue
		}
		logs = append(logs, model.OKLine(name+" blocker removed"))
	}

	cfg := filepath.Join(p.Apps, ConfigFile)
	if content, err := os.ReadFile(cfg); err == nil {
		logs = append(logs, "Resetting "+ConfigFile+"...")
		var kept []string
		for _, line := range splitLines(string(content)) {
			if !strings.HasPrefix(strings.TrimSpace(line), lastVersionKey) {
				kept = append(kept, line)
			}
		}
		_ = fsutil.ClearReadOnly(cfg)
		if err := os.WriteFile(cfg, []byte(strings.Join(kept, "\n")), fsutil.FileModeDefault); err != nil {
			logs = append(logs, model.WarnLine(fmt.Sprintf("Could not reset %s: %v", ConfigFile, err)))
		} else {
			logs = append(logs, model.OKLine(ConfigFile+" reset"))
		}
	}

	logs = append(logs, model.OKLine(fmt.Sprintf("Protection removed - %s can now auto-update", b.opts.AppName)))
	logger.Info("Protection removed", logger.Fields{"root": p.Root})
	return model.ProtectionResult{Success: true, Logs: logs}, nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
