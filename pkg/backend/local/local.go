// Package local implements the vguard backend against the installation on this machine.
package local

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/archive"
	"github.com/glorpus-work/vguard/pkg/backend"
	"github.com/glorpus-work/vguard/pkg/cache"
	"github.com/glorpus-work/vguard/pkg/catalog"
	"github.com/glorpus-work/vguard/pkg/fsutil"
	"github.com/glorpus-work/vguard/pkg/model"
)

// ActiveMarker is written into the Apps directory by SwitchVersion and names the
// active version directory.
const ActiveMarker = ".vguard-active"

// Options configures a local backend.
type Options struct {
	AppName      string
	RootDir      string
	ProcessNames []string
	BackupDir    string
	// BackupBeforeDelete snapshots each version before a protection run deletes it.
	BackupBeforeDelete bool
}

// Backend works on the local filesystem.
type Backend struct {
	opts    Options
	procs   ProcessChecker
	backups *archive.Store
	start   func(ctx context.Context, exe string) error
}

var _ backend.Service = (*Backend)(nil)

// Option customises a Backend.
type Option func(*Backend)

// WithProcessChecker replaces the process table lookup.
func WithProcessChecker(pc ProcessChecker) Option {
	return func(b *Backend) { b.procs = pc }
}

// WithStarter replaces how Launch starts the executable.
func WithStarter(fn func(ctx context.Context, exe string) error) Option {
	return func(b *Backend) { b.start = fn }
}

// New creates a local backend.
func New(opts Options, options ...Option) *Backend {
	if opts.AppName == "" {
		opts.AppName = "CapCut"
	}
	if len(opts.ProcessNames) == 0 {
		opts.ProcessNames = []string{opts.AppName, opts.AppName + ".exe"}
	}
	if opts.BackupDir == "" {
		if dir, err := fsutil.GetDataDir(); err == nil {
			opts.BackupDir = filepath.Join(dir, "backups")
		}
	}
	b := &Backend{
		opts:    opts,
		procs:   SystemProcesses{},
		backups: archive.NewStore(opts.BackupDir),
		start:   startDetached,
	}
	for _, o := range options {
		o(b)
	}
	return b
}

// Paths resolves the installation, see ResolvePaths.
func (b *Backend) Paths() (Paths, bool) {
	return ResolvePaths(b.opts.AppName, b.opts.RootDir)
}

func (b *Backend) notFound() string {
	return fmt.Sprintf("Could not find %s installation", b.opts.AppName)
}

func (b *Backend) stillRunning() string {
	return fmt.Sprintf("%s is still running. Please close it.", b.opts.AppName)
}

// PerformPrecheck implements backend.Backend.
func (b *Backend) PerformPrecheck(ctx context.Context) (model.PrecheckResult, error) {
	var res model.PrecheckResult
	if p, ok := b.Paths(); ok {
		res.AppsPath = p.Apps
		res.InstallationFound = fsutil.IsDir(p.Apps)
	}
	running, err := b.procs.Running(ctx, b.opts.ProcessNames)
	if err != nil {
		return res, fmt.Errorf("failed to list processes: %w", err)
	}
	res.ProcessRunning = running
	return res, nil
}

// ScanVersions implements backend.Backend. A missing install yields an empty list.
func (b *Backend) ScanVersions(ctx context.Context) ([]model.InstalledVersion, error) {
	p, ok := b.Paths()
	if !ok || !fsutil.IsDir(p.Apps) {
		return []model.InstalledVersion{}, nil
	}
	entries, err := os.ReadDir(p.Apps)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.Apps, err)
	}

	active := b.activeName(p)
	versions := make([]model.InstalledVersion, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(p.Apps, e.Name())
		versions = append(versions, model.InstalledVersion{
			Name:   e.Name(),
			Path:   path,
			SizeMB: fsutil.DirSizeMB(path),
			Active: e.Name() == active,
		})
	}
	model.SortInstalled(versions)
	logger.Debug("Scanned versions", logger.Fields{"apps": p.Apps, "count": len(versions)})
	return versions, nil
}

// GetArchiveVersions implements backend.Backend with the curated catalog.
func (b *Backend) GetArchiveVersions(context.Context) ([]model.ArchiveVersion, error) {
	return catalog.Curated()
}

func (b *Backend) cache() (*cache.DefaultManager, bool) {
	p, ok := b.Paths()
	if !ok {
		return nil, false
	}
	return cache.NewManager(p.Root), true
}

// CalculateCacheSize implements backend.Backend. A missing install has no cache.
func (b *Backend) CalculateCacheSize(context.Context) (float64, error) {
	cm, ok := b.cache()
	if !ok {
		return 0, nil
	}
	info, err := cm.GetInfo()
	if err != nil {
		return 0, err
	}
	return float64(info.TotalSize) / fsutil.BytesPerMB, nil
}

// CleanCache implements backend.Backend.
func (b *Backend) CleanCache(ctx context.Context) (model.CacheCleanResult, error) {
	cm, ok := b.cache()
	if !ok {
		return model.CacheCleanResult{Logs: []string{model.WarnLine(b.notFound())}}, nil
	}
	res, err := cm.Clean(ctx, cache.CleanOptions{})
	if err != nil {
		return model.CacheCleanResult{}, err
	}
	return res.Result(), nil
}

// Launch implements backend.Admin. The active version is preferred, otherwise the
// newest version holding the executable.
func (b *Backend) Launch(ctx context.Context) (model.LaunchResult, error) {
	p, ok := b.Paths()
	if !ok || !fsutil.IsDir(p.Apps) {
		return model.LaunchResult{Error: fmt.Sprintf("%s installation not found", b.opts.AppName)}, nil
	}
	versions, err := b.ScanVersions(ctx)
	if err != nil {
		return model.LaunchResult{}, err
	}
	candidates := make([]model.InstalledVersion, 0, len(versions))
	for i := len(versions) - 1; i >= 0; i-- {
		if versions[i].Active {
			candidates = append([]model.InstalledVersion{versions[i]}, candidates...)
			continue
		}
		candidates = append(candidates, versions[i])
	}

	exeName := b.opts.AppName + ".exe"
	for _, v := range candidates {
		exe := filepath.Join(v.Path, exeName)
		if !fsutil.Exists(exe) {
			continue
		}
		if err := b.start(ctx, exe); err != nil {
			return model.LaunchResult{Error: fmt.Sprintf("Failed to launch: %v", err)}, nil
		}
		logger.Info("Launched application", logger.Fields{"exe": exe})
		return model.LaunchResult{Success: true}, nil
	}
	return model.LaunchResult{Error: fmt.Sprintf("%s not found in any version", exeName)}, nil
}

func startDetached(_ context.Context, exe string) error {
	cmd := exec.Command(exe)
	cmd.Dir = filepath.Dir(exe)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
