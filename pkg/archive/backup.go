package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/fsutil"
	"github.com/glorpus-work/vguard/pkg/model"
)

const (
	// MetadataFile sits next to the snapshot in every backup directory.
	MetadataFile = "metadata.json"
	// SnapshotFile is the packed version directory.
	SnapshotFile = "version.tar.gz"
)

// Store keeps one directory per backup below Dir.
type Store struct {
	Dir string
	now func() time.Time
}

// NewStore returns a backup store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir, now: time.Now}
}

// Create snapshots versionPath and records why.
func (s *Store) Create(ctx context.Context, versionPath, reason string) (model.BackupMetadata, error) {
	if !fsutil.IsDir(versionPath) {
		return model.BackupMetadata{}, errors.Wrapf(errors.ErrInvalidPath, "%s is not a directory", versionPath)
	}

	name := filepath.Base(versionPath)
	created := s.now().UTC()
	id := fmt.Sprintf("%s_%d_%s", name, created.Unix(), uuid.NewString()[:8])
	dir := filepath.Join(s.Dir, id)

	size, _, err := fsutil.DirSize(versionPath)
	if err != nil {
		return model.BackupMetadata{}, fmt.Errorf("failed to size %s: %w", versionPath, err)
	}

	if err := Pack(ctx, versionPath, filepath.Join(dir, SnapshotFile)); err != nil {
		_ = os.RemoveAll(dir)
		return model.BackupMetadata{}, err
	}

	meta := model.BackupMetadata{
		ID:           id,
		VersionName:  name,
		OriginalPath: versionPath,
		CreatedAt:    created,
		SizeBytes:    size,
		Reason:       reason,
	}
	if err := writeMetadata(dir, meta); err != nil {
		_ = os.RemoveAll(dir)
		return model.BackupMetadata{}, err
	}
	return meta, nil
}

// List returns all readable backups, newest first. Directories without valid
// metadata are skipped.
func (s *Store) List() ([]model.BackupMetadata, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.BackupMetadata{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	out := make([]model.BackupMetadata, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := readMetadata(filepath.Join(s.Dir, e.Name()))
		if err != nil {
			continue
		}
		out = append(out, meta)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Get reads a single backup's metadata.
func (s *Store) Get(id string) (model.BackupMetadata, error) {
	dir, err := s.backupDir(id)
	if err != nil {
		return model.BackupMetadata{}, err
	}
	return readMetadata(dir)
}

// Restore unpacks a backup to its original path. An existing directory at that path
// is never overwritten.
func (s *Store) Restore(ctx context.Context, id string) (model.BackupMetadata, error) {
	meta, err := s.Get(id)
	if err != nil {
		return model.BackupMetadata{}, err
	}
	if fsutil.Exists(meta.OriginalPath) {
		return meta, errors.Wrapf(errors.ErrBackupExists, "%s", meta.OriginalPath)
	}

	staging := meta.OriginalPath + ".restoring"
	_ = os.RemoveAll(staging)
	if _, err := Unpack(ctx, filepath.Join(s.Dir, meta.ID, SnapshotFile), staging); err != nil {
		_ = os.RemoveAll(staging)
		return meta, fmt.Errorf("failed to restore %s: %w", meta.ID, err)
	}
	if err := os.Rename(staging, meta.OriginalPath); err != nil {
		_ = os.RemoveAll(staging)
		return meta, fmt.Errorf("failed to move restored files into place: %w", err)
	}
	return meta, nil
}

// Delete removes one backup.
func (s *Store) Delete(id string) error {
	dir, err := s.backupDir(id)
	if err != nil {
		return err
	}
	if err := fsutil.RemoveAllForce(dir); err != nil {
		return fmt.Errorf("failed to delete backup %s: %w", id, err)
	}
	return nil
}

// Clear removes every backup and returns how many were removed.
func (s *Store) Clear() (int, error) {
	list, err := s.List()
	if err != nil {
		return 0, err
	}
	if err := fsutil.RemoveAllForce(s.Dir); err != nil {
		return 0, fmt.Errorf("failed to clear backups: %w", err)
	}
	return len(list), nil
}

// Size is the disk usage of the whole store in bytes.
func (s *Store) Size() (int64, error) {
	if !fsutil.Exists(s.Dir) {
		return 0, nil
	}
	size, _, err := fsutil.DirSize(s.Dir)
	return size, err
}

func (s *Store) backupDir(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", errors.Wrapf(errors.ErrBackupNotFound, "%q", id)
	}
	dir := filepath.Join(s.Dir, id)
	if !fsutil.IsDir(dir) {
		return "", errors.Wrapf(errors.ErrBackupNotFound, "%s", id)
	}
	return dir, nil
}

func writeMetadata(dir string, meta model.BackupMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MetadataFile), data, fsutil.FileModeDefault); err != nil {
		return fmt.Errorf("failed to write backup metadata: %w", err)
	}
	return nil
}

func readMetadata(dir string) (model.BackupMetadata, error) {
	var meta model.BackupMetadata
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return meta, errors.Wrapf(errors.ErrBackupNotFound, "%s", filepath.Base(dir))
		}
		return meta, fmt.Errorf("failed to read backup metadata: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("invalid backup metadata in %s: %w", filepath.Base(dir), err)
	}
	return meta, nil
}
