package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/vguard/pkg/errors"
)

var versionFiles = map[string]string{
	"CapCut.exe":             "binary",
	"Resources/app.dat":      "Hello World",
	"Resources/sub/lang.txt": "Hello World 2",
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func assertTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, want := range files {
		got, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
		require.NoError(t, err, path)
		assert.Equal(t, want, string(got), path)
	}
}

func TestPackUnpack(t *testing.T) {
	tempDir := t.TempDir()
	sourceDir := filepath.Join(tempDir, "1.5.0.230")
	writeTree(t, sourceDir, versionFiles)
	// read-only files in a version directory still restore writable
	require.NoError(t, os.Chmod(filepath.Join(sourceDir, "CapCut.exe"), 0o444))

	ctx := context.Background()
	snapshot := filepath.Join(tempDir, "out", SnapshotFile)
	require.NoError(t, Pack(ctx, sourceDir, snapshot))
	require.FileExists(t, snapshot)
	assert.NoFileExists(t, snapshot+".tmp")

	extractDir := filepath.Join(tempDir, "extracted")
	n, err := Unpack(ctx, snapshot, extractDir)
	require.NoError(t, err)
	assert.Equal(t, len(versionFiles), n)
	assertTree(t, extractDir, versionFiles)

	info, err := os.Stat(filepath.Join(extractDir, "CapCut.exe"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o200)
}

func TestPack_MissingSource(t *testing.T) {
	dst := filepath.Join(t.TempDir(), SnapshotFile)
	err := Pack(context.Background(), filepath.Join(t.TempDir(), "gone"), dst)
	require.Error(t, err)
	assert.NoFileExists(t, dst)
}

func TestUnpack_MissingSnapshot(t *testing.T) {
	_, err := Unpack(context.Background(), filepath.Join(t.TempDir(), "nope.tar.gz"), t.TempDir())
	assert.Error(t, err)
}

func TestUnpack_Canceled(t *testing.T) {
	tempDir := t.TempDir()
	sourceDir := filepath.Join(tempDir, "src")
	writeTree(t, sourceDir, versionFiles)
	snapshot := filepath.Join(tempDir, SnapshotFile)
	require.NoError(t, Pack(context.Background(), sourceDir, snapshot))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Unpack(ctx, snapshot, filepath.Join(tempDir, "out"))
	assert.ErrorIs(t, err, context.Canceled)
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	base := t.TempDir()
	s := NewStore(filepath.Join(base, "backups"))
	return s, base
}

func TestStore_CreateListRestore(t *testing.T) {
	s, base := newTestStore(t)
	ctx := context.Background()
	version := filepath.Join(base, "Apps", "4.0.0.1539")
	writeTree(t, version, versionFiles)

	meta, err := s.Create(ctx, version, "deleted during protection")
	require.NoError(t, err)
	assert.Equal(t, "4.0.0.1539", meta.VersionName)
	assert.Equal(t, version, meta.OriginalPath)
	assert.Equal(t, int64(len("binary")+len("Hello World")+len("Hello World 2")), meta.SizeBytes)
	assert.Equal(t, "deleted during protection", meta.Reason)
	assert.FileExists(t, filepath.Join(s.Dir, meta.ID, SnapshotFile))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, meta.ID, list[0].ID)

	// restoring over an existing directory is refused
	_, err = s.Restore(ctx, meta.ID)
	assert.ErrorIs(t, err, errors.ErrBackupExists)

	require.NoError(t, os.RemoveAll(version))
	restored, err := s.Restore(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, version, restored.OriginalPath)
	assertTree(t, version, versionFiles)
	assert.NoDirExists(t, version+".restoring")
}

func TestStore_ListNewestFirst(t *testing.T) {
	s, base := newTestStore(t)
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	for _, name := range []string{"1.5.0.230", "2.9.0.966"} {
		dir := filepath.Join(base, "Apps", name)
		writeTree(t, dir, map[string]string{"f": name})
		_, err := s.Create(ctx, dir, "test")
		require.NoError(t, err)
		clock = clock.Add(time.Hour)
	}
	// a stray directory without metadata is ignored
	require.NoError(t, os.MkdirAll(filepath.Join(s.Dir, "junk"), 0o755))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2.9.0.966", list[0].VersionName)
	assert.Equal(t, "1.5.0.230", list[1].VersionName)
}

func TestStore_ListMissingDir(t *testing.T) {
	s, _ := newTestStore(t)
	list, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	size, err := s.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestStore_Create_NotADirectory(t *testing.T) {
	s, base := newTestStore(t)
	_, err := s.Create(context.Background(), filepath.Join(base, "missing"), "test")
	assert.ErrorIs(t, err, errors.ErrInvalidPath)
}

func TestStore_DeleteAndClear(t *testing.T) {
	s, base := newTestStore(t)
	ctx := context.Background()
	var ids []string
	for _, name := range []string{"a", "b", "c"} {
		dir := filepath.Join(base, "Apps", name)
		writeTree(t, dir, map[string]string{"f": "data"})
		meta, err := s.Create(ctx, dir, "test")
		require.NoError(t, err)
		ids = append(ids, meta.ID)
	}

	size, err := s.Size()
	require.NoError(t, err)
	assert.Positive(t, size)

	require.NoError(t, s.Delete(ids[0]))
	assert.ErrorIs(t, s.Delete(ids[0]), errors.ErrBackupNotFound)
	assert.ErrorIs(t, s.Delete("../escape"), errors.ErrBackupNotFound)

	n, err := s.Clear()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoDirExists(t, s.Dir)
}

func TestStore_Get_Unknown(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Get("nope")
	assert.ErrorIs(t, err, errors.ErrBackupNotFound)
	_, err = s.Restore(context.Background(), "nope")
	assert.ErrorIs(t, err, errors.ErrBackupNotFound)
}
