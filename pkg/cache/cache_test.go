package cache_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/vguard/pkg/cache"
	"github.com/glorpus-work/vguard/pkg/fsutil"
)

// setupTestCache fills Cache with 1 MB and Smart_Crop with 512 KB; Shadow_Cache is absent.
func setupTestCache(t *testing.T, root string) {
	t.Helper()
	userData := filepath.Join(root, cache.UserDataDir)
	require.NoError(t, os.MkdirAll(filepath.Join(userData, "Cache", "nested"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(userData, "Smart_Crop"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(userData, "Cache", "nested", "blob"), make([]byte, fsutil.BytesPerMB), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(userData, "Smart_Crop", "crop"), make([]byte, fsutil.BytesPerMB/2), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(userData, "settings.json"), []byte("{}"), 0o644))
}

func TestGetDirectory(t *testing.T) {
	root := t.TempDir()
	mgr := cache.NewManager(root)
	assert.Equal(t, filepath.Join(root, "User Data"), mgr.GetDirectory())
}

func TestGetInfo(t *testing.T) {
	root := t.TempDir()
	setupTestCache(t, root)

	info, err := cache.NewManager(root).GetInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(fsutil.BytesPerMB+fsutil.BytesPerMB/2), info.TotalSize)
	require.Len(t, info.Dirs, 3)
	assert.Equal(t, "Cache", info.Dirs[0].Name)
	assert.Equal(t, 1, info.Dirs[0].Files)
	assert.False(t, info.Dirs[1].Exists)
	assert.Zero(t, info.Dirs[1].Size)
}

func TestGetInfo_EmptyRoot(t *testing.T) {
	_, err := cache.NewManager("").GetInfo()
	assert.ErrorIs(t, err, cache.ErrCacheDirectory)
}

func TestCleanAll(t *testing.T) {
	root := t.TempDir()
	setupTestCache(t, root)
	mgr := cache.NewManager(root)

	// read-only files do not stop the clean
	require.NoError(t, fsutil.WriteReadOnly(filepath.Join(mgr.GetDirectory(), "Cache", "locked"), nil))

	result, err := mgr.Clean(context.Background(), cache.CleanOptions{})
	require.NoError(t, err)

	assert.NoDirExists(t, filepath.Join(mgr.GetDirectory(), "Cache"))
	assert.NoDirExists(t, filepath.Join(mgr.GetDirectory(), "Smart_Crop"))
	assert.FileExists(t, filepath.Join(mgr.GetDirectory(), "settings.json"))

	assert.Equal(t, int64(fsutil.BytesPerMB+fsutil.BytesPerMB/2), result.TotalFreed)
	assert.Empty(t, result.Failed)
	assert.Equal(t, []string{
		"Cleaning: Cache (1.0 MB)",
		"Cleaning: Smart_Crop (0.5 MB)",
		"[OK] Cleaned 1.5 MB of cache",
	}, result.Logs)

	res := result.Result()
	assert.True(t, res.Success)
	assert.InDelta(t, 1.5, res.CleanedMB, 0.001)
}

func TestCleanSelected(t *testing.T) {
	root := t.TempDir()
	setupTestCache(t, root)
	mgr := cache.NewManager(root)

	result, err := mgr.Clean(context.Background(), cache.CleanOptions{Dirs: []string{"Smart_Crop"}})
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(mgr.GetDirectory(), "Cache"))
	assert.Equal(t, int64(fsutil.BytesPerMB/2), result.Freed["Smart_Crop"])
}

func TestCleanUnknownDir(t *testing.T) {
	_, err := cache.NewManager(t.TempDir()).Clean(context.Background(), cache.CleanOptions{Dirs: []string{"Projects"}})
	assert.ErrorIs(t, err, cache.ErrUnknownCacheDir)
}

func TestCleanNothingToDo(t *testing.T) {
	result, err := cache.NewManager(t.TempDir()).Clean(context.Background(), cache.CleanOptions{})
	require.NoError(t, err)
	assert.Zero(t, result.TotalFreed)
	assert.Equal(t, []string{"[OK] Cleaned 0.0 MB of cache"}, result.Logs)
}

func TestCleanCanceled(t *testing.T) {
	root := t.TempDir()
	setupTestCache(t, root)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cache.NewManager(root).Clean(ctx, cache.CleanOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", cache.FormatBytes(512))
	assert.Equal(t, "1.5 KB", cache.FormatBytes(1536))
	assert.Equal(t, "2.0 MB", cache.FormatBytes(2*fsutil.BytesPerMB))
}
