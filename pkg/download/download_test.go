package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/vguard/internal/testutil"
	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/model"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func sum(data string) string {
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:])
}

func TestNew_Defaults(t *testing.T) {
	d := New(Config{Timeout: time.Second})
	assert.Equal(t, defaultUserAgent, d.cfg.UserAgent)
	assert.Equal(t, defaultConcurrency, d.cfg.Concurrency)
	assert.Equal(t, time.Second, d.client.Timeout)

	d = New(Config{UserAgent: "test-agent/1.0", Concurrency: 4})
	assert.Equal(t, "test-agent/1.0", d.cfg.UserAgent)
	assert.Equal(t, 4, d.cfg.Concurrency)
}

func TestDownload_SingleFile(t *testing.T) {
	srv := testutil.NewFileServer(t, map[string][]byte{
		"/installers/CapCut_1_5_0_230.exe": []byte("installer"),
	})
	dir := t.TempDir()

	res, err := New(Config{Timeout: time.Second}).Download(context.Background(), dir, Item{
		ID:  "Offline Purist",
		URL: mustURL(t, srv.URL+"/installers/CapCut_1_5_0_230.exe"),
	})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, Result{ID: "Offline Purist", Path: filepath.Join(dir, "CapCut_1_5_0_230.exe"), Bytes: 9}, res[0])

	content, err := os.ReadFile(res[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "installer", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no .part file left behind")
}

func TestDownload_NotFound(t *testing.T) {
	srv := testutil.NewFileServer(t, nil)
	dir := t.TempDir()

	_, err := New(Config{}).Download(context.Background(), dir, Item{ID: "x", URL: mustURL(t, srv.URL+"/missing.exe")})
	require.ErrorIs(t, err, errors.ErrDownloadFailed)
	assert.Contains(t, err.Error(), "unexpected status code: 404")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownload_Checksum(t *testing.T) {
	srv := testutil.NewFileServer(t, map[string][]byte{"/a.exe": []byte("test content")})

	tests := []struct {
		name    string
		digest  string
		wantErr error
	}{
		{name: "valid", digest: sum("test content")},
		{name: "surrounding whitespace", digest: "  " + sum("test content") + "\n"},
		{name: "mismatch", digest: sum("other"), wantErr: errors.ErrChecksumMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := New(Config{}).Download(context.Background(), dir, Item{ID: "a", URL: mustURL(t, srv.URL+"/a.exe"), SHA256: tt.digest})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				entries, rerr := os.ReadDir(dir)
				require.NoError(t, rerr)
				assert.Empty(t, entries)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestDownload_ReusesExistingFile(t *testing.T) {
	srv := testutil.NewFileServer(t, map[string][]byte{"/a.exe": []byte("fresh")})
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.exe"), []byte("cached"), 0o644))
	d := New(Config{})

	res, err := d.Download(context.Background(), dir, Item{ID: "a", URL: mustURL(t, srv.URL+"/a.exe")})
	require.NoError(t, err)
	assert.True(t, res[0].Reused)
	assert.Equal(t, int64(6), res[0].Bytes)
	assert.Zero(t, srv.Requests.Load())

	// a stale file with the wrong digest is replaced
	res, err = d.Download(context.Background(), dir, Item{ID: "a", URL: mustURL(t, srv.URL+"/a.exe"), SHA256: sum("fresh")})
	require.NoError(t, err)
	assert.False(t, res[0].Reused)
	content, err := os.ReadFile(res[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(content))
	assert.Equal(t, int64(1), srv.Requests.Load())
}

func TestDownload_RelativeDir(t *testing.T) {
	_, err := New(Config{}).Download(context.Background(), "relative", Item{ID: "a", URL: mustURL(t, "http://localhost/a.exe")})
	assert.ErrorIs(t, err, errors.ErrInvalidPath)
}

func TestDownload_Progress(t *testing.T) {
	srv := testutil.NewFileServer(t, map[string][]byte{"/a.exe": []byte("0123456789")})

	var last int64
	_, err := New(Config{OnProgress: func(id string, written, _ int64) {
		assert.Equal(t, "a", id)
		assert.GreaterOrEqual(t, written, last)
		last = written
	}}).Download(context.Background(), t.TempDir(), Item{ID: "a", URL: mustURL(t, srv.URL+"/a.exe")})
	require.NoError(t, err)
	assert.Equal(t, int64(10), last)
}

func TestDownload_Concurrent(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	files := map[string][]byte{}
	for _, id := range ids {
		files["/"+id+".exe"] = []byte("content for " + id)
	}
	srv := testutil.NewFileServer(t, files)
	var items []Item
	for _, id := range ids {
		items = append(items, Item{ID: id, URL: mustURL(t, srv.URL+"/"+id+".exe"), SHA256: sum("content for " + id)})
	}
	// same URL under another label is fetched once
	items = append(items, Item{ID: "a-again", URL: items[0].URL})

	var mu sync.Mutex
	seen := map[string]bool{}
	res, err := New(Config{Concurrency: 3, OnProgress: func(id string, _, _ int64) {
		mu.Lock()
		seen[id] = true
		mu.Unlock()
	}}).Download(context.Background(), t.TempDir(), items...)
	require.NoError(t, err)
	require.Len(t, res, 6)
	assert.Equal(t, int64(5), srv.Requests.Load())
	assert.Len(t, seen, 5)

	for i, it := range items {
		assert.Equal(t, it.ID, res[i].ID)
		content, err := os.ReadFile(res[i].Path)
		require.NoError(t, err)
		assert.Equal(t, "content for "+it.ID[:1], string(content))
	}
	assert.Equal(t, res[0].Path, res[5].Path)
}

func TestDownload_Errors(t *testing.T) {
	srv := testutil.NewFileServer(t, map[string][]byte{"/ok.exe": []byte("ok")})
	d := New(Config{Concurrency: 1})

	_, err := d.Download(context.Background(), t.TempDir(),
		Item{ID: "ok", URL: mustURL(t, srv.URL+"/ok.exe")},
		Item{ID: "bad", URL: mustURL(t, srv.URL+"/bad.exe")},
	)
	assert.ErrorIs(t, err, errors.ErrDownloadFailed)

	_, err = d.Download(context.Background(), t.TempDir(), Item{ID: "nil"})
	assert.ErrorIs(t, err, errors.ErrDownloadFailed)

	_, err = d.Download(context.Background(), t.TempDir(),
		Item{ID: "one", URL: mustURL(t, srv.URL+"/x/setup.exe")},
		Item{ID: "two", URL: mustURL(t, srv.URL+"/y/setup.exe")},
	)
	require.ErrorIs(t, err, errors.ErrDownloadFailed)
	assert.Contains(t, err.Error(), "both download to setup.exe")
}

func TestDownload_Canceled(t *testing.T) {
	srv := testutil.NewFileServer(t, map[string][]byte{"/a.exe": []byte("a")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{}).Download(ctx, t.TempDir(), Item{ID: "a", URL: mustURL(t, srv.URL+"/a.exe")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDownload_Mirror(t *testing.T) {
	srv := testutil.NewFileServer(t, map[string][]byte{"/packages/CapCut_2_5_4_810.exe": []byte("mirrored")})
	mirror, err := ParseMirror(srv.URL)
	require.NoError(t, err)

	res, err := New(Config{Mirror: mirror}).Download(context.Background(), t.TempDir(),
		Item{ID: "Stable Creator", URL: mustURL(t, "https://origin.invalid/packages/CapCut_2_5_4_810.exe")})
	require.NoError(t, err)
	content, err := os.ReadFile(res[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "mirrored", string(content))
}

func TestParseMirror(t *testing.T) {
	for _, bad := range []string{"not a url", "ftp://mirror.local", "://x"} {
		_, err := ParseMirror(bad)
		assert.ErrorIs(t, err, errors.ErrConfigValidation, bad)
	}
	u, err := ParseMirror("https://mirror.local/ignored")
	require.NoError(t, err)
	assert.Equal(t, "mirror.local", u.Host)
}

func TestItemFor(t *testing.T) {
	it, err := ItemFor(model.ArchiveVersion{
		Version:     "1.5.0",
		Persona:     "Offline Purist",
		DownloadURL: "https://lf16-capcut.faceulv.com/obj/capcutpc-packages-us/packages/CapCut_1_5_0_230_capcutpc_0.exe",
	})
	require.NoError(t, err)
	assert.Equal(t, "Offline Purist", it.ID)
	assert.Equal(t, "CapCut_1_5_0_230_capcutpc_0.exe", it.filename())

	it, err = ItemFor(model.ArchiveVersion{Version: "2.0.0", DownloadURL: "https://example.com/x.exe"})
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", it.ID)

	_, err = ItemFor(model.ArchiveVersion{Persona: "none"})
	assert.ErrorIs(t, err, errors.ErrDownloadFailed)

	_, err = ItemFor(model.ArchiveVersion{Persona: "ftp", DownloadURL: "ftp://example.com/x.exe"})
	assert.ErrorIs(t, err, errors.ErrDownloadFailed)
}

func TestItemFilename(t *testing.T) {
	assert.Equal(t, "setup.exe", Item{Filename: "../../setup.exe", URL: mustURL(t, "http://h/a.exe")}.filename())
	name := Item{URL: mustURL(t, "http://h/")}.filename()
	assert.Len(t, name, 64+len(".exe"))
}
