// Package download fetches release installers from the archive.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/fsutil"
)

const (
	defaultConcurrency = 2
	defaultUserAgent   = "vguard/1.0"
	partSuffix         = ".part"
)

// Progress reports bytes written for one item. Total is -1 when the server sends no length.
type Progress func(id string, written, total int64)

// Config configures a Downloader.
type Config struct {
	Timeout     time.Duration // zero means none
	UserAgent   string
	Concurrency int
	// Mirror replaces the scheme and host of every item URL.
	Mirror     *url.URL
	OnProgress Progress // called from the downloading goroutine
}

// Result describes one downloaded installer.
type Result struct {
	ID     string `json:"id"`
	Path   string `json:"path"`
	Bytes  int64  `json:"bytes"`
	Reused bool   `json:"reused"`
}

// Downloader fetches installers into a directory with a bounded number of parallel requests.
type Downloader struct {
	client *http.Client
	cfg    Config
}

// New creates a Downloader.
func New(cfg Config) *Downloader {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &Downloader{client: &http.Client{Timeout: cfg.Timeout}, cfg: cfg}
}

// Download fetches items into dir and returns one result per item, in item order.
// Items sharing a URL are fetched once. The first failure cancels the rest.
func (d *Downloader) Download(ctx context.Context, dir string, items ...Item) ([]Result, error) {
	if dir == "" || !filepath.IsAbs(dir) {
		return nil, fmt.Errorf("download dir must be absolute: %q: %w", dir, errors.ErrInvalidPath)
	}
	if err := os.MkdirAll(dir, fsutil.DirModeDefault); err != nil {
		return nil, errors.Wrap(err, "could not create download dir")
	}

	groups, order, err := groupByURL(items)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Concurrency)
	for _, key := range order {
		idx := groups[key]
		g.Go(func() error {
			res, err := d.fetch(ctx, dir, items[idx[0]])
			if err != nil {
				return err
			}
			for _, i := range idx {
				results[i] = res
				results[i].ID = items[i].ID
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func groupByURL(items []Item) (map[string][]int, []string, error) {
	groups := make(map[string][]int, len(items))
	names := make(map[string]string, len(items))
	var order []string
	for i, it := range items {
		if it.URL == nil {
			return nil, nil, fmt.Errorf("%s: no URL: %w", it.ID, errors.ErrDownloadFailed)
		}
		key := it.URL.String()
		name := it.filename()
		if other, ok := names[name]; ok && other != key {
			return nil, nil, fmt.Errorf("%s and %s both download to %s: %w", other, key, name, errors.ErrDownloadFailed)
		}
		names[name] = key
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}
	return groups, order, nil
}

func (d *Downloader) fetch(ctx context.Context, dir string, it Item) (Result, error) {
	dst := filepath.Join(dir, it.filename())
	res := Result{ID: it.ID, Path: dst}
	if n, ok := reusable(dst, it.digest()); ok {
		logger.Debug("Reusing downloaded installer", logger.Fields{"id": it.ID, "path": dst})
		res.Bytes, res.Reused = n, true
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	resp, err := d.get(ctx, d.source(it.URL))
	if err != nil {
		return res, err
	}
	defer func() { _ = resp.Body.Close() }()

	var body io.Reader = resp.Body
	if d.cfg.OnProgress != nil {
		body = &progressReader{r: resp.Body, id: it.ID, total: resp.ContentLength, fn: d.cfg.OnProgress}
	}
	h := sha256.New()
	n, err := writePart(dst+partSuffix, io.TeeReader(body, h))
	if err != nil {
		return res, err
	}
	if want := it.digest(); want != "" && hexSum(h) != want {
		_ = os.Remove(dst + partSuffix)
		return res, fmt.Errorf("%s: %w", it.ID, errors.ErrChecksumMismatch)
	}
	if err := os.Rename(dst+partSuffix, dst); err != nil {
		_ = os.Remove(dst + partSuffix)
		return res, errors.Wrap(err, "could not finalize file")
	}
	logger.Debug("Downloaded installer", logger.Fields{"id": it.ID, "path": dst, "bytes": n})
	res.Bytes = n
	return res, nil
}

func (d *Downloader) source(u *url.URL) string {
	if d.cfg.Mirror == nil {
		return u.String()
	}
	src := *u
	src.Scheme = d.cfg.Mirror.Scheme
	src.Host = d.cfg.Mirror.Host
	return src.String()
}

func (d *Downloader) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", d.cfg.UserAgent)
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "download failed")
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s: unexpected status code: %d: %w", rawURL, resp.StatusCode, errors.ErrDownloadFailed)
	}
	return resp, nil
}

// writePart streams r into path, removing it on failure.
func writePart(path string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fsutil.FileModeDefault)
	if err != nil {
		return 0, errors.Wrap(err, "could not create file")
	}
	n, err := io.Copy(f, r)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, errors.Wrap(err, "could not write file")
	}
	return n, nil
}

// reusable reports whether dst already holds the installer.
func reusable(dst, digest string) (int64, bool) {
	st, err := os.Stat(dst)
	if err != nil || !st.Mode().IsRegular() || st.Size() == 0 {
		return 0, false
	}
	if digest == "" {
		return st.Size(), true
	}
	f, err := os.Open(dst)
	if err != nil {
		return 0, false
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, false
	}
	return st.Size(), hexSum(h) == digest
}

func hexSum(h hash.Hash) string { return hex.EncodeToString(h.Sum(nil)) }

type progressReader struct {
	r       io.Reader
	id      string
	total   int64
	written int64
	fn      Progress
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.written += int64(n)
		p.fn(p.id, p.written, p.total)
	}
	return n, err
}
