// Package archive keeps the backup store that protection runs write to before deleting a
// version. Each backup holds a tar.gz snapshot of the version directory.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/mholt/archives"

	"github.com/glorpus-work/vguard/pkg/fsutil"
)

var snapshotFormat = archives.CompressedArchive{
	Compression: archives.Gz{},
	Archival:    archives.Tar{},
}

// Pack writes a snapshot of dir to dst. Entry names are relative to dir. dst only appears
// once the snapshot is complete.
func Pack(ctx context.Context, dir, dst string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		abs + string(os.PathSeparator): "",
	})
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	if err := fsutil.EnsureFileDir(dst); err != nil {
		return err
	}
	tmp := dst + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	err = snapshotFormat.Archive(ctx, f, files)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, dst)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write snapshot of %s: %w", dir, err)
	}
	return nil
}

// Unpack extracts the snapshot at src into dst and returns the number of files written.
// Links are skipped and entries that would land outside dst are rejected.
func Unpack(ctx context.Context, src, dst string) (int, error) {
	f, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := os.MkdirAll(dst, fsutil.DirModeDefault); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dst, err)
	}

	n := 0
	err = snapshotFormat.Extract(ctx, f, func(ctx context.Context, e archives.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := path.Clean(e.NameInArchive)
		if name == "." {
			return nil
		}
		if !filepath.IsLocal(filepath.FromSlash(name)) {
			return fmt.Errorf("snapshot entry %s escapes destination", e.NameInArchive)
		}
		target := filepath.Join(dst, filepath.FromSlash(name))
		switch {
		case e.IsDir():
			return os.MkdirAll(target, fsutil.DirModeDefault)
		case e.LinkTarget != "" || !e.Mode().IsRegular():
			return nil
		}
		if err := writeEntry(e, target); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("failed to unpack %s: %w", filepath.Base(src), err)
	}
	return n, nil
}

// writeEntry copies one regular file out of the snapshot, keeping it owner-writable.
func writeEntry(e archives.FileInfo, target string) error {
	r, err := e.Open()
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	if err := fsutil.EnsureFileDir(target); err != nil {
		return err
	}
	w, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, e.Mode().Perm()|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return os.Chtimes(target, e.ModTime(), e.ModTime())
}
