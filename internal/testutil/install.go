// Package testutil builds fake installations and servers for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Install is a fake application install below a temporary directory.
type Install struct {
	Root string
	Apps string
}

// NewInstall creates Root/Apps with one directory per version name. Every version holds
// a small CapCut.exe.
func NewInstall(t testing.TB, versions ...string) *Install {
	t.Helper()
	root := filepath.Join(t.TempDir(), "CapCut")
	inst := &Install{Root: root, Apps: filepath.Join(root, "Apps")}
	mustMkdir(t, inst.Apps)
	for _, v := range versions {
		inst.AddVersion(t, v, 1024)
	}
	return inst
}

// AddVersion creates a version directory with an executable and a payload of size bytes.
func (i *Install) AddVersion(t testing.TB, name string, size int) string {
	t.Helper()
	dir := filepath.Join(i.Apps, name)
	mustWrite(t, filepath.Join(dir, "CapCut.exe"), []byte("MZ"))
	mustWrite(t, filepath.Join(dir, "Resources", "payload.bin"), make([]byte, size))
	return dir
}

// VersionPath returns the path a version directory would have.
func (i *Install) VersionPath(name string) string {
	return filepath.Join(i.Apps, name)
}

// AddCache writes size bytes into User Data/<dir>.
func (i *Install) AddCache(t testing.TB, dir string, size int) string {
	t.Helper()
	path := filepath.Join(i.Root, "User Data", dir)
	mustWrite(t, filepath.Join(path, "data_0"), make([]byte, size))
	return path
}

// WriteApps writes a file directly below Apps.
func (i *Install) WriteApps(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(i.Apps, name)
	mustWrite(t, path, []byte(content))
	return path
}

func mustMkdir(t testing.TB, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
}

func mustWrite(t testing.TB, path string, data []byte) {
	t.Helper()
	mustMkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
