package local

import (
	"os"
	"path/filepath"

	"github.com/glorpus-work/vguard/pkg/fsutil"
)

// AppsDir holds one directory per installed version below the install root.
const AppsDir = "Apps"

// PathSource records how the install was located.
type PathSource string

const (
	SourceCustom   PathSource = "custom"
	SourceRegistry PathSource = "registry"
	SourceDefault  PathSource = "default"
)

// Paths locates an installation.
type Paths struct {
	Root   string
	Apps   string
	Source PathSource
}

// ResolvePaths finds the install of appName. A non-empty override wins and may point
// at either the install root or its Apps directory. Otherwise the platform lookup is
// tried, then %LOCALAPPDATA%/<appName>.
func ResolvePaths(appName, override string) (Paths, bool) {
	if override != "" {
		return customPaths(override), true
	}
	for _, root := range registryRoots(appName) {
		apps := filepath.Join(root, AppsDir)
		if !fsutil.IsDir(apps) {
			// some installs keep versions directly in the root
			apps = root
		}
		if fsutil.IsDir(apps) {
			return Paths{Root: root, Apps: apps, Source: SourceRegistry}, true
		}
	}
	if base := os.Getenv("LOCALAPPDATA"); base != "" {
		root := filepath.Join(base, appName)
		apps := filepath.Join(root, AppsDir)
		if fsutil.Exists(root) || fsutil.Exists(apps) {
			return Paths{Root: root, Apps: apps, Source: SourceDefault}, true
		}
	}
	return Paths{}, false
}

func customPaths(dir string) Paths {
	dir = filepath.Clean(dir)
	if filepath.Base(dir) == AppsDir && !fsutil.IsDir(filepath.Join(dir, AppsDir)) {
		return Paths{Root: filepath.Dir(dir), Apps: dir, Source: SourceCustom}
	}
	return Paths{Root: dir, Apps: filepath.Join(dir, AppsDir), Source: SourceCustom}
}

// IsVersionDir reports whether path is a direct child directory of p.Apps.
func (p Paths) IsVersionDir(path string) bool {
	if path == "" {
		return false
	}
	clean := filepath.Clean(path)
	return filepath.Dir(clean) == filepath.Clean(p.Apps) && fsutil.IsDir(clean)
}
