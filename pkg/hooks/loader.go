package hooks

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/vguard/pkg/errors"
)

// HookFileExtension is the extension of hook scripts in the hooks directory.
const HookFileExtension = ".tengo"

// LoadDir registers every <hook-type>.tengo file found in dir.
// A missing directory means no hooks; unknown names are skipped.
func LoadDir(executor *TengoExecutor, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "failed to read hooks directory %s", dir)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != HookFileExtension {
			continue
		}

		hookType := HookType(strings.TrimSuffix(entry.Name(), HookFileExtension))
		if !hookType.Valid() {
			continue
		}

		hookPath := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(hookPath)
		if err != nil {
			return errors.Wrapf(err, "error reading hook file %s", hookPath)
		}
		executor.AddScript(hookType, string(content))
	}

	return nil
}

// HookTemplate generates a starter script for a hook type.
func HookTemplate(hookType HookType) string {
	header := "// " + string(hookType) + " hook\n"
	switch hookType {
	case PreProtect:
		return header + `// Runs before a protection run. Setting err aborts the run.
// Available variables:
// - keepName, keepPath: the version that is kept
// - targets: array of version paths that will be deleted
// - cleanCache: bool

// if len(targets) > 3 { err = "refusing to delete more than three versions" }
`
	case PostProtect:
		return header + `// Runs after a protection run.
// Available variables: keepName, keepPath, targets, cleanCache, success, message
`
	case PreSwitch:
		return header + `// Runs before switching the active version. Setting err aborts the switch.
// Available variables: keepName, keepPath
`
	case PostSwitch:
		return header + `// Runs after a switch.
// Available variables: keepName, keepPath, success, message
`
	default:
		return header
	}
}
