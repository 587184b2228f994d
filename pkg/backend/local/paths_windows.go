//go:build windows

package local

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows/registry"
)

type registryValue struct {
	key   string
	value string
}

func registryValues(appName string) []registryValue {
	return []registryValue{
		{`SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\` + appName, "InstallLocation"},
		{`SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall\` + appName, "InstallLocation"},
		{`SOFTWARE\Microsoft\Windows\CurrentVersion\App Paths\` + appName + ".exe", "Path"},
	}
}

// registryRoots returns existing install roots recorded in the registry, machine-wide
// entries before per-user ones.
func registryRoots(appName string) []string {
	var roots []string
	for _, rv := range registryValues(appName) {
		for _, hive := range []registry.Key{registry.LOCAL_MACHINE, registry.CURRENT_USER} {
			if root, ok := readRegistryPath(hive, rv); ok {
				roots = append(roots, root)
			}
		}
	}
	return roots
}

func readRegistryPath(hive registry.Key, rv registryValue) (string, bool) {
	k, err := registry.OpenKey(hive, rv.key, registry.QUERY_VALUE)
	if err != nil {
		return "", false
	}
	defer k.Close()
	v, _, err := k.GetStringValue(rv.value)
	if err != nil || strings.TrimSpace(v) == "" {
		return "", false
	}
	v = filepath.Clean(os.ExpandEnv(strings.Trim(v, `"`)))
	if _, err := os.Stat(v); err != nil {
		return "", false
	}
	return v, true
}
