//go:build !windows

package local

// registryRoots has no registry to consult outside Windows.
func registryRoots(string) []string { return nil }
