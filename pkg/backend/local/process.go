package local

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessChecker reports whether a process with one of the given names is running.
type ProcessChecker interface {
	Running(ctx context.Context, names []string) (bool, error)
}

// SystemProcesses checks the live process table.
type SystemProcesses struct{}

// Running implements ProcessChecker. Names compare case-insensitively and processes
// whose name cannot be read are skipped.
func (SystemProcesses) Running(ctx context.Context, names []string) (bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, err
	}
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if matchesAny(name, names) {
			return true, nil
		}
	}
	return false, nil
}

func matchesAny(name string, names []string) bool {
	name = filepath.Base(name)
	for _, n := range names {
		if strings.EqualFold(name, n) {
			return true
		}
	}
	return false
}
