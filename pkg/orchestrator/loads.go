package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/model"
)

// Load is one remote read issued for a navigation generation.
type Load struct {
	Kind LoadKind
	Gen  uint64
}

// LoadResult carries the response of a Load. Only the field matching Kind is set.
type LoadResult struct {
	Load
	Precheck    model.PrecheckResult
	Installed   []model.InstalledVersion
	Archive     []model.ArchiveVersion
	CacheSizeMB float64
	Err         error
}

func (o *Orchestrator) loadsLocked(kinds []LoadKind) []Load {
	loads := make([]Load, 0, len(kinds))
	for _, k := range kinds {
		loads = append(loads, Load{Kind: k, Gen: o.st.gen})
	}
	return loads
}

// Refresh returns loads of the given kinds for the current generation, e.g. for a
// periodic precheck.
func (o *Orchestrator) Refresh(kinds ...LoadKind) []Load {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loadsLocked(kinds)
}

// Reload returns the loads of the current view for the current generation.
func (o *Orchestrator) Reload() []Load {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loadsLocked(o.opts.Views.LoadsFor(o.st.history[len(o.st.history)-1]))
}

// Fetch performs the remote call behind l. It does not touch orchestrator state.
func (o *Orchestrator) Fetch(ctx context.Context, l Load) LoadResult {
	res := LoadResult{Load: l}
	if o.Backend == nil {
		res.Err = errors.ErrBackendMissing
		return res
	}
	switch l.Kind {
	case LoadPrecheck:
		res.Precheck, res.Err = o.Backend.PerformPrecheck(ctx)
	case LoadInstalled:
		res.Installed, res.Err = o.Backend.ScanVersions(ctx)
	case LoadArchive:
		res.Archive, res.Err = o.Backend.GetArchiveVersions(ctx)
	case LoadCacheSize:
		res.CacheSizeMB, res.Err = o.Backend.CalculateCacheSize(ctx)
	default:
		res.Err = fmt.Errorf("unknown load kind %q", l.Kind)
	}
	return res
}

// Apply folds a load result into state. Results from an older generation are dropped and
// Apply reports false. A failed load keeps the previous snapshot and records the error
// for inline display; a failed precheck degrades the status to unknown.
func (o *Orchestrator) Apply(r LoadResult) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if r.Gen != o.st.gen {
		return false
	}

	switch r.Kind {
	case LoadPrecheck:
		o.st.precheckStatus = ClassifyPrecheck(r.Precheck, r.Err)
		if r.Err == nil {
			o.st.precheck = r.Precheck
		}
	case LoadInstalled:
		if r.Err == nil {
			o.replaceInstalledLocked(r.Installed)
		}
	case LoadArchive:
		if r.Err == nil {
			o.st.archive = append([]model.ArchiveVersion(nil), r.Archive...)
		}
	case LoadCacheSize:
		if r.Err == nil {
			o.st.cacheSizeMB = r.CacheSizeMB
			o.st.cacheSizeKnown = true
		}
	}

	if r.Err != nil {
		o.st.loadErrs[r.Kind] = r.Err
	} else {
		delete(o.st.loadErrs, r.Kind)
	}
	return true
}

// replaceInstalledLocked swaps in a new snapshot and revalidates everything keyed by path.
func (o *Orchestrator) replaceInstalledLocked(list []model.InstalledVersion) {
	s := &o.st
	s.installed = append([]model.InstalledVersion(nil), list...)
	s.installedLoaded = true

	if s.selected != nil {
		if i := indexOfPath(s.installed, s.selected.Path); i >= 0 {
			v := s.installed[i]
			s.selected = &v
		} else {
			s.selected = nil
		}
	}
	if s.pendingSwitch != "" && indexOfPath(s.installed, s.pendingSwitch) < 0 {
		s.pendingSwitch = ""
	}

	reported := false
	for i := range s.installed {
		if s.installed[i].Active {
			reported = true
			break
		}
	}
	if reported || indexOfPath(s.installed, s.switchedActive) < 0 {
		s.switchedActive = ""
	}
}

// RunLoads fetches all loads concurrently and applies each result as it arrives.
// It returns the number of results that were applied.
func (o *Orchestrator) RunLoads(ctx context.Context, loads []Load) int {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for _, l := range loads {
		wg.Add(1)
		go func(l Load) {
			defer wg.Done()
			if o.Apply(o.Fetch(ctx, l)) {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}(l)
	}
	wg.Wait()
	return applied
}

// NavigateAndLoad navigates to view and waits for its loads.
func (o *Orchestrator) NavigateAndLoad(ctx context.Context, view ViewID) {
	o.RunLoads(ctx, o.Navigate(view))
}

// LoadErrors returns the last error recorded per load kind.
func (o *Orchestrator) LoadErrors() map[LoadKind]error {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[LoadKind]error, len(o.st.loadErrs))
	for k, v := range o.st.loadErrs {
		out[k] = v
	}
	return out
}
