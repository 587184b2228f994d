// Package orchestrator owns the front end's state: the installed and archive snapshots,
// navigation, the keep selection and the protection and switch sequences issued to a backend.
// All remote calls happen outside the state lock; their results are applied afterwards and
// discarded when they belong to an older navigation.
package orchestrator

import (
	"sync"

	"github.com/glorpus-work/vguard/pkg/backend"
	"github.com/glorpus-work/vguard/pkg/model"
)

// Orchestrator is the single owner of front end state.
type Orchestrator struct {
	Backend backend.Backend
	Scripts ScriptRunner    // optional
	History HistoryRecorder // optional
	Hooks   Hooks           // Hooks for progress and event notifications

	opts Options
	mu   sync.Mutex
	st   state
}

type state struct {
	history []ViewID
	gen     uint64

	installed       []model.InstalledVersion
	installedLoaded bool
	archive         []model.ArchiveVersion
	selected        *model.InstalledVersion
	cacheCleanup    bool
	cacheSizeMB     float64
	cacheSizeKnown  bool

	precheck       model.PrecheckResult
	precheckStatus PrecheckStatus

	// switchedActive is the last target a switch confirmed, until a snapshot reports its own.
	switchedActive string
	pendingSwitch  string

	run      RunState
	loadErrs map[LoadKind]error
	notice   string
}

// New creates an orchestrator on the initial view of opts.Views.
// An empty view set defaults to DashboardViews.
func New(b backend.Backend, opts Options) *Orchestrator {
	if opts.Views.Initial == "" {
		opts.Views = DashboardViews
	}
	return &Orchestrator{
		Backend: b,
		opts:    opts,
		st: state{
			history:        []ViewID{opts.Views.Initial},
			cacheCleanup:   true,
			precheckStatus: StatusChecking,
			run:            RunState{Phase: RunIdle},
			loadErrs:       map[LoadKind]error{},
		},
	}
}

// Options returns the options the orchestrator was created with.
func (o *Orchestrator) Options() Options {
	return o.opts
}

// View returns a read-only snapshot for rendering.
func (o *Orchestrator) View() ViewModel {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := &o.st
	vm := ViewModel{
		Current:             s.history[len(s.history)-1],
		History:             append([]ViewID(nil), s.history...),
		CanGoBack:           len(s.history) > 1,
		Installed:           append([]model.InstalledVersion(nil), s.installed...),
		InstalledLoaded:     s.installedLoaded,
		SelectedIndex:       -1,
		CacheCleanupEnabled: s.cacheCleanup,
		CacheSizeMB:         s.cacheSizeMB,
		CacheSizeKnown:      s.cacheSizeKnown,
		Precheck:            s.precheck,
		Status:              s.precheckStatus,
		Active:              s.active(o.opts.AssumeFirstActive),
		PendingSwitch:       s.pendingSwitch,
		Run:                 s.run.clone(),
		LoadErrors:          make(map[LoadKind]string, len(s.loadErrs)),
		Notice:              s.notice,
	}
	if s.selected != nil {
		sel := *s.selected
		vm.Selected = &sel
		vm.SelectedIndex = indexOfPath(s.installed, sel.Path)
	}
	vm.CanProtect = vm.Selected != nil && s.run.Phase != RunRunning
	for k, v := range s.loadErrs {
		vm.LoadErrors[k] = v.Error()
	}
	vm.Archive = make([]ArchiveEntry, 0, len(s.archive))
	for _, a := range s.archive {
		vm.Archive = append(vm.Archive, ArchiveEntry{ArchiveVersion: a, Installed: a.IsInstalled(s.installed)})
	}
	return vm
}

// active resolves the active version. A confirmed switch wins over the snapshot, a
// backend-reported marker wins over the first-entry assumption.
func (s *state) active(assumeFirst bool) ActiveInfo {
	if s.switchedActive != "" {
		if i := indexOfPath(s.installed, s.switchedActive); i >= 0 {
			v := s.installed[i]
			return ActiveInfo{State: ActiveReported, Version: &v}
		}
	}
	for i := range s.installed {
		if s.installed[i].Active {
			v := s.installed[i]
			return ActiveInfo{State: ActiveReported, Version: &v}
		}
	}
	if assumeFirst && len(s.installed) > 0 {
		v := s.installed[0]
		return ActiveInfo{State: ActiveAssumed, Version: &v}
	}
	return ActiveInfo{State: ActiveUnknown}
}

func indexOfPath(versions []model.InstalledVersion, path string) int {
	for i := range versions {
		if versions[i].Path == path {
			return i
		}
	}
	return -1
}
