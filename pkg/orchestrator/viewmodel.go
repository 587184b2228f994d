package orchestrator

import "github.com/glorpus-work/vguard/pkg/model"

// PrecheckStatus is the display state derived from the latest precheck.
type PrecheckStatus string

const (
	StatusChecking       PrecheckStatus = "checking"
	StatusUnknown        PrecheckStatus = "unknown"
	StatusNoInstallation PrecheckStatus = "no-installation"
	StatusRisk           PrecheckStatus = "risk"
	StatusProtected      PrecheckStatus = "protected"
)

// ClassifyPrecheck maps a precheck response to its display state.
// A running process takes precedence over everything else.
func ClassifyPrecheck(res model.PrecheckResult, err error) PrecheckStatus {
	switch {
	case err != nil:
		return StatusUnknown
	case res.ProcessRunning:
		return StatusRisk
	case !res.InstallationFound:
		return StatusNoInstallation
	default:
		return StatusProtected
	}
}

// ActiveState says how much is known about the active version.
type ActiveState string

const (
	ActiveUnknown  ActiveState = "unknown"
	ActiveReported ActiveState = "reported"
	ActiveAssumed  ActiveState = "assumed"
)

// ActiveInfo is the active version together with the confidence behind it.
type ActiveInfo struct {
	State   ActiveState
	Version *model.InstalledVersion
}

// IsActive reports whether path is the known or assumed active version.
func (a ActiveInfo) IsActive(path string) bool {
	return a.Version != nil && a.Version.Path == path
}

// RunPhase is the lifecycle of a protection run.
type RunPhase string

const (
	RunIdle      RunPhase = "idle"
	RunRunning   RunPhase = "running"
	RunSucceeded RunPhase = "succeeded"
	RunFailed    RunPhase = "failed"
)

// RunState is the progress and terminal result of the current protection run.
type RunState struct {
	Phase   RunPhase
	Percent int
	Message string
	Logs    []model.LogLine
	Error   string
}

func (r RunState) clone() RunState {
	if r.Phase == "" {
		r.Phase = RunIdle
	}
	r.Logs = append([]model.LogLine(nil), r.Logs...)
	return r
}

// Terminal reports whether the run has finished.
func (r RunState) Terminal() bool {
	return r.Phase == RunSucceeded || r.Phase == RunFailed
}

// ArchiveEntry is an archive release with its best-effort installed badge.
type ArchiveEntry struct {
	model.ArchiveVersion
	Installed bool
}

// ViewModel is a read-only snapshot of orchestrator state for rendering adapters.
type ViewModel struct {
	Current   ViewID
	History   []ViewID
	CanGoBack bool

	Installed       []model.InstalledVersion
	InstalledLoaded bool
	Archive         []ArchiveEntry

	Selected      *model.InstalledVersion
	SelectedIndex int // -1 without selection

	CacheCleanupEnabled bool
	CacheSizeMB         float64
	CacheSizeKnown      bool

	Precheck model.PrecheckResult
	Status   PrecheckStatus
	Active   ActiveInfo

	PendingSwitch string
	// CanProtect is false without a keep target or while a run is in progress.
	CanProtect bool
	Run        RunState

	// LoadErrors holds the last transport error per load kind, shown inline.
	LoadErrors map[LoadKind]string
	Notice     string
}
