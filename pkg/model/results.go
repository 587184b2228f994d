package model

import "time"

// PrecheckResult is the read-only system check run before any management action.
type PrecheckResult struct {
	InstallationFound bool   `json:"installation_found"`
	ProcessRunning    bool   `json:"process_running"`
	AppsPath          string `json:"apps_path,omitempty"`
}

// SwitchResult is returned by a non-destructive switch of the active version.
type SwitchResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ProtectionRequest is the single composite protection call.
type ProtectionRequest struct {
	VersionsToDelete []string `json:"versions_to_delete"`
	CleanCache       bool     `json:"clean_cache"`
	LockConfig       bool     `json:"lock_config"`
	CreateBlockers   bool     `json:"create_blockers"`
}

// ProtectionResult reports a protection run. Logs carry severity markers, see ParseLogLine.
type ProtectionResult struct {
	Success bool     `json:"success"`
	Logs    []string `json:"logs"`
	Error   string   `json:"error,omitempty"`
}

// CacheCleanResult reports a cache clean.
type CacheCleanResult struct {
	Success   bool     `json:"success"`
	CleanedMB float64  `json:"cleaned_mb"`
	Logs      []string `json:"logs"`
}

// ProtectionStatus describes which protection measures are currently in place.
type ProtectionStatus struct {
	IsProtected   bool `json:"is_protected"`
	ConfigLocked  bool `json:"config_locked"`
	BlockersExist bool `json:"blockers_exist"`
}

// BackupMetadata describes a version backup taken before deletion.
type BackupMetadata struct {
	ID           string    `json:"id"`
	VersionName  string    `json:"version_name"`
	OriginalPath string    `json:"original_path"`
	CreatedAt    time.Time `json:"created_at"`
	SizeBytes    int64     `json:"size_bytes"`
	Reason       string    `json:"reason"`
}

// RestoreResult reports a backup restore.
type RestoreResult struct {
	Success      bool   `json:"success"`
	RestoredPath string `json:"restored_path,omitempty"`
	Error        string `json:"error,omitempty"`
}

// LaunchResult reports an attempt to start the application.
type LaunchResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RunKind identifies the operation recorded in history.
type RunKind string

const (
	RunProtect RunKind = "protect"
	RunSwitch  RunKind = "switch"
	RunClean   RunKind = "clean"
)

// RunRecord is one entry in the operation history.
type RunRecord struct {
	ID         string        `json:"id"`
	Kind       RunKind       `json:"kind"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Success    bool          `json:"success"`
	Target     string        `json:"target,omitempty"`
	Deleted    []string      `json:"deleted,omitempty"`
	CleanCache bool          `json:"clean_cache,omitempty"`
	Error      string        `json:"error,omitempty"`
}
