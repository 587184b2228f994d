//go:generate mockgen -destination=./mocks/backend.go . Backend,Admin

// Package backend defines the remote calls the vguard front end issues. Every piece of
// filesystem and process work lives behind these interfaces; implementations are the
// local filesystem backend and the HTTP client in pkg/rpc.
package backend

import (
	"context"

	"github.com/glorpus-work/vguard/pkg/model"
)

// Backend is the set of calls the orchestrator depends on.
type Backend interface {
	PerformPrecheck(ctx context.Context) (model.PrecheckResult, error)
	ScanVersions(ctx context.Context) ([]model.InstalledVersion, error)
	GetArchiveVersions(ctx context.Context) ([]model.ArchiveVersion, error)
	CalculateCacheSize(ctx context.Context) (float64, error)
	CleanCache(ctx context.Context) (model.CacheCleanResult, error)
	// SwitchVersion makes the version at path the active one. It never deletes anything.
	SwitchVersion(ctx context.Context, path string) (model.SwitchResult, error)
	// ApplyProtection deletes the requested versions and applies the update blockers in one call.
	ApplyProtection(ctx context.Context, req model.ProtectionRequest) (model.ProtectionResult, error)
}

// Admin holds maintenance calls used by the command line but not by the orchestrator.
type Admin interface {
	ProtectionStatus(ctx context.Context) (model.ProtectionStatus, error)
	RemoveProtection(ctx context.Context) (model.ProtectionResult, error)
	ListBackups(ctx context.Context) ([]model.BackupMetadata, error)
	RestoreBackup(ctx context.Context, id string) (model.RestoreResult, error)
	DeleteBackup(ctx context.Context, id string) error
	ClearBackups(ctx context.Context) (int, error)
	BackupSize(ctx context.Context) (int64, error)
	Launch(ctx context.Context) (model.LaunchResult, error)
}

// Service is a backend that also serves the maintenance calls.
type Service interface {
	Backend
	Admin
}
