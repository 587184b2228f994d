package local

import (
	"context"

	"github.com/glorpus-work/vguard/pkg/model"
)

// ListBackups implements backend.Admin.
func (b *Backend) ListBackups(context.Context) ([]model.BackupMetadata, error) {
	return b.backups.List()
}

// RestoreBackup implements backend.Admin. Restore problems are reported in the result.
func (b *Backend) RestoreBackup(ctx context.Context, id string) (model.RestoreResult, error) {
	meta, err := b.backups.Restore(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return model.RestoreResult{}, ctx.Err()
		}
		return model.RestoreResult{Error: err.Error()}, nil
	}
	return model.RestoreResult{Success: true, RestoredPath: meta.OriginalPath}, nil
}

// DeleteBackup implements backend.Admin.
func (b *Backend) DeleteBackup(_ context.Context, id string) error {
	return b.backups.Delete(id)
}

// ClearBackups implements backend.Admin.
func (b *Backend) ClearBackups(context.Context) (int, error) {
	return b.backups.Clear()
}

// BackupSize implements backend.Admin.
func (b *Backend) BackupSize(context.Context) (int64, error) {
	return b.backups.Size()
}
