// Package rpc carries backend calls over HTTP. Each call is a POST to /rpc/<method> with a
// JSON argument body; the reply is an envelope holding either the result or an error.
package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/glorpus-work/vguard/pkg/errors"
)

// Method names as they appear in the URL path.
const (
	MethodPrecheck         = "perform_precheck"
	MethodScanVersions     = "scan_versions"
	MethodArchiveVersions  = "get_archive_versions"
	MethodCacheSize        = "calculate_cache_size"
	MethodCleanCache       = "clean_cache"
	MethodSwitchVersion    = "switch_version"
	MethodApplyProtection  = "apply_protection"
	MethodProtectionStatus = "protection_status"
	MethodRemoveProtection = "remove_protection"
	MethodListBackups      = "list_backups"
	MethodRestoreBackup    = "restore_backup"
	MethodDeleteBackup     = "delete_backup"
	MethodClearBackups     = "clear_backups"
	MethodBackupSize       = "backup_size"
	MethodLaunch           = "launch"
)

const (
	pathPrefix      = "/rpc/"
	contentTypeJSON = "application/json"

	maxRequestBytes int64 = 1 << 20
)

type pathArgs struct {
	Path string `json:"path"`
}

type idArgs struct {
	ID string `json:"id"`
}

type envelope struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *wireError      `json:"error,omitempty"`
}

type wireError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// errorCodes lists the sentinels that survive the round trip.
var errorCodes = map[string]error{
	"installation_not_found": errors.ErrInstallationNotFound,
	"app_running":            errors.ErrAppRunning,
	"invalid_path":           errors.ErrInvalidPath,
	"backup_not_found":       errors.ErrBackupNotFound,
	"backup_exists":          errors.ErrBackupExists,
	"archive_not_found":      errors.ErrArchiveNotFound,
}

func encodeError(err error) *wireError {
	we := &wireError{Message: err.Error()}
	for code, sentinel := range errorCodes {
		if errors.Is(err, sentinel) {
			we.Code = code
			break
		}
	}
	return we
}

// decode restores the sentinel in the chain when the code is known.
func (w *wireError) decode() error {
	if sentinel, ok := errorCodes[w.Code]; ok {
		return fmt.Errorf("remote: %s: %w", w.Message, sentinel)
	}
	return fmt.Errorf("remote: %s", w.Message)
}
