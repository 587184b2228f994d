// Package errors holds the sentinel errors shared across vguard and small wrapping helpers.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath     = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath   = fmt.Errorf("invalid config file path")
	ErrConfigParse         = fmt.Errorf("failed to parse config")
	ErrConfigValidation    = fmt.Errorf("invalid configuration")
	ErrConfigEncode        = fmt.Errorf("failed to encode config")
	ErrConfigDirectory     = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate    = fmt.Errorf("failed to create config file")
	ErrConfigFileRename    = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists    = fmt.Errorf("already exists (use --force to overwrite)")
	ErrUnknownConfigKey    = fmt.Errorf("unknown configuration key")
	ErrInvalidBackendMode  = fmt.Errorf("invalid backend mode")
	ErrInvalidOutputFormat = fmt.Errorf("invalid output format")
	ErrInvalidLogLevel     = fmt.Errorf("invalid log level")

	// Orchestration errors.
	ErrNoSelection      = fmt.Errorf("no version selected to keep")
	ErrNoPendingSwitch  = fmt.Errorf("no switch target pending")
	ErrUnknownVersion   = fmt.Errorf("version is not in the installed snapshot")
	ErrBackendMissing   = fmt.Errorf("backend is not configured")
	ErrOperationRunning = fmt.Errorf("another protection run is in progress")

	// Transport errors.
	ErrTransport    = fmt.Errorf("transport error")
	ErrUnauthorized = fmt.Errorf("unauthorized")

	// Backend errors.
	ErrInstallationNotFound = fmt.Errorf("installation not found")
	ErrAppRunning           = fmt.Errorf("application is still running")
	ErrInvalidPath          = fmt.Errorf("invalid path")
	ErrBackupNotFound       = fmt.Errorf("backup not found")
	ErrBackupExists         = fmt.Errorf("restore target already exists")

	// Hook errors.
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")

	// Download errors.
	ErrDownloadFailed   = fmt.Errorf("download failed")
	ErrArchiveNotFound  = fmt.Errorf("archive version not found")
	ErrChecksumMismatch = fmt.Errorf("checksum mismatch")
)

// BackendFailure is an operation the backend completed but reported as failed.
type BackendFailure struct {
	Op      string
	Message string
}

func (e *BackendFailure) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed", e.Op)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

// IsBackendFailure reports whether err carries a BackendFailure.
func IsBackendFailure(err error) bool {
	var bf *BackendFailure
	return stderrors.As(err, &bf)
}

// Is is a passthrough to the standard library so callers only import one errors package.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is a passthrough to the standard library.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Transport marks err as a transport failure while keeping the original in the chain.
func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
}
