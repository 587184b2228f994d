// Package fsutil provides file system helpers and permission constants used across vguard.
package fsutil

// File and directory permission constants.
const (
	FileModeDefault  = 0o644 // -rw-r--r--
	FileModeSecure   = 0o640 // -rw-r-----
	FileModeReadOnly = 0o444 // -r--r--r--: for blocker files

	DirModeDefault = 0o755 // drwxr-xr-x

	// BytesPerMB converts byte counts to the megabytes shown to users.
	BytesPerMB = 1024 * 1024
)
