package cache

import "fmt"

// Common cache errors.
var (
	// ErrCacheDirectory is returned when the install root is not set.
	ErrCacheDirectory = fmt.Errorf("invalid cache directory")

	// ErrUnknownCacheDir is returned when a clean names a directory that is not a cache directory.
	ErrUnknownCacheDir = fmt.Errorf("unknown cache directory")
)
