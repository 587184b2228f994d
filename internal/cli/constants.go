package cli

import "time"

// Default values for CLI flags and configurations.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// DefaultHistoryLimit is the number of runs shown by the history command.
	DefaultHistoryLimit = 20
	// MaxDescriptionLength is the maximum length of a release description to display.
	MaxDescriptionLength = 50
	// shutdownTimeout bounds how long serve waits for in-flight calls.
	shutdownTimeout = 10 * time.Second
)
