package cache

import "context"

// Manager defines the interface for application cache operations.
type Manager interface {
	Clean(ctx context.Context, options CleanOptions) (*CleanResult, error)
	GetInfo() (*Info, error)
	GetDirectory() string
}

// CleanOptions specifies what to clean. An empty Dirs cleans every cache directory.
type CleanOptions struct {
	Dirs []string
}

// CleanResult contains information about what was cleaned. Per-directory failures are
// reported in Failed and Logs, not as an error.
type CleanResult struct {
	TotalFreed int64
	Freed      map[string]int64
	Failed     []string
	Logs       []string
}

// DirInfo describes one cache directory.
type DirInfo struct {
	Name   string
	Path   string
	Size   int64
	Files  int
	Exists bool
}

// Info represents cache information.
type Info struct {
	Directory string
	TotalSize int64
	Dirs      []DirInfo
}
