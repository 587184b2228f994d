// Package logger is the process-wide structured logger of vguard, built on log/slog.
//
// Commands log through the package functions with an optional Fields map. Output goes to
// stderr so that stdout carries only command results, and can be moved to a file while the
// terminal UI owns the screen.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/glorpus-work/vguard/pkg/fsutil"
)

// OutputFormat selects the slog handler.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Fields are structured attributes attached to one record.
type Fields map[string]any

var (
	mu         sync.Mutex
	testOutput io.Writer
	output     io.Writer = os.Stderr
	format               = FormatText
	level                = new(slog.LevelVar)
	logger     *slog.Logger
)

// SetTestOutput captures all output in w until UnsetTestOutput.
func SetTestOutput(w io.Writer) {
	mu.Lock()
	testOutput = w
	mu.Unlock()
	rebuild()
}

// UnsetTestOutput stops capturing.
func UnsetTestOutput() {
	mu.Lock()
	testOutput = nil
	mu.Unlock()
	rebuild()
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
	rebuild()
}

// ToFile appends log output to path, creating its directory. The returned func closes the
// file and restores stderr.
func ToFile(path string) (func(), error) {
	if err := fsutil.EnsureFileDir(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, fsutil.FileModeDefault)
	if err != nil {
		return nil, err
	}
	SetOutput(f)
	return func() {
		SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

// ParseLevel maps a config level name to a slog level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogger sets the level and format of the global logger.
func InitLogger(logLevel string, f OutputFormat) {
	level.Set(ParseLevel(logLevel))
	mu.Lock()
	format = f
	mu.Unlock()
	rebuild()
}

func rebuild() {
	mu.Lock()
	defer mu.Unlock()
	w := output
	if testOutput != nil {
		w = testOutput
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == FormatJSON {
		logger = slog.New(slog.NewJSONHandler(w, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(w, opts))
	}
}

// GetLogger returns the configured logger, initializing it at info level on first use.
func GetLogger() *slog.Logger {
	mu.Lock()
	l := logger
	mu.Unlock()
	if l == nil {
		rebuild()
		mu.Lock()
		l = logger
		mu.Unlock()
	}
	return l
}

// Info logs at info level.
func Info(msg string, fields ...Fields) {
	GetLogger().Info(msg, mergeFields(fields...)...)
}

// Debug logs at debug level, shown with --verbose or log_level: debug.
func Debug(msg string, fields ...Fields) {
	GetLogger().Debug(msg, mergeFields(fields...)...)
}

// Warn logs at warn level.
func Warn(msg string, fields ...Fields) {
	GetLogger().Warn(msg, mergeFields(fields...)...)
}

// Error logs at error level.
func Error(msg string, fields ...Fields) {
	GetLogger().Error(msg, mergeFields(fields...)...)
}

// Success logs a completed operation at info level, tagged status=success.
func Success(msg string, fields ...Fields) {
	GetLogger().Info(msg, append(mergeFields(fields...), "status", "success")...)
}

// mergeFields flattens field maps into slog key-value pairs. Later maps win on duplicate
// keys and keys keep first-seen order.
func mergeFields(fields ...Fields) []any {
	merged := Fields{}
	var order []string
	for _, f := range fields {
		for k, v := range f {
			if _, seen := merged[k]; !seen {
				order = append(order, k)
			}
			merged[k] = v
		}
	}
	out := make([]any, 0, len(order)*2)
	for _, k := range order {
		out = append(out, k, merged[k])
	}
	return out
}
