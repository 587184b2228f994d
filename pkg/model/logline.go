package model

import "strings"

// Severity classifies a backend log line for display.
type Severity string

const (
	SeverityInfo Severity = "info"
	SeverityOK   Severity = "ok"
	SeverityWarn Severity = "warn"
)

// Log line markers written by backends at the start of a line.
const (
	MarkerOK   = "[OK]"
	MarkerWarn = "[!]"
)

// LogLine is a backend log line with its marker stripped.
type LogLine struct {
	Severity Severity `json:"severity"`
	Text     string   `json:"text"`
}

// ParseLogLine strips a leading severity marker and classifies the line.
// Unmarked lines are informational.
func ParseLogLine(raw string) LogLine {
	trimmed := strings.TrimLeft(raw, " \t")
	switch {
	case strings.HasPrefix(trimmed, MarkerOK):
		return LogLine{Severity: SeverityOK, Text: strings.TrimSpace(trimmed[len(MarkerOK):])}
	case strings.HasPrefix(trimmed, MarkerWarn):
		return LogLine{Severity: SeverityWarn, Text: strings.TrimSpace(trimmed[len(MarkerWarn):])}
	default:
		return LogLine{Severity: SeverityInfo, Text: strings.TrimSpace(raw)}
	}
}

// ParseLogLines classifies every line.
func ParseLogLines(raw []string) []LogLine {
	out := make([]LogLine, 0, len(raw))
	for _, l := range raw {
		out = append(out, ParseLogLine(l))
	}
	return out
}

// OKLine formats an ok-marked log line.
func OKLine(msg string) string { return MarkerOK + " " + msg }

// WarnLine formats a warn-marked log line.
func WarnLine(msg string) string { return MarkerWarn + " " + msg }
