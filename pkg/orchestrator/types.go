//go:generate mockgen -destination=./mocks/orchestrator.go . ScriptRunner,HistoryRecorder

package orchestrator

import (
	"context"
	"time"

	"github.com/glorpus-work/vguard/pkg/hooks"
	"github.com/glorpus-work/vguard/pkg/model"
)

// ScriptRunner executes user hook scripts around protection and switch runs.
type ScriptRunner interface {
	Execute(ctx context.Context, hookType hooks.HookType, hc hooks.HookContext) error
}

// HistoryRecorder persists finished runs.
type HistoryRecorder interface {
	Record(ctx context.Context, rec model.RunRecord) error
}

// Event represents a simple progress notification.
type Event struct {
	Phase   string // preparing|hooks|protecting|finishing|done|error
	ID      string // version path the event refers to, if any
	Msg     string
	Percent int // 0-100, never decreases within a run
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// Options control orchestrator behavior.
type Options struct {
	Views ViewSet
	// Pacing is an optional pause after each progress step. It is cosmetic only.
	Pacing time.Duration
	// AssumeFirstActive displays the first scanned version as active when nothing better is known.
	AssumeFirstActive bool
	// LockConfig and CreateBlockers are forwarded with every protection request.
	LockConfig     bool
	CreateBlockers bool
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}
