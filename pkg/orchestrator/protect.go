package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/hooks"
	"github.com/glorpus-work/vguard/pkg/model"
)

// GenericProtectionFailure is shown when the backend reports failure without a message.
const GenericProtectionFailure = "Protection failed"

// Outcome is the terminal result of a protection run.
type Outcome struct {
	Success    bool
	Kept       model.InstalledVersion
	Deleted    []string
	CleanCache bool
	Logs       []model.LogLine
	Error      string
	Duration   time.Duration
}

// ComputeDeletionSet returns the paths of all installed versions except keep, in snapshot order.
// Matching is by path identity only.
func ComputeDeletionSet(installed []model.InstalledVersion, keep string) []string {
	out := make([]string, 0, len(installed))
	for _, v := range installed {
		if v.Path != keep {
			out = append(out, v.Path)
		}
	}
	return out
}

// DeletionSet returns what a protection run would delete now. Without a keep target it
// returns ErrNoSelection.
func (o *Orchestrator) DeletionSet() ([]string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.st.selected == nil {
		return nil, errors.ErrNoSelection
	}
	return ComputeDeletionSet(o.st.installed, o.st.selected.Path), nil
}

// Protect runs the protection sequence for the current selection: pre-protect hook, one
// ApplyProtection call, log classification, post-protect hook and history. The returned
// Outcome is terminal; nothing is retried. Refusals (no selection, a run already in
// progress) return a nil Outcome and leave state untouched.
func (o *Orchestrator) Protect(ctx context.Context) (*Outcome, error) {
	o.mu.Lock()
	switch {
	case o.Backend == nil:
		o.mu.Unlock()
		return nil, errors.ErrBackendMissing
	case o.st.run.Phase == RunRunning:
		o.mu.Unlock()
		return nil, errors.ErrOperationRunning
	case o.st.selected == nil:
		o.mu.Unlock()
		return nil, errors.ErrNoSelection
	}
	kept := *o.st.selected
	req := model.ProtectionRequest{
		VersionsToDelete: ComputeDeletionSet(o.st.installed, kept.Path),
		CleanCache:       o.st.cacheCleanup,
		LockConfig:       o.opts.LockConfig,
		CreateBlockers:   o.opts.CreateBlockers,
	}
	o.st.run = RunState{Phase: RunRunning}
	o.mu.Unlock()

	started := time.Now()
	out := &Outcome{Kept: kept, Deleted: req.VersionsToDelete, CleanCache: req.CleanCache}
	hc := hooks.HookContext{
		KeepName:   kept.Name,
		KeepPath:   kept.Path,
		Targets:    req.VersionsToDelete,
		CleanCache: req.CleanCache,
	}

	o.progress(ctx, Event{Phase: "preparing", ID: kept.Path, Percent: 10,
		Msg: fmt.Sprintf("Keeping %s, removing %d version(s)", kept.Name, len(req.VersionsToDelete))})

	runErr := o.runScript(ctx, hooks.PreProtect, hc)
	if runErr != nil {
		out.Error = runErr.Error()
	} else {
		o.progress(ctx, Event{Phase: "protecting", Percent: 40, Msg: "Applying protection"})
		var res model.ProtectionResult
		res, runErr = o.Backend.ApplyProtection(ctx, req)
		switch {
		case runErr != nil:
			out.Error = runErr.Error()
		case !res.Success:
			out.Logs = model.ParseLogLines(res.Logs)
			out.Error = res.Error
			if out.Error == "" {
				out.Error = GenericProtectionFailure
			}
			runErr = &errors.BackendFailure{Op: "protection", Message: out.Error}
		default:
			out.Logs = model.ParseLogLines(res.Logs)
		}
	}
	out.Success = runErr == nil
	out.Duration = time.Since(started)

	o.progress(ctx, Event{Phase: "finishing", Percent: 90, Msg: "Finishing"})

	hc.Success = out.Success
	hc.Message = out.Error
	if err := o.runScript(ctx, hooks.PostProtect, hc); err != nil {
		logger.Warn("post-protect hook failed", logger.Fields{"error": err})
	}
	o.record(ctx, model.RunRecord{
		Kind:       model.RunProtect,
		StartedAt:  started,
		Duration:   out.Duration,
		Success:    out.Success,
		Target:     kept.Path,
		Deleted:    out.Deleted,
		CleanCache: out.CleanCache,
		Error:      out.Error,
	})

	o.mu.Lock()
	o.st.run = RunState{Percent: 100, Logs: out.Logs, Error: out.Error}
	if out.Success {
		o.st.run.Phase = RunSucceeded
		o.st.run.Message = "Protection complete"
	} else {
		o.st.run.Phase = RunFailed
		o.st.run.Message = "Protection failed"
	}
	final := Event{Phase: "done", Percent: 100, Msg: o.st.run.Message}
	o.mu.Unlock()
	if !out.Success {
		final.Phase = "error"
		final.Msg = out.Error
	}
	emit(o.Hooks, final)

	return out, runErr
}

// ResetRun returns a finished run to idle so a new run can be shown. It does nothing
// while a run is in progress.
func (o *Orchestrator) ResetRun() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.st.run.Phase != RunRunning {
		o.st.run = RunState{Phase: RunIdle}
	}
}

// progress publishes a step, then waits for the configured pacing.
func (o *Orchestrator) progress(ctx context.Context, e Event) {
	o.mu.Lock()
	if e.Percent < o.st.run.Percent {
		e.Percent = o.st.run.Percent
	}
	o.st.run.Percent = e.Percent
	o.st.run.Message = e.Msg
	o.mu.Unlock()

	emit(o.Hooks, e)
	pause(ctx, o.opts.Pacing)
}

func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (o *Orchestrator) runScript(ctx context.Context, ht hooks.HookType, hc hooks.HookContext) error {
	if o.Scripts == nil {
		return nil
	}
	return o.Scripts.Execute(ctx, ht, hc)
}

func (o *Orchestrator) record(ctx context.Context, rec model.RunRecord) {
	if o.History == nil {
		return
	}
	if err := o.History.Record(ctx, rec); err != nil {
		logger.Warn("failed to record run history", logger.Fields{"kind": string(rec.Kind), "error": err})
	}
}
