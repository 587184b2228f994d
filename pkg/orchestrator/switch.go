package orchestrator

import (
	"context"
	"time"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/hooks"
	"github.com/glorpus-work/vguard/pkg/model"
)

// RequestSwitch stages path as the switch target. The path must be in the current snapshot.
func (o *Orchestrator) RequestSwitch(path string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if indexOfPath(o.st.installed, path) < 0 {
		return errors.Wrap(errors.ErrUnknownVersion, path)
	}
	o.st.pendingSwitch = path
	return nil
}

// CancelSwitch drops the staged switch target.
func (o *Orchestrator) CancelSwitch() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.st.pendingSwitch = ""
}

// PendingSwitch returns the staged switch target, or "".
func (o *Orchestrator) PendingSwitch() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.st.pendingSwitch
}

// ConfirmSwitch switches to the staged target. Nothing is deleted. On success the target
// becomes the active version in place; on failure the message is kept as a notice and
// the snapshot is left as it was.
func (o *Orchestrator) ConfirmSwitch(ctx context.Context) (model.SwitchResult, error) {
	o.mu.Lock()
	if o.Backend == nil {
		o.mu.Unlock()
		return model.SwitchResult{}, errors.ErrBackendMissing
	}
	target := o.st.pendingSwitch
	if target == "" {
		o.mu.Unlock()
		return model.SwitchResult{}, errors.ErrNoPendingSwitch
	}
	var name string
	if i := indexOfPath(o.st.installed, target); i >= 0 {
		name = o.st.installed[i].Name
	}
	o.st.pendingSwitch = ""
	o.mu.Unlock()

	started := time.Now()
	hc := hooks.HookContext{KeepName: name, KeepPath: target}

	var res model.SwitchResult
	err := o.runScript(ctx, hooks.PreSwitch, hc)
	if err == nil {
		res, err = o.Backend.SwitchVersion(ctx, target)
		if err == nil && !res.Success {
			err = &errors.BackendFailure{Op: "switch", Message: res.Message}
		}
	}
	if err != nil && res.Message == "" {
		res = model.SwitchResult{Success: false, Message: err.Error()}
	}

	o.mu.Lock()
	if err == nil {
		o.st.switchedActive = target
	}
	o.st.notice = res.Message
	o.mu.Unlock()

	hc.Success = err == nil
	hc.Message = res.Message
	if hookErr := o.runScript(ctx, hooks.PostSwitch, hc); hookErr != nil {
		logger.Warn("post-switch hook failed", logger.Fields{"error": hookErr})
	}

	rec := model.RunRecord{
		Kind:      model.RunSwitch,
		StartedAt: started,
		Duration:  time.Since(started),
		Success:   err == nil,
		Target:    target,
	}
	if err != nil {
		rec.Error = res.Message
	}
	o.record(ctx, rec)

	return res, err
}
