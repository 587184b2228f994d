package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/model"
)

// CleanCache asks the backend to clean the application cache on its own, outside a
// protection run. The cached size is not adjusted; reload LoadCacheSize afterwards.
func (o *Orchestrator) CleanCache(ctx context.Context) (model.CacheCleanResult, error) {
	if o.Backend == nil {
		return model.CacheCleanResult{}, errors.ErrBackendMissing
	}

	started := time.Now()
	res, err := o.Backend.CleanCache(ctx)
	if err == nil && !res.Success {
		err = &errors.BackendFailure{Op: "cache clean", Message: lastWarning(res.Logs)}
	}

	o.mu.Lock()
	if err != nil {
		o.st.notice = err.Error()
	} else {
		o.st.notice = fmt.Sprintf("Cleaned %.1f MB of cache", res.CleanedMB)
	}
	o.mu.Unlock()

	rec := model.RunRecord{
		Kind:       model.RunClean,
		StartedAt:  started,
		Duration:   time.Since(started),
		Success:    err == nil,
		CleanCache: true,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	o.record(ctx, rec)

	return res, err
}

// lastWarning returns the text of the last warn-marked line, or "".
func lastWarning(logs []string) string {
	for i := len(logs) - 1; i >= 0; i-- {
		if l := model.ParseLogLine(logs[i]); l.Severity == model.SeverityWarn {
			return l.Text
		}
	}
	return ""
}
