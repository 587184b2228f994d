package orchestrator

import "github.com/glorpus-work/vguard/pkg/model"

// Navigate pushes view onto the history, makes it current and returns the loads the
// visit triggers. Every visit re-fetches. Results of loads issued before this call are
// discarded by Apply.
func (o *Orchestrator) Navigate(view ViewID) []Load {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.st.history = append(o.st.history, view)
	o.st.gen++
	return o.loadsLocked(o.opts.Views.LoadsFor(view))
}

// GoBack pops the history. The initial view is never popped; GoBack then reports false.
func (o *Orchestrator) GoBack() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.st.history) <= 1 {
		return false
	}
	o.st.history = o.st.history[:len(o.st.history)-1]
	o.st.gen++
	return true
}

// Current returns the current view.
func (o *Orchestrator) Current() ViewID {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.st.history[len(o.st.history)-1]
}

// Select makes installed[index] the keep target. An index outside the snapshot is ignored
// and the previous selection stays.
func (o *Orchestrator) Select(index int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if index < 0 || index >= len(o.st.installed) {
		return false
	}
	v := o.st.installed[index]
	o.st.selected = &v
	return true
}

// SelectPath selects the installed version at path. Unknown paths are ignored.
func (o *Orchestrator) SelectPath(path string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	i := indexOfPath(o.st.installed, path)
	if i < 0 {
		return false
	}
	v := o.st.installed[i]
	o.st.selected = &v
	return true
}

// ClearSelection drops the keep target.
func (o *Orchestrator) ClearSelection() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.st.selected = nil
}

// Selected returns a copy of the keep target, or nil.
func (o *Orchestrator) Selected() *model.InstalledVersion {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.st.selected == nil {
		return nil
	}
	v := *o.st.selected
	return &v
}

// ToggleCacheCleanup flips whether the next protection run also cleans the cache.
func (o *Orchestrator) ToggleCacheCleanup() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.st.cacheCleanup = !o.st.cacheCleanup
	return o.st.cacheCleanup
}

// SetCacheCleanup sets the cache cleanup flag.
func (o *Orchestrator) SetCacheCleanup(enabled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.st.cacheCleanup = enabled
}

// CacheCleanupEnabled returns the cache cleanup flag.
func (o *Orchestrator) CacheCleanupEnabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.st.cacheCleanup
}

// ClearNotice drops the inline message left by the last switch or clean.
func (o *Orchestrator) ClearNotice() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.st.notice = ""
}
