package orchestrator

import "slices"

// ViewID identifies a screen of a presentation.
type ViewID string

// Dashboard views.
const (
	ViewDashboard ViewID = "dashboard"
	ViewVersions  ViewID = "my-versions"
	ViewLibrary   ViewID = "library"
	ViewCleaner   ViewID = "cleaner"
)

// Wizard views.
const (
	ViewWelcome  ViewID = "welcome"
	ViewPrecheck ViewID = "precheck"
	ViewSelect   ViewID = "select"
	ViewCleanup  ViewID = "cleanup"
	ViewProgress ViewID = "progress"
	ViewComplete ViewID = "complete"
	ViewError    ViewID = "error"
)

// LoadKind identifies one remote read.
type LoadKind string

const (
	LoadPrecheck  LoadKind = "precheck"
	LoadInstalled LoadKind = "installed"
	LoadArchive   LoadKind = "archive"
	LoadCacheSize LoadKind = "cache-size"
)

// ViewSet describes a presentation: its views, the initial one and the loads each view
// triggers on every visit. Dashboard and wizard differ only in their ViewSet.
type ViewSet struct {
	Name    string
	Initial ViewID
	Views   []ViewID
	Loads   map[ViewID][]LoadKind
}

// Has reports whether v belongs to the set.
func (vs ViewSet) Has(v ViewID) bool {
	return slices.Contains(vs.Views, v)
}

// LoadsFor returns the loads a visit to v triggers.
func (vs ViewSet) LoadsFor(v ViewID) []LoadKind {
	return slices.Clone(vs.Loads[v])
}

// DashboardViews is the sidebar presentation with a non-destructive switch.
var DashboardViews = ViewSet{
	Name:    "dashboard",
	Initial: ViewDashboard,
	Views:   []ViewID{ViewDashboard, ViewVersions, ViewLibrary, ViewCleaner},
	Loads: map[ViewID][]LoadKind{
		ViewDashboard: {LoadPrecheck, LoadInstalled, LoadCacheSize},
		ViewVersions:  {LoadInstalled},
		ViewLibrary:   {LoadArchive, LoadInstalled},
		ViewCleaner:   {LoadCacheSize},
	},
}

// WizardViews is the step-by-step protection presentation.
var WizardViews = ViewSet{
	Name:    "wizard",
	Initial: ViewWelcome,
	Views:   []ViewID{ViewWelcome, ViewPrecheck, ViewSelect, ViewCleanup, ViewProgress, ViewComplete, ViewError},
	Loads: map[ViewID][]LoadKind{
		ViewPrecheck: {LoadPrecheck},
		ViewSelect:   {LoadInstalled},
		ViewCleanup:  {LoadInstalled, LoadCacheSize},
	},
}

// ViewSetByName returns the named view set.
func ViewSetByName(name string) (ViewSet, bool) {
	switch name {
	case DashboardViews.Name:
		return DashboardViews, true
	case WizardViews.Name:
		return WizardViews, true
	}
	return ViewSet{}, false
}
