// Package hooks runs user-supplied Tengo scripts around protection and switch runs.
package hooks

// HookType represents the type of hook.
type HookType string

// Supported hook types.
const (
	PreProtect  HookType = "pre-protect"
	PostProtect HookType = "post-protect"
	PreSwitch   HookType = "pre-switch"
	PostSwitch  HookType = "post-switch"
)

// Types lists every supported hook type.
var Types = []HookType{PreProtect, PostProtect, PreSwitch, PostSwitch}

// Valid reports whether t is a supported hook type.
func (t HookType) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Hook represents a hook script with its type and content.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext contains information passed to hooks.
type HookContext struct {
	// KeepName and KeepPath identify the version that is kept or switched to.
	KeepName string
	KeepPath string
	// Targets are the paths scheduled for deletion by a protection run.
	Targets    []string
	CleanCache bool
	// Success and Message are set for post hooks only.
	Success bool
	Message string
	Vars    map[string]interface{}
}
