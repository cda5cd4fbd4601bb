// Package hooks runs user-supplied Tengo scripts when a download finishes.
package hooks

// HookType represents the type of hooks.
type HookType string

// Supported hook types.
const (
	PostDownload   HookType = "post-download"
	DownloadFailed HookType = "download-failed"
)

// Hook represents a hook script with its type and content.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext contains information passed to hooks. Every field is exposed to
// the script as a global variable of the same name in lower camel case.
type HookContext struct {
	URI       string
	LocalPath string
	DestDir   string
	Size      int64
	Attempts  int
	Status    string
	Error     string
	Vars      map[string]interface{}
}

// HookManager defines the interface for managing hooks.
type HookManager interface {
	// Execute runs the specified hook type with the given context
	Execute(hookType HookType, ctx HookContext) error

	// AddHook adds a new hook
	AddHook(hook Hook) error

	// RemoveHook removes a hook of the specified type
	RemoveHook(hookType HookType) error

	// HasHook checks if a hook of the specified type exists
	HasHook(hookType HookType) bool
}
