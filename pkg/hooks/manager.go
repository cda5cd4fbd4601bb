package hooks

import (
	"context"
	"sync"

	"github.com/glorpus-work/multifetch/internal/logger"
	"github.com/glorpus-work/multifetch/pkg/errors"
	"github.com/glorpus-work/multifetch/pkg/model"
)

// DefaultHookManager is the default implementation of HookManager. It also
// plugs into the orchestrator: post-download hooks run as a post action,
// download-failed hooks run from Observe.
type DefaultHookManager struct {
	executor *TengoExecutor
	mutex    sync.RWMutex
}

// NewHookManager creates a new hook manager.
func NewHookManager() *DefaultHookManager {
	return &DefaultHookManager{
		executor: NewTengoExecutor(),
	}
}

// Execute runs the specified hook type with the given context.
func (m *DefaultHookManager) Execute(hookType HookType, ctx HookContext) error {
	if !m.HasHook(hookType) {
		return nil
	}

	// Copy the context to prevent modifications
	ctxCopy := ctx
	if ctxCopy.Vars == nil {
		ctxCopy.Vars = make(map[string]interface{})
	}

	return m.executor.Execute(hookType, ctxCopy)
}

// AddHook adds a new hook.
func (m *DefaultHookManager) AddHook(hook Hook) error {
	if hook.Type == "" {
		return ErrHookTypeEmpty
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.executor.AddScript(hook.Type, hook.Content)
	return nil
}

// RemoveHook removes a hook of the specified type.
func (m *DefaultHookManager) RemoveHook(hookType HookType) error {
	if hookType == "" {
		return ErrHookTypeEmpty
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.executor.RemoveScript(hookType)
	return nil
}

// HasHook checks if a hook of the specified type exists.
func (m *DefaultHookManager) HasHook(hookType HookType) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.executor.HasScript(hookType)
}

// AfterDownload runs the post-download hooks for a successful outcome.
func (m *DefaultHookManager) AfterDownload(_ context.Context, out model.Outcome) error {
	if out.Status != model.StatusSucceeded {
		return nil
	}
	return errors.Wrapf(m.Execute(PostDownload, contextFor(out)), "hook for %s", out.Request.URI)
}

// Observe runs the download-failed hooks for a failed outcome. Hook errors are logged.
func (m *DefaultHookManager) Observe(out model.Outcome) {
	if out.Status != model.StatusFailed {
		return
	}
	if err := m.Execute(DownloadFailed, contextFor(out)); err != nil {
		logger.Warn("Failure hook failed", logger.Fields{"uri": out.Request.URI, "error": err})
	}
}

func contextFor(out model.Outcome) HookContext {
	ctx := HookContext{
		URI:       out.Request.URI,
		LocalPath: out.LocalPath,
		DestDir:   out.Request.DestDir,
		Size:      out.Bytes,
		Attempts:  out.Attempts,
		Status:    out.Status.String(),
	}
	if out.Err != nil {
		ctx.Error = out.Err.Error()
	}
	return ctx
}
