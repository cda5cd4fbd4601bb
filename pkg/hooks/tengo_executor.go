package hooks

import (
	"fmt"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/glorpus-work/multifetch/pkg/errors"
)

// TengoExecutor handles the execution of Tengo scripts.
type TengoExecutor struct {
	scripts map[HookType]string
	mutex   sync.RWMutex
}

// NewTengoExecutor creates a new Tengo script executor.
func NewTengoExecutor() *TengoExecutor {
	return &TengoExecutor{
		scripts: make(map[HookType]string),
	}
}

// Execute runs the specified hook type with the given context. Each call
// compiles a fresh script instance, so concurrent downloads may run the same
// hook at the same time.
func (e *TengoExecutor) Execute(hookType HookType, ctx HookContext) error {
	e.mutex.RLock()
	script, exists := e.scripts[hookType]
	e.mutex.RUnlock()
	if !exists {
		return nil
	}

	scriptInstance := tengo.NewScript([]byte(script))
	scriptInstance.SetImports(stdlib.GetModuleMap("fmt", "os", "text", "times", "json"))

	vars := map[string]interface{}{
		"uri":          ctx.URI,
		"localPath":    ctx.LocalPath,
		"destDir":      ctx.DestDir,
		"size":         ctx.Size,
		"attempts":     ctx.Attempts,
		"status":       ctx.Status,
		"errorMessage": ctx.Error,
	}
	for k, v := range ctx.Vars {
		vars[k] = v
	}
	for k, v := range vars {
		if err := scriptInstance.Add(k, v); err != nil {
			return fmt.Errorf("failed to add variable '%s' to script: %w", k, err)
		}
	}

	compiled, err := scriptInstance.Run()
	if err != nil {
		return fmt.Errorf("%s: %w: %w", hookType, errors.ErrHookExecution, err)
	}

	// A script reports failure by assigning a non-empty string or an error value to err.
	if !compiled.IsDefined("err") {
		return nil
	}
	errVar := compiled.Get("err")
	if tengoErr, ok := errVar.Object().(*tengo.Error); ok {
		msg, _ := tengo.ToString(tengoErr.Value)
		return fmt.Errorf("%s: %w: %s", hookType, errors.ErrHookScript, msg)
	}
	if v := errVar.String(); errVar.ValueType() == "string" && v != "" {
		return fmt.Errorf("%s: %w: %s", hookType, errors.ErrHookScript, v)
	}
	return nil
}

// AddScript adds or updates a script for the specified hook type.
func (e *TengoExecutor) AddScript(hookType HookType, script string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.scripts[hookType] = script
}

// RemoveScript removes the script for the specified hook type.
func (e *TengoExecutor) RemoveScript(hookType HookType) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	delete(e.scripts, hookType)
}

// HasScript checks if a script exists for the specified hook type.
func (e *TengoExecutor) HasScript(hookType HookType) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, exists := e.scripts[hookType]
	return exists
}
