// Package scripting runs user-supplied JavaScript filters that narrow the
// species and move pools before a randomization pass.
//
// A filter script may define either or both of:
//
//	allowSpecies(id, info) -> bool
//	allowMove(id, info) -> bool
//
// Undefined hooks allow everything. The runtime is sandboxed: require, eval,
// Function, Date and Math.random are unavailable so a filter always answers
// the same way for the same input.
package scripting

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
)

var (
	// ErrScript wraps compile and runtime errors raised by a filter script.
	ErrScript = errors.New("scripting: script error")
	// ErrTimeout is returned when a script exceeds its time budget.
	ErrTimeout = errors.New("scripting: script timed out")
)

const (
	scriptInitTimeout = 2 * time.Second
	scriptCallTimeout = 250 * time.Millisecond
	maxLogs           = 200
)

const (
	hookSpecies = "allowSpecies"
	hookMove    = "allowMove"
)

// Filter wraps a goja runtime holding one compiled filter script.
type Filter struct {
	runtime *goja.Runtime
	mu      sync.Mutex

	logs   []string
	logsMu sync.Mutex

	hooks map[string]goja.Callable
	err   error
}

// NewFilter compiles and runs source once, then resolves its hooks.
func NewFilter(source string) (*Filter, error) {
	f := &Filter{
		runtime: goja.New(),
		hooks:   make(map[string]goja.Callable, 2),
	}
	if err := f.sandbox(); err != nil {
		return nil, err
	}

	err := f.runWithTimeout(scriptInitTimeout, func() error {
		if _, err := f.runtime.RunString(source); err != nil {
			return fmt.Errorf("%w: execute filter: %w", ErrScript, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, name := range []string{hookSpecies, hookMove} {
		v := f.runtime.Get(name)
		if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
			continue
		}
		fn, ok := goja.AssertFunction(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a function", ErrScript, name)
		}
		f.hooks[name] = fn
	}
	return f, nil
}

func (f *Filter) sandbox() error {
	rt := f.runtime
	logFn := func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		f.logsMu.Lock()
		if len(f.logs) >= maxLogs {
			f.logs = f.logs[1:]
		}
		f.logs = append(f.logs, strings.Join(parts, " "))
		f.logsMu.Unlock()
		return goja.Undefined()
	}
	if err := rt.Set("log", logFn); err != nil {
		return err
	}
	console := rt.NewObject()
	if err := console.Set("log", logFn); err != nil {
		return err
	}
	if err := rt.Set("console", console); err != nil {
		return err
	}

	for _, name := range []string{"require", "fetch", "XMLHttpRequest", "eval", "Function", "Date"} {
		if err := rt.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}
	math := rt.Get("Math").ToObject(rt)
	return math.Set("random", func(goja.FunctionCall) goja.Value {
		panic(rt.NewTypeError("Math.random is not available in filters"))
	})
}

// HasSpeciesHook reports whether the script defined allowSpecies.
func (f *Filter) HasSpeciesHook() bool { return f.hooks[hookSpecies] != nil }

// HasMoveHook reports whether the script defined allowMove.
func (f *Filter) HasMoveHook() bool { return f.hooks[hookMove] != nil }

// AllowSpecies asks the script whether species id may be picked.
func (f *Filter) AllowSpecies(id int, info map[string]any) (bool, error) {
	return f.call(hookSpecies, id, info)
}

// AllowMove asks the script whether move id may be used.
func (f *Filter) AllowMove(id int, info map[string]any) (bool, error) {
	return f.call(hookMove, id, info)
}

// SpeciesFunc adapts the species hook to a plain predicate. The first script
// error disallows the id and is kept for Err.
func (f *Filter) SpeciesFunc(info func(id int) map[string]any) func(int) bool {
	return f.predicate(hookSpecies, info)
}

// MoveFunc adapts the move hook to a plain predicate, like SpeciesFunc.
func (f *Filter) MoveFunc(info func(id int) map[string]any) func(int) bool {
	return f.predicate(hookMove, info)
}

func (f *Filter) predicate(hook string, info func(int) map[string]any) func(int) bool {
	if f.hooks[hook] == nil {
		return nil
	}
	return func(id int) bool {
		// After the first failure every later call would fail the same way.
		if f.Err() != nil {
			return false
		}
		var attrs map[string]any
		if info != nil {
			attrs = info(id)
		}
		ok, err := f.call(hook, id, attrs)
		if err != nil {
			f.mu.Lock()
			if f.err == nil {
				f.err = err
			}
			f.mu.Unlock()
			return false
		}
		return ok
	}
}

// Err returns the first error raised through a predicate.
func (f *Filter) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Logs returns a copy of everything the script logged.
func (f *Filter) Logs() []string {
	f.logsMu.Lock()
	defer f.logsMu.Unlock()
	return append([]string(nil), f.logs...)
}

func (f *Filter) call(hook string, id int, info map[string]any) (bool, error) {
	fn := f.hooks[hook]
	if fn == nil {
		return true, nil
	}

	var allowed bool
	err := f.runWithTimeout(scriptCallTimeout, func() error {
		var arg goja.Value = goja.Undefined()
		if info != nil {
			arg = f.runtime.ToValue(info)
		}
		v, err := fn(goja.Undefined(), f.runtime.ToValue(id), arg)
		if err != nil {
			return fmt.Errorf("%w: %s(%d): %w", ErrScript, hook, id, err)
		}
		allowed = v.ToBoolean()
		return nil
	})
	return allowed, err
}

// runWithTimeout serializes access to the runtime and interrupts it when fn
// overruns.
func (f *Filter) runWithTimeout(timeout time.Duration, fn func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runtime.ClearInterrupt()

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		f.runtime.Interrupt("script execution timeout")
		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("%w: %w", ErrTimeout, err)
			}
			return ErrTimeout
		case <-time.After(200 * time.Millisecond):
			return ErrTimeout
		}
	}
}
