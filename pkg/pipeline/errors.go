package pipeline

import (
	"errors"
	"fmt"
)

// Fallthrough marks errors that the engine must never wrap. The two engine
// failure types implement it so they bubble unchanged through nested
// requires; callers may implement it on their own error types to abort a
// run deliberately without the "plugin raised an error" wrapping.
type Fallthrough interface {
	error
	PipelineFallthrough()
}

// IsFallthrough reports whether any error in err's chain is marked as
// fallthrough.
func IsFallthrough(err error) bool {
	var f Fallthrough
	return errors.As(err, &f)
}

// PluginError is returned when a plugin's setup or resumption phase fails
// with a non-fallthrough error. Plugin is the display name of the failing
// plugin (the original string spec when it was resolved from one).
type PluginError struct {
	Plugin string
	Err    error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin %s raised an error: %v", e.Plugin, e.Err)
}

func (e *PluginError) Unwrap() error { return e.Err }

// PipelineFallthrough marks PluginError so enclosing tasks never re-wrap it.
func (e *PluginError) PipelineFallthrough() {}

// ResolveError is returned when a string spec cannot be turned into a
// plugin.
type ResolveError struct {
	Spec string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("couldn't resolve plugin %q: %v", e.Spec, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// PipelineFallthrough marks ResolveError so enclosing tasks never re-wrap it.
func (e *ResolveError) PipelineFallthrough() {}

// ErrNotAllowed is the cause recorded by a ResolveError when an allow-list
// is configured and the spec's module path is not covered by any prefix.
var ErrNotAllowed = errors.New("module path not covered by allow-list")

// ErrNoSource is the cause recorded by a ResolveError when a string spec is
// used on a pipeline that has no symbol source configured.
var ErrNoSource = errors.New("no symbol source configured")
