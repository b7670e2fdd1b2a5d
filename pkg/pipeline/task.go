package pipeline

// Task wraps one plugin invocation and its suspension state. A task is
// fresh until its first Advance, suspended while a followup remains, and
// done once the plugin (or its last followup) returns no further work.
type Task[T any] struct {
	plugin  Plugin[T]
	name    string
	next    Followup[T]
	started bool
}

// NewTask creates a fresh task for plugin. The name identifies the plugin
// in failure diagnostics.
func NewTask[T any](plugin Plugin[T], name string) *Task[T] {
	return &Task[T]{plugin: plugin, name: name}
}

// Name returns the task's display name.
func (t *Task[T]) Name() string { return t.name }

// Advance performs one unit of progress: the plugin's setup phase on the
// first call, one resumption step on each later call. It reports whether
// the task is done. Non-fallthrough errors from the plugin are wrapped in
// a PluginError naming the plugin; fallthrough errors (including engine
// failures escaping a nested require) propagate unchanged.
func (t *Task[T]) Advance(ctx T) (bool, error) {
	var (
		next Followup[T]
		err  error
	)
	switch {
	case !t.started:
		t.started = true
		next, err = t.plugin(ctx)
	case t.next != nil:
		step := t.next
		t.next = nil
		next, err = step(ctx)
	default:
		return true, nil
	}
	if err != nil {
		if IsFallthrough(err) {
			return true, err
		}
		return true, &PluginError{Plugin: t.name, Err: err}
	}
	t.next = next
	return next == nil, nil
}
