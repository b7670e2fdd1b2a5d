package pipeline

import (
	"fmt"
	"strings"
)

// DefaultMember is the member name looked up inside a module when a string
// spec does not name one explicitly.
const DefaultMember = "default"

// Pipeline is the plugin execution engine. It owns the shared context for
// the duration of one run, deduplicates plugins by resolved identity, and
// resumes suspended tasks most-recently-suspended first. A Pipeline is
// single-threaded and meant for exactly one Run (or one manual sequence of
// Require calls); discard it afterwards, especially after a failure.
type Pipeline[T any] struct {
	ctx           T
	source        Source[T]
	allow         []string
	defaultMember string
	trace         *Trace

	executed map[uintptr]Plugin[T]
	tasks    []*Task[T]
	active   []string
}

// Option configures a Pipeline.
type Option[T any] func(*Pipeline[T])

// WithSource sets the symbol source used to resolve string specs.
func WithSource[T any](src Source[T]) Option[T] {
	return func(p *Pipeline[T]) { p.source = src }
}

// WithAllowList restricts string specs to module paths covered by one of
// the given prefixes. Without this option all paths are allowed; with an
// empty prefix list none are.
func WithAllowList[T any](prefixes ...string) Option[T] {
	return func(p *Pipeline[T]) {
		if p.allow == nil {
			p.allow = []string{}
		}
		p.allow = append(p.allow, prefixes...)
	}
}

// WithDefaultMember overrides the member name used when a string spec has
// no explicit ":member" suffix.
func WithDefaultMember[T any](name string) Option[T] {
	return func(p *Pipeline[T]) { p.defaultMember = name }
}

// WithTrace records the require graph into tr as the pipeline runs.
func WithTrace[T any](tr *Trace) Option[T] {
	return func(p *Pipeline[T]) { p.trace = tr }
}

// New creates a Pipeline that passes ctx to every plugin it executes.
func New[T any](ctx T, opts ...Option[T]) *Pipeline[T] {
	p := &Pipeline[T]{
		ctx:           ctx,
		defaultMember: DefaultMember,
		executed:      make(map[uintptr]Plugin[T]),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Context returns the shared context.
func (p *Pipeline[T]) Context() T { return p.ctx }

// Resolve turns a plugin spec into a plugin. Specs are either plugin func
// values, returned unchanged, or dotted-path strings of the form
// "module.path" or "module.path:member" resolved through the configured
// source. String resolution failures, including allow-list violations, are
// reported as a ResolveError carrying the underlying cause.
func (p *Pipeline[T]) Resolve(spec any) (Plugin[T], error) {
	switch s := spec.(type) {
	case Plugin[T]:
		return s, nil
	case func(T) (Followup[T], error):
		return s, nil
	case string:
		return p.resolvePath(s)
	default:
		return nil, &ResolveError{
			Spec: fmt.Sprintf("%v", spec),
			Err:  fmt.Errorf("unsupported spec type %T", spec),
		}
	}
}

func (p *Pipeline[T]) resolvePath(spec string) (Plugin[T], error) {
	module, member, found := strings.Cut(spec, ":")
	if !found || member == "" {
		member = p.defaultMember
	}
	if module == "" {
		return nil, &ResolveError{Spec: spec, Err: fmt.Errorf("empty module path")}
	}
	if p.allow != nil && !allowed(module, p.allow) {
		return nil, &ResolveError{Spec: spec, Err: ErrNotAllowed}
	}
	if p.source == nil {
		return nil, &ResolveError{Spec: spec, Err: ErrNoSource}
	}
	plugin, err := p.source.Lookup(module, member)
	if err != nil {
		return nil, &ResolveError{Spec: spec, Err: err}
	}
	return plugin, nil
}

// allowed reports whether module equals one of the prefixes or sits below
// one of them in the dotted hierarchy.
func allowed(module string, prefixes []string) bool {
	for _, pref := range prefixes {
		if module == pref || strings.HasPrefix(module, pref+".") {
			return true
		}
	}
	return false
}

// Require executes each spec in order. A plugin whose resolved identity
// has already been required is skipped silently, which also guards against
// require cycles: the plugin is marked executed before its first advance,
// so re-requiring it from inside its own setup is a no-op. The setup phase
// runs inline, including any nested requires it issues; if the plugin
// suspends, its task is pushed for resumption during the drain phase.
func (p *Pipeline[T]) Require(specs ...any) error {
	for _, spec := range specs {
		plugin, err := p.Resolve(spec)
		if err != nil {
			return err
		}
		key := pluginKey(plugin)
		if _, ok := p.executed[key]; ok {
			continue
		}
		p.executed[key] = plugin

		name, _ := spec.(string)
		if name == "" {
			name = funcName(plugin)
		}
		p.trace.record(p.requiredBy(), name)

		task := NewTask(plugin, name)
		done, err := p.advance(task)
		if err != nil {
			return err
		}
		if !done {
			p.tasks = append(p.tasks, task)
		}
	}
	return nil
}

// Run requires the given specs left to right, then drains the suspended
// tasks: the most recently suspended task is resumed first, and a task
// that suspends again goes straight back on top. Teardown phases therefore
// run in reverse-of-suspension order across the whole pipeline. The first
// failure aborts the run; tasks still suspended at that point are
// abandoned, not resumed.
func (p *Pipeline[T]) Run(specs ...any) error {
	if err := p.Require(specs...); err != nil {
		return err
	}
	for len(p.tasks) > 0 {
		task := p.tasks[len(p.tasks)-1]
		p.tasks = p.tasks[:len(p.tasks)-1]
		done, err := p.advance(task)
		if err != nil {
			return err
		}
		if !done {
			p.tasks = append(p.tasks, task)
		}
	}
	return nil
}

// advance runs one unit of the task's work with the task recorded as the
// active requirer, so nested requires attribute trace edges to it.
func (p *Pipeline[T]) advance(task *Task[T]) (bool, error) {
	p.active = append(p.active, task.Name())
	defer func() { p.active = p.active[:len(p.active)-1] }()
	return task.Advance(p.ctx)
}

// requiredBy returns the display name of the plugin currently advancing,
// or "" at the top level.
func (p *Pipeline[T]) requiredBy() string {
	if len(p.active) == 0 {
		return ""
	}
	return p.active[len(p.active)-1]
}
