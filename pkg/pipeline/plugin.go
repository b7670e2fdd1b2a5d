// Package pipeline implements a plugin execution engine: plugins are units
// of work that run against a shared context, may require further plugins
// while running, and may suspend after their setup phase so that teardown
// is deferred until everything required during setup has completed.
package pipeline

import (
	"reflect"
	"runtime"
	"unsafe"
)

// Plugin is a unit of work invoked with the shared context. A nil Followup
// means the plugin is done after the call. A non-nil Followup is the
// deferred remainder of the plugin: it runs only after every plugin
// required before the suspension has fully completed.
type Plugin[T any] func(ctx T) (Followup[T], error)

// Followup is one resumption step of a suspended plugin. Returning another
// non-nil Followup suspends again.
type Followup[T any] func(ctx T) (Followup[T], error)

// Source resolves the module/member halves of a dotted-path spec to a
// plugin. Implementations should return the same func value for repeated
// lookups of the same symbol so that alias specs share execution identity.
type Source[T any] interface {
	Lookup(module, member string) (Plugin[T], error)
}

// pluginKey returns the reference identity of a plugin func value. The
// reflect code pointer is not enough here: all closures produced by the
// same func literal share it. The funcval pointer distinguishes closure
// instances while still equating copies of the same func value.
func pluginKey[T any](p Plugin[T]) uintptr {
	return uintptr(*(*unsafe.Pointer)(unsafe.Pointer(&p)))
}

// funcName returns the runtime name of a plugin for diagnostics, e.g.
// "github.com/example/pkg.Setup". Used when no string spec is available.
func funcName[T any](p Plugin[T]) string {
	pc := reflect.ValueOf(p).Pointer()
	if fn := runtime.FuncForPC(pc); fn != nil {
		return fn.Name()
	}
	return "<unknown plugin>"
}
