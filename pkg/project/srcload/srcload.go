// Package srcload resolves "src.*" plugin specs against Go source files
// interpreted at runtime with yaegi. A spec "src.name:Member" maps to
// <root>/name.go; the file must declare package main and export Member
// with one of the supported signatures:
//
//	func(ctx map[string]any) error                                // one-shot
//	func(ctx map[string]any) (func(map[string]any) error, error)  // two-phase
//
// The map is a snapshot of the project context's value store; mutations
// are merged back after each phase. Two-phase plugins suspend after the
// first call and run the returned func as their teardown.
package srcload

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/ravi-parthasarathy/cascade/pkg/pipeline"
	"github.com/ravi-parthasarathy/cascade/pkg/pipeline/registry"
	"github.com/ravi-parthasarathy/cascade/pkg/project"
)

// ModulePrefix is the dotted-path prefix this source claims.
const ModulePrefix = "src"

// Source implements pipeline.Source for source-file plugins under a root
// directory. Resolved plugins are cached per module:member so alias specs
// share execution identity with earlier lookups.
type Source struct {
	root    string
	interps map[string]*interp.Interpreter
	plugins map[string]pipeline.Plugin[*project.Context]
}

// New creates a Source rooted at dir.
func New(dir string) *Source {
	return &Source{
		root:    dir,
		interps: make(map[string]*interp.Interpreter),
		plugins: make(map[string]pipeline.Plugin[*project.Context]),
	}
}

// Lookup implements pipeline.Source.
func (s *Source) Lookup(module, member string) (pipeline.Plugin[*project.Context], error) {
	rest, ok := strings.CutPrefix(module, ModulePrefix+".")
	if !ok || rest == "" {
		return nil, fmt.Errorf("%w: %s", registry.ErrUnknownModule, module)
	}

	key := module + ":" + member
	if p, ok := s.plugins[key]; ok {
		return p, nil
	}

	rel := filepath.FromSlash(strings.ReplaceAll(rest, ".", "/")) + ".go"
	path := filepath.Join(s.root, rel)

	i, err := s.interpreter(path)
	if err != nil {
		return nil, err
	}
	v, err := i.Eval(member)
	if err != nil {
		return nil, fmt.Errorf("srcload: %s has no member %s: %w", path, member, err)
	}
	p, err := bridge(v.Interface())
	if err != nil {
		return nil, fmt.Errorf("srcload: %s:%s: %w", path, member, err)
	}
	s.plugins[key] = p
	return p, nil
}

func (s *Source) interpreter(path string) (*interp.Interpreter, error) {
	if i, ok := s.interps[path]; ok {
		return i, nil
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("srcload: stdlib symbols: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("srcload: interpret %s: %w", path, err)
	}
	s.interps[path] = i
	return i, nil
}

// bridge adapts a loaded symbol to a pipeline plugin operating on the
// project context's value store.
func bridge(fn any) (pipeline.Plugin[*project.Context], error) {
	switch f := fn.(type) {
	case func(map[string]any) error:
		return func(c *project.Context) (pipeline.Followup[*project.Context], error) {
			vals := c.Snapshot()
			if err := f(vals); err != nil {
				return nil, err
			}
			c.MergeValues(vals)
			return nil, nil
		}, nil
	case func(map[string]any) (func(map[string]any) error, error):
		return func(c *project.Context) (pipeline.Followup[*project.Context], error) {
			vals := c.Snapshot()
			teardown, err := f(vals)
			if err != nil {
				return nil, err
			}
			c.MergeValues(vals)
			if teardown == nil {
				return nil, nil
			}
			return func(c *project.Context) (pipeline.Followup[*project.Context], error) {
				vals := c.Snapshot()
				if err := teardown(vals); err != nil {
					return nil, err
				}
				c.MergeValues(vals)
				return nil, nil
			}, nil
		}, nil
	default:
		return nil, fmt.Errorf("unsupported plugin signature %T", fn)
	}
}
