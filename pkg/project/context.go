// Package project provides the concrete build context that cascade's CLI
// and contrib plugins operate on: a key-value store for plugin options and
// intermediate state, a translation asset store, and the owning pipeline
// for nested requires.
package project

import (
	"log/slog"
	"sync"

	"github.com/ravi-parthasarathy/cascade/pkg/pipeline"
)

// Context is the shared value passed to every plugin in a project build.
type Context struct {
	// Directory is the project root; plugins resolve relative paths and
	// glob patterns against it.
	Directory string

	// Log is used by plugins for diagnostics. The engine itself never logs.
	Log *slog.Logger

	mu        sync.RWMutex
	values    map[string]any
	languages map[string]*Language

	pipe *pipeline.Pipeline[*Context]
}

// New creates a Context rooted at dir and its owning pipeline.
func New(dir string, opts ...pipeline.Option[*Context]) *Context {
	c := &Context{
		Directory: dir,
		Log:       slog.Default(),
		values:    make(map[string]any),
		languages: make(map[string]*Language),
	}
	c.pipe = pipeline.New(c, opts...)
	return c
}

// Pipeline returns the owning pipeline.
func (c *Context) Pipeline() *pipeline.Pipeline[*Context] { return c.pipe }

// Require executes the given plugin specs through the owning pipeline.
// Plugins call this to declare dependencies during their own execution.
func (c *Context) Require(specs ...any) error { return c.pipe.Require(specs...) }

// Run drives the whole build: initial specs, then deferred teardowns.
func (c *Context) Run(specs ...any) error { return c.pipe.Run(specs...) }

// Set stores a value under key.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Get retrieves a value by key.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// GetString retrieves a string value, returning "" if absent or not a string.
func (c *Context) GetString(key string) string {
	v, ok := c.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetBool retrieves a bool value, returning false if absent or not a bool.
func (c *Context) GetBool(key string) bool {
	v, ok := c.Get(key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// GetStrings retrieves a []string value, accepting []any elements as well
// (the shape YAML decoding produces).
func (c *Context) GetStrings(key string) []string {
	v, ok := c.Get(key)
	if !ok {
		return nil
	}
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Snapshot returns a shallow copy of all stored values.
func (c *Context) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// MergeValues copies all pairs from src into the store, last write wins.
func (c *Context) MergeValues(src map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range src {
		c.values[k] = v
	}
}

// Language returns the translation table for code, or nil if none loaded.
func (c *Context) Language(code string) *Language {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.languages[code]
}

// LanguageCodes lists the codes with loaded translations.
func (c *Context) LanguageCodes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.languages))
	for code := range c.languages {
		out = append(out, code)
	}
	return out
}

// MergeLanguages merges per-code translation tables into the context,
// creating tables for codes seen for the first time.
func (c *Context) MergeLanguages(src map[string]*Language) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for code, lang := range src {
		existing, ok := c.languages[code]
		if !ok {
			existing = NewLanguage()
			c.languages[code] = existing
		}
		existing.Merge(lang)
	}
}
