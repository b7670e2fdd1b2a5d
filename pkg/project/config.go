package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the YAML project file driving a build.
type Config struct {
	Name          string         `yaml:"name"`
	Directory     string         `yaml:"directory"`
	DefaultMember string         `yaml:"default_member"`
	Allow         []string       `yaml:"allow"`
	PluginsDir    string         `yaml:"plugins_dir"`
	Pipeline      []string       `yaml:"pipeline"`
	Meta          map[string]any `yaml:"meta"`
}

// LoadConfig reads and validates a project file. Directory and PluginsDir
// are resolved relative to the config file's location.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("project: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("project: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("project: %s: %w", path, err)
	}

	base := filepath.Dir(path)
	if cfg.Directory == "" {
		cfg.Directory = base
	} else if !filepath.IsAbs(cfg.Directory) {
		cfg.Directory = filepath.Join(base, cfg.Directory)
	}
	if cfg.PluginsDir != "" && !filepath.IsAbs(cfg.PluginsDir) {
		cfg.PluginsDir = filepath.Join(base, cfg.PluginsDir)
	}
	return &cfg, nil
}

// Validate checks field-level constraints.
func (c *Config) Validate() error {
	for i, spec := range c.Pipeline {
		if strings.TrimSpace(spec) == "" {
			return fmt.Errorf("pipeline[%d] is empty", i)
		}
	}
	for i, prefix := range c.Allow {
		if strings.TrimSpace(prefix) == "" {
			return fmt.Errorf("allow[%d] is empty", i)
		}
	}
	return nil
}
