package project_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ravi-parthasarathy/cascade/pkg/project"
)

const sampleConfig = `name: demo
default_member: Default
plugins_dir: plugins
allow:
  - contrib
  - src
pipeline:
  - contrib.langcsv
  - src.extra:Setup
meta:
  langcsv.load:
    - "*.csv"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cascade.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := project.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "demo" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.DefaultMember != "Default" {
		t.Errorf("DefaultMember = %q", cfg.DefaultMember)
	}
	if want := []string{"contrib.langcsv", "src.extra:Setup"}; !reflect.DeepEqual(cfg.Pipeline, want) {
		t.Errorf("Pipeline = %v, want %v", cfg.Pipeline, want)
	}
	// Relative directories resolve against the config file's location.
	base := filepath.Dir(path)
	if cfg.Directory != base {
		t.Errorf("Directory = %q, want %q", cfg.Directory, base)
	}
	if cfg.PluginsDir != filepath.Join(base, "plugins") {
		t.Errorf("PluginsDir = %q", cfg.PluginsDir)
	}
	if _, ok := cfg.Meta["langcsv.load"]; !ok {
		t.Error("Meta missing langcsv.load")
	}
}

func TestLoadConfig_EmptyPipelineEntry(t *testing.T) {
	path := writeConfig(t, "pipeline:\n  - contrib.langcsv\n  - \"\"\n")
	if _, err := project.LoadConfig(path); err == nil {
		t.Error("expected error for empty pipeline entry")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := writeConfig(t, "pipeline: [unclosed\n")
	if _, err := project.LoadConfig(path); err == nil {
		t.Error("expected decode error")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := project.LoadConfig(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("expected error for missing file")
	}
}
