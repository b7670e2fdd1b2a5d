package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ravi-parthasarathy/cascade/pkg/pipeline"
)

// ─── TestInitLogger ───────────────────────────────────────────────────────────

func TestInitLogger_ValidLevels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error", "DEBUG", "INFO"} {
		if err := initLogger(lvl, "text"); err != nil {
			t.Errorf("initLogger(%q, text): unexpected error: %v", lvl, err)
		}
	}
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	if err := initLogger("verbose", "text"); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestInitLogger_InvalidFormat(t *testing.T) {
	if err := initLogger("info", "xml"); err == nil {
		t.Fatal("expected error for unknown log format")
	}
}

// ─── TestRenderError ──────────────────────────────────────────────────────────

func TestRenderError_PluginErrorChain(t *testing.T) {
	err := &pipeline.PluginError{Plugin: "contrib.langcsv", Err: errors.New("boom")}
	out := renderError(err)
	if !strings.Contains(out, "plugin contrib.langcsv raised an error") {
		t.Errorf("missing failure message: %q", out)
	}
	if !strings.Contains(out, "cause: boom") {
		t.Errorf("missing cause: %q", out)
	}
}

func TestRenderError_ResolveError(t *testing.T) {
	err := &pipeline.ResolveError{Spec: "no.such", Err: pipeline.ErrNoSource}
	out := renderError(err)
	if !strings.Contains(out, `couldn't resolve plugin "no.such"`) {
		t.Errorf("missing failure message: %q", out)
	}
}

// ─── TestRenderDOT ────────────────────────────────────────────────────────────

func TestRenderDOT(t *testing.T) {
	tr := &pipeline.Trace{
		Nodes: []string{"contrib.langcsv", "src.extra"},
		Edges: []pipeline.TraceEdge{{From: "contrib.langcsv", To: "src.extra"}},
	}
	out, err := renderDOT("demo", tr)
	if err != nil {
		t.Fatalf("renderDOT: %v", err)
	}
	if !strings.Contains(out, `"contrib.langcsv"`) {
		t.Errorf("missing node: %q", out)
	}
	if !strings.Contains(out, "->") {
		t.Errorf("missing edge: %q", out)
	}
}

// ─── TestExecuteRun ───────────────────────────────────────────────────────────

func TestExecuteRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	csv := "id,en_us\nmenu.play,Play\n"
	if err := os.WriteFile(filepath.Join(dir, "menu.csv"), []byte(csv), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	cfg := `name: demo
allow:
  - contrib
pipeline:
  - contrib.langcsv
meta:
  langcsv.load:
    - "*.csv"
`
	cfgPath := filepath.Join(dir, "cascade.yml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	graphPath := filepath.Join(dir, "require.dot")
	if err := executeRun(cfgPath, graphPath); err != nil {
		t.Fatalf("executeRun: %v", err)
	}

	dot, err := os.ReadFile(graphPath)
	if err != nil {
		t.Fatalf("read graph: %v", err)
	}
	if !strings.Contains(string(dot), "contrib.langcsv") {
		t.Errorf("graph missing plugin node: %q", dot)
	}
}

func TestExecuteRun_AllowListBlocksSpec(t *testing.T) {
	dir := t.TempDir()
	cfg := "allow:\n  - nothing\npipeline:\n  - contrib.langcsv\n"
	cfgPath := filepath.Join(dir, "cascade.yml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	err := executeRun(cfgPath, "")
	if !errors.Is(err, pipeline.ErrNotAllowed) {
		t.Errorf("err = %v, want ErrNotAllowed cause", err)
	}
}
