package project_test

import (
	"reflect"
	"sort"
	"testing"

	"github.com/ravi-parthasarathy/cascade/pkg/pipeline"
	"github.com/ravi-parthasarathy/cascade/pkg/project"
)

func TestContext_Values(t *testing.T) {
	c := project.New(t.TempDir())
	c.Set("greeting", "hello")
	c.Set("verbose", true)
	c.Set("patterns", []any{"a.csv", "b.csv"})

	if got := c.GetString("greeting"); got != "hello" {
		t.Errorf("GetString = %q, want hello", got)
	}
	if !c.GetBool("verbose") {
		t.Error("GetBool = false, want true")
	}
	if got := c.GetStrings("patterns"); !reflect.DeepEqual(got, []string{"a.csv", "b.csv"}) {
		t.Errorf("GetStrings = %v", got)
	}
	if got := c.GetString("missing"); got != "" {
		t.Errorf("GetString(missing) = %q, want empty", got)
	}
}

func TestContext_MergeLanguages(t *testing.T) {
	c := project.New(t.TempDir())

	first := project.NewLanguage()
	first.Data["menu.play"] = "Play"
	c.MergeLanguages(map[string]*project.Language{"en_us": first})

	second := project.NewLanguage()
	second.Data["menu.quit"] = "Quit"
	c.MergeLanguages(map[string]*project.Language{"en_us": second})

	lang := c.Language("en_us")
	if lang == nil {
		t.Fatal("language en_us not found")
	}
	if lang.Data["menu.play"] != "Play" || lang.Data["menu.quit"] != "Quit" {
		t.Errorf("merged data = %v", lang.Data)
	}

	codes := c.LanguageCodes()
	sort.Strings(codes)
	if !reflect.DeepEqual(codes, []string{"en_us"}) {
		t.Errorf("codes = %v", codes)
	}
}

func TestContext_RequireDelegatesToPipeline(t *testing.T) {
	c := project.New(t.TempDir())
	ran := false
	plugin := func(c *project.Context) (pipeline.Followup[*project.Context], error) {
		ran = true
		return nil, nil
	}
	if err := c.Run(plugin); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ran {
		t.Error("plugin did not run")
	}
}
