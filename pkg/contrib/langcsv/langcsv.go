// Package langcsv loads translations from csv files into the project
// context's language store. The first column holds translation
// identifiers; every other column is a language code. Options are read
// from the context's value store:
//
//	langcsv.load             glob patterns relative to the project directory
//	langcsv.delimiter        field delimiter, default ","
//	langcsv.filename_prefix  prefix identifiers with the file's stem
package langcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ravi-parthasarathy/cascade/pkg/pipeline"
	"github.com/ravi-parthasarathy/cascade/pkg/pipeline/registry"
	"github.com/ravi-parthasarathy/cascade/pkg/project"
)

// Module is the dotted path this package registers under.
const Module = "contrib.langcsv"

// Option keys read from the context value store.
const (
	KeyLoad           = "langcsv.load"
	KeyDelimiter      = "langcsv.delimiter"
	KeyFilenamePrefix = "langcsv.filename_prefix"
)

// Register wires the package's plugins into a registry.
func Register(reg *registry.Registry[*project.Context]) {
	reg.Register(Module, "default", Default)
	reg.Register(Module, "load", Load)
}

// Default requires Load. Kept separate so projects can depend on the
// module path without naming a member.
func Default(c *project.Context) (pipeline.Followup[*project.Context], error) {
	return nil, c.Require(Load)
}

// Load reads every csv file matching the configured patterns and merges
// the translations into the context.
func Load(c *project.Context) (pipeline.Followup[*project.Context], error) {
	delimiter := ','
	if d := c.GetString(KeyDelimiter); d != "" {
		delimiter = []rune(d)[0]
	}
	withPrefix := c.GetBool(KeyFilenamePrefix)

	for _, pattern := range c.GetStrings(KeyLoad) {
		paths, err := filepath.Glob(filepath.Join(c.Directory, pattern))
		if err != nil {
			return nil, fmt.Errorf("langcsv: bad pattern %q: %w", pattern, err)
		}
		for _, path := range paths {
			prefix := ""
			if withPrefix {
				prefix = stem(path) + "."
			}
			languages, err := LoadLanguages(path, delimiter, prefix, c.Log)
			if err != nil {
				return nil, err
			}
			c.MergeLanguages(languages)
		}
	}
	return nil, nil
}

// LoadLanguages parses one csv file into a table per language column.
// Identifiers get prefix prepended; rows with an empty identifier are
// skipped, and an empty translation cell logs a warning instead of
// recording an entry.
func LoadLanguages(path string, delimiter rune, prefix string, log *slog.Logger) (map[string]*project.Language, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("langcsv: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delimiter

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return map[string]*project.Language{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("langcsv: read %s: %w", path, err)
	}

	codes := header[1:]
	languages := make(map[string]*project.Language, len(codes))
	for _, code := range codes {
		languages[code] = project.NewLanguage()
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("langcsv: read %s: %w", path, err)
		}
		identifier := row[0]
		if identifier == "" {
			continue
		}
		identifier = prefix + identifier

		for i, code := range codes {
			if value := row[i+1]; value != "" {
				languages[code].Data[identifier] = value
			} else if log != nil {
				log.Warn("locale has no translation",
					"locale", code, "identifier", identifier, "file", path)
			}
		}
	}
	return languages, nil
}

// stem returns the file name without directory or extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
