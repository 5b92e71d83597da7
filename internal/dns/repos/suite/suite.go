// Package suite loads probe cases from a directory of YAML, JSON, or TOML files.
// Each file describes one case with the same query and expect keys the
// environment configuration uses; keys a file omits fall back to the base case.
package suite

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	"github.com/haukened/rr-dnsprobe/internal/dns/config"
	"github.com/haukened/rr-dnsprobe/internal/dns/domain"
)

// File is the on-disk shape of a case.
type File struct {
	Name   string              `koanf:"name"`
	Query  config.QueryConfig  `koanf:"query"`
	Expect config.ExpectConfig `koanf:"expect"`
}

// LoadSuiteDirectory walks dir and loads every supported case file, layering
// each over base. Cases are returned sorted by name. Any invalid file fails the load.
func LoadSuiteDirectory(dir string, base File) ([]domain.Case, error) {
	validate, err := config.NewValidator()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string)
	var cases []domain.Case

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		parser := parserFor(path)
		if parser == nil {
			return nil // unsupported file type
		}

		f, err := loadCaseFile(path, parser, base)
		if err != nil {
			return fmt.Errorf("error parsing case file %s: %w", path, err)
		}
		if err := validate.Struct(&f); err != nil {
			return fmt.Errorf("invalid case file %s: %w", path, err)
		}
		if prev, ok := seen[f.Name]; ok {
			return fmt.Errorf("case %q defined in both %s and %s", f.Name, prev, path)
		}
		seen[f.Name] = path

		tc, err := config.BuildCase(f.Name, f.Query, f.Expect)
		if err != nil {
			return fmt.Errorf("invalid case file %s: %w", path, err)
		}
		cases = append(cases, tc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(cases, func(i, j int) bool { return cases[i].Name < cases[j].Name })
	return cases, nil
}

// parserFor picks a koanf parser by file extension, or nil when unsupported.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	case ".toml":
		return toml.Parser()
	default:
		return nil
	}
}

// loadCaseFile reads a single case file over base. The name defaults to the file stem.
func loadCaseFile(path string, parser koanf.Parser, base File) (File, error) {
	base.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	k := koanf.New(".")
	if err := k.Load(structs.Provider(base, "koanf"), nil); err != nil {
		return File{}, fmt.Errorf("failed to load base case: %w", err)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return File{}, fmt.Errorf("failed to load case file %s: %w", path, err)
	}

	var f File
	if err := k.Unmarshal("", &f); err != nil {
		return File{}, fmt.Errorf("failed to decode case file %s: %w", path, err)
	}
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return File{}, fmt.Errorf("case file %s has an empty name", path)
	}
	return f, nil
}
