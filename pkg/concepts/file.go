package concepts

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// conceptFile is the YAML document shape: a list of concepts.
type conceptFile struct {
	Concepts []*Concept `yaml:"concepts"`
}

// Parse reads concepts from YAML data. Every concept is validated.
func Parse(data []byte) ([]*Concept, error) {
	var file conceptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse concepts: %w", err)
	}
	for _, c := range file.Concepts {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	return file.Concepts, nil
}

// LoadFile reads concepts from a YAML file.
func LoadFile(path string) ([]*Concept, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read concepts file: %w", err)
	}
	cs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cs, nil
}

// Builtin returns a registry with the embedded concepts for the given
// language. An unknown language yields an empty registry so callers can
// register their own concepts.
func Builtin(lang string) (*Registry, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, fmt.Errorf("read builtin concepts: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	registry := &Registry{byName: make(map[string]*Concept)}
	for _, entry := range entries {
		data, err := builtinFS.ReadFile("builtin/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read builtin %s: %w", entry.Name(), err)
		}
		cs, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("builtin %s: %w", entry.Name(), err)
		}
		for _, c := range cs {
			if c.Lang != lang {
				continue
			}
			if err := registry.Register(c); err != nil {
				return nil, fmt.Errorf("builtin %s: %w", entry.Name(), err)
			}
		}
	}
	return registry, nil
}

// BuiltinLangs lists the languages covered by the embedded concepts.
func BuiltinLangs() ([]string, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, fmt.Errorf("read builtin concepts: %w", err)
	}

	seen := make(map[string]bool)
	var langs []string
	for _, entry := range entries {
		data, err := builtinFS.ReadFile("builtin/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read builtin %s: %w", entry.Name(), err)
		}
		cs, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("builtin %s: %w", entry.Name(), err)
		}
		for _, c := range cs {
			if !seen[c.Lang] {
				seen[c.Lang] = true
				langs = append(langs, c.Lang)
			}
		}
	}
	sort.Strings(langs)
	return langs, nil
}
