// Package preset defines the named element presets a debate can be
// started with. A preset fixes the list of evaluation criteria
// ("elements") that the participants score; custom presets can be
// merged over the built-in catalog from a YAML file.
package preset

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Preset is a named, fixed list of evaluation criteria.
type Preset struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Elements    []string `yaml:"elements"`
}

// GenericElement is the single element used when the requested preset
// is unknown.
const GenericElement = "overall"

// builtin is the default preset catalog.
var builtin = []Preset{
	{
		Name:        "code-review",
		Description: "Review a code change across engineering quality criteria",
		Elements:    []string{"security", "performance", "readability", "maintainability", "test-coverage"},
	},
	{
		Name:        "decision",
		Description: "Evaluate a proposed decision or plan",
		Elements:    []string{"feasibility", "cost", "risk", "impact"},
	},
	{
		Name:        "qa-accuracy",
		Description: "Judge the quality of an answer to a question",
		Elements:    []string{"accuracy", "completeness", "clarity"},
	},
}

// Catalog holds the available presets for a run.
type Catalog struct {
	presets map[string]Preset
}

// NewCatalog returns a catalog containing the built-in presets.
func NewCatalog() *Catalog {
	c := &Catalog{presets: make(map[string]Preset, len(builtin))}
	for _, p := range builtin {
		c.presets[p.Name] = p
	}
	return c
}

// LoadFile merges presets from a YAML file over the catalog. The file
// holds a list of presets:
//
//	- name: api-design
//	  description: Review an API proposal
//	  elements: [consistency, ergonomics, versioning]
//
// A file preset with the same name as a built-in replaces it.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("preset: read %s: %w", path, err)
	}

	var loaded []Preset
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("preset: parse %s: %w", path, err)
	}

	for _, p := range loaded {
		if p.Name == "" {
			return fmt.Errorf("preset: %s contains a preset without a name", path)
		}
		if len(p.Elements) == 0 {
			return fmt.Errorf("preset: %q has no elements", p.Name)
		}
		c.presets[p.Name] = p
	}
	return nil
}

// Elements returns the element names for the named preset. An unknown
// preset falls back to a single generic element rather than failing:
// the debate can still run, just without per-criterion breakdown.
func (c *Catalog) Elements(name string) []string {
	if p, ok := c.presets[name]; ok {
		return append([]string(nil), p.Elements...)
	}
	return []string{GenericElement}
}

// Has reports whether the named preset exists.
func (c *Catalog) Has(name string) bool {
	_, ok := c.presets[name]
	return ok
}

// List returns all presets sorted by name.
func (c *Catalog) List() []Preset {
	out := make([]Preset, 0, len(c.presets))
	for _, p := range c.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
