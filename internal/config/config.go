// Package config holds the run configuration: target families, the versioned
// alias/correction tables, and analysis parameters. Corrections live here as
// data, not as inline conditionals, so they stay auditable and testable.
package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"phylopipe-core/diet"
	"phylopipe-core/distmat"
)

// Config is the full pipeline configuration. A YAML file overrides the
// defaults field-by-field.
type Config struct {
	// AliasVersion identifies the correction tables in artifacts and logs.
	AliasVersion string `yaml:"alias_version"`

	// BlindSnakeFamilies is the focal taxon set; OutgroupFamilies widens the
	// expanded dataset.
	BlindSnakeFamilies []string `yaml:"blind_snake_families"`
	OutgroupFamilies   []string `yaml:"outgroup_families"`

	// Aliases collapses genus-level or synonymous family labels extracted
	// from predator taxonomies into canonical family names.
	Aliases map[string]string `yaml:"aliases"`

	// SpeciesOverrides patches known mis-assignments after the diet join.
	SpeciesOverrides map[string]string `yaml:"species_overrides"`

	// PreyMinCount drops (family, prey) groups with count <= this value.
	// 1 keeps the smallest-sample family represented; tune per dataset.
	PreyMinCount int `yaml:"prey_min_count"`

	Kmer   int     `yaml:"kmer"`
	Model  string  `yaml:"model"`
	Cutoff float64 `yaml:"cutoff"`
}

// Default is the configuration used by the reference analysis.
func Default() Config {
	return Config{
		AliasVersion: "2024-06",
		BlindSnakeFamilies: []string{
			"Leptotyphlopidae",
			"Typhlopidae",
			"Gerrhopilidae",
			"Anomalepididae",
		},
		OutgroupFamilies: []string{
			"Boidae",
			"Pythonidae",
			"Colubridae",
			"Viperidae",
			"Elapidae",
		},
		Aliases: map[string]string{
			// genus-level tokens that land at the family rank in some sources
			"Rena":         "Leptotyphlopidae",
			"Epictia":      "Leptotyphlopidae",
			"Myriopholis":  "Leptotyphlopidae",
			"Typhlops":     "Typhlopidae",
			"Anilios":      "Typhlopidae",
			"Indotyphlops": "Typhlopidae",
			"Gerrhopilus":  "Gerrhopilidae",
			"Liotyphlops":  "Anomalepididae",
		},
		SpeciesOverrides: map[string]string{
			"Indotyphlops braminus": "Typhlopidae",
		},
		PreyMinCount: 1,
		Kmer:         distmat.DefaultK,
		Model:        string(distmat.TN93),
		Cutoff:       0.05,
	}
}

// Load merges a YAML file over the defaults. Empty path returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate applies configuration invariants.
func (c Config) Validate() error {
	if len(c.BlindSnakeFamilies) == 0 {
		return fmt.Errorf("config: blind_snake_families must not be empty")
	}
	if c.Kmer <= 0 {
		return fmt.Errorf("config: kmer must be positive, got %d", c.Kmer)
	}
	if c.PreyMinCount < 0 {
		return fmt.Errorf("config: prey_min_count must be >= 0, got %d", c.PreyMinCount)
	}
	if c.Cutoff < 0 {
		return fmt.Errorf("config: cutoff must be >= 0, got %g", c.Cutoff)
	}
	if _, err := distmat.ParseModel(c.Model); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for k, v := range c.Aliases {
		if canon, ok := c.Aliases[v]; ok && canon != v {
			return fmt.Errorf("config: alias %q -> %q is itself aliased to %q (table must be idempotent)", k, v, canon)
		}
	}
	return nil
}

// AliasTable adapts the alias map for the diet loader.
func (c Config) AliasTable() diet.Aliases { return diet.Aliases(c.Aliases) }

// AllFamilies is blind-snake plus outgroup families.
func (c Config) AllFamilies() []string {
	out := append([]string(nil), c.BlindSnakeFamilies...)
	return append(out, c.OutgroupFamilies...)
}

// FamilyPattern builds the predator-taxonomy filter: an alternation of every
// target family and every alias key (genus-level labels must pass the filter
// too, or the records they tag would vanish before normalization).
func (c Config) FamilyPattern() (*regexp.Regexp, error) {
	var terms []string
	for _, f := range c.AllFamilies() {
		terms = append(terms, regexp.QuoteMeta(f))
	}
	aliases := make([]string, 0, len(c.Aliases))
	for alias := range c.Aliases {
		aliases = append(aliases, regexp.QuoteMeta(alias))
	}
	sort.Strings(aliases)
	terms = append(terms, aliases...)
	return regexp.Compile(strings.Join(terms, "|"))
}

// IsBlindSnake reports whether a family is in the focal set.
func (c Config) IsBlindSnake(family string) bool {
	for _, f := range c.BlindSnakeFamilies {
		if f == family {
			return true
		}
	}
	return false
}
