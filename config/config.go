// Package config loads nullgraph's user-facing settings from a
// .nullgraph.yaml file: worker concurrency, grouping/color preferences,
// and the external-symbol cache location.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/nullgraph/nullgraph/external"
)

// Config is the top-level .nullgraph.yaml document.
type Config struct {
	// Workers caps the number of syntax trees built concurrently; 0 (the
	// zero value, and the default when omitted) means GOMAXPROCS (see
	// EffectiveWorkers).
	Workers int `yaml:"workers,omitempty"`

	// GroupContradictions enables grouping contradictions that share an
	// identical flow into one reported diagnostic (spec.md section 4.5's
	// presentation concerns). Defaults to true.
	GroupContradictions *bool `yaml:"group_contradictions,omitempty"`

	// Color controls ANSI output: "auto" (the default) colors only when
	// stdout is a terminal, "always", or "never".
	Color string `yaml:"color,omitempty"`

	// CachePath is the external-symbol annotation cache's sqlite file. It
	// is used as given: a relative path resolves against the process's
	// working directory, not the config file's. Defaults to
	// ".nullgraph-cache.db".
	CachePath string `yaml:"cache_path,omitempty"`

	// Cache is the opened external-symbol cache, if any. It is never read
	// from or written to the YAML document: a caller that wants caching
	// opens *external.Cache at CachePath (and its JSON sidecar manifest)
	// and assigns it here before calling nullgraph.Infer.
	Cache *external.Cache `yaml:"-"`
}

// StableRoundLimit is a fixed cap on re-running the builder/solver
// pipeline over the same input. It is not user-configurable, and nothing
// in this module references it: the reachability solver is a single-pass
// transitive closure and the pipeline runs exactly once per Infer call.
const StableRoundLimit = 5

// Default returns the configuration used when no .nullgraph.yaml is
// found.
func Default() *Config {
	c := &Config{Color: "auto", CachePath: ".nullgraph-cache.db"}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	if c.Color == "" {
		c.Color = "auto"
	}
	if c.CachePath == "" {
		c.CachePath = ".nullgraph-cache.db"
	}
	if c.GroupContradictions == nil {
		t := true
		c.GroupContradictions = &t
	}
}

func (c *Config) validate(path string) error {
	switch c.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("parsing %s: color must be one of auto, always, never, got %q", path, c.Color)
	}
	if c.Workers < 0 {
		return fmt.Errorf("parsing %s: workers must be >= 0, got %d", path, c.Workers)
	}
	return nil
}

// EffectiveWorkers returns the configured worker cap, or GOMAXPROCS when
// Workers is unset (0).
func (c *Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// ShouldGroup reports whether contradictions sharing a flow should be
// grouped together.
func (c *Config) ShouldGroup() bool {
	return c.GroupContradictions == nil || *c.GroupContradictions
}

// Load reads and parses a .nullgraph.yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses .nullgraph.yaml content from bytes. path is used only for
// error messages.
func Parse(data []byte, path string) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return cfg, nil
}

// Find searches for .nullgraph.yaml starting from dir and walking up
// through parent directories, the way version-control and editor configs
// are conventionally discovered. It returns "" with a nil error if no
// config file is found anywhere above dir.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ".nullgraph.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadOrDefault finds and loads .nullgraph.yaml starting from dir,
// falling back to Default when none is found.
func LoadOrDefault(dir string) (*Config, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
