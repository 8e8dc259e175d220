package monover

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the configuration used when no manifest is present:
// tag prefix "v", the conventional main and dev branch names, and a single
// implicit project rooted at the repository top level.
func DefaultConfig() Config {
	return Config{
		TagPrefix: "v",
		Projects:  []Project{{Name: "root", Path: "."}},
	}
}

// LoadConfig reads and validates a monover.yaml manifest.
func LoadConfig(file string) (Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses manifest bytes, applying defaults for anything
// omitted. Projects without a name take the base of their path; an empty
// projects list falls back to the implicit root project.
func ParseConfig(data []byte) (Config, error) {
	cfg := Config{TagPrefix: "v"}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.Projects) == 0 {
		cfg.Projects = []Project{{Name: "root", Path: "."}}
		return cfg, nil
	}

	for i, p := range cfg.Projects {
		if p.Path == "" {
			return Config{}, fmt.Errorf("project %d (%q): path is required", i, p.Name)
		}
		if p.Name == "" {
			cfg.Projects[i].Name = path.Base(p.Path)
		}

		// Dependency lists are irreflexive: drop any self entry.
		deps := make([]string, 0, len(p.Dependencies))
		for _, d := range p.Dependencies {
			if path.Clean(d) == path.Clean(p.Path) {
				continue
			}
			deps = append(deps, d)
		}
		cfg.Projects[i].Dependencies = deps
	}

	return cfg, nil
}

func (c Config) tagPrefix() string {
	if c.TagPrefix == "" {
		return "v"
	}
	return c.TagPrefix
}

func (c Config) mainBranches() []string {
	if len(c.MainBranches) > 0 {
		return c.MainBranches
	}
	return defaultMainBranches
}

func (c Config) devBranches() []string {
	if len(c.DevBranches) > 0 {
		return c.DevBranches
	}
	return defaultDevBranches
}
