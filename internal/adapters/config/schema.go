package config

import (
	"gopkg.in/yaml.v3"
)

// Suitefile represents the structure of the bake.yaml configuration file.
type Suitefile struct {
	Version    string                    `yaml:"version"`
	TargetRoot string                    `yaml:"targetRoot"`
	Cache      CacheDTO                  `yaml:"cache"`
	Parameters map[string]map[string]any `yaml:"parameters"`
	Modules    map[string]ModuleDTO      `yaml:"modules"`
}

// CacheDTO represents the cache section of the suite file.
type CacheDTO struct {
	Dir     string `yaml:"dir"`
	Backend string `yaml:"backend"`
	Format  string `yaml:"format"`
	Memo    *int   `yaml:"memo"`
}

// ModuleDTO represents a module definition in the configuration.
type ModuleDTO struct {
	Parameters map[string]map[string]any `yaml:"parameters"`
	Projects   map[string]ProjectDTO     `yaml:"projects"`
}

// ProjectDTO represents a project definition in the configuration.
type ProjectDTO struct {
	Kind       string        `yaml:"kind"`
	Sources    []string      `yaml:"sources"`
	Command    []string      `yaml:"command"`
	Outputs    []string      `yaml:"outputs"`
	References []string      `yaml:"references"`
	Parameters ParameterUses `yaml:"parameters"`
	CopyTo     string        `yaml:"copyTo"`
}

// ParameterUses lists the parameter blocks a project depends on. It accepts
// either a list of block names or a mapping of block names to overrides.
type ParameterUses map[string]map[string]any

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *ParameterUses) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		uses := make(ParameterUses, len(names))
		for _, name := range names {
			uses[name] = map[string]any{}
		}
		*p = uses
		return nil
	default:
		var blocks map[string]map[string]any
		if err := value.Decode(&blocks); err != nil {
			return err
		}
		uses := make(ParameterUses, len(blocks))
		for name, block := range blocks {
			if block == nil {
				block = map[string]any{}
			}
			uses[name] = block
		}
		*p = uses
		return nil
	}
}
