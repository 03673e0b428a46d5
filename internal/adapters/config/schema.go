package config

import (
	"gopkg.in/yaml.v3"
)

// Jigfile represents the structure of the jig.yaml configuration file.
type Jigfile struct {
	Root        string     `yaml:"root"`
	Refresh     RefreshDTO `yaml:"refresh"`
	Always      *bool      `yaml:"always"`
	Delay       int        `yaml:"delay"`
	OutDir      string     `yaml:"outDir"`
	Env         string     `yaml:"env"`
	Command     []string   `yaml:"command"`
	Listen      string     `yaml:"listen"`
	AppURL      string     `yaml:"appUrl"`
	ServeOutput bool       `yaml:"serveOutput"`
	Coalesce    bool       `yaml:"coalesce"`
	Debounce    int        `yaml:"debounce"`
	HotFile     string     `yaml:"hotFile"`
}

// RefreshDTO accepts either a boolean or a mapping of watch patterns.
type RefreshDTO struct {
	// Disabled is set by an explicit "refresh: false".
	Disabled bool     `yaml:"-"`
	Files    []string `yaml:"files"`
	Ignored  []string `yaml:"ignored"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *RefreshDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*r = RefreshDTO{}
		return nil
	}
	if node.Kind == yaml.ScalarNode {
		var enabled bool
		if err := node.Decode(&enabled); err != nil {
			return err
		}
		*r = RefreshDTO{Disabled: !enabled}
		return nil
	}

	type plain RefreshDTO
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = RefreshDTO(p)
	r.Disabled = false
	return nil
}
