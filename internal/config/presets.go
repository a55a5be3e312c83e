package config

import (
	"embed"
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

//go:embed timecontrols.yaml
var defaultPresets embed.FS

// TimeControlPreset is one pool offered to matchmaking clients.
type TimeControlPreset struct {
	Name        string `yaml:"name"`
	TimeControl string `yaml:"time_control"`
}

type presetFile struct {
	Presets []TimeControlPreset `yaml:"presets"`
}

// LoadPresets reads the embedded preset catalog, or the file at path
// when one is given.
func LoadPresets(path string) ([]TimeControlPreset, error) {
	var raw []byte
	var err error
	if strings.TrimSpace(path) != "" {
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read presets %s: %w", path, err)
		}
	} else {
		raw, err = defaultPresets.ReadFile("timecontrols.yaml")
		if err != nil {
			return nil, err
		}
	}

	var f presetFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	var out []TimeControlPreset
	for _, p := range f.Presets {
		p.Name = strings.TrimSpace(p.Name)
		p.TimeControl = strings.TrimSpace(p.TimeControl)
		if p.TimeControl == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("preset catalog is empty")
	}
	return out, nil
}
