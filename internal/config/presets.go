package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Presets is the catalogue of named appearance templates. Each section holds a
// partial keyed by the JSON field names of the matching config sub-record.
type Presets struct {
	Version int      `yaml:"version"`
	Presets []Preset `yaml:"presets"`

	index map[string]*Preset
}

type Preset struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Typography  map[string]any `yaml:"typography"`
	Colors      map[string]any `yaml:"colors"`
	Effects     map[string]any `yaml:"effects"`
	Layout      map[string]any `yaml:"layout"`
	Animations  map[string]any `yaml:"animations"`
}

func LoadPresets(path string) (*Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading presets: %w", err)
	}
	return ParsePresets(data)
}

func ParsePresets(data []byte) (*Presets, error) {
	var presets Presets
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("loading presets: %w", err)
	}

	if err := validatePresets(&presets); err != nil {
		return nil, fmt.Errorf("loading presets: %w", err)
	}

	presets.index = make(map[string]*Preset)
	for i := range presets.Presets {
		preset := &presets.Presets[i]
		presets.index[strings.ToLower(preset.Name)] = preset
	}

	return &presets, nil
}

func validatePresets(p *Presets) error {
	if p.Version != 1 {
		return fmt.Errorf("unsupported version: %d", p.Version)
	}

	names := make(map[string]struct{})
	for i, preset := range p.Presets {
		if strings.TrimSpace(preset.Name) == "" {
			return fmt.Errorf("preset %d name is required", i)
		}
		key := strings.ToLower(preset.Name)
		if _, exists := names[key]; exists {
			return fmt.Errorf("duplicate preset name: %s", preset.Name)
		}
		names[key] = struct{}{}
	}

	return nil
}

func (p *Presets) ByName(name string) (*Preset, bool) {
	if p == nil {
		return nil, false
	}
	preset, ok := p.index[strings.ToLower(name)]
	return preset, ok
}

func (p *Presets) Names() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.Presets))
	for _, preset := range p.Presets {
		names = append(names, preset.Name)
	}
	return names
}
