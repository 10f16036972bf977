package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

func loadYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}

// LoadAll reads rules.yaml and units.yaml from dir. Rules fields missing
// from the file keep their defaults.
func LoadAll(dir string) (*RulesConfig, *UnitsConfig, error) {
	rc := DefaultRules()
	var uc UnitsConfig
	if err := loadYAML(filepath.Join(dir, "rules.yaml"), rc); err != nil {
		return nil, nil, err
	}
	if err := loadYAML(filepath.Join(dir, "units.yaml"), &uc); err != nil {
		return nil, nil, err
	}
	return rc, &uc, nil
}
