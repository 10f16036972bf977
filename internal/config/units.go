package config

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type UnitsConfig struct {
	Units []UnitDef `yaml:"units"`
}

// UnitDef is one catalog record. All stat fields are optional; the catalog
// substitutes defaults for absent or unparseable values.
type UnitDef struct {
	ID              int      `yaml:"id"`
	Name            string   `yaml:"name"`
	Type            string   `yaml:"type"` // "Melee"/"Ranged"
	Cost            Flex     `yaml:"cost"`
	HP              Flex     `yaml:"hp"`
	DPS             Flex     `yaml:"dps"`
	Damage          Flex     `yaml:"damage"`
	Range           Flex     `yaml:"range"`
	HitSpeed        Flex     `yaml:"hit_speed"`
	MoveSpeed       Flex     `yaml:"move_speed"`
	ProjectileSpeed Flex     `yaml:"projectile_speed"`
	Traits          []string `yaml:"traits"`
	Note            string   `yaml:"note"`
}

// Flex is a lenient numeric field: it accepts yaml numbers as well as
// strings such as "1,234". Unparseable values read back as absent rather
// than failing the whole catalog load.
type Flex struct {
	Val float64
	Set bool
}

func (f *Flex) UnmarshalYAML(node *yaml.Node) error {
	s := strings.TrimSpace(strings.ReplaceAll(node.Value, ",", ""))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	f.Val = v
	f.Set = true
	return nil
}

// Or returns the field value, or def when the field was absent or malformed.
func (f Flex) Or(def float64) float64 {
	if f.Set {
		return f.Val
	}
	return def
}
