// Package catalog resolves unit combat stats from external card data.
package catalog

import "mergearena/internal/config"

// Stats are the resolved combat numbers for one unit type at one star level.
type Stats struct {
	HP              float64
	DPS             float64
	Range           int
	HitSpeed        float64 // seconds per attack
	MoveSpeed       float64 // tiles per second
	ProjectileSpeed float64 // tiles per second; <=0 means melee/instant
	Cost            int
	Name            string
	Traits          []string
}

// Resolver supplies stats for unit construction. Implementations must return
// usable defaults for unknown type ids rather than failing.
type Resolver interface {
	Resolve(typeID, star int) Stats
	TypeIDs() []int
}

// Fixed defaults used when catalog data is missing a field entirely.
const (
	DefaultHP              = 100.0
	DefaultDPS             = 10.0
	DefaultRange           = 1
	DefaultHitSpeed        = 1.0
	DefaultMoveSpeed       = 1.0
	DefaultProjectileSpeed = 0.0

	// Ranged units missing explicit movement/projectile numbers get these.
	rangedMoveSpeed       = 0.5
	rangedProjectileSpeed = 4.0
)

// Catalog is the one concrete Resolver over loaded unit definitions. It is
// immutable after construction and handed to the orchestrator and engine by
// reference, never through a package global.
type Catalog struct {
	byID    map[int]config.UnitDef
	ids     []int
	rules   *config.RulesConfig
	starHP  []float64
	starDPS []float64
}

func New(uc *config.UnitsConfig, rc *config.RulesConfig) *Catalog {
	if rc == nil {
		rc = config.DefaultRules()
	}
	c := &Catalog{
		byID:    map[int]config.UnitDef{},
		rules:   rc,
		starHP:  rc.StarHPMul,
		starDPS: rc.StarDPSMul,
	}
	if uc != nil {
		for _, def := range uc.Units {
			if _, dup := c.byID[def.ID]; dup {
				continue
			}
			c.byID[def.ID] = def
			c.ids = append(c.ids, def.ID)
		}
	}
	return c
}

func (c *Catalog) TypeIDs() []int {
	out := make([]int, len(c.ids))
	copy(out, c.ids)
	return out
}

func (c *Catalog) starMul(table []float64, star int) float64 {
	if star >= 1 && star < len(table) && table[star] > 0 {
		return table[star]
	}
	return 1.0
}

// Resolve returns the stats for typeID at the given star level. Unknown ids
// and missing fields fall back to the package defaults; ranged types infer
// projectile and movement speeds from their type tag the way the source
// card data does.
func (c *Catalog) Resolve(typeID, star int) Stats {
	def, ok := c.byID[typeID]
	ranged := ok && isRanged(def.Type)

	hitSpeed := DefaultHitSpeed
	if ok {
		hitSpeed = def.HitSpeed.Or(DefaultHitSpeed)
	}
	if hitSpeed <= 0 {
		hitSpeed = DefaultHitSpeed
	}

	hp := DefaultHP
	dps := DefaultDPS
	if ok {
		hp = def.HP.Or(DefaultHP)
		if def.DPS.Set {
			dps = def.DPS.Val
		} else if def.Damage.Set {
			dps = def.Damage.Val / hitSpeed
		}
	}

	moveSpeed := DefaultMoveSpeed
	projSpeed := DefaultProjectileSpeed
	if ranged {
		moveSpeed = rangedMoveSpeed
		projSpeed = rangedProjectileSpeed
	}
	if ok {
		moveSpeed = def.MoveSpeed.Or(moveSpeed)
		projSpeed = def.ProjectileSpeed.Or(projSpeed)
	}

	rng := DefaultRange
	if ok && def.Range.Set {
		rng = int(def.Range.Val)
	}
	if rng < 1 {
		rng = DefaultRange
	}

	cost := c.rules.DefaultCost
	if ok && def.Cost.Set {
		cost = int(def.Cost.Val)
	}

	st := Stats{
		HP:              hp * c.starMul(c.starHP, star),
		DPS:             dps * c.starMul(c.starDPS, star),
		Range:           rng,
		HitSpeed:        hitSpeed,
		MoveSpeed:       moveSpeed,
		ProjectileSpeed: projSpeed,
		Cost:            cost,
		Name:            def.Name,
		Traits:          def.Traits,
	}
	if st.HP < 1 {
		st.HP = 1
	}
	if st.DPS < 0.1 {
		st.DPS = 0.1
	}
	if st.MoveSpeed <= 0 {
		st.MoveSpeed = DefaultMoveSpeed
	}
	return st
}

func isRanged(t string) bool {
	switch t {
	case "Ranged", "ranged", "RANGED":
		return true
	}
	return false
}
