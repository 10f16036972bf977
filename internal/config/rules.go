package config

// RulesConfig carries the board, economy and simulation constants for one
// match. Zero values are replaced by DefaultRules at load time.
type RulesConfig struct {
	BoardRows int `yaml:"board_rows"`
	BoardCols int `yaml:"board_cols"`
	MaxRounds int `yaml:"max_rounds"`

	StartElixir int `yaml:"start_elixir"`
	DefaultCost int `yaml:"default_cost"`
	SellRefund  int `yaml:"sell_refund"`
	BaseHealth  int `yaml:"base_health"`

	ShopSlots int `yaml:"shop_slots"`
	BenchSize int `yaml:"bench_size"`

	// Board unit cap: min(UnitCapBase + round - 1, UnitCapCeiling).
	UnitCapBase    int `yaml:"unit_cap_base"`
	UnitCapCeiling int `yaml:"unit_cap_ceiling"`

	// Star multipliers indexed by star level 1..3 (index 0 unused).
	StarHPMul  []float64 `yaml:"star_hp_mul"`
	StarDPSMul []float64 `yaml:"star_dps_mul"`

	TickDT        float64 `yaml:"tick_dt"`
	BattleTimeCap float64 `yaml:"battle_time_cap"`
}

func DefaultRules() *RulesConfig {
	return &RulesConfig{
		BoardRows:      6,
		BoardCols:      6,
		MaxRounds:      20,
		StartElixir:    10,
		DefaultCost:    3,
		SellRefund:     2,
		BaseHealth:     10,
		ShopSlots:      4,
		BenchSize:      4,
		UnitCapBase:    3,
		UnitCapCeiling: 8,
		StarHPMul:      []float64{0, 1.0, 1.6, 2.56},
		StarDPSMul:     []float64{0, 1.0, 1.4, 1.96},
		TickDT:         0.1,
		BattleTimeCap:  300.0,
	}
}

// UnitCap returns the per-board unit cap for a given round.
func (rc *RulesConfig) UnitCap(round int) int {
	cap := rc.UnitCapBase + round - 1
	if cap > rc.UnitCapCeiling {
		cap = rc.UnitCapCeiling
	}
	return cap
}
