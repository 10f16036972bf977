// Package battle is the discrete-time hex-grid combat resolver. The engine
// owns one roster of units plus in-flight projectiles and advances them by
// fixed time steps; the caller drives the loop and decides termination.
package battle

import "mergearena/internal/hex"

// BlockedCooldown is how long a stalled unit waits before it plans another
// move, so blocked units do not buzz against each other every tick.
const BlockedCooldown = 0.2

// Projectile is a ranged attack in flight. Damage lands only if the target
// is still alive when travel completes; otherwise the projectile fizzles.
type Projectile struct {
	Owner     int
	Damage    float64
	Row, Col  float64 // origin, for viewers
	TargetIdx int     // roster index at spawn time
	Remaining float64 // seconds of travel left
}

// Engine runs one battle to completion under external control. All state is
// mutated only inside Step; there is no internal clock and no concurrency.
type Engine struct {
	Rows, Cols int

	units       []*Unit
	projectiles []Projectile
	now         float64

	// Emit, when set, receives the battle event stream.
	Emit func(Event)
}

// New builds an engine over a snapshot roster. Unit positions must be
// integral and pairwise distinct.
func New(rows, cols int, units []*Unit) *Engine {
	e := &Engine{Rows: rows, Cols: cols, units: units}
	return e
}

// Units exposes the roster read-only (index order is stable for the whole
// battle and is the projectile target index space).
func (e *Engine) Units() []*Unit { return e.units }

// Projectiles exposes the in-flight projectiles read-only.
func (e *Engine) Projectiles() []Projectile { return e.projectiles }

// Now returns the accumulated simulation time.
func (e *Engine) Now() float64 { return e.now }

// AliveCounts returns the number of living units per side.
func (e *Engine) AliveCounts() (p0, p1 int) {
	for _, u := range e.units {
		if !u.Alive() {
			continue
		}
		if u.Owner == 0 {
			p0++
		} else {
			p1++
		}
	}
	return
}

func (e *Engine) emit(typ string, payload map[string]any) {
	if e.Emit != nil {
		e.Emit(Event{T: e.now, Type: typ, Payload: payload})
	}
}

// EmitSpawns publishes one Spawn event per roster unit, for viewers that
// attach before the first tick.
func (e *Engine) EmitSpawns() {
	for i, u := range e.units {
		e.emit(EvSpawn, map[string]any{
			"idx": i, "owner": u.Owner, "type": u.TypeID, "star": u.Star,
			"row": u.Row, "col": u.Col, "hp": u.HP, "max_hp": u.MaxHP,
		})
	}
}

// nearestEnemy returns the roster index of unit i's current target, or -1.
// Target choice is the nearest living enemy by hex distance between resting
// cells, tie-broken by (distance, target col, target row, roster index) so
// the outcome never depends on iteration order.
func (e *Engine) nearestEnemy(i int) int {
	ui := e.units[i]
	from := ui.Cell()
	best := -1
	var bd, bc, br int
	for j, uj := range e.units {
		if uj.Owner == ui.Owner || !uj.Alive() {
			continue
		}
		cell := uj.Cell()
		d := hex.Distance(from, cell)
		if best == -1 || d < bd ||
			(d == bd && (cell.Col < bc || (cell.Col == bc && cell.Row < br))) {
			best, bd, bc, br = j, d, cell.Col, cell.Row
		}
	}
	return best
}

// Step advances the simulation by dt seconds: projectiles land or fly on,
// cooldowns tick down, in-flight moves advance, settled units plan and
// resolve contested moves, and units in range attack.
func (e *Engine) Step(dt float64) {
	e.stepProjectiles(dt)

	for _, u := range e.units {
		if u.Alive() && u.Cooldown > 0 {
			u.Cooldown -= dt
			if u.Cooldown < 0 {
				u.Cooldown = 0
			}
		}
	}

	for _, u := range e.units {
		if u.Alive() && u.Moving() {
			u.advanceMove(dt)
		}
	}

	e.planAndCommitMoves(dt)
	e.stepAttacks(dt)
	e.now += dt
}

func (e *Engine) stepProjectiles(dt float64) {
	kept := e.projectiles[:0]
	for _, p := range e.projectiles {
		p.Remaining -= dt
		if p.Remaining > 0 {
			kept = append(kept, p)
			continue
		}
		tgt := e.units[p.TargetIdx]
		if tgt.Alive() {
			e.applyDamage(p.TargetIdx, p.Damage)
		} else {
			e.emit(EvFizzle, map[string]any{"target": p.TargetIdx})
		}
	}
	e.projectiles = kept
}

func (e *Engine) applyDamage(idx int, dmg float64) {
	u := e.units[idx]
	wasAlive := u.Alive()
	u.HP -= dmg
	e.emit(EvHit, map[string]any{"target": idx, "dmg": dmg, "hp": u.HP})
	if wasAlive && !u.Alive() {
		// The corpse keeps its cell as an occupancy blocker.
		e.emit(EvDeath, map[string]any{"idx": idx, "owner": u.Owner})
	}
}

func (e *Engine) stepAttacks(dt float64) {
	for i, u := range e.units {
		if !u.Alive() || !u.Centered() || u.Cooldown > 0 {
			continue
		}
		ti := e.nearestEnemy(i)
		if ti < 0 {
			continue
		}
		tgt := e.units[ti]
		dist := hex.Distance(u.Cell(), tgt.Cell())
		if dist > u.Range {
			continue
		}
		dmg := u.DPS * dt
		e.emit(EvAttack, map[string]any{"idx": i, "target": ti})
		if u.ProjectileSpeed > 0 {
			travel := float64(dist) / u.ProjectileSpeed
			e.projectiles = append(e.projectiles, Projectile{
				Owner:     u.Owner,
				Damage:    dmg,
				Row:       u.Row,
				Col:       u.Col,
				TargetIdx: ti,
				Remaining: travel,
			})
		} else {
			e.applyDamage(ti, dmg)
		}
		u.Cooldown = u.HitSpeed
	}
}

func (e *Engine) inBounds(c hex.Cell) bool {
	return c.Row >= 0 && c.Row < e.Rows && c.Col >= 0 && c.Col < e.Cols
}
