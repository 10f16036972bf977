package battle

import (
	"mergearena/internal/catalog"
	"mergearena/internal/hex"
)

// Unit is one battle participant. Stats are resolved once at construction
// through the injected catalog resolver; position is floating on the hex
// lattice and integral whenever the unit is at rest.
//
// A unit whose HP reaches zero is not removed from the roster: it keeps its
// last position and blocks its cell for the remainder of the battle.
type Unit struct {
	TypeID int
	Star   int
	Owner  int // 0 or 1

	Row, Col float64
	HP       float64
	MaxHP    float64
	Cooldown float64 // seconds until the next attack is allowed

	DPS             float64
	Range           int
	HitSpeed        float64
	MoveSpeed       float64
	ProjectileSpeed float64

	// Transit state. moving is true while interpolating between cell
	// centers; progress runs 0..1 from moveFrom to moveTo.
	moving   bool
	moveFrom hex.Cell
	moveTo   hex.Cell
	progress float64

	stallUntil float64
}

// NewUnit builds a unit at full health standing on cell.
func NewUnit(res catalog.Resolver, typeID, star, owner int, cell hex.Cell) *Unit {
	st := res.Resolve(typeID, star)
	return &Unit{
		TypeID:          typeID,
		Star:            star,
		Owner:           owner,
		Row:             float64(cell.Row),
		Col:             float64(cell.Col),
		HP:              st.HP,
		MaxHP:           st.HP,
		DPS:             st.DPS,
		Range:           st.Range,
		HitSpeed:        st.HitSpeed,
		MoveSpeed:       st.MoveSpeed,
		ProjectileSpeed: st.ProjectileSpeed,
	}
}

func (u *Unit) Alive() bool { return u.HP > 0 }

// Cell is the unit's resting cell (nearest lattice cell to its position).
func (u *Unit) Cell() hex.Cell { return hex.CellOf(u.Row, u.Col) }

// Centered reports whether the unit sits on a cell center and is not in
// transit between cells.
func (u *Unit) Centered() bool {
	return !u.moving && hex.Centered(u.Row, u.Col)
}

// Moving reports whether the unit is interpolating between cells.
func (u *Unit) Moving() bool { return u.moving }

// SettleCell is the cell the unit will occupy once settled: the reserved
// destination while in transit, the resting cell otherwise. Reservation
// uniqueness makes this collision-free across a roster.
func (u *Unit) SettleCell() hex.Cell {
	if u.moving {
		return u.moveTo
	}
	return u.Cell()
}

// Settle snaps the unit onto its settle cell and clears any transit state.
// The orchestrator uses it when writing final battle positions back to the
// board.
func (u *Unit) Settle() {
	c := u.SettleCell()
	u.Row = float64(c.Row)
	u.Col = float64(c.Col)
	u.moving = false
	u.progress = 0
}

func (u *Unit) beginMove(to hex.Cell) {
	u.moving = true
	u.moveFrom = u.Cell()
	u.moveTo = to
	u.progress = 0
}

// advanceMove interpolates toward the reserved destination by MoveSpeed*dt,
// never crossing more than one cell in a single tick. Returns true on
// arrival.
func (u *Unit) advanceMove(dt float64) bool {
	if !u.moving {
		return false
	}
	step := u.MoveSpeed * dt
	if step > 1 {
		step = 1
	}
	u.progress += step
	if u.progress >= 1 {
		u.Row = float64(u.moveTo.Row)
		u.Col = float64(u.moveTo.Col)
		u.moving = false
		u.progress = 0
		return true
	}
	u.Row = float64(u.moveFrom.Row) + (float64(u.moveTo.Row)-float64(u.moveFrom.Row))*u.progress
	u.Col = float64(u.moveFrom.Col) + (float64(u.moveTo.Col)-float64(u.moveFrom.Col))*u.progress
	return false
}
