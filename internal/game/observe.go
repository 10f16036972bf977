package game

import (
	"fmt"
	"strings"
)

// CellView is the per-cell slice of an observation. Owner is -1 for an
// empty cell; Alive distinguishes dead blockers from fighting units.
type CellView struct {
	Owner  int  `json:"owner"`
	TypeID int  `json:"type_id"`
	Star   int  `json:"star"`
	Alive  bool `json:"alive"`
}

// Observation is the read-only snapshot handed to bots and viewers. It is a
// copy; mutating it never touches match state.
type Observation struct {
	Board      [][]CellView   `json:"board"` // [row][col]
	Elixir     [2]int         `json:"elixir"`
	Shops      [2][]int       `json:"shops"`
	Benches    [2][]BenchUnit `json:"benches"`
	BaseHealth [2]int         `json:"base_health"`
	Round      int            `json:"round"`
	Active     int            `json:"active"`
	Phase      Phase          `json:"phase"`
	UnitCap    int            `json:"unit_cap"`
	Legal      []Action       `json:"legal"`
}

// Observe snapshots the current state plus the active player's legal
// actions.
func (m *Match) Observe() Observation {
	board := make([][]CellView, m.rules.BoardRows)
	for r := range board {
		board[r] = make([]CellView, m.rules.BoardCols)
		for c := range board[r] {
			board[r][c] = CellView{Owner: -1}
		}
	}
	var obs Observation
	for owner, p := range m.players {
		for cell, u := range p.Board {
			board[cell.Row][cell.Col] = CellView{
				Owner:  owner,
				TypeID: u.TypeID,
				Star:   u.Star,
				Alive:  u.Alive(),
			}
		}
		obs.Elixir[owner] = p.Elixir
		obs.Shops[owner] = append([]int(nil), p.Shop...)
		obs.Benches[owner] = append([]BenchUnit(nil), p.Bench...)
		obs.BaseHealth[owner] = p.BaseHealth
	}
	obs.Board = board
	obs.Round = m.Round
	obs.Active = m.Active
	obs.Phase = m.Phase
	obs.UnitCap = m.UnitCap()
	obs.Legal = m.LegalActions()
	return obs
}

// String renders the board for debugging: `.` empty, owner/type/star per
// occupied cell, `x` suffix on dead blockers.
func (o Observation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "round %d | active p%d | phase %s | cap %d\n", o.Round, o.Active, o.Phase, o.UnitCap)
	fmt.Fprintf(&b, "p0: %d elixir, base %d | p1: %d elixir, base %d\n",
		o.Elixir[0], o.BaseHealth[0], o.Elixir[1], o.BaseHealth[1])
	for r, row := range o.Board {
		if r&1 == 1 {
			b.WriteString("  ")
		}
		for c, cv := range row {
			if c > 0 {
				b.WriteByte(' ')
			}
			if cv.Owner < 0 {
				b.WriteString(" .  ")
				continue
			}
			mark := ' '
			if !cv.Alive {
				mark = 'x'
			}
			fmt.Fprintf(&b, "%d%d%d%c", cv.Owner, cv.TypeID, cv.Star, mark)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
