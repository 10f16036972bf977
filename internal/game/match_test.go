package game

import (
	"errors"
	"reflect"
	"testing"

	"mergearena/internal/battle"
	"mergearena/internal/catalog"
	"mergearena/internal/config"
	"mergearena/internal/hex"
)

const (
	typeTank   = 0
	typeArcher = 1
)

type stubRes struct{}

func (stubRes) Resolve(typeID, star int) catalog.Stats {
	st := catalog.Stats{
		HP: 100, DPS: 20, Range: 1, HitSpeed: 1.0, MoveSpeed: 1.0, Cost: 3, Name: "Tank",
	}
	if typeID == typeArcher {
		st = catalog.Stats{
			HP: 60, DPS: 24, Range: 3, HitSpeed: 1.0, MoveSpeed: 0.5,
			ProjectileSpeed: 4.0, Cost: 3, Name: "Archer",
		}
	}
	mulHP := []float64{0, 1.0, 1.6, 2.56}
	mulDPS := []float64{0, 1.0, 1.4, 1.96}
	if star >= 1 && star <= 3 {
		st.HP *= mulHP[star]
		st.DPS *= mulDPS[star]
	}
	return st
}

func (stubRes) TypeIDs() []int { return []int{typeTank, typeArcher} }

func newTestMatch(t *testing.T) *Match {
	t.Helper()
	return NewMatch(config.DefaultRules(), stubRes{}, 7)
}

func put(t *testing.T, m *Match, owner, typeID, star, row, col int) *battle.Unit {
	t.Helper()
	cell := hex.Cell{Row: row, Col: col}
	if m.cellOccupied(cell) {
		t.Fatalf("cell %v already occupied", cell)
	}
	u := battle.NewUnit(stubRes{}, typeID, star, owner, cell)
	m.players[owner].Board[cell] = u
	m.refreshFlags()
	return u
}

func TestInitialState(t *testing.T) {
	m := newTestMatch(t)
	if m.Round != 1 || m.Active != 0 || m.Phase != PhaseDeploy {
		t.Fatalf("initial state: round=%d active=%d phase=%s", m.Round, m.Active, m.Phase)
	}
	for i := 0; i < 2; i++ {
		p := m.Player(i)
		if p.Elixir != 10 || p.BaseHealth != 10 {
			t.Fatalf("player %d: elixir=%d base=%d", i, p.Elixir, p.BaseHealth)
		}
		for slot, id := range p.Shop {
			if id == EmptySlot {
				t.Fatalf("player %d shop slot %d empty after reset", i, slot)
			}
		}
	}
	// 4 affordable slots x 6 free back-row columns, plus END.
	if got := len(m.LegalActions()); got != 25 {
		t.Fatalf("initial legal actions = %d, want 25", got)
	}
}

func TestSeededShopsAreReproducible(t *testing.T) {
	a := NewMatch(config.DefaultRules(), stubRes{}, 42)
	b := NewMatch(config.DefaultRules(), stubRes{}, 42)
	for i := 0; i < 2; i++ {
		if !reflect.DeepEqual(a.Player(i).Shop, b.Player(i).Shop) {
			t.Fatalf("player %d shops differ across same-seed matches", i)
		}
	}
}

func TestBuyThenSellRestoresBoard(t *testing.T) {
	m := newTestMatch(t)
	if err := m.Apply(Action{Kind: BuyPlace, Slot: 0, Col: 2}); err != nil {
		t.Fatalf("buy: %v", err)
	}
	p := m.Player(0)
	cell := hex.Cell{Row: 0, Col: 2}
	if p.UnitCount() != 1 || p.Board[cell] == nil {
		t.Fatal("unit not placed on back row")
	}
	if p.Elixir != 7 {
		t.Fatalf("elixir after buy = %d", p.Elixir)
	}
	if p.Shop[0] == EmptySlot {
		t.Fatal("bought slot was not refilled")
	}

	if err := m.Apply(Action{Kind: Sell, A: cell}); err != nil {
		t.Fatalf("sell: %v", err)
	}
	if p.UnitCount() != 0 {
		t.Fatal("sell left the board occupied")
	}
	if p.Elixir != 9 {
		t.Fatalf("elixir after refund = %d", p.Elixir)
	}

	if err := m.Apply(Action{Kind: BuyPlace, Slot: 1, Col: 2}); err != nil {
		t.Fatalf("re-buy: %v", err)
	}
	if p.UnitCount() != 1 {
		t.Fatal("board count not restored")
	}
}

func TestMergeInvariant(t *testing.T) {
	m := newTestMatch(t)
	put(t, m, 0, typeTank, 1, 0, 0)
	put(t, m, 0, typeTank, 1, 0, 1)

	a, b := hex.Cell{Row: 0, Col: 0}, hex.Cell{Row: 0, Col: 1}
	if err := m.Apply(Action{Kind: Merge, A: a, B: b}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	p := m.Player(0)
	if p.UnitCount() != 1 {
		t.Fatalf("merge left %d units", p.UnitCount())
	}
	u := p.Board[a]
	if u == nil || u.Star != 2 {
		t.Fatal("merge did not produce a star-2 unit at A")
	}
	if _, occupied := p.Board[b]; occupied {
		t.Fatal("merge did not free B's cell")
	}
}

func TestMergeRejections(t *testing.T) {
	cases := []struct {
		name  string
		setup func(t *testing.T, m *Match) (hex.Cell, hex.Cell)
	}{
		{"different types", func(t *testing.T, m *Match) (hex.Cell, hex.Cell) {
			put(t, m, 0, typeTank, 1, 0, 0)
			put(t, m, 0, typeArcher, 1, 0, 1)
			return hex.Cell{Row: 0, Col: 0}, hex.Cell{Row: 0, Col: 1}
		}},
		{"different stars", func(t *testing.T, m *Match) (hex.Cell, hex.Cell) {
			put(t, m, 0, typeTank, 1, 0, 0)
			put(t, m, 0, typeTank, 2, 0, 1)
			return hex.Cell{Row: 0, Col: 0}, hex.Cell{Row: 0, Col: 1}
		}},
		{"star cap", func(t *testing.T, m *Match) (hex.Cell, hex.Cell) {
			put(t, m, 0, typeTank, 3, 0, 0)
			put(t, m, 0, typeTank, 3, 0, 1)
			return hex.Cell{Row: 0, Col: 0}, hex.Cell{Row: 0, Col: 1}
		}},
		{"not adjacent", func(t *testing.T, m *Match) (hex.Cell, hex.Cell) {
			put(t, m, 0, typeTank, 1, 0, 0)
			put(t, m, 0, typeTank, 1, 0, 3)
			return hex.Cell{Row: 0, Col: 0}, hex.Cell{Row: 0, Col: 3}
		}},
		{"opponent unit", func(t *testing.T, m *Match) (hex.Cell, hex.Cell) {
			put(t, m, 0, typeTank, 1, 0, 0)
			put(t, m, 1, typeTank, 1, 0, 1)
			return hex.Cell{Row: 0, Col: 0}, hex.Cell{Row: 0, Col: 1}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestMatch(t)
			a, b := tc.setup(t, m)
			before := m.Player(0).UnitCount()
			err := m.Apply(Action{Kind: Merge, A: a, B: b})
			if !errors.Is(err, ErrIllegalAction) {
				t.Fatalf("err = %v, want ErrIllegalAction", err)
			}
			if m.Player(0).UnitCount() != before {
				t.Fatal("rejected merge mutated the board")
			}
		})
	}
}

func TestEndIsOnlyActionWhenStuck(t *testing.T) {
	m := newTestMatch(t)
	m.Player(0).Elixir = 0

	legal := m.LegalActions()
	if len(legal) != 1 || legal[0].Kind != End {
		t.Fatalf("legal = %v, want only END", legal)
	}
	before := *m.Player(0)
	if err := m.Apply(Action{Kind: End}); err != nil {
		t.Fatalf("end: %v", err)
	}
	if m.Active != 1 {
		t.Fatalf("turn did not pass, active = %d", m.Active)
	}
	after := *m.Player(0)
	if before.Elixir != after.Elixir || before.BaseHealth != after.BaseHealth ||
		len(before.Board) != len(after.Board) {
		t.Fatal("END mutated player state")
	}
}

func TestIllegalActionsLeaveStateUntouched(t *testing.T) {
	m := newTestMatch(t)
	before := m.Observe()
	bad := []Action{
		{Kind: BuyPlace, Slot: 99, Col: 0},
		{Kind: BuyPlace, Slot: 0, Col: 99},
		{Kind: PlaceFromBench, Idx: 0, Col: 0},
		{Kind: Sell, A: hex.Cell{Row: 0, Col: 0}},
		{Kind: Merge, A: hex.Cell{Row: 0, Col: 0}, B: hex.Cell{Row: 0, Col: 1}},
		{Kind: "NONSENSE"},
	}
	for _, a := range bad {
		if err := m.Apply(a); !errors.Is(err, ErrIllegalAction) {
			t.Fatalf("action %v: err = %v, want ErrIllegalAction", a, err)
		}
	}
	if !reflect.DeepEqual(before, m.Observe()) {
		t.Fatal("rejected actions mutated observable state")
	}
}

func TestBaseDamageEqualsSurvivorCount(t *testing.T) {
	m := newTestMatch(t)
	put(t, m, 0, typeTank, 1, 0, 0)
	put(t, m, 0, typeTank, 1, 0, 2)
	put(t, m, 0, typeTank, 1, 0, 4)
	victim := put(t, m, 1, typeTank, 1, 5, 0)
	victim.HP = 1

	if err := m.Apply(Action{Kind: End}); err != nil {
		t.Fatalf("p0 end: %v", err)
	}
	if m.Active != 1 {
		t.Fatalf("active = %d after p0 pass", m.Active)
	}
	if err := m.Apply(Action{Kind: End}); err != nil {
		t.Fatalf("p1 end: %v", err)
	}

	if m.LastBattle == nil {
		t.Fatal("battle did not run")
	}
	if m.LastBattle.Winner != 0 || m.LastBattle.Alive != [2]int{3, 0} {
		t.Fatalf("outcome = %+v", m.LastBattle)
	}
	if m.Player(1).BaseHealth != 7 {
		t.Fatalf("p1 base = %d, want 10-3", m.Player(1).BaseHealth)
	}
	if m.Player(0).BaseHealth != 10 {
		t.Fatalf("p0 base = %d", m.Player(0).BaseHealth)
	}
	if m.Round != 2 || m.Active != 1 || m.Phase != PhaseDeploy {
		t.Fatalf("round reset: round=%d active=%d phase=%s", m.Round, m.Active, m.Phase)
	}
	if m.Player(0).Elixir != 10 || m.Player(1).Elixir != 10 {
		t.Fatal("elixir not reset for the new round")
	}
}

func TestDeadBlockerPersistsUntilSold(t *testing.T) {
	m := newTestMatch(t)
	put(t, m, 0, typeTank, 1, 0, 0)
	victim := put(t, m, 1, typeTank, 1, 5, 5)
	victim.HP = 1

	if err := m.Apply(Action{Kind: End}); err != nil {
		t.Fatal(err)
	}
	if err := m.Apply(Action{Kind: End}); err != nil {
		t.Fatal(err)
	}

	// The corpse survives the battle as a board blocker owned by p1.
	var corpse hex.Cell
	found := false
	for cell, u := range m.Player(1).Board {
		if !u.Alive() {
			corpse, found = cell, true
		}
	}
	if !found {
		t.Fatal("dead unit was removed from the board")
	}

	// New round: p1 is active and may sell the corpse to free the cell.
	if m.Active != 1 {
		t.Fatalf("active = %d", m.Active)
	}
	elixir := m.Player(1).Elixir
	if err := m.Apply(Action{Kind: Sell, A: corpse}); err != nil {
		t.Fatalf("selling corpse: %v", err)
	}
	if _, occupied := m.Player(1).Board[corpse]; occupied {
		t.Fatal("sold corpse still on board")
	}
	if m.Player(1).Elixir != elixir+m.Rules().SellRefund {
		t.Fatal("sell refund missing")
	}
}

func TestDrawAppliesNoDamage(t *testing.T) {
	m := newTestMatch(t)
	if err := m.Apply(Action{Kind: End}); err != nil {
		t.Fatal(err)
	}
	if err := m.Apply(Action{Kind: End}); err != nil {
		t.Fatal(err)
	}
	if m.LastBattle.Winner != -1 {
		t.Fatalf("empty battle winner = %d", m.LastBattle.Winner)
	}
	if m.Player(0).BaseHealth != 10 || m.Player(1).BaseHealth != 10 {
		t.Fatal("draw applied base damage")
	}
	if m.Round != 2 {
		t.Fatalf("round = %d", m.Round)
	}
}

func TestRoundCapGrowthAndCeiling(t *testing.T) {
	rc := config.DefaultRules()
	prev := 0
	for round := 1; round <= 30; round++ {
		cap := rc.UnitCap(round)
		if cap < prev {
			t.Fatalf("cap shrank at round %d", round)
		}
		if cap > rc.UnitCapCeiling {
			t.Fatalf("cap %d exceeds ceiling at round %d", cap, round)
		}
		prev = cap
	}
	if rc.UnitCap(1) != 3 || rc.UnitCap(30) != rc.UnitCapCeiling {
		t.Fatalf("cap endpoints: %d, %d", rc.UnitCap(1), rc.UnitCap(30))
	}
}

func TestMatchEndsAtRoundCap(t *testing.T) {
	rc := config.DefaultRules()
	rc.MaxRounds = 2
	m := NewMatch(rc, stubRes{}, 3)
	for i := 0; i < 4 && !m.Done(); i++ {
		if err := m.Apply(Action{Kind: End}); err != nil {
			t.Fatal(err)
		}
	}
	if !m.Done() {
		t.Fatal("match did not end at the round cap")
	}
	if err := m.Apply(Action{Kind: End}); !errors.Is(err, ErrMatchDone) {
		t.Fatalf("acting after DONE: err = %v", err)
	}
	if m.LegalActions() != nil {
		t.Fatal("legal actions offered after DONE")
	}
}

func TestPlaceFromBench(t *testing.T) {
	m := newTestMatch(t)
	p := m.Player(0)
	if err := m.AddToBench(0, BenchUnit{TypeID: typeArcher, Star: 2}); err != nil {
		t.Fatalf("add to bench: %v", err)
	}

	if err := m.Apply(Action{Kind: PlaceFromBench, Idx: 0, Col: 3}); err != nil {
		t.Fatalf("place from bench: %v", err)
	}
	u := p.Board[hex.Cell{Row: 0, Col: 3}]
	if u == nil || u.TypeID != typeArcher || u.Star != 2 {
		t.Fatalf("bench placement produced %+v", u)
	}
	if len(p.Bench) != 0 {
		t.Fatal("bench entry not consumed")
	}
}

func TestBenchIsBounded(t *testing.T) {
	m := newTestMatch(t)
	size := m.Rules().BenchSize
	for i := 0; i < size; i++ {
		if err := m.AddToBench(0, BenchUnit{TypeID: typeTank, Star: 1}); err != nil {
			t.Fatalf("bench admit %d: %v", i, err)
		}
	}
	if err := m.AddToBench(0, BenchUnit{TypeID: typeTank, Star: 1}); !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("overfull bench: err = %v, want ErrIllegalAction", err)
	}
	if got := len(m.Player(0).Bench); got != size {
		t.Fatalf("bench length = %d, want %d", got, size)
	}
}
