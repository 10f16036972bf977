// Package game is the round orchestrator: the deploy/battle/round state
// machine and economy rules that produce the rosters the battle engine
// consumes.
package game

import (
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"mergearena/internal/battle"
	"mergearena/internal/catalog"
	"mergearena/internal/config"
	"mergearena/internal/hex"
	"mergearena/internal/util"
)

type Phase string

const (
	PhaseDeploy Phase = "DEPLOY"
	PhaseBattle Phase = "BATTLE"
	PhaseDone   Phase = "DONE"
)

// BattleOutcome summarizes one resolved battle. Winner is -1 on a draw or
// timeout, in which case no base damage was applied.
type BattleOutcome struct {
	Winner   int     `json:"winner"`
	Alive    [2]int  `json:"alive"`
	Duration float64 `json:"duration"`
}

// Match is the top-level state machine for one game. All methods are plain
// synchronous calls; nothing here owns a goroutine or a clock.
type Match struct {
	rules *config.RulesConfig
	res   catalog.Resolver
	rng   *rand.Rand
	log   *zap.Logger

	Round   int
	Active  int
	Phase   Phase
	players [2]*PlayerState
	passed  [2]bool // explicit END this deploy phase
	canAct  [2]bool // any non-END action currently legal

	LastBattle *BattleOutcome

	// EmitBattle, when set, receives the engine event stream of every
	// battle the match runs.
	EmitBattle func(battle.Event)
}

type Option func(*Match)

// WithLogger attaches a structured logger for round and battle milestones.
func WithLogger(l *zap.Logger) Option {
	return func(m *Match) { m.log = l }
}

// WithBattleEvents forwards engine events to fn during battles.
func WithBattleEvents(fn func(battle.Event)) Option {
	return func(m *Match) { m.EmitBattle = fn }
}

// NewMatch builds a match in DEPLOY phase, round 1, player 0 to act. The
// resolver supplies all unit stats; rules may be nil for defaults.
func NewMatch(rules *config.RulesConfig, res catalog.Resolver, seed int64, opts ...Option) *Match {
	if rules == nil {
		rules = config.DefaultRules()
	}
	m := &Match{
		rules: rules,
		res:   res,
		log:   zap.NewNop(),
	}
	for _, o := range opts {
		o(m)
	}
	m.Reset(seed)
	return m
}

// Reset reinitializes the match with a fresh seed.
func (m *Match) Reset(seed int64) {
	m.rng = util.New(seed)
	m.Round = 1
	m.Active = 0
	m.Phase = PhaseDeploy
	m.LastBattle = nil
	for i := range m.players {
		m.players[i] = newPlayer(m.rules.StartElixir, m.rules.BaseHealth, m.rules.ShopSlots)
		m.refillShop(m.players[i])
	}
	m.passed = [2]bool{}
	m.refreshFlags()
}

// Player exposes one side's state read-only.
func (m *Match) Player(i int) *PlayerState { return m.players[i] }

// Rules exposes the match constants.
func (m *Match) Rules() *config.RulesConfig { return m.rules }

// Done reports whether the match reached a terminal state.
func (m *Match) Done() bool { return m.Phase == PhaseDone }

// UnitCap is the per-board unit cap for the current round.
func (m *Match) UnitCap() int { return m.rules.UnitCap(m.Round) }

func (m *Match) backRow(owner int) int {
	if owner == 0 {
		return 0
	}
	return m.rules.BoardRows - 1
}

func (m *Match) cellOccupied(c hex.Cell) bool {
	_, a := m.players[0].Board[c]
	_, b := m.players[1].Board[c]
	return a || b
}

func (m *Match) inBounds(c hex.Cell) bool {
	return c.Row >= 0 && c.Row < m.rules.BoardRows && c.Col >= 0 && c.Col < m.rules.BoardCols
}

func (m *Match) cost(typeID int) int {
	return m.res.Resolve(typeID, 1).Cost
}

// sortedCells returns a player's occupied cells in row-major order so that
// enumeration is deterministic.
func sortedCells(p *PlayerState) []hex.Cell {
	cells := make([]hex.Cell, 0, len(p.Board))
	for c := range p.Board {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
	return cells
}

// LegalActions enumerates every action the active player may take right
// now. It is a pure function of the current state; callers must re-request
// it after every mutation.
func (m *Match) LegalActions() []Action {
	if m.Phase != PhaseDeploy {
		return nil
	}
	return m.legalFor(m.Active)
}

func (m *Match) legalFor(who int) []Action {
	p := m.players[who]
	row := m.backRow(who)
	underCap := p.UnitCount() < m.UnitCap()

	var actions []Action

	if underCap {
		for slot, typeID := range p.Shop {
			if typeID == EmptySlot || p.Elixir < m.cost(typeID) {
				continue
			}
			for col := 0; col < m.rules.BoardCols; col++ {
				if !m.cellOccupied(hex.Cell{Row: row, Col: col}) {
					actions = append(actions, Action{Kind: BuyPlace, Slot: slot, Col: col})
				}
			}
		}
		for idx := range p.Bench {
			for col := 0; col < m.rules.BoardCols; col++ {
				if !m.cellOccupied(hex.Cell{Row: row, Col: col}) {
					actions = append(actions, Action{Kind: PlaceFromBench, Idx: idx, Col: col})
				}
			}
		}
	}

	cells := sortedCells(p)
	for i := 0; i < len(cells); i++ {
		for j := i + 1; j < len(cells); j++ {
			if m.canMerge(p, cells[i], cells[j]) {
				actions = append(actions, Action{Kind: Merge, A: cells[i], B: cells[j]})
			}
		}
	}
	for _, c := range cells {
		actions = append(actions, Action{Kind: Sell, A: c})
	}

	actions = append(actions, Action{Kind: End})
	return actions
}

func (m *Match) canMerge(p *PlayerState, a, b hex.Cell) bool {
	ua, okA := p.Board[a]
	ub, okB := p.Board[b]
	return okA && okB &&
		ua.Alive() && ub.Alive() &&
		ua.TypeID == ub.TypeID &&
		ua.Star == ub.Star && ua.Star < 3 &&
		hex.Adjacent(a, b)
}

// Apply performs exactly one action for the active player. Illegal actions
// are rejected with ErrIllegalAction and leave the state untouched; acting
// after DONE returns ErrMatchDone. When both players have no actions left
// the deploy phase ends, the battle resolves, and the next round begins.
func (m *Match) Apply(a Action) error {
	if m.Phase == PhaseDone {
		return ErrMatchDone
	}
	if m.Phase != PhaseDeploy {
		return fmt.Errorf("%w: phase %s", ErrIllegalAction, m.Phase)
	}

	p := m.players[m.Active]
	switch a.Kind {
	case BuyPlace:
		if err := m.applyBuyPlace(p, a); err != nil {
			return err
		}
	case PlaceFromBench:
		if err := m.applyPlaceFromBench(p, a); err != nil {
			return err
		}
	case Merge:
		if err := m.applyMerge(p, a); err != nil {
			return err
		}
	case Sell:
		if err := m.applySell(p, a); err != nil {
			return err
		}
	case End:
		// An explicit pass is honored even if actions remain.
		m.passed[m.Active] = true
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrIllegalAction, a.Kind)
	}

	m.refreshFlags()

	if !m.hasActions(0) && !m.hasActions(1) {
		m.runBattle()
		if m.Phase != PhaseDone {
			m.endRoundReset()
		}
		return nil
	}

	if !m.hasActions(m.Active) && m.hasActions(1-m.Active) {
		m.Active = 1 - m.Active
	}
	return nil
}

func (m *Match) hasActions(who int) bool {
	return !m.passed[who] && m.canAct[who]
}

// refreshFlags recomputes whether each player still has a non-END action.
// Both sides are refreshed: an action by one player can consume the shared
// cell its opponent needed.
func (m *Match) refreshFlags() {
	for who := range m.players {
		legal := m.legalFor(who)
		m.canAct[who] = len(legal) > 1 // anything beyond the always-legal END
	}
}

func (m *Match) applyBuyPlace(p *PlayerState, a Action) error {
	if a.Slot < 0 || a.Slot >= len(p.Shop) || p.Shop[a.Slot] == EmptySlot {
		return fmt.Errorf("%w: shop slot %d is empty", ErrIllegalAction, a.Slot)
	}
	typeID := p.Shop[a.Slot]
	if p.Elixir < m.cost(typeID) {
		return fmt.Errorf("%w: need %d elixir, have %d", ErrIllegalAction, m.cost(typeID), p.Elixir)
	}
	if p.UnitCount() >= m.UnitCap() {
		return fmt.Errorf("%w: unit cap %d reached", ErrIllegalAction, m.UnitCap())
	}
	cell := hex.Cell{Row: m.backRow(m.Active), Col: a.Col}
	if !m.inBounds(cell) || m.cellOccupied(cell) {
		return fmt.Errorf("%w: cell %v not placeable", ErrIllegalAction, cell)
	}

	p.Elixir -= m.cost(typeID)
	u := battle.NewUnit(m.res, typeID, 1, m.Active, cell)
	p.Board[cell] = u
	p.Shop[a.Slot] = EmptySlot
	m.refillSlot(p, a.Slot)
	return nil
}

func (m *Match) applyPlaceFromBench(p *PlayerState, a Action) error {
	if a.Idx < 0 || a.Idx >= len(p.Bench) {
		return fmt.Errorf("%w: bench index %d", ErrIllegalAction, a.Idx)
	}
	if p.UnitCount() >= m.UnitCap() {
		return fmt.Errorf("%w: unit cap %d reached", ErrIllegalAction, m.UnitCap())
	}
	cell := hex.Cell{Row: m.backRow(m.Active), Col: a.Col}
	if !m.inBounds(cell) || m.cellOccupied(cell) {
		return fmt.Errorf("%w: cell %v not placeable", ErrIllegalAction, cell)
	}

	bu := p.Bench[a.Idx]
	p.Bench = append(p.Bench[:a.Idx], p.Bench[a.Idx+1:]...)
	p.Board[cell] = battle.NewUnit(m.res, bu.TypeID, bu.Star, m.Active, cell)
	return nil
}

// AddToBench admits a unit to a player's bench. No core action produces
// bench entries; this is the bounded entry point for external drivers and
// future buy-to-bench modes.
func (m *Match) AddToBench(who int, bu BenchUnit) error {
	if m.Phase == PhaseDone {
		return ErrMatchDone
	}
	p := m.players[who]
	if len(p.Bench) >= m.rules.BenchSize {
		return fmt.Errorf("%w: bench is full at %d", ErrIllegalAction, m.rules.BenchSize)
	}
	p.Bench = append(p.Bench, bu)
	m.refreshFlags()
	return nil
}

func (m *Match) applyMerge(p *PlayerState, a Action) error {
	if !m.canMerge(p, a.A, a.B) {
		return fmt.Errorf("%w: cannot merge %v and %v", ErrIllegalAction, a.A, a.B)
	}
	star := p.Board[a.A].Star + 1
	typeID := p.Board[a.A].TypeID
	delete(p.Board, a.B)
	p.Board[a.A] = battle.NewUnit(m.res, typeID, star, m.Active, a.A)
	return nil
}

func (m *Match) applySell(p *PlayerState, a Action) error {
	if _, ok := p.Board[a.A]; !ok {
		return fmt.Errorf("%w: no unit at %v", ErrIllegalAction, a.A)
	}
	delete(p.Board, a.A)
	p.Elixir += m.rules.SellRefund
	return nil
}

func (m *Match) refillShop(p *PlayerState) {
	for slot := range p.Shop {
		if p.Shop[slot] == EmptySlot {
			m.refillSlot(p, slot)
		}
	}
}

// refillSlot restocks one shop slot with a random catalog type. Other slots
// are never reshuffled.
func (m *Match) refillSlot(p *PlayerState, slot int) {
	ids := m.res.TypeIDs()
	if len(ids) == 0 {
		return
	}
	p.Shop[slot] = ids[m.rng.Intn(len(ids))]
}

// runBattle snapshots both boards into a fresh engine, runs it to a wipe or
// the time cap, applies base damage, and writes the final unit states (dead
// blockers included) back to the boards.
func (m *Match) runBattle() {
	m.Phase = PhaseBattle

	var roster []*battle.Unit
	for owner := 0; owner < 2; owner++ {
		p := m.players[owner]
		for _, c := range sortedCells(p) {
			src := p.Board[c]
			u := battle.NewUnit(m.res, src.TypeID, src.Star, owner, c)
			u.HP = src.HP
			roster = append(roster, u)
		}
	}

	eng := battle.New(m.rules.BoardRows, m.rules.BoardCols, roster)
	eng.Emit = m.EmitBattle
	eng.EmitSpawns()

	dt := m.rules.TickDT
	var p0, p1 int
	for t := 0.0; t < m.rules.BattleTimeCap; t += dt {
		p0, p1 = eng.AliveCounts()
		if p0 == 0 || p1 == 0 {
			break
		}
		eng.Step(dt)
	}
	p0, p1 = eng.AliveCounts()

	winner := -1
	if p0 > 0 && p1 == 0 {
		winner = 0
	} else if p1 > 0 && p0 == 0 {
		winner = 1
	}
	if winner >= 0 {
		loser := m.players[1-winner]
		dmg := p0
		if winner == 1 {
			dmg = p1
		}
		if dmg < 1 {
			dmg = 1
		}
		loser.BaseHealth -= dmg
		if loser.BaseHealth < 0 {
			loser.BaseHealth = 0
		}
	}

	for i := range m.players {
		m.players[i].Board = map[hex.Cell]*battle.Unit{}
	}
	for _, u := range eng.Units() {
		u.Settle()
		m.players[u.Owner].Board[u.Cell()] = u
	}

	m.LastBattle = &BattleOutcome{Winner: winner, Alive: [2]int{p0, p1}, Duration: eng.Now()}
	m.log.Info("battle resolved",
		zap.Int("round", m.Round),
		zap.Int("winner", winner),
		zap.Int("p0_alive", p0),
		zap.Int("p1_alive", p1),
		zap.Int("p0_base", m.players[0].BaseHealth),
		zap.Int("p1_base", m.players[1].BaseHealth),
	)

	if m.players[0].BaseHealth <= 0 || m.players[1].BaseHealth <= 0 {
		m.Phase = PhaseDone
		m.log.Info("match over", zap.Int("round", m.Round))
	}
}

// endRoundReset advances to the next round: income resets, the starting
// player alternates, empty shop slots restock, and the unit cap grows.
func (m *Match) endRoundReset() {
	m.Round++
	// The starting player alternates by round, not by who acted last.
	m.Active = (m.Round - 1) % 2
	m.passed = [2]bool{}
	for i := range m.players {
		m.players[i].Elixir = m.rules.StartElixir
		m.refillShop(m.players[i])
	}
	if m.Round > m.rules.MaxRounds {
		m.Phase = PhaseDone
		m.log.Info("round cap reached", zap.Int("round", m.Round))
		return
	}
	m.Phase = PhaseDeploy
	m.refreshFlags()
}
