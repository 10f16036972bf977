package game

import (
	"mergearena/internal/battle"
	"mergearena/internal/hex"
)

// EmptySlot marks a shop slot with nothing in it. Slots are only empty
// momentarily: a purchase refills the bought slot at once and the round
// reset refills any remaining holes.
const EmptySlot = -1

// BenchUnit is a unit waiting off-board for placement.
type BenchUnit struct {
	TypeID int `json:"type_id"`
	Star   int `json:"star"`
}

// PlayerState holds one player's economy and board. Board occupancy is
// tri-state per cell: a living unit, a dead unit still blocking the cell, or
// empty. Dead units leave the board only through an explicit SELL.
type PlayerState struct {
	Elixir     int
	Shop       []int
	Bench      []BenchUnit
	Board      map[hex.Cell]*battle.Unit
	BaseHealth int
}

func newPlayer(elixir, baseHealth, shopSlots int) *PlayerState {
	shop := make([]int, shopSlots)
	for i := range shop {
		shop[i] = EmptySlot
	}
	return &PlayerState{
		Elixir:     elixir,
		Shop:       shop,
		Board:      map[hex.Cell]*battle.Unit{},
		BaseHealth: baseHealth,
	}
}

// UnitCount is the number of board units, dead blockers included; the
// deploy cap counts every occupied cell.
func (p *PlayerState) UnitCount() int { return len(p.Board) }
