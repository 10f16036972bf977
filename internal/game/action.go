package game

import (
	"fmt"

	"mergearena/internal/hex"
)

// Kind tags a deploy-phase action.
type Kind string

const (
	BuyPlace       Kind = "BUY_PLACE"
	PlaceFromBench Kind = "PLACE_FROM_BENCH"
	Merge          Kind = "MERGE"
	Sell           Kind = "SELL"
	End            Kind = "END"
)

// Action is the tagged value bots produce and viewers consume. Only the
// fields of the given kind are meaningful:
//
//	BUY_PLACE        Slot, Col
//	PLACE_FROM_BENCH Idx, Col
//	MERGE            A, B
//	SELL             A
//	END              -
type Action struct {
	Kind Kind     `json:"kind"`
	Slot int      `json:"slot,omitempty"`
	Idx  int      `json:"idx,omitempty"`
	Col  int      `json:"col,omitempty"`
	A    hex.Cell `json:"a,omitempty"`
	B    hex.Cell `json:"b,omitempty"`
}

func (a Action) String() string {
	switch a.Kind {
	case BuyPlace:
		return fmt.Sprintf("BUY_PLACE(slot=%d col=%d)", a.Slot, a.Col)
	case PlaceFromBench:
		return fmt.Sprintf("PLACE_FROM_BENCH(idx=%d col=%d)", a.Idx, a.Col)
	case Merge:
		return fmt.Sprintf("MERGE(%d,%d -> %d,%d)", a.A.Row, a.A.Col, a.B.Row, a.B.Col)
	case Sell:
		return fmt.Sprintf("SELL(%d,%d)", a.A.Row, a.A.Col)
	default:
		return string(a.Kind)
	}
}
