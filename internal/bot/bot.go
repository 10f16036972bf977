// Package bot holds simple deploy policies used to drive self-play. A
// policy sees only the observation and the legal-action list and returns
// one chosen action; it never mutates match state.
package bot

import (
	"math/rand"

	"mergearena/internal/catalog"
	"mergearena/internal/game"
)

type Policy interface {
	Act(obs game.Observation, legal []game.Action) game.Action
}

// Random picks a uniformly random legal action.
type Random struct {
	Rng *rand.Rand
}

func (b *Random) Act(_ game.Observation, legal []game.Action) game.Action {
	return legal[b.Rng.Intn(len(legal))]
}

// Greedy plays a fixed priority list: merge when possible, buy a ranged
// unit, buy anything, place from bench, clear dead blockers, otherwise end.
type Greedy struct {
	Res catalog.Resolver
}

func (b *Greedy) Act(obs game.Observation, legal []game.Action) game.Action {
	var firstBuy, firstBench, firstSell *game.Action
	for i := range legal {
		a := &legal[i]
		switch a.Kind {
		case game.Merge:
			return *a
		case game.BuyPlace:
			if firstBuy == nil {
				firstBuy = a
			}
			typeID := obs.Shops[obs.Active][a.Slot]
			if b.Res != nil && b.Res.Resolve(typeID, 1).ProjectileSpeed > 0 {
				return *a
			}
		case game.PlaceFromBench:
			if firstBench == nil {
				firstBench = a
			}
		case game.Sell:
			// Only reclaim corpse cells; live units stay on the board.
			cv := obs.Board[a.A.Row][a.A.Col]
			if firstSell == nil && cv.Owner == obs.Active && !cv.Alive {
				firstSell = a
			}
		}
	}
	if firstBuy != nil {
		return *firstBuy
	}
	if firstBench != nil {
		return *firstBench
	}
	if firstSell != nil {
		return *firstSell
	}
	return game.Action{Kind: game.End}
}
