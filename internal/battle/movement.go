package battle

import (
	"sort"

	"mergearena/internal/hex"
)

// Movement planning runs once per tick for every settled unit, against a
// single snapshot of positions and reservations. All contested cases are
// decided by deterministic keys; iteration order never leaks into the
// outcome.

type candidate struct {
	cell    hex.Cell
	dist    int
	lateral bool
}

type movePlan struct {
	idx  int
	from hex.Cell
	cand []candidate // ranked best-first
	next int         // cursor into cand
}

func (p *movePlan) current() (candidate, bool) {
	if p.next < len(p.cand) {
		return p.cand[p.next], true
	}
	return candidate{}, false
}

// planKey orders contesting claimants: lower key wins a cell.
func planKey(u *Unit, p *movePlan) [4]int {
	return [4]int{u.Owner, p.from.Row, p.from.Col, p.idx}
}

func keyLess(a, b [4]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func (e *Engine) planAndCommitMoves(dt float64) {
	// Snapshot occupancy: every unit's resting cell (dead units included)
	// plus destinations reserved by in-flight movers.
	occupied := map[hex.Cell]bool{}
	for _, u := range e.units {
		occupied[u.Cell()] = true
		if u.Moving() {
			occupied[u.moveTo] = true
		}
	}

	// Collect planners. Their own origins are tentatively vacated so that
	// files of units can advance in the same tick; any plan that falls
	// through re-blocks its origin below.
	var plans []*movePlan
	planning := map[hex.Cell]bool{}
	for i, u := range e.units {
		if !u.Alive() || !u.Centered() || e.now < u.stallUntil {
			continue
		}
		ti := e.nearestEnemy(i)
		if ti < 0 {
			continue
		}
		tcell := e.units[ti].Cell()
		from := u.Cell()
		if hex.Distance(from, tcell) <= u.Range {
			continue
		}
		plans = append(plans, &movePlan{idx: i, from: from})
		planning[from] = true
	}
	if len(plans) == 0 {
		return
	}

	for _, p := range plans {
		u := e.units[p.idx]
		tcell := e.units[e.nearestEnemy(p.idx)].Cell()
		curDist := hex.Distance(p.from, tcell)
		for _, n := range hex.Neighbors(p.from) {
			if !e.inBounds(n) {
				continue
			}
			if occupied[n] && !planning[n] {
				continue
			}
			d := hex.Distance(n, tcell)
			if d > curDist {
				continue
			}
			p.cand = append(p.cand, candidate{cell: n, dist: d, lateral: d == curDist})
		}
		e.rankCandidates(u.Owner, p.cand)
	}

	// Head-on swap detection: if two units' top choices are each other's
	// cells they would pass through one another forever; stall both.
	stalled := map[int]bool{}
	topOf := map[hex.Cell]*movePlan{}
	for _, p := range plans {
		if c, ok := p.current(); ok {
			// Only the best-ranked claimant per top cell matters for the
			// mutual check; ties are resolved by the contention loop.
			if q, ok := topOf[c.cell]; !ok || keyLess(planKey(e.units[p.idx], p), planKey(e.units[q.idx], q)) {
				topOf[c.cell] = p
			}
		}
	}
	for _, p := range plans {
		c, ok := p.current()
		if !ok || stalled[p.idx] {
			continue
		}
		if q, hit := topOf[p.from]; hit && q != p && !stalled[q.idx] {
			if qc, ok := q.current(); ok && qc.cell == p.from && c.cell == q.from {
				e.stallUnit(p.idx)
				e.stallUnit(q.idx)
				stalled[p.idx] = true
				stalled[q.idx] = true
			}
		}
	}

	active := plans[:0]
	dropped := map[hex.Cell]bool{}
	for _, p := range plans {
		if stalled[p.idx] {
			dropped[p.from] = true
			continue
		}
		active = append(active, p)
	}

	// Iterative contention allocator: group claims by destination, award
	// one winner per cell, losers retry their next-ranked candidate. A plan
	// that exhausts its candidates stays put and its origin re-blocks,
	// which may invalidate other claims, so loop to a fixed point. The
	// iteration cap bounds pathological cases.
	blockedNow := func(c hex.Cell) bool {
		return dropped[c] || (occupied[c] && !planning[c])
	}
	for iter := 0; iter <= len(e.units); iter++ {
		changed := false
		kept := active[:0]
		for _, p := range active {
			for {
				c, ok := p.current()
				if !ok || !blockedNow(c.cell) {
					break
				}
				p.next++
				changed = true
			}
			if _, ok := p.current(); !ok {
				dropped[p.from] = true
				e.stallUnit(p.idx)
				changed = true
				continue
			}
			kept = append(kept, p)
		}
		active = kept

		claims := map[hex.Cell][]*movePlan{}
		for _, p := range active {
			c, _ := p.current()
			claims[c.cell] = append(claims[c.cell], p)
		}
		for _, group := range claims {
			if len(group) < 2 {
				continue
			}
			win := group[0]
			for _, p := range group[1:] {
				if keyLess(planKey(e.units[p.idx], p), planKey(e.units[win.idx], win)) {
					win = p
				}
			}
			for _, p := range group {
				if p != win {
					p.next++
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	// Commit winners in key order. A plan that cannot take its cell stays
	// put and its origin re-blocks, which can invalidate a claim already
	// granted earlier in the same scan, so the scan restarts until stable.
	// This pass enforces the unique occupancy invariant even if the loop
	// above hit its iteration cap. Each restart drops one plan, so the
	// number of scans is bounded by the plan count.
	sort.Slice(active, func(i, j int) bool {
		return keyLess(planKey(e.units[active[i].idx], active[i]), planKey(e.units[active[j].idx], active[j]))
	})
	committed := map[*movePlan]hex.Cell{}
	for {
		stable := true
		taken := map[hex.Cell]bool{}
		for _, p := range active {
			if dropped[p.from] {
				continue
			}
			if c, ok := p.current(); ok && !taken[c.cell] && !blockedNow(c.cell) {
				taken[c.cell] = true
				committed[p] = c.cell
				continue
			}
			dropped[p.from] = true
			delete(committed, p)
			e.stallUnit(p.idx)
			stable = false
			break
		}
		if stable {
			break
		}
	}
	for _, p := range active {
		to, ok := committed[p]
		if !ok {
			continue
		}
		u := e.units[p.idx]
		u.beginMove(to)
		u.advanceMove(dt)
		e.emit(EvMove, map[string]any{
			"idx": p.idx, "from": []int{p.from.Row, p.from.Col}, "to": []int{to.Row, to.Col},
		})
	}
}

// rankCandidates orders candidates best-first: reducing before lateral,
// then shortest resulting distance, then a per-owner directional bias that
// breaks mirror symmetry (side 0 drifts toward growing row/col, side 1 the
// opposite way), then column, then row.
func (e *Engine) rankCandidates(owner int, cand []candidate) {
	bias := func(c hex.Cell) int {
		s := c.Row + c.Col
		if owner == 0 {
			return -s
		}
		return s
	}
	sort.Slice(cand, func(i, j int) bool {
		a, b := cand[i], cand[j]
		if a.lateral != b.lateral {
			return !a.lateral
		}
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		if ba, bb := bias(a.cell), bias(b.cell); ba != bb {
			return ba < bb
		}
		if a.cell.Col != b.cell.Col {
			return a.cell.Col < b.cell.Col
		}
		return a.cell.Row < b.cell.Row
	})
}

func (e *Engine) stallUnit(idx int) {
	u := e.units[idx]
	u.stallUntil = e.now + BlockedCooldown
	e.emit(EvStall, map[string]any{"idx": idx})
}
