package hex

import "math"

// Cell is a board cell in odd-row offset coordinates.
type Cell struct {
	Row, Col int
}

// CenterEps is the tolerance under which a floating position counts as
// sitting on a cell center.
const CenterEps = 1e-4

// Centered reports whether (r, c) is within CenterEps of integer cell
// coordinates on both axes.
func Centered(r, c float64) bool {
	return math.Abs(r-math.Round(r)) < CenterEps && math.Abs(c-math.Round(c)) < CenterEps
}

// CellOf returns the resting cell of a floating position.
func CellOf(r, c float64) Cell {
	return Cell{Row: int(math.Round(r)), Col: int(math.Round(c))}
}

// cube converts odd-row offset coordinates to cube coordinates.
func cube(c Cell) (x, y, z int) {
	x = c.Col - (c.Row-(c.Row&1))/2
	z = c.Row
	y = -x - z
	return
}

// Distance is the hex distance between two cells: the minimum number of
// neighbor steps from a to b.
func Distance(a, b Cell) int {
	ax, ay, az := cube(a)
	bx, by, bz := cube(b)
	return (abs(ax-bx) + abs(ay-by) + abs(az-bz)) / 2
}

var evenRowDirs = [6]Cell{
	{0, 1}, {0, -1}, {-1, 0}, {-1, -1}, {1, 0}, {1, -1},
}

var oddRowDirs = [6]Cell{
	{0, 1}, {0, -1}, {-1, 1}, {-1, 0}, {1, 1}, {1, 0},
}

// Neighbors returns the six neighbor cells of c. Callers filter for board
// bounds and occupancy.
func Neighbors(c Cell) [6]Cell {
	dirs := &evenRowDirs
	if c.Row&1 == 1 {
		dirs = &oddRowDirs
	}
	var out [6]Cell
	for i, d := range dirs {
		out[i] = Cell{Row: c.Row + d.Row, Col: c.Col + d.Col}
	}
	return out
}

// Adjacent reports whether a and b are distinct neighboring cells.
func Adjacent(a, b Cell) bool {
	return a != b && Distance(a, b) == 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
