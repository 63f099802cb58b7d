package forest

import (
	"math/rand"
	"strings"
)

// Cell symbols for the forest grid. AGENT is a transient occupancy marker: it
// is only ever drawn over empty ground and the cell reverts to EMPTY when the
// agent leaves, so the grid does not remember what was underneath.
const (
	EMPTY = ' '
	TREE  = 'T'
	FIRE  = 'F'
	AGENT = 'A'
)

// Despite the name, the enforced threshold is 2% of total cell count, not
// 10%: an episode ends when the forest has effectively burned down, i.e.
// almost no living trees remain. The fire itself need not cover the grid.
const engulfedTreeRatio = 0.02

// Agent placement searches outward at most this many rings for an empty cell.
const maxPlacementRadius = 9

// Point is a grid coordinate.
type Point struct {
	X, Y int
}

// Grid is the forest terrain: a fixed-size cell matrix plus an index of the
// cells currently on fire. The fire index and cells marked FIRE are kept in
// 1:1 correspondence by Ignite/Extinguish; nothing else writes FIRE.
type Grid struct {
	Width, Height int
	cells         [][]rune
	fireCells     map[Point]bool
}

// NewGrid returns an all-empty grid of the given dimensions.
func NewGrid(width, height int) *Grid {
	cells := make([][]rune, height)
	for y := range cells {
		cells[y] = make([]rune, width)
		for x := range cells[y] {
			cells[y][x] = EMPTY
		}
	}
	return &Grid{
		Width:     width,
		Height:    height,
		cells:     cells,
		fireCells: map[Point]bool{},
	}
}

// Generate stochastically plants trees until floor(density*area) are placed
// or candidate positions exhaust. No two trees may share a 3x3 neighborhood;
// the spacing holds at placement time only (burning can later produce
// adjacent burnt ground, which is fine).
func (g *Grid) Generate(treeDensity float64, rng *rand.Rand) {
	positions := make([]Point, 0, g.Width*g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			positions = append(positions, Point{x, y})
		}
	}
	rng.Shuffle(len(positions), func(i, j int) {
		positions[i], positions[j] = positions[j], positions[i]
	})

	target := int(float64(g.Width*g.Height) * treeDensity)
	placed := 0
	for _, p := range positions {
		if placed >= target {
			break
		}
		if g.hasTreeNeighbor(p.X, p.Y) {
			continue
		}
		g.cells[p.Y][p.X] = TREE
		placed++
	}
}

// hasTreeNeighbor scans the 3x3 neighborhood around (x,y), including (x,y)
// itself, for an existing tree.
func (g *Grid) hasTreeNeighbor(x, y int) bool {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			nx, ny := x+dx, y+dy
			if g.InBounds(nx, ny) && g.cells[ny][nx] == TREE {
				return true
			}
		}
	}
	return false
}

// PlantTree places a single tree on empty ground, bypassing the density and
// spacing rules of Generate. Intended for authoring fixed scenarios.
func (g *Grid) PlantTree(x, y int) {
	if g.InBounds(x, y) && g.cells[y][x] == EMPTY {
		g.cells[y][x] = TREE
	}
}

// InBounds reports whether (x,y) lies on the grid. Every grid access must be
// guarded by this check; the accessors below do not re-check.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// CellAt returns the symbol currently shown at (x,y).
func (g *Grid) CellAt(x, y int) rune {
	return g.cells[y][x]
}

// IsBurning reports whether (x,y) is in the fire index.
func (g *Grid) IsBurning(x, y int) bool {
	return g.fireCells[Point{x, y}]
}

// PlaceAgent occupies the requested cell if empty, otherwise searches an
// expanding ring (radius 1..9, full square scan per radius) for the first
// empty cell and reports the relocated position. When no empty cell exists
// within the search radius the placement fails silently (ok=false) and the
// grid is unchanged; callers must tolerate an unplaced agent.
func (g *Grid) PlaceAgent(x, y int) (px, py int, ok bool) {
	if g.InBounds(x, y) && g.cells[y][x] == EMPTY {
		g.cells[y][x] = AGENT
		return x, y, true
	}
	for radius := 1; radius <= maxPlacementRadius; radius++ {
		for dx := -radius; dx <= radius; dx++ {
			for dy := -radius; dy <= radius; dy++ {
				nx, ny := x+dx, y+dy
				if g.InBounds(nx, ny) && g.cells[ny][nx] == EMPTY {
					g.cells[ny][nx] = AGENT
					return nx, ny, true
				}
			}
		}
	}
	return x, y, false
}

// ClearAgentMarker lifts the occupancy marker at (x,y). Only a cell currently
// showing AGENT is touched; the cell reverts to EMPTY unconditionally, since
// occupancy is only ever drawn over empty ground.
func (g *Grid) ClearAgentMarker(x, y int) {
	if g.InBounds(x, y) && g.cells[y][x] == AGENT {
		g.cells[y][x] = EMPTY
	}
}

// MarkAgent draws the occupancy marker at (x,y) if the cell is empty. This is
// best-effort display state, not collision prevention: an agent never
// overwrites another agent's marker or a tree/fire cell, though its logical
// position may coincide with any of them.
func (g *Grid) MarkAgent(x, y int) {
	if g.InBounds(x, y) && g.cells[y][x] == EMPTY {
		g.cells[y][x] = AGENT
	}
}

// Ignite converts a tree to fire and indexes it. Non-tree cells are left
// untouched, so re-igniting a burning or burnt cell is a no-op.
func (g *Grid) Ignite(x, y int) {
	if g.cells[y][x] != TREE {
		return
	}
	g.cells[y][x] = FIRE
	g.fireCells[Point{x, y}] = true
}

// Extinguish puts out the fire at (x,y), returning true iff the cell was
// actually burning. The extinguished cell becomes empty ground, not a tree.
func (g *Grid) Extinguish(x, y int) bool {
	p := Point{x, y}
	if !g.fireCells[p] {
		return false
	}
	g.cells[y][x] = EMPTY
	delete(g.fireCells, p)
	return true
}

// FireCells returns a copy of the fire index.
func (g *Grid) FireCells() []Point {
	cells := make([]Point, 0, len(g.fireCells))
	for p := range g.fireCells {
		cells = append(cells, p)
	}
	return cells
}

// NumFires returns the number of cells currently burning.
func (g *Grid) NumFires() int {
	return len(g.fireCells)
}

// TreeCount returns the number of living trees remaining.
func (g *Grid) TreeCount() (count int) {
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.cells[y][x] == TREE {
				count++
			}
		}
	}
	return
}

// FireEngulfed reports whether the episode is over: true iff fewer than 2% of
// all cells still hold a living tree. Counts row by row with an early exit
// once the threshold is reached.
func (g *Grid) FireEngulfed() bool {
	threshold := float64(g.Width*g.Height) * engulfedTreeRatio
	trees := 0
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.cells[y][x] == TREE {
				trees++
				if float64(trees) >= threshold {
					return false
				}
			}
		}
	}
	return true
}

// Rows renders the grid as strings, one per row, for snapshots and display.
func (g *Grid) Rows() []string {
	rows := make([]string, g.Height)
	for y := 0; y < g.Height; y++ {
		var sb strings.Builder
		sb.Grow(g.Width)
		for x := 0; x < g.Width; x++ {
			sb.WriteRune(g.cells[y][x])
		}
		rows[y] = sb.String()
	}
	return rows
}
