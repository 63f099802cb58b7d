package forest

import (
	"math"
	"math/rand"
)

// Fire spread configuration bounds. Out-of-range values are clamped, never
// rejected.
const (
	MIN_SPREAD_RADIUS = 1
	MAX_SPREAD_RADIUS = 5
	MIN_SPREAD_DELAY  = 1

	// Initial ignition points are drawn at random from tree locations; draws
	// stop after this many attempts even if fewer fires than requested were
	// seeded, which is a valid initial state.
	maxSeedAttempts = 100
)

// FireDynamics owns ignition seeding and radius-based spread over a grid.
// Spread is timer-gated: the fire front advances only once every SpreadDelay
// episode ticks, not every step.
type FireDynamics struct {
	grid         *Grid
	SpreadRadius int
	SpreadDelay  int
	timer        int
}

// NewFireDynamics binds spread behavior to a grid, clamping the radius to
// [1,5] and the delay to at least 1.
func NewFireDynamics(grid *Grid, spreadRadius, spreadDelay int) *FireDynamics {
	if spreadRadius < MIN_SPREAD_RADIUS {
		spreadRadius = MIN_SPREAD_RADIUS
	}
	if spreadRadius > MAX_SPREAD_RADIUS {
		spreadRadius = MAX_SPREAD_RADIUS
	}
	if spreadDelay < MIN_SPREAD_DELAY {
		spreadDelay = MIN_SPREAD_DELAY
	}
	return &FireDynamics{
		grid:         grid,
		SpreadRadius: spreadRadius,
		SpreadDelay:  spreadDelay,
	}
}

// SeedInitialFires ignites up to count trees, keeping the pairwise distance
// between ignition points strictly greater than the spread radius so the
// initial fronts start separated. Draws are random over tree locations and
// capped at 100 attempts; exhausting attempts leaves fewer fires seeded.
func (fd *FireDynamics) SeedInitialFires(count int, rng *rand.Rand) {
	trees := []Point{}
	for y := 0; y < fd.grid.Height; y++ {
		for x := 0; x < fd.grid.Width; x++ {
			if fd.grid.CellAt(x, y) == TREE {
				trees = append(trees, Point{x, y})
			}
		}
	}
	if count > len(trees) {
		count = len(trees)
	}

	selected := []Point{}
	for attempts := 0; len(selected) < count && attempts < maxSeedAttempts; attempts++ {
		candidate := trees[rng.Intn(len(trees))]
		spaced := true
		for _, s := range selected {
			if euclidean(candidate, s) <= float64(fd.SpreadRadius) {
				spaced = false
				break
			}
		}
		if spaced {
			selected = append(selected, candidate)
			fd.grid.Ignite(candidate.X, candidate.Y)
		}
	}
}

// SpreadCandidates returns every tree within Euclidean distance SpreadRadius
// of (x,y): the bounding square is scanned and filtered by exact circular
// distance.
func (fd *FireDynamics) SpreadCandidates(x, y int) (trees []Point) {
	for dy := -fd.SpreadRadius; dy <= fd.SpreadRadius; dy++ {
		for dx := -fd.SpreadRadius; dx <= fd.SpreadRadius; dx++ {
			nx, ny := x+dx, y+dy
			distance := math.Sqrt(float64(dx*dx + dy*dy))
			if fd.grid.InBounds(nx, ny) &&
				distance <= float64(fd.SpreadRadius) &&
				fd.grid.CellAt(nx, ny) == TREE {
				trees = append(trees, Point{nx, ny})
			}
		}
	}
	return
}

// Advance counts one episode tick toward the next spread event. When the
// timer reaches the delay it resets to zero and the fire front advances once:
// the union of spread candidates over every burning cell is ignited. Returns
// the newly ignited coordinates, nil on non-spread ticks.
func (fd *FireDynamics) Advance() []Point {
	fd.timer++
	if fd.timer < fd.SpreadDelay {
		return nil
	}
	fd.timer = 0

	reached := map[Point]bool{}
	for _, f := range fd.grid.FireCells() {
		for _, t := range fd.SpreadCandidates(f.X, f.Y) {
			reached[t] = true
		}
	}

	ignited := make([]Point, 0, len(reached))
	for p := range reached {
		fd.grid.Ignite(p.X, p.Y)
		ignited = append(ignited, p)
	}
	return ignited
}

func euclidean(a, b Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
