package forest

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInBounds(t *testing.T) {
	Convey("Given a 10x10 grid", t, func() {
		g := NewGrid(10, 10)

		Convey("Every coordinate inside the declared dimensions is in bounds", func() {
			for y := 0; y < 10; y++ {
				for x := 0; x < 10; x++ {
					So(g.InBounds(x, y), ShouldBeTrue)
				}
			}
		})

		Convey("Coordinates outside the declared dimensions are not", func() {
			So(g.InBounds(-1, 0), ShouldBeFalse)
			So(g.InBounds(0, -1), ShouldBeFalse)
			So(g.InBounds(10, 0), ShouldBeFalse)
			So(g.InBounds(0, 10), ShouldBeFalse)
		})
	})
}

func TestGenerate(t *testing.T) {
	Convey("When trees are generated", t, func() {
		g := NewGrid(50, 50)
		g.Generate(0.3, rand.New(rand.NewSource(42)))

		Convey("No two trees share a 3x3 neighborhood", func() {
			for y := 0; y < g.Height; y++ {
				for x := 0; x < g.Width; x++ {
					if g.CellAt(x, y) != TREE {
						continue
					}
					for dx := -1; dx <= 1; dx++ {
						for dy := -1; dy <= 1; dy++ {
							if dx == 0 && dy == 0 {
								continue
							}
							nx, ny := x+dx, y+dy
							if g.InBounds(nx, ny) {
								So(g.CellAt(nx, ny), ShouldNotEqual, TREE)
							}
						}
					}
				}
			}
		})

		Convey("No more than the density target is placed", func() {
			So(g.TreeCount(), ShouldBeLessThanOrEqualTo, int(50*50*0.3))
		})

		Convey("Zero density places nothing", func() {
			empty := NewGrid(20, 20)
			empty.Generate(0, rand.New(rand.NewSource(42)))
			So(empty.TreeCount(), ShouldEqual, 0)
		})
	})
}

func TestExtinguish(t *testing.T) {
	Convey("Given a burning cell", t, func() {
		g := NewGrid(5, 5)
		g.cells[2][2] = TREE
		g.Ignite(2, 2)
		So(g.IsBurning(2, 2), ShouldBeTrue)

		Convey("Extinguish succeeds exactly once", func() {
			So(g.Extinguish(2, 2), ShouldBeTrue)
			So(g.CellAt(2, 2), ShouldEqual, EMPTY)
			So(g.NumFires(), ShouldEqual, 0)

			Convey("And the second call reports false with no state change", func() {
				So(g.Extinguish(2, 2), ShouldBeFalse)
				So(g.CellAt(2, 2), ShouldEqual, EMPTY)
				So(g.NumFires(), ShouldEqual, 0)
			})
		})

		Convey("Extinguishing a cell that is not on fire reports false", func() {
			So(g.Extinguish(0, 0), ShouldBeFalse)
			So(g.CellAt(0, 0), ShouldEqual, EMPTY)
		})
	})
}

func TestIgnite(t *testing.T) {
	Convey("Ignite only converts trees", t, func() {
		g := NewGrid(5, 5)

		Convey("Empty ground does not ignite", func() {
			g.Ignite(1, 1)
			So(g.CellAt(1, 1), ShouldEqual, EMPTY)
			So(g.NumFires(), ShouldEqual, 0)
		})

		Convey("A tree ignites and is indexed exactly once", func() {
			g.cells[1][1] = TREE
			g.Ignite(1, 1)
			g.Ignite(1, 1) // re-ignition is a no-op
			So(g.CellAt(1, 1), ShouldEqual, FIRE)
			So(g.NumFires(), ShouldEqual, 1)
		})
	})
}

func TestFireEngulfed(t *testing.T) {
	Convey("Given a 10x10 grid (threshold = 2 trees)", t, func() {
		Convey("Exactly the threshold count of trees is not engulfed", func() {
			g := NewGrid(10, 10)
			g.cells[0][0] = TREE
			g.cells[5][5] = TREE
			So(g.FireEngulfed(), ShouldBeFalse)
		})

		Convey("One tree below the threshold is engulfed", func() {
			g := NewGrid(10, 10)
			g.cells[0][0] = TREE
			So(g.FireEngulfed(), ShouldBeTrue)
		})

		Convey("A barren grid is engulfed", func() {
			g := NewGrid(10, 10)
			So(g.FireEngulfed(), ShouldBeTrue)
		})
	})
}

func TestPlaceAgent(t *testing.T) {
	Convey("Placing an agent", t, func() {
		Convey("On an empty cell occupies it directly", func() {
			g := NewGrid(10, 10)
			x, y, ok := g.PlaceAgent(3, 3)
			So(ok, ShouldBeTrue)
			So(x, ShouldEqual, 3)
			So(y, ShouldEqual, 3)
			So(g.CellAt(3, 3), ShouldEqual, AGENT)
		})

		Convey("On an occupied cell relocates to a nearby empty cell", func() {
			g := NewGrid(10, 10)
			g.cells[3][3] = TREE
			x, y, ok := g.PlaceAgent(3, 3)
			So(ok, ShouldBeTrue)
			So(x == 3 && y == 3, ShouldBeFalse)
			So(g.InBounds(x, y), ShouldBeTrue)
			So(g.CellAt(x, y), ShouldEqual, AGENT)
		})

		Convey("With no empty cell in range it fails silently", func() {
			g := NewGrid(5, 5)
			for y := 0; y < 5; y++ {
				for x := 0; x < 5; x++ {
					g.cells[y][x] = TREE
				}
			}
			_, _, ok := g.PlaceAgent(2, 2)
			So(ok, ShouldBeFalse)
			So(g.TreeCount(), ShouldEqual, 25)
		})
	})
}

func TestOccupancyMarkers(t *testing.T) {
	Convey("Occupancy markers are best-effort display state", t, func() {
		g := NewGrid(5, 5)

		Convey("MarkAgent only draws over empty ground", func() {
			g.cells[1][1] = TREE
			g.MarkAgent(1, 1)
			So(g.CellAt(1, 1), ShouldEqual, TREE)

			g.MarkAgent(2, 2)
			So(g.CellAt(2, 2), ShouldEqual, AGENT)
		})

		Convey("ClearAgentMarker only lifts markers, reverting to empty", func() {
			g.cells[1][1] = TREE
			g.ClearAgentMarker(1, 1)
			So(g.CellAt(1, 1), ShouldEqual, TREE)

			g.MarkAgent(2, 2)
			g.ClearAgentMarker(2, 2)
			So(g.CellAt(2, 2), ShouldEqual, EMPTY)
		})
	})
}

func TestFireIndexConsistency(t *testing.T) {
	Convey("The fire index and FIRE cells stay in 1:1 correspondence", t, func() {
		g := NewGrid(20, 20)
		g.Generate(0.3, rand.New(rand.NewSource(7)))
		fd := NewFireDynamics(g, 2, 1)
		fd.SeedInitialFires(3, rand.New(rand.NewSource(7)))
		fd.Advance()

		indexed := map[Point]bool{}
		for _, p := range g.FireCells() {
			indexed[p] = true
			So(g.CellAt(p.X, p.Y), ShouldEqual, FIRE)
		}
		count := 0
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				if g.CellAt(x, y) == FIRE {
					count++
					So(indexed[Point{x, y}], ShouldBeTrue)
				}
			}
		}
		So(count, ShouldEqual, g.NumFires())
	})
}
