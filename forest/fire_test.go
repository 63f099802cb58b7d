package forest

import (
	"math"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFireDynamicsClamping(t *testing.T) {
	Convey("Configuration is clamped, never rejected", t, func() {
		g := NewGrid(10, 10)

		fd := NewFireDynamics(g, 0, 0)
		So(fd.SpreadRadius, ShouldEqual, 1)
		So(fd.SpreadDelay, ShouldEqual, 1)

		fd = NewFireDynamics(g, 99, 30)
		So(fd.SpreadRadius, ShouldEqual, 5)
		So(fd.SpreadDelay, ShouldEqual, 30)
	})
}

func TestSeedInitialFires(t *testing.T) {
	Convey("Given a generated forest", t, func() {
		g := NewGrid(60, 60)
		g.Generate(0.3, rand.New(rand.NewSource(11)))
		fd := NewFireDynamics(g, 3, 30)
		fd.SeedInitialFires(5, rand.New(rand.NewSource(11)))

		Convey("At most the requested count is seeded", func() {
			So(g.NumFires(), ShouldBeLessThanOrEqualTo, 5)
			So(g.NumFires(), ShouldBeGreaterThan, 0)
		})

		Convey("Ignition points are spaced beyond the spread radius", func() {
			fires := g.FireCells()
			for i := range fires {
				for j := i + 1; j < len(fires); j++ {
					So(euclidean(fires[i], fires[j]), ShouldBeGreaterThan, float64(fd.SpreadRadius))
				}
			}
		})

		Convey("A treeless grid seeds nothing", func() {
			bare := NewGrid(10, 10)
			bareFd := NewFireDynamics(bare, 3, 30)
			bareFd.SeedInitialFires(5, rand.New(rand.NewSource(11)))
			So(bare.NumFires(), ShouldEqual, 0)
		})
	})
}

func TestSpreadCandidates(t *testing.T) {
	Convey("Candidates are trees within exact Euclidean distance", t, func() {
		g := NewGrid(9, 9)
		// Dense planting, bypassing the spacing rule: spread geometry is what
		// is under test here.
		for y := 0; y < 9; y++ {
			for x := 0; x < 9; x++ {
				g.cells[y][x] = TREE
			}
		}
		g.Ignite(4, 4)
		fd := NewFireDynamics(g, 2, 30)

		candidates := map[Point]bool{}
		for _, p := range fd.SpreadCandidates(4, 4) {
			candidates[p] = true
		}

		for y := 0; y < 9; y++ {
			for x := 0; x < 9; x++ {
				dist := math.Sqrt(float64((x-4)*(x-4) + (y-4)*(y-4)))
				inDisk := dist <= 2 && g.CellAt(x, y) == TREE
				So(candidates[Point{x, y}], ShouldEqual, inDisk)
			}
		}
		// The ignited center is FIRE, not TREE, so it is never a candidate.
		So(candidates[Point{4, 4}], ShouldBeFalse)
	})
}

func TestAdvanceGating(t *testing.T) {
	Convey("Given a fire with spread delay 3", t, func() {
		g := NewGrid(10, 10)
		g.cells[4][4] = TREE
		g.cells[4][6] = TREE
		g.Ignite(4, 4)
		fd := NewFireDynamics(g, 2, 3)

		Convey("Fire never spreads before the delay elapses", func() {
			So(fd.Advance(), ShouldBeNil)
			So(fd.Advance(), ShouldBeNil)
			So(g.NumFires(), ShouldEqual, 1)

			Convey("Then spreads exactly on the delay tick", func() {
				ignited := fd.Advance()
				So(len(ignited), ShouldEqual, 1)
				So(ignited[0], ShouldResemble, Point{6, 4})
				So(g.IsBurning(6, 4), ShouldBeTrue)

				Convey("And the timer resets for the next cycle", func() {
					So(fd.Advance(), ShouldBeNil)
					So(fd.Advance(), ShouldBeNil)
					So(fd.Advance(), ShouldNotBeNil)
				})
			})
		})
	})
}
