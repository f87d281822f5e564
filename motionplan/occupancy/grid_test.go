package occupancy

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func newTestGrid(t *testing.T) *Grid {
	t.Helper()
	g, err := NewGrid(Bounds{XMin: -2, XMax: 2, YMin: 0, YMax: 2}, 0.2)
	test.That(t, err, test.ShouldBeNil)
	return g
}

func TestNewGridRejectsBadInput(t *testing.T) {
	_, err := NewGrid(Bounds{XMin: 1, XMax: 1, YMin: 0, YMax: 2}, 0.2)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewGrid(Bounds{XMin: 0, XMax: 1, YMin: 0, YMax: math.NaN()}, 0.2)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewGrid(Bounds{XMin: 0, XMax: 1, YMin: 0, YMax: 1}, 0)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewGrid(Bounds{XMin: 0, XMax: 1, YMin: 0, YMax: 1}, -0.1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGridDimensions(t *testing.T) {
	g := newTestGrid(t)
	test.That(t, g.Width(), test.ShouldEqual, 20)
	test.That(t, g.Height(), test.ShouldEqual, 10)
	test.That(t, g.Resolution(), test.ShouldEqual, 0.2)

	g, err := NewGrid(Bounds{XMin: -10, XMax: 10, YMin: -10, YMax: 10}, 0.2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.Width(), test.ShouldEqual, 100)
	test.That(t, g.Height(), test.ShouldEqual, 100)
}

func TestSetObstacleIdempotent(t *testing.T) {
	g := newTestGrid(t)
	test.That(t, g.SetObstacle(3, 4), test.ShouldBeNil)
	test.That(t, g.SetObstacle(3, 4), test.ShouldBeNil)
	test.That(t, g.OccupiedCount(), test.ShouldEqual, 1)
	test.That(t, g.Occupied(3, 4), test.ShouldBeTrue)
	test.That(t, g.Occupied(4, 3), test.ShouldBeFalse)

	center := g.CellCenter(3, 4)
	test.That(t, center.X, test.ShouldAlmostEqual, -1.3)
	test.That(t, center.Y, test.ShouldAlmostEqual, 0.9)
	test.That(t, g.IsOccupied(center), test.ShouldBeTrue)

	err := g.SetObstacle(20, 0)
	test.That(t, errors.Is(err, ErrOutOfBounds), test.ShouldBeTrue)
	err = g.SetObstacle(0, -1)
	test.That(t, errors.Is(err, ErrOutOfBounds), test.ShouldBeTrue)
	test.That(t, g.OccupiedCount(), test.ShouldEqual, 1)
}

func TestOutOfBoundsIsOccupied(t *testing.T) {
	g := newTestGrid(t)
	test.That(t, g.IsOccupied(r2.Point{X: 0, Y: 1}), test.ShouldBeFalse)
	test.That(t, g.IsOccupied(r2.Point{X: -2, Y: 0}), test.ShouldBeFalse)
	test.That(t, g.IsOccupied(r2.Point{X: 2, Y: 1}), test.ShouldBeTrue)
	test.That(t, g.IsOccupied(r2.Point{X: 0, Y: 2}), test.ShouldBeTrue)
	test.That(t, g.IsOccupied(r2.Point{X: -2.01, Y: 1}), test.ShouldBeTrue)
	test.That(t, g.Occupied(-1, 0), test.ShouldBeTrue)

	_, _, ok := g.Index(r2.Point{X: 5, Y: 1})
	test.That(t, ok, test.ShouldBeFalse)
	ix, iy, ok := g.Index(r2.Point{X: 1.99, Y: 1.99})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, ix, test.ShouldEqual, 19)
	test.That(t, iy, test.ShouldEqual, 9)
}

func TestBounds(t *testing.T) {
	b := Bounds{XMin: 0, XMax: 4, YMin: -1, YMax: 1}
	test.That(t, b.Validate(), test.ShouldBeNil)
	test.That(t, b.Contains(r2.Point{X: 0, Y: -1}), test.ShouldBeTrue)
	test.That(t, b.Contains(r2.Point{X: 4, Y: 0}), test.ShouldBeFalse)
	test.That(t, b.Size(), test.ShouldResemble, r2.Point{X: 4, Y: 2})
	test.That(t, Bounds{XMin: 0, XMax: -1, YMin: 0, YMax: 1}.Validate(), test.ShouldNotBeNil)
}
