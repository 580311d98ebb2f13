package world

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"arena-server/geometry"
)

func TestNewShapeRejectsZeroSize(t *testing.T) {
	assert.Panics(t, func() { NewShape(pt(0, 0), 0, geometry.Vector{}, 0, 0) })
}

func TestShapeReverse(t *testing.T) {
	s := NewShape(pt(0, 0), 10, geometry.Vector{X: 3, Y: -7}, 0, 0)
	s.Reverse()
	assert.Equal(t, geometry.Vector{X: -3, Y: 7}, s.Velocity)
}

func TestShapeAdvanceAndMoveBack(t *testing.T) {
	s := NewShape(pt(100, 100), 10, geometry.Vector{X: 1000, Y: 500}, 0, math.Pi)
	s.Advance(100, false, 10000, 10000)

	assert.Equal(t, pt(200, 150), s.Center)
	assert.InDelta(t, math.Pi/10, s.Rotation, 1e-9)

	s.MoveBack()
	assert.Equal(t, pt(100, 100), s.Center)
}

func TestShapeAdvanceWithoutWrapLeavesArena(t *testing.T) {
	s := NewShape(pt(9990, 100), 10, geometry.Vector{X: 1000}, 0, 0)
	s.Advance(20, false, 10000, 10000)
	assert.Equal(t, pt(10010, 100), s.Center)
}

func TestShapeSlowObjectTruncates(t *testing.T) {
	s := NewShape(pt(500, 500), 10, geometry.Vector{X: 40}, 0, 0)
	s.Advance(16, false, 10000, 10000)
	assert.Equal(t, pt(500, 500), s.Center)
}

func TestMoveWithWrap(t *testing.T) {
	assert.Equal(t, 10, moveWithWrap(9990, 20, 10000))
	assert.Equal(t, 9990, moveWithWrap(10, -20, 10000))
	assert.Equal(t, 0, moveWithWrap(9990, 10, 10000))
	assert.Equal(t, 5000, moveWithWrap(5000, 0, 10000))
}

func TestShapeSetMovement(t *testing.T) {
	s := NewShape(pt(0, 0), 10, geometry.Vector{}, 0, 0)
	s.SetMovement(geometry.Down, 250)
	assert.Equal(t, geometry.Vector{Y: 250}, s.Velocity)
	s.Stop()
	assert.Equal(t, geometry.Vector{}, s.Velocity)
}

func TestShapeGeometryFollowsState(t *testing.T) {
	s := NewShape(pt(1000, 1000), 750, geometry.Vector{}, 0, 0)
	g := s.Geometry()
	assert.Equal(t, pt(625, 625), g[0])
	assert.Equal(t, pt(1375, 1375), g[2])
	assert.Equal(t, g[0], g[4])
}

func TestFactorySizes(t *testing.T) {
	w := New(1000)
	f := w.Factory()
	assert.Equal(t, 750, f.MakeBaddie(pt(0, 0), geometry.Vector{}, 0).Shape.Size)
	assert.Equal(t, 1000, f.MakeWall(pt(0, 0)).Shape.Size)
	assert.Equal(t, 100, f.MakeBullet(pt(0, 0), geometry.Vector{X: 1}).Shape.Size)

	cannon := f.MakeCannon(pt(0, 0))
	assert.Equal(t, 200, cannon.Shape.Size)
	assert.InDelta(t, math.Pi/4, cannon.Shape.Rotation, 1e-9)
}
