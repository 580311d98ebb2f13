package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x0, y0, x1, y1 int) []Point {
	return []Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}
}

func TestIsCollisionOverlappingSquares(t *testing.T) {
	assert.True(t, IsCollision(square(1, 1, 3, 3), square(2, 2, 4, 4)))
}

func TestIsCollisionDisjointSquares(t *testing.T) {
	assert.False(t, IsCollision(square(1, 1, 3, 3), square(4, 4, 6, 6)))
}

func TestIsCollisionTouchingCorners(t *testing.T) {
	assert.True(t, IsCollision(square(1, 1, 3, 3), square(3, 3, 5, 5)))
}

func TestIsCollisionNearMissRotated(t *testing.T) {
	a := []Point{{2260, 2628}, {3232, 2400}, {3460, 3372}, {2488, 3600}, {2260, 2628}}
	b := []Point{{3098, 3654}, {4006, 3238}, {4422, 4146}, {3514, 4562}, {3098, 3654}}
	assert.False(t, IsCollision(a, b))
	assert.False(t, IsCollision(b, a))
}

func TestIsCollisionSymmetric(t *testing.T) {
	a := Box(Point{1000, 1000}, 750, 0.3)
	b := Box(Point{1500, 1200}, 1000, 0)
	assert.Equal(t, IsCollision(a.Points(), b.Points()), IsCollision(b.Points(), a.Points()))
}

func TestIsCollisionOpenPolygonPanics(t *testing.T) {
	open := []Point{{0, 0}, {2, 0}, {2, 2}, {0, 2}}
	assert.PanicsWithValue(t, ErrOpenPolygon, func() {
		IsCollision(open, square(0, 0, 1, 1))
	})
	assert.PanicsWithValue(t, ErrOpenPolygon, func() {
		IsCollision(square(0, 0, 1, 1), nil)
	})
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name   string
		r1, r2 Range
		want   bool
	}{
		{"touching", Range{1, 3}, Range{3, 5}, true},
		{"gap", Range{1, 3}, Range{4, 6}, false},
		{"contained", Range{0, 10}, Range{4, 6}, true},
		{"left of", Range{4, 6}, Range{1, 3}, false},
		{"equal", Range{2, 2}, Range{2, 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, overlaps(tt.r1, tt.r2))
			assert.Equal(t, tt.want, overlaps(tt.r2, tt.r1))
		})
	}
}

func TestNormalIsPerpendicular(t *testing.T) {
	e := edge(Point{3, 4}, Point{10, -2})
	assert.Zero(t, dot(e, normal(e)))
	assert.Equal(t, Vector{6, 7}, normal(e))
}

func TestRotate(t *testing.T) {
	p := Point{10, 0}
	Rotate(&p, Point{0, 0}, math.Pi/2)
	assert.Equal(t, Point{0, 10}, p)

	p = Point{110, 100}
	Rotate(&p, Point{100, 100}, math.Pi)
	assert.Equal(t, Point{90, 100}, p)
}

func TestScale(t *testing.T) {
	assert.Equal(t, Vector{0, -1000}, Scale(DirectionVector(Up), 1000))
	assert.Equal(t, Vector{-3, 6}, Scale(Vector{1, -2}, -3))
}

func TestDirectionVector(t *testing.T) {
	assert.Equal(t, Vector{0, -1}, DirectionVector(Up))
	assert.Equal(t, Vector{0, 1}, DirectionVector(Down))
	assert.Equal(t, Vector{-1, 0}, DirectionVector(Left))
	assert.Equal(t, Vector{1, 0}, DirectionVector(Right))
}

func TestBoxAxisAligned(t *testing.T) {
	g := Box(Point{1200, 1200}, 1000, 0)
	want := Geometry{{700, 700}, {1700, 700}, {1700, 1700}, {700, 1700}, {700, 700}}
	assert.Equal(t, want, g)
	assert.Equal(t, 1000*1000, BoxSideLenSqr(&g))
}

func TestBoxRotatedStaysClosed(t *testing.T) {
	g := Box(Point{5000, 5000}, 200, math.Pi/4)
	require.Equal(t, g[0], g[4])
	// side length survives rotation up to truncation
	assert.InDelta(t, 200*200, BoxSideLenSqr(&g), 800)
}

func TestGeometryUpdateMovesBox(t *testing.T) {
	g := Box(Point{0, 0}, 100, 0)
	g.Update(Point{500, 600}, 100, 0)
	assert.Equal(t, Point{450, 550}, g[0])
	assert.Equal(t, g[0], g[4])
}
