// Package geometry holds the integer vector math and the separating axis
// test used by the collision engine. Everything here is stateless.
package geometry

import (
	"errors"
	"math"
)

// ErrOpenPolygon is raised when a polygon's first and last vertices differ
var ErrOpenPolygon = errors.New("geometry: polygon is not closed")

// Vector is an integer 2D vector. Y grows downward.
type Vector struct {
	X, Y int
}

// Point is a position vector
type Point = Vector

// Add returns v + o
func (v Vector) Add(o Vector) Vector {
	return Vector{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o
func (v Vector) Sub(o Vector) Vector {
	return Vector{v.X - o.X, v.Y - o.Y}
}

// Range is an inclusive projection interval
type Range struct {
	Min, Max int
}

// Geometry is a box given as a closed loop: the first vertex is repeated at index 4
type Geometry [5]Point

// Direction is one of the four screen directions
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// DirectionVector returns the unit vector for d
func DirectionVector(d Direction) Vector {
	switch d {
	case Up:
		return Vector{0, -1}
	case Down:
		return Vector{0, 1}
	case Left:
		return Vector{-1, 0}
	default:
		return Vector{1, 0}
	}
}

// Rotate turns p about c by angle radians in place. The rotated offset is
// truncated toward zero, so repeated rotations drift slightly.
func Rotate(p *Point, c Point, angle float64) {
	sin, cos := math.Sincos(angle)
	dx := float64(p.X - c.X)
	dy := float64(p.Y - c.Y)
	p.X = c.X + int(dx*cos-dy*sin)
	p.Y = c.Y + int(dx*sin+dy*cos)
}

// Scale multiplies v by a
func Scale(v Vector, a int) Vector {
	return Vector{a * v.X, a * v.Y}
}

func edge(a, b Point) Vector {
	return Vector{b.X - a.X, b.Y - a.Y}
}

// normal is perpendicular to v but not unit length
func normal(v Vector) Vector {
	return Vector{-v.Y, v.X}
}

func dot(a, b Vector) int {
	return a.X*b.X + a.Y*b.Y
}

// overlaps reports whether r1 and r2 share at least one value (touching counts)
func overlaps(r1, r2 Range) bool {
	return r1.Min <= r2.Max && r2.Min <= r1.Max
}

func projectedRange(poly []Point, axis Vector) Range {
	r := Range{Min: math.MaxInt, Max: math.MinInt}
	for _, p := range poly {
		d := dot(p, axis)
		if d < r.Min {
			r.Min = d
		}
		if d > r.Max {
			r.Max = d
		}
	}
	return r
}

func mustBeClosed(poly []Point) {
	if len(poly) < 2 || poly[0] != poly[len(poly)-1] {
		panic(ErrOpenPolygon)
	}
}

// IsCollision reports whether two convex closed polygons intersect using the
// separating axis test. Touching edges or corners count as a collision.
// Panics with ErrOpenPolygon if either polygon is not closed.
func IsCollision(a, b []Point) bool {
	mustBeClosed(a)
	mustBeClosed(b)

	for _, poly := range [2][]Point{a, b} {
		for i := 1; i < len(poly); i++ {
			axis := normal(edge(poly[i-1], poly[i]))
			if !overlaps(projectedRange(a, axis), projectedRange(b, axis)) {
				return false
			}
		}
	}
	return true
}

// BoxSideLenSqr is the squared length of the first side of g
func BoxSideLenSqr(g *Geometry) int {
	e := edge(g[0], g[1])
	return dot(e, e)
}

// Box builds the closed loop for a square of the given size centered on
// center and rotated by rotation radians
func Box(center Point, size int, rotation float64) Geometry {
	var g Geometry
	g.Update(center, size, rotation)
	return g
}

// Update rewrites g in place from the box's kinematic state
func (g *Geometry) Update(center Point, size int, rotation float64) {
	half := size / 2
	g[0] = Point{center.X - half, center.Y - half}
	g[1] = Point{center.X + half, center.Y - half}
	g[2] = Point{center.X + half, center.Y + half}
	g[3] = Point{center.X - half, center.Y + half}
	if rotation != 0 {
		for i := 0; i < 4; i++ {
			Rotate(&g[i], center, rotation)
		}
	}
	g[4] = g[0]
}

// Points returns g as a slice for IsCollision
func (g *Geometry) Points() []Point {
	return g[:]
}
