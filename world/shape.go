package world

import (
	"fmt"

	"arena-server/geometry"
)

// Shape is the kinematic state of a square object
type Shape struct {
	Center geometry.Point
	Size   int
	// Velocity in units per second
	Velocity geometry.Vector
	// Rotation about the center in radians
	Rotation float64
	// AngularVelocity in radians per second
	AngularVelocity float64

	prev geometry.Point
}

// NewShape panics if size is not positive
func NewShape(center geometry.Point, size int, vel geometry.Vector, rotation, spin float64) *Shape {
	if size <= 0 {
		panic(fmt.Sprintf("world: shape size must be positive, got %d", size))
	}
	return &Shape{
		Center:          center,
		Size:            size,
		Velocity:        vel,
		Rotation:        rotation,
		AngularVelocity: spin,
		prev:            center,
	}
}

// Reverse negates the velocity
func (s *Shape) Reverse() {
	s.Velocity = geometry.Scale(s.Velocity, -1)
}

// MoveBack undoes the last Advance's translation
func (s *Shape) MoveBack() {
	s.Center = s.prev
}

// SetMovement moves the shape in dir at speed
func (s *Shape) SetMovement(dir geometry.Direction, speed int) {
	s.Velocity = geometry.Scale(geometry.DirectionVector(dir), speed)
}

func (s *Shape) Stop() {
	s.Velocity = geometry.Vector{}
}

// Advance moves the shape by dt milliseconds. With wrap set, leaving one
// side of the arena re-enters from the opposite side.
func (s *Shape) Advance(dt int, wrap bool, width, height int) {
	s.prev = s.Center
	// integer steps: slow objects on short frames may not move at all
	stepX := s.Velocity.X * dt / 1000
	stepY := s.Velocity.Y * dt / 1000
	if wrap {
		s.Center.X = moveWithWrap(s.Center.X, stepX, width)
		s.Center.Y = moveWithWrap(s.Center.Y, stepY, height)
	} else {
		s.Center.X += stepX
		s.Center.Y += stepY
	}
	s.Rotation += s.AngularVelocity * float64(dt) / 1000
}

// Geometry derives the closed box loop from the current state
func (s *Shape) Geometry() geometry.Geometry {
	return geometry.Box(s.Center, s.Size, s.Rotation)
}

func moveWithWrap(start, amt, bound int) int {
	switch next := start + amt; {
	case next < 0:
		return bound + next
	case next < bound:
		return next
	default:
		return next - bound
	}
}
