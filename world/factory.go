package world

import (
	"math"

	"arena-server/entity"
	"arena-server/geometry"
)

// Object sizes as fractions of the level's base size
const (
	BaddieScale = 0.75
	WallScale   = 1.0
	BulletScale = 0.1
	CannonScale = 0.2
)

const (
	// BulletSpeed is in units per second
	BulletSpeed = 1000
	// CannonSpeed is in units per second
	CannonSpeed = 500
	// CannonStartRotation turns the cannon to a diamond
	CannonStartRotation = math.Pi / 4
)

// Object is a new entity ready to be added to a world
type Object struct {
	Entity   entity.Entity
	Shape    *Shape
	Geometry geometry.Geometry
}

// Factory builds objects sized for one level. Ids come from the owning
// world's allocator.
type Factory struct {
	baseSize int
	alloc    *entity.Allocator
}

func NewFactory(baseSize int, alloc *entity.Allocator) *Factory {
	return &Factory{baseSize: baseSize, alloc: alloc}
}

func (f *Factory) BaseSize() int { return f.baseSize }

func (f *Factory) MakeCannon(center geometry.Point) Object {
	return f.make(entity.Cannon, NewShape(center, f.size(CannonScale), geometry.Vector{}, CannonStartRotation, 0))
}

// MakeBullet fires a bullet from center along dir
func (f *Factory) MakeBullet(center geometry.Point, dir geometry.Vector) Object {
	return f.make(entity.Bullet, NewShape(center, f.size(BulletScale), geometry.Scale(dir, BulletSpeed), 0, 0))
}

// MakeBaddie spawns a baddie moving at vel and spinning at spin radians per second
func (f *Factory) MakeBaddie(center geometry.Point, vel geometry.Vector, spin float64) Object {
	return f.make(entity.Baddie, NewShape(center, f.size(BaddieScale), vel, 0, spin))
}

func (f *Factory) MakeWall(center geometry.Point) Object {
	return f.make(entity.Wall, NewShape(center, f.size(WallScale), geometry.Vector{}, 0, 0))
}

func (f *Factory) make(kind entity.Kind, s *Shape) Object {
	return Object{Entity: f.alloc.New(kind), Shape: s, Geometry: s.Geometry()}
}

func (f *Factory) size(scale float64) int {
	return int(float64(f.baseSize) * scale)
}
