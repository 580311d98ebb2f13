// Package world holds the entity store and the per-frame game rules that
// drive the collision engine.
package world

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"arena-server/collision"
	"arena-server/entity"
	"arena-server/geometry"
)

// CannonHealth is how many baddie hits the cannon survives
const CannonHealth = 3

// ErrNoCannon is returned when an action needs a cannon the world lacks
var ErrNoCannon = errors.New("world: no cannon")

type options struct {
	width, height int
	workers       int
	logger        *zap.Logger
}

// Option configures a World
type Option func(*options)

func WithArena(width, height int) Option {
	return func(o *options) {
		o.width, o.height = width, height
	}
}

// WithWorkers sets the collision detection parallelism. Zero keeps the
// engine default of one worker per CPU.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// World owns every entity of one running level. It is not safe for
// concurrent use; callers serialize access.
type World struct {
	width, height int
	workers       int
	logger        *zap.Logger

	alloc   entity.Allocator
	factory *Factory

	kinds      map[entity.ID]entity.Kind
	shapes     map[entity.ID]*Shape
	geometries map[entity.ID]*geometry.Geometry
	health     map[entity.ID]int

	cannon entity.ID
	score  int
}

// New creates an empty world whose factory builds objects at baseSize
func New(baseSize int, opts ...Option) *World {
	o := options{
		width:  collision.DefaultArenaWidth,
		height: collision.DefaultArenaHeight,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	w := &World{
		width:      o.width,
		height:     o.height,
		workers:    o.workers,
		logger:     o.logger,
		kinds:      make(map[entity.ID]entity.Kind),
		shapes:     make(map[entity.ID]*Shape),
		geometries: make(map[entity.ID]*geometry.Geometry),
		health:     make(map[entity.ID]int),
	}
	w.factory = NewFactory(baseSize, &w.alloc)
	return w
}

// Factory builds objects whose ids come from this world
func (w *World) Factory() *Factory { return w.factory }

func (w *World) Width() int  { return w.width }
func (w *World) Height() int { return w.height }

// Add inserts obj. A second cannon replaces the first as the controlled one.
func (w *World) Add(obj Object) entity.ID {
	id := obj.Entity.ID
	if _, ok := w.kinds[id]; ok {
		panic(fmt.Sprintf("world: entity %d added twice", id))
	}
	g := obj.Geometry
	w.kinds[id] = obj.Entity.Kind
	w.shapes[id] = obj.Shape
	w.geometries[id] = &g
	if obj.Entity.Kind == entity.Cannon {
		w.cannon = id
		w.health[id] = CannonHealth
	}
	return id
}

// Remove deletes id. Unknown ids are ignored.
func (w *World) Remove(id entity.ID) {
	delete(w.kinds, id)
	delete(w.shapes, id)
	delete(w.geometries, id)
	delete(w.health, id)
	if w.cannon == id {
		w.cannon = 0
	}
}

// Kind returns Undefined for unknown ids
func (w *World) Kind(id entity.ID) entity.Kind {
	return w.kinds[id]
}

// Entity looks up id. Unknown ids come back as a proxy of kind Undefined.
func (w *World) Entity(id entity.ID) entity.Entity {
	kind, ok := w.kinds[id]
	if !ok {
		return entity.Proxy(id)
	}
	return entity.Entity{ID: id, Kind: kind}
}

func (w *World) Contains(id entity.ID) bool {
	_, ok := w.kinds[id]
	return ok
}

func (w *World) Shape(id entity.ID) (*Shape, bool) {
	s, ok := w.shapes[id]
	return s, ok
}

func (w *World) Geometry(id entity.ID) (*geometry.Geometry, bool) {
	g, ok := w.geometries[id]
	return g, ok
}

// Cannon returns the controlled cannon's id
func (w *World) Cannon() (entity.ID, bool) {
	return w.cannon, w.cannon != 0
}

// Health of the cannon, or zero without one
func (w *World) Health() int {
	return w.health[w.cannon]
}

func (w *World) Score() int { return w.score }

// Len is the total number of entities
func (w *World) Len() int { return len(w.kinds) }

// Count is the number of entities of kind
func (w *World) Count(kind entity.Kind) int {
	n := 0
	for _, k := range w.kinds {
		if k == kind {
			n++
		}
	}
	return n
}

// IDs lists every entity in ascending id order
func (w *World) IDs() []entity.ID {
	ids := make([]entity.ID, 0, len(w.kinds))
	for id := range w.kinds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Categories groups the current geometry by kind for the collision engine.
// The returned maps alias the world's geometry.
func (w *World) Categories() collision.Categories {
	cats := collision.Categories{
		entity.Wall:   {},
		entity.Baddie: {},
		entity.Bullet: {},
		entity.Cannon: {},
	}
	for id, g := range w.geometries {
		if geoms, ok := cats[w.kinds[id]]; ok {
			geoms[id] = g
		}
	}
	return cats
}

func (w *World) updateGeometry() {
	for id, s := range w.shapes {
		w.geometries[id].Update(s.Center, s.Size, s.Rotation)
	}
}

func (w *World) insideArena(p geometry.Point) bool {
	return p.X > 0 && p.X <= w.width && p.Y > 0 && p.Y <= w.height
}
