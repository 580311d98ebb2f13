package collision

import (
	"fmt"

	"arena-server/entity"
)

// Kind names a pair of categories the engine tests against each other
type Kind uint8

const (
	BaddieWall Kind = iota
	BulletWall
	BulletBaddie
	BaddieCannon

	kindCount
)

// pairings fixes argument order: the subject comes first
var pairings = [kindCount][2]entity.Kind{
	BaddieWall:   {entity.Baddie, entity.Wall},
	BulletWall:   {entity.Bullet, entity.Wall},
	BulletBaddie: {entity.Bullet, entity.Baddie},
	BaddieCannon: {entity.Baddie, entity.Cannon},
}

// Kinds lists every collision kind
func Kinds() []Kind {
	return []Kind{BaddieWall, BulletWall, BulletBaddie, BaddieCannon}
}

// Pairing returns the subject and object categories of k
func (k Kind) Pairing() (subject, object entity.Kind) {
	p := pairings[k]
	return p[0], p[1]
}

func (k Kind) Valid() bool { return k < kindCount }

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("collision(%d)", uint8(k))
	}
	s, o := k.Pairing()
	return s.String() + "-" + o.String()
}

// Event is one detected collision. Subject belongs to the first category of
// Kind's pairing and Object to the second.
type Event struct {
	Kind    Kind
	Subject entity.ID
	Object  entity.ID
}

// Handler reacts to a collision. W is the mutable frame context the caller
// hands to Engine.Process.
type Handler[W any] interface {
	OnCollision(ctx W, ev Event)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc[W any] func(ctx W, ev Event)

func (f HandlerFunc[W]) OnCollision(ctx W, ev Event) { f(ctx, ev) }

// Handlers is a kind-keyed handler table that remembers registration order
type Handlers[W any] struct {
	table [kindCount]Handler[W]
	order []Kind
}

func NewHandlers[W any]() *Handlers[W] {
	return &Handlers[W]{}
}

// Register sets the handler for k. Panics if k already has one.
func (h *Handlers[W]) Register(k Kind, handler Handler[W]) *Handlers[W] {
	if !k.Valid() {
		panic(fmt.Sprintf("collision: unknown kind %d", k))
	}
	if h.table[k] != nil {
		panic(fmt.Sprintf("collision: handler for %s registered twice", k))
	}
	h.table[k] = handler
	h.order = append(h.order, k)
	return h
}

// Handle is Register for plain functions
func (h *Handlers[W]) Handle(k Kind, fn func(ctx W, ev Event)) *Handlers[W] {
	return h.Register(k, HandlerFunc[W](fn))
}

// Order returns the registered kinds in registration order
func (h *Handlers[W]) Order() []Kind {
	return append([]Kind(nil), h.order...)
}

func (h *Handlers[W]) get(k Kind) Handler[W] {
	return h.table[k]
}
