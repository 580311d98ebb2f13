// Package entity defines entity identity and kinds.
package entity

import (
	"fmt"
	"sync/atomic"
)

// ID identifies an entity within one world. Zero is never allocated.
type ID uint32

// Kind is the category an entity belongs to
type Kind uint8

const (
	Undefined Kind = iota
	Wall
	Baddie
	Bullet
	Cannon
)

func (k Kind) String() string {
	switch k {
	case Wall:
		return "wall"
	case Baddie:
		return "baddie"
	case Bullet:
		return "bullet"
	case Cannon:
		return "cannon"
	case Undefined:
		return "undefined"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Entity pairs an id with its kind
type Entity struct {
	ID   ID
	Kind Kind
}

// Proxy stands in for id when its kind is unknown. World lookups return it
// for ids they do not hold.
func Proxy(id ID) Entity {
	return Entity{ID: id, Kind: Undefined}
}

// Allocator hands out increasing ids. Safe for concurrent use.
type Allocator struct {
	last atomic.Uint32
}

// Next returns a fresh id
func (a *Allocator) Next() ID {
	return ID(a.last.Add(1))
}

// New allocates an entity of the given kind
func (a *Allocator) New(kind Kind) Entity {
	return Entity{ID: a.Next(), Kind: kind}
}
