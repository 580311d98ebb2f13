package main

import (
	"time"

	"github.com/google/uuid"
)

// Role is what a player may do in a session
type Role uint8

const (
	// RolePilot steers and fires the cannon
	RolePilot Role = iota
	// RoleSpectator only receives state
	RoleSpectator
)

func (r Role) String() string {
	if r == RolePilot {
		return "pilot"
	}
	return "spectator"
}

// Player is a connected participant of a session
type Player struct {
	ID           string
	Name         string
	Role         Role
	AuthPlayerID int64 // 0 = guest
	JoinedAt     time.Time
	Shots        int
}

// NewPlayer creates a player with a fresh id
func NewPlayer(name string, role Role) *Player {
	return &Player{
		ID:       uuid.NewString()[:8],
		Name:     name,
		Role:     role,
		JoinedAt: time.Now(),
	}
}

// IsPilot reports whether p controls the cannon
func (p *Player) IsPilot() bool {
	return p.Role == RolePilot
}

func (p *Player) ToInfo() PlayerInfo {
	return PlayerInfo{ID: p.ID, Name: p.Name, Role: p.Role.String()}
}
