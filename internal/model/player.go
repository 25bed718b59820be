package model

import (
	"slices"
	"time"
)

// MaxActiveGames caps how many unfinished games a profile can be part of
const MaxActiveGames = 10

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents an authenticated identity
type Player struct {
	ID          PlayerID
	DisplayName string
	IsGuest     bool // true for unregistered players
	CreatedAt   time.Time
}

// RegisteredPlayer extends Player with authentication data
// Stored separately for security (password never in memory with session)
type RegisteredPlayer struct {
	PlayerID     PlayerID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PlayerProfile holds the long-lived game record of an identity
type PlayerProfile struct {
	Player         PlayerID
	Experience     uint32
	CompletedGames uint32
	ActiveGames    []GameID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasActiveGame reports whether the profile lists the game as active
func (p *PlayerProfile) HasActiveGame(id GameID) bool {
	return slices.Contains(p.ActiveGames, id)
}

// CanJoinAnotherGame reports whether the active game limit leaves room
func (p *PlayerProfile) CanJoinAnotherGame() bool {
	return len(p.ActiveGames) < MaxActiveGames
}

// AddActiveGame records a game the player is taking part in
func (p *PlayerProfile) AddActiveGame(id GameID) {
	if !p.HasActiveGame(id) {
		p.ActiveGames = append(p.ActiveGames, id)
	}
}

// CompleteGame moves a game from active to completed and awards experience
func (p *PlayerProfile) CompleteGame(id GameID, experience uint32) {
	idx := slices.Index(p.ActiveGames, id)
	if idx < 0 {
		return
	}
	p.ActiveGames = slices.Delete(p.ActiveGames, idx, idx+1)
	p.CompletedGames++
	p.Experience += experience
}

// Clone returns a deep copy of the profile
func (p *PlayerProfile) Clone() *PlayerProfile {
	c := *p
	c.ActiveGames = slices.Clone(p.ActiveGames)
	return &c
}
