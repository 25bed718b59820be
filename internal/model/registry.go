package model

import "time"

// Registry is the single program-wide record counting created games.
// GameCount is the id the next created game receives.
type Registry struct {
	GameCount uint32
	CreatedAt time.Time
	UpdatedAt time.Time
}
