package game

import (
	"sync"

	"github.com/mcoot/conquest-go/internal/model"
)

// gameLocks hands out one mutex per game, dropping it once nobody holds it
type gameLocks struct {
	mu    sync.Mutex
	locks map[model.GameID]*gameLock
}

type gameLock struct {
	sync.Mutex
	refs int
}

func newGameLocks() *gameLocks {
	return &gameLocks{locks: make(map[model.GameID]*gameLock)}
}

// lock blocks until the game is free and returns the matching unlock
func (l *gameLocks) lock(id model.GameID) func() {
	l.mu.Lock()
	gl, ok := l.locks[id]
	if !ok {
		gl = &gameLock{}
		l.locks[id] = gl
	}
	gl.refs++
	l.mu.Unlock()

	gl.Lock()
	return func() {
		gl.Unlock()

		l.mu.Lock()
		gl.refs--
		if gl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
