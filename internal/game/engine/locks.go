package engine

import "sync"

// playerLocks serializes mutating operations per player while letting
// different players proceed in parallel. Lock entries are never reclaimed;
// the population is bounded by distinct connected players.
type playerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// acquire locks the given player's mutex and returns its unlock func.
func (p *playerLocks) acquire(playerID string) func() {
	p.mu.Lock()
	if p.locks == nil {
		p.locks = make(map[string]*sync.Mutex)
	}
	l, ok := p.locks[playerID]
	if !ok {
		l = &sync.Mutex{}
		p.locks[playerID] = l
	}
	p.mu.Unlock()

	l.Lock()
	return l.Unlock
}
