package oscillator

import "sync"

// barrier is a reusable rendezvous point for a fixed number of parties.
// Every party blocks in Wait until all of them have arrived, then all are
// released and the barrier resets for the next cycle.
type barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	parties int
	waiting int
	gen     uint64
	broken  bool
}

func newBarrier(parties int) *barrier {
	b := &barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until all parties have arrived or the barrier is broken.
// It reports whether the barrier was broken.
func (b *barrier) Wait() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.broken {
		return true
	}

	gen := b.gen
	b.waiting++
	if b.waiting == b.parties {
		// Last party in: release everyone and start a new generation
		b.waiting = 0
		b.gen++
		b.cond.Broadcast()
		return false
	}

	for gen == b.gen && !b.broken {
		b.cond.Wait()
	}
	return b.broken
}

// Break permanently releases all current and future waiters.
// Used during teardown so no worker is left stranded at a rendezvous.
func (b *barrier) Break() {
	b.mu.Lock()
	b.broken = true
	b.waiting = 0
	b.cond.Broadcast()
	b.mu.Unlock()
}
