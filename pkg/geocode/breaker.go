package geocode

import "sync/atomic"

// Breaker is a one-way latch shared by all workers in a resolution batch.
// The first worker that sees an authentication failure trips it; once
// tripped it stays tripped for the remainder of the run, and every
// subsequent resolution attempt short-circuits without a network call.
// Trip is idempotent and race-safe.
type Breaker struct {
	tripped atomic.Bool
}

// Trip latches the breaker open.
func (b *Breaker) Trip() {
	b.tripped.Store(true)
}

// Tripped reports whether the breaker has been tripped.
func (b *Breaker) Tripped() bool {
	return b.tripped.Load()
}
