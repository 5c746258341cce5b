package x

import (
	"sync/atomic"

	"github.com/iov-one/ledger/errors"
)

// Guard rejects a call that enters an operation while another call of the
// same guard is still in progress. Engines hold it for the whole duration
// of every operation that transfers value, so that a transfer that calls
// back into the engine fails instead of observing a half applied state.
//
// The zero value is ready to use. A Guard must not be copied after first
// use.
type Guard struct {
	busy uint32
}

// Enter marks the guard as busy. It returns ErrReentrancy if the guard was
// already entered. Every successful Enter must be followed by Leave.
func (g *Guard) Enter() error {
	if !atomic.CompareAndSwapUint32(&g.busy, 0, 1) {
		return errors.Wrap(errors.ErrReentrancy, "operation in progress")
	}
	return nil
}

// Leave releases the guard.
func (g *Guard) Leave() {
	atomic.StoreUint32(&g.busy, 0)
}

// Do runs fn while holding the guard.
func (g *Guard) Do(fn func() error) error {
	if err := g.Enter(); err != nil {
		return err
	}
	defer g.Leave()
	return fn()
}
