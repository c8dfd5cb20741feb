package action

import "sync"

// Flag is a single-slot mailbox between the dispatcher goroutine and the tick.
// It holds only the latest value: a Set before the next Take replaces whatever
// was pending.
type Flag struct {
	mu      sync.Mutex
	pending Action
}

// Set stores a as the pending action.
func (f *Flag) Set(a Action) {
	f.mu.Lock()
	f.pending = a
	f.mu.Unlock()
}

// Take returns the pending action and clears the slot back to None.
func (f *Flag) Take() Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.pending
	f.pending = None
	return a
}
