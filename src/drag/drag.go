// Package drag carries completed drag rectangles from the overlay's input
// callbacks to the tick that applies them.
package drag

import (
	"context"
	"sync"

	"screen-pds/src/region"
)

// Box is a single-slot mailbox. A second drag completed before Take overwrites
// the first one.
type Box struct {
	mu       sync.Mutex
	start    *point
	pending  *region.Rect
	consumed chan struct{}
}

type point struct{ x, y float64 }

func NewBox() *Box {
	return &Box{consumed: make(chan struct{}, 1)}
}

// Begin records where a drag started.
func (b *Box) Begin(x, y float64) {
	b.mu.Lock()
	b.start = &point{x: x, y: y}
	b.mu.Unlock()
}

// End records the drag offset relative to the last Begin. A zero offset is a
// plain click and leaves nothing pending.
func (b *Box) End(dx, dy float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.start == nil {
		return
	}
	r := region.Rect{X: b.start.x, Y: b.start.y, W: dx, H: dy}
	b.start = nil
	if r.Empty() {
		return
	}
	b.pending = &r
}

// Take returns the pending rectangle, if any, and clears the slot.
func (b *Box) Take() (region.Rect, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return region.Rect{}, false
	}
	r := *b.pending
	b.pending = nil
	return r, true
}

// Pending reports whether a completed drag is waiting.
func (b *Box) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending != nil
}

// Clear drops any half-finished or pending drag.
func (b *Box) Clear() {
	b.mu.Lock()
	b.start = nil
	b.pending = nil
	b.mu.Unlock()
}

// Signal tells a waiting producer that the consumer has run once. Signals do
// not accumulate beyond one.
func (b *Box) Signal() {
	select {
	case b.consumed <- struct{}{}:
	default:
	}
}

// Wait blocks until the next Signal or until ctx is done.
func (b *Box) Wait(ctx context.Context) error {
	select {
	case <-b.consumed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
