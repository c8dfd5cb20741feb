package eventloop

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"screen-pds/src/action"
)

const (
	DefaultCapacity = 16
	sendTimeout     = 150 * time.Millisecond
)

// Bus carries actions from any number of producers (buttons, tray items,
// hotkeys) to the single dispatcher. Ordering is FIFO per producer.
type Bus struct {
	ch      chan action.Action
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
}

func NewBus(capacity int) *Bus {
	if capacity < 1 {
		capacity = 1
	}
	return &Bus{ch: make(chan action.Action, capacity), timeout: sendTimeout}
}

// Post enqueues a without blocking the caller for long. If the bus is closed
// or stays full for the send timeout, the action is dropped and logged.
func (b *Bus) Post(a action.Action) bool {
	if !a.Valid() {
		log.Printf("eventloop: ignoring invalid action %s", a)
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		log.Printf("eventloop: bus closed, dropping %s", a)
		return false
	}
	select {
	case b.ch <- a:
		return true
	case <-time.After(b.timeout):
		log.Printf("eventloop: post timeout, dropping %s", a)
		return false
	}
}

// Receive blocks until an action arrives. ok is false once the bus is closed
// and drained.
func (b *Bus) Receive() (a action.Action, ok bool) {
	a, ok = <-b.ch
	return a, ok
}

// Close stops the bus. Safe to call more than once.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.ch)
}

// Stepper is advanced once per tick with the action taken from the flag
// (action.None when nothing is pending).
type Stepper interface {
	Step(a action.Action)
}

// Loop is the coordinator: one dispatcher goroutine moves actions from the
// bus into the flag, and a fixed-period tick drains the flag on the UI thread.
type Loop struct {
	bus     *Bus
	flag    *action.Flag
	stepper Stepper
	runOnUI func(func())
	tick    time.Duration

	busy atomic.Bool
}

// New creates a loop. runOnUI schedules a function on the UI thread; nil runs
// it inline on the ticker goroutine.
func New(bus *Bus, flag *action.Flag, stepper Stepper, tick time.Duration, runOnUI func(func())) *Loop {
	if tick <= 0 {
		tick = time.Second
	}
	if runOnUI == nil {
		runOnUI = func(f func()) { f() }
	}
	return &Loop{bus: bus, flag: flag, stepper: stepper, runOnUI: runOnUI, tick: tick}
}

// Dispatch copies every received action into the flag. It returns when the
// bus is closed.
func (l *Loop) Dispatch() {
	for {
		a, ok := l.bus.Receive()
		if !ok {
			log.Printf("eventloop: bus closed, dispatcher exiting")
			return
		}
		l.flag.Set(a)
	}
}

// Run starts the dispatcher and ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	go l.Dispatch()

	t := time.NewTicker(l.tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			l.scheduleTick()
		}
	}
}

// scheduleTick queues one step unless the previous one is still running,
// e.g. during a capture delay.
func (l *Loop) scheduleTick() {
	if !l.busy.CompareAndSwap(false, true) {
		return
	}
	l.runOnUI(func() {
		defer l.busy.Store(false)
		l.stepper.Step(l.flag.Take())
	})
}
