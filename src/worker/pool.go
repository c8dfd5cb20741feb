package worker

import (
	"log"
	"runtime"
	"sync"
)

// Job is one unit of background work. The name only appears in logs.
type Job struct {
	Name string
	Run  func() error
}

// Pool is a fixed-size worker pool with a 1-slot input queue. A job submitted
// while the slot is taken replaces the queued one, so only the newest pending
// job survives.
type Pool struct {
	jobs chan Job
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New creates a worker pool. Size defaults to NumCPU when size<=0. Queue is 1 slot.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan Job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				if err := j.Run(); err != nil {
					log.Printf("Worker: %s failed: %v", j.Name, err)
				}
			}
		}()
	}
}

// Submit enqueues j. It reports false when the pool is closed or j is empty.
// A job still waiting in the queue is discarded in favour of j.
func (p *Pool) Submit(j Job) bool {
	if j.Run == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	for {
		select {
		case p.jobs <- j:
			return true
		default:
		}
		select {
		case stale := <-p.jobs:
			log.Printf("Worker: %s superseded", stale.Name)
		default:
		}
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
