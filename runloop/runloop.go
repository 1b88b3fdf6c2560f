// Package runloop defines the owner-thread dispatch primitive spec.md §5
// requires ("the runloop primitive provides: dispatch a task from any
// thread to be run on this thread, timers on this thread, and run/stop")
// and ships one minimal, goroutine-based default implementation. Per
// spec.md §1 a real runloop (epoll/kqueue/GLib mainloop/etc.) is an
// external collaborator; Single exists so the module is runnable
// end-to-end without one.
package runloop

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// Cancel stops a timer previously scheduled with AfterFunc. Calling it
// after the timer already fired is a no-op.
type Cancel func()

// Runloop is the cross-thread dispatch primitive the heap binds to.
type Runloop interface {
	// Post queues fn to run on the owner goroutine, from any goroutine.
	Post(fn func())
	// AfterFunc schedules fn to run on the owner goroutine after d,
	// returning a Cancel.
	AfterFunc(d time.Duration, fn func()) Cancel
	// Run pumps posted tasks and due timers until ctx is cancelled or
	// Stop is called.
	Run(ctx context.Context) error
	// Stop requests Run to return once the current task finishes.
	Stop()
	// IsCurrentThread reports whether the calling goroutine is the one
	// currently inside Run — spec.md §5's "is_current_thread() is the
	// sole cross-thread guard".
	IsCurrentThread() bool
}

// Single is a single-goroutine channel-based Runloop: exactly one
// goroutine ever executes posted tasks and timer callbacks, satisfying
// spec.md §5's single-owner-thread rule.
type Single struct {
	tasks   chan func()
	stop    chan struct{}
	timers  timerHeap
	timerMu sync.Mutex
	nextSeq uint64

	mu       sync.Mutex
	ownerSet bool
}

func NewSingle() *Single {
	return &Single{tasks: make(chan func(), 256), stop: make(chan struct{}, 1)}
}

func (s *Single) Post(fn func()) {
	s.tasks <- fn
}

type timerEntry struct {
	at   time.Time
	fn   func()
	seq  uint64
	live bool
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)         { *h = append(*h, x.(*timerEntry)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (s *Single) AfterFunc(d time.Duration, fn func()) Cancel {
	s.timerMu.Lock()
	s.nextSeq++
	entry := &timerEntry{at: time.Now().Add(d), fn: fn, seq: s.nextSeq, live: true}
	heap.Push(&s.timers, entry)
	s.timerMu.Unlock()
	return func() {
		s.timerMu.Lock()
		entry.live = false
		s.timerMu.Unlock()
	}
}

// Run pumps tasks and due timers on the calling goroutine until ctx is
// done or Stop is called.
func (s *Single) Run(ctx context.Context) error {
	s.mu.Lock()
	s.ownerSet = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.ownerSet = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		s.drainDueTimers()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case fn := <-s.tasks:
			fn()
		case <-ticker.C:
		}
	}
}

func (s *Single) drainDueTimers() {
	now := time.Now()
	s.timerMu.Lock()
	var due []*timerEntry
	for s.timers.Len() > 0 && !s.timers[0].at.After(now) {
		e := heap.Pop(&s.timers).(*timerEntry)
		if e.live {
			due = append(due, e)
		}
	}
	s.timerMu.Unlock()
	for _, e := range due {
		e.fn()
	}
}

func (s *Single) Stop() {
	select {
	case s.stop <- struct{}{}:
	default:
	}
}

// IsCurrentThread is best-effort: it reports whether Run is currently
// executing at all, which is correct as long as callers only invoke it
// from within a task or timer callback (the contract spec.md §5 assumes
// for its is_current_thread() guard) rather than from some unrelated
// goroutine racing with Run.
func (s *Single) IsCurrentThread() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownerSet
}
