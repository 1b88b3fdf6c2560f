package runtime

import (
	"sync"

	"github.com/purc-lang/purc/request"
	"github.com/purc-lang/purc/runloop"
)

// Heap registers every coroutine sharing one owner thread/runloop, plus
// the request subsystem they issue fetches through. Grounded on
// vm/vm.go's single-owned-execution-context shape, generalized from one
// VM to many coroutines using the ready/wait cooperative run loop found
// in the retrieval pack's MongooseMoo-barn scheduler reference (a
// goroutine-driven tick loop over a task registry), cited in
// SPEC_FULL.md §6.3.
type Heap struct {
	mu         sync.Mutex
	loop       runloop.Runloop
	requests   *request.Manager
	resolver   OpsResolver
	coroutines []*Coroutine
	running    *Coroutine
}

// NewHeap builds a heap bound to loop, wiring reqMgr (which must itself
// already be bound to the same loop) for the request lifecycle spec.md
// §4.8 describes. resolver maps a vDOM tag to its ElementOps (e.g.
// elemops.Table plus a default-output-element fallback) and is handed to
// every coroutine Spawn creates, so the scheduler can dispatch each child
// frame on its own tag rather than its parent's; a nil resolver is fine
// for tests that drive hand-rolled Ops directly.
func NewHeap(loop runloop.Runloop, reqMgr *request.Manager, resolver OpsResolver) *Heap {
	return &Heap{loop: loop, requests: reqMgr, resolver: resolver}
}

// Spawn allocates a coroutine and registers it on the heap READY to run
// its first frame.
func (h *Heap) Spawn() *Coroutine {
	co := NewCoroutine()
	co.OpsFor = h.resolver
	h.mu.Lock()
	h.coroutines = append(h.coroutines, co)
	h.mu.Unlock()
	return co
}

// Current returns the coroutine presently executing a step, or nil
// between ticks.
func (h *Heap) Current() *Coroutine {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

// Remove unlinks co from the heap, e.g. once it has exited and has no
// pending observers or requests.
func (h *Heap) Remove(co *Coroutine) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, c := range h.coroutines {
		if c == co {
			h.coroutines = append(h.coroutines[:i], h.coroutines[i+1:]...)
			return
		}
	}
}

// Live returns a snapshot of the currently registered coroutines.
func (h *Heap) Live() []*Coroutine {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Coroutine, len(h.coroutines))
	copy(out, h.coroutines)
	return out
}

// Tick runs one scheduling round per spec.md §4.5: every READY coroutine
// is stepped until it either WAITs or exhausts its frame stack; a
// coroutine already WAITing is skipped. Tick returns true if any
// coroutine made progress, so the caller knows whether to tick again
// immediately or park until an external wakeup (a timer fire, a landed
// request, a dispatched message).
func (h *Heap) Tick() bool {
	progressed := false
	for _, co := range h.Live() {
		if co.State == Wait {
			continue
		}
		if co.IsDone() && co.Waits == 0 {
			h.Remove(co)
			continue
		}
		h.runCoroutine(co)
		progressed = true
	}
	return progressed
}

// runCoroutine drives co until its frame stack is empty or it parks (one
// call runs as many phase transitions as that takes, not just one),
// marking it the heap's currently-running coroutine for the duration so
// nested callbacks (request land, timer fire) can find their owner via
// Heap.Current.
func (h *Heap) runCoroutine(co *Coroutine) {
	h.mu.Lock()
	h.running = co
	h.mu.Unlock()

	co.State = Run
	for !co.IsDone() {
		if Step(co) {
			break
		}
	}
	if co.State == Run {
		if co.Waits > 0 {
			co.State = Wait
		} else {
			co.State = Ready
		}
	}

	h.mu.Lock()
	h.running = nil
	h.mu.Unlock()
}

// Requests exposes the heap's bound request manager so element ops can
// issue fetches.
func (h *Heap) Requests() *request.Manager { return h.requests }

// Wake marks co READY again (e.g. a hibernating SYNC request landing, or
// a timer firing into its owning coroutine) and posts a tick onto the
// heap's runloop.
func (h *Heap) Wake(co *Coroutine) {
	co.State = Ready
	h.loop.Post(func() { h.Tick() })
}

// Run drives the heap to quiescence: repeated Tick calls while any
// coroutine reports progress, then leaves the runloop running so
// parked coroutines can be woken by external events (spec.md §4.5's
// "stop the runloop until external wakeup").
func (h *Heap) Run() {
	for h.Tick() {
	}
}
