// Package request implements spec.md §4.8's request subsystem: RAW/SYNC/
// ASYNC fetches against a pluggable Fetcher, carried through a
// PENDING/ACTIVATING/COMPLETE/HIBERNATING/CANCELLED/DYING state machine
// whose callbacks always land back on the owner runloop.
package request

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/purc-lang/purc/runloop"
)

// Kind distinguishes the three request associations spec.md §4.8 names.
type Kind int

const (
	// RAW requests have no frame association; the callback runs on the
	// owner thread as soon as the result lands.
	RAW Kind = iota
	// SYNC requests are bound to the frame that issued them: if that
	// frame is still current when the result lands, the callback runs
	// immediately, otherwise the request hibernates until it is current
	// again.
	SYNC
	// ASYNC requests are bound to the issuing coroutine but no particular
	// frame; they hibernate whenever the coroutine is not READY.
	ASYNC
)

// State is a request's position in its life-cycle. The two paths are
// PENDING -> ACTIVATING -> (COMPLETE | HIBERNATING) and
// PENDING -> CANCELLED -> DYING -> (released, not itself a State).
type State int

const (
	Pending State = iota
	Activating
	Complete
	Hibernating
	Cancelled
	Dying
)

// Spec describes a request to be handed to a Fetcher.
type Spec struct {
	URI     string
	Method  string
	Headers map[string]string
	Body    []byte
}

// Result is what a Fetcher returns for a completed Spec.
type Result struct {
	Status int
	Header map[string]string
	Body   []byte
}

// Fetcher performs the actual I/O for a request, off the owner thread.
// spec.md §1 scopes the real fetcher out of core; this module ships
// HTTPFetcher and SQLFetcher as default implementations.
type Fetcher interface {
	Fetch(ctx context.Context, spec *Spec) (*Result, error)
}

// CurrentFrameFunc reports whether frameID is still the current frame of
// its coroutine, used to decide whether a SYNC request's callback may run
// immediately or must hibernate.
type CurrentFrameFunc func(coroutineID, frameID uint64) bool

// ReadyFunc reports whether coroutineID is in the READY state, used to
// decide whether an ASYNC request's callback may run immediately.
type ReadyFunc func(coroutineID uint64) bool

// Callback runs on the owner thread once a request completes (or is
// cancelled), receiving the result (nil on cancellation/error) and any
// fetch error.
type Callback func(res *Result, err error)

// Request is one in-flight (or settled) fetch, owned by exactly one
// Manager for its whole lifetime.
type Request struct {
	ID          uint64
	Kind        Kind
	CoroutineID uint64
	FrameID     uint64
	Spec        *Spec
	Callback    Callback

	mu    sync.Mutex
	state State
}

func (r *Request) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Request) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Manager owns the heap's five request lists (pending, active,
// hibernating, cancelled, dying — spec.md §4.8/§5) and marshals every
// Fetcher completion back onto the owner runloop so callback execution
// always runs on the owner thread.
type Manager struct {
	loop    runloop.Runloop
	fetcher Fetcher
	isFrame CurrentFrameFunc
	isReady ReadyFunc

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]*Request
	active  map[uint64]*Request
	hiber   map[uint64]*Request
	cancel  map[uint64]*Request
	dying   map[uint64]*Request
}

func NewManager(loop runloop.Runloop, fetcher Fetcher, isFrame CurrentFrameFunc, isReady ReadyFunc) *Manager {
	return &Manager{
		loop:    loop,
		fetcher: fetcher,
		isFrame: isFrame,
		isReady: isReady,
		pending: map[uint64]*Request{},
		active:  map[uint64]*Request{},
		hiber:   map[uint64]*Request{},
		cancel:  map[uint64]*Request{},
		dying:   map[uint64]*Request{},
	}
}

// Issue allocates and activates a new request, dispatching the fetch on
// a background goroutine and routing its completion back through
// Manager.loop.
func (m *Manager) Issue(ctx context.Context, kind Kind, coroutineID, frameID uint64, spec *Spec, cb Callback) *Request {
	req := &Request{
		ID:          atomic.AddUint64(&m.nextID, 1),
		Kind:        kind,
		CoroutineID: coroutineID,
		FrameID:     frameID,
		Spec:        spec,
		Callback:    cb,
		state:       Pending,
	}
	m.mu.Lock()
	m.pending[req.ID] = req
	m.mu.Unlock()

	// Activation is posted rather than run inline so a request spends a
	// real tick in PENDING, giving CancelAll a window to catch it before
	// the fetcher goroutine starts (spec.md §8's E6: a coroutine that
	// exits before either of two outstanding async fetches lands must
	// see both move PENDING -> CANCELLED -> DYING, never ACTIVATING).
	m.loop.Post(func() { m.activate(ctx, req) })
	return req
}

func (m *Manager) activate(ctx context.Context, req *Request) {
	if req.State() != Pending {
		return
	}
	m.move(req, Activating, m.pending, m.active)
	go func() {
		res, err := m.fetcher.Fetch(ctx, req.Spec)
		m.loop.Post(func() { m.land(req, res, err) })
	}()
}

// land runs on the owner thread once a Fetcher call returns, deciding
// between immediate callback delivery and hibernation per spec.md §4.8's
// per-kind rule.
func (m *Manager) land(req *Request, res *Result, err error) {
	if req.State() == Cancelled || req.State() == Dying {
		return
	}
	deliver := true
	switch req.Kind {
	case SYNC:
		deliver = m.isFrame == nil || m.isFrame(req.CoroutineID, req.FrameID)
	case ASYNC:
		deliver = m.isReady == nil || m.isReady(req.CoroutineID)
	}
	if !deliver {
		m.move(req, Hibernating, m.active, m.hiber)
		return
	}
	m.move(req, Complete, m.active, nil)
	req.Callback(res, err)
}

// WakeHibernating re-delivers every hibernating request whose frame/
// coroutine has become current/ready again. Call this whenever a frame
// becomes current or a coroutine transitions to READY.
func (m *Manager) WakeHibernating() {
	m.mu.Lock()
	var wake []*Request
	for _, req := range m.hiber {
		ready := true
		switch req.Kind {
		case SYNC:
			ready = m.isFrame == nil || m.isFrame(req.CoroutineID, req.FrameID)
		case ASYNC:
			ready = m.isReady == nil || m.isReady(req.CoroutineID)
		}
		if ready {
			wake = append(wake, req)
		}
	}
	m.mu.Unlock()
	for _, req := range wake {
		m.moveLocked(req, Complete, m.hiber, nil)
		req.Callback(nil, nil)
	}
}

// Cancel transitions a PENDING request to CANCELLED and invokes its
// cancel path; a request that is already ACTIVATING is left to run its
// callback path to completion, per spec.md §5's cancel_req rule.
func (m *Manager) Cancel(req *Request) {
	if req.State() != Pending {
		return
	}
	m.move(req, Cancelled, m.pending, m.cancel)
	m.move(req, Dying, m.cancel, m.dying)
	m.mu.Lock()
	delete(m.dying, req.ID)
	m.mu.Unlock()
	if req.Callback != nil {
		req.Callback(nil, context.Canceled)
	}
}

// CancelAll cancels every request belonging to coroutineID — used at
// coroutine shutdown to walk its async_request_ids array (spec.md §5).
func (m *Manager) CancelAll(coroutineID uint64) {
	m.mu.Lock()
	var toCancel []*Request
	for _, req := range m.pending {
		if req.CoroutineID == coroutineID {
			toCancel = append(toCancel, req)
		}
	}
	m.mu.Unlock()
	for _, req := range toCancel {
		m.Cancel(req)
	}
}

func (m *Manager) move(req *Request, to State, from, into map[uint64]*Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moveLocked(req, to, from, into)
}

func (m *Manager) moveLocked(req *Request, to State, from, into map[uint64]*Request) {
	if from != nil {
		delete(from, req.ID)
	}
	req.setState(to)
	if into != nil {
		into[req.ID] = req
	}
}
