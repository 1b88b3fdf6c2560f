// Package timer implements spec.md §4.7's timer subsystem:
// timer_create/set_interval/start/start_oneshot/stop/destroy wrapping a
// runloop.Runloop, plus the $TIMERS set-variant binding that translates
// grow/shrink/change events on that set into timer lifecycle calls.
package timer

import (
	"sync"
	"time"

	"github.com/purc-lang/purc/runloop"
	"github.com/purc-lang/purc/variant"
)

// FireFunc is invoked on the runloop's owner thread when a timer fires.
type FireFunc func(id string, ctxt any)

// Timer is a single named, rearmable countdown bound to a runloop.
type Timer struct {
	mgr      *Manager
	id       string
	ctxt     any
	fire     FireFunc
	mu       sync.Mutex
	interval time.Duration
	repeat   bool
	cancel   runloop.Cancel
}

// ID returns the timer's identifier, used to key $TIMERS set elements and
// to build "expired:<id>" message names (spec.md §8 scenario E3).
func (t *Timer) ID() string { return t.id }

// SetInterval changes the period used by the next Start/StartOneshot call.
// It does not rearm an already-running timer.
func (t *Timer) SetInterval(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interval = d
}

// Start (re)arms the timer as repeating, cancelling any prior pending fire.
func (t *Timer) Start() {
	t.arm(true)
}

// StartOneshot (re)arms the timer to fire exactly once.
func (t *Timer) StartOneshot() {
	t.arm(false)
}

func (t *Timer) arm(repeat bool) {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.repeat = repeat
	interval := t.interval
	t.mu.Unlock()
	t.scheduleNext(interval)
}

func (t *Timer) scheduleNext(interval time.Duration) {
	t.mu.Lock()
	t.cancel = t.mgr.loop.AfterFunc(interval, func() {
		t.mu.Lock()
		repeat := t.repeat
		next := t.interval
		t.mu.Unlock()
		t.fire(t.id, t.ctxt)
		if repeat {
			t.scheduleNext(next)
		}
	})
	t.mu.Unlock()
}

// Stop cancels any pending fire without forgetting the timer.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Destroy stops the timer and removes it from its Manager.
func (t *Timer) Destroy() {
	t.Stop()
	t.mgr.forget(t.id)
}

// Manager owns every live Timer bound to one runloop, keyed by id —
// spec.md §4.7's "timer_create(id, ctxt, fire-fn) allocates a timer bound
// to the current runloop".
type Manager struct {
	loop runloop.Runloop
	mu   sync.Mutex
	live map[string]*Timer
}

func NewManager(loop runloop.Runloop) *Manager {
	return &Manager{loop: loop, live: map[string]*Timer{}}
}

// Create allocates (but does not start) a timer named id.
func (m *Manager) Create(id string, ctxt any, fire FireFunc) *Timer {
	t := &Timer{mgr: m, id: id, ctxt: ctxt, fire: fire, interval: 0}
	m.mu.Lock()
	m.live[id] = t
	m.mu.Unlock()
	return t
}

// Lookup returns the live timer for id, if any.
func (m *Manager) Lookup(id string) (*Timer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.live[id]
	return t, ok
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	delete(m.live, id)
	m.mu.Unlock()
}

// BindTimersSet wires a $TIMERS set-variant (elements are objects with
// "id", "interval", "active" members) to this Manager: grow creates and
// starts a timer and shrink destroys it. Each element also gets a Grow
// listener that re-applies its interval and active members, so inserting
// a new member into an element updates its timer; replacing the value of
// an existing member fires no event, and the timer keeps its old
// interval and running state. dispatch is called
// with "expired:<id>" on every fire so the caller's observer/message bus
// can route it (spec.md §8 scenario E3).
func (m *Manager) BindTimersSet(set *variant.SetVariant, dispatch func(message string)) {
	set.RegisterPostListener(variant.Grow, func(_ variant.Variant, _ variant.Event, _ any, args []variant.Variant) {
		elem, ok := args[1].(*variant.ObjectVariant)
		if !ok {
			return
		}
		m.bindElement(elem, dispatch)
	}, nil)

	set.RegisterPostListener(variant.Shrink, func(_ variant.Variant, _ variant.Event, _ any, args []variant.Variant) {
		old, ok := args[3].(*variant.ObjectVariant)
		if !ok {
			return
		}
		id := timerElementID(old)
		if id == "" {
			return
		}
		if t, found := m.Lookup(id); found {
			t.Destroy()
		}
	}, nil)

	set.Enumerate(func(_, value variant.Variant) bool {
		if elem, ok := value.(*variant.ObjectVariant); ok {
			m.bindElement(elem, dispatch)
		}
		return true
	})
}

func (m *Manager) bindElement(elem *variant.ObjectVariant, dispatch func(message string)) {
	id := timerElementID(elem)
	if id == "" {
		return
	}
	t := m.Create(id, nil, func(fired string, _ any) {
		if dispatch != nil {
			dispatch("expired:" + fired)
		}
	})
	applyTimerElement(t, elem)

	elem.RegisterPostListener(variant.Grow, func(_ variant.Variant, _ variant.Event, _ any, _ []variant.Variant) {
		applyTimerElement(t, elem)
	}, nil)
}

func applyTimerElement(t *Timer, elem *variant.ObjectVariant) {
	if v, err := elem.Get("interval", true); err == nil {
		if n, ok := v.(*variant.NumberVariant); ok {
			t.SetInterval(time.Duration(n.Value()) * time.Millisecond)
		}
	}
	active := "on"
	if v, err := elem.Get("active", true); err == nil {
		if s, ok := v.(*variant.StringVariant); ok {
			active = s.Value()
		}
	}
	switch active {
	case "on", "":
		t.Start()
	case "once":
		t.StartOneshot()
	default:
		t.Stop()
	}
}

func timerElementID(elem *variant.ObjectVariant) string {
	v, err := elem.Get("id", true)
	if err != nil {
		return ""
	}
	s, ok := v.(*variant.StringVariant)
	if !ok {
		return ""
	}
	return s.Value()
}
