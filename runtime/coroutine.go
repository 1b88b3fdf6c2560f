package runtime

import (
	"regexp"
	"sync/atomic"

	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/vdom"
	"github.com/purc-lang/purc/variant"
)

// State is a coroutine's scheduling state (spec.md §3's "state (READY |
// RUN | WAIT)").
type State int

const (
	Ready State = iota
	Run
	Wait
)

// Stage distinguishes a coroutine's first pass over its document from
// its steady-state event handling (spec.md §3).
type Stage int

const (
	FirstRound Stage = iota
	EventLoop
)

// Exception is the coroutine's single-slot captured error, moved out of
// the thread-local error slot at every scheduler step boundary (spec.md
// §4.4's failure semantics / §7's propagation rules).
type Exception struct {
	Err      *errkind.Error
	Info     variant.Variant
	CallSite *Frame
}

// ObserverKind selects which of the coroutine's three observer lists an
// observer belongs to, keyed by the kind of the observed variant (spec.md
// §4.6: "Selects a list on the coroutine keyed by kind(observed): dynamic
// / native / common").
type ObserverKind int

const (
	ObserveCommon ObserverKind = iota
	ObserveDynamic
	ObserveNative
)

// Observer is one registered (observed, event, sub) watch, created by
// RegisterObserver and consumed by DispatchMessage.
type Observer struct {
	ID       uint64
	Kind     ObserverKind
	Observed variant.Variant
	Event    variant.Event
	Sub      string
	subRegex *regexp.Regexp

	ScopeNode   *vdom.Node
	EDOMElement any
	Pos         *vdom.Node
	Ops         ElementOps

	OnRevoke     func(data any)
	OnRevokeData any

	revoked bool
}

// matches reports whether event/sub on this observer matches a dispatched
// message, honoring spec.md §4.6's "literal equality OR regex match when
// the stored sub is a regex-form string".
func (o *Observer) matches(event variant.Event, sub string) bool {
	if o.Event != event {
		return false
	}
	if o.subRegex != nil {
		return o.subRegex.MatchString(sub)
	}
	return o.Sub == sub
}

// Coroutine is one unit of HVML interpretation: a frame stack plus the
// scheduling/exception/observer state spec.md §3 names. Grounded on
// vm/vm.go's VirtualMachine shape (one owned execution context per
// script), generalized to coroutine-per-Heap cooperative multiplexing.
type Coroutine struct {
	ID uint64

	// OpsFor resolves each child frame's own ElementOps by its vDOM
	// tag (spec.md §4.4's per-tag dispatch table), set by Heap.Spawn. A
	// nil resolver, or a tag it doesn't recognize, falls back to the
	// parent frame's Ops — the shape every existing hand-rolled-Ops unit
	// test in this package relies on.
	OpsFor OpsResolver

	frames []*Frame

	State State
	Stage Stage
	Waits int

	Exception *Exception

	observersByKind [3][]*Observer
	nextObserverID  uint64

	asyncRequestIDs []uint64

	// exited is not set anywhere in this module; the Heap unlinks a
	// coroutine once IsDone is true and Waits is zero.
	exited   bool
	exitVal  variant.Variant
}

var coroutineIDSeq uint64

// NewCoroutine allocates a coroutine with an empty frame stack, ready to
// have its root frame pushed by the caller.
func NewCoroutine() *Coroutine {
	return &Coroutine{
		ID:    atomic.AddUint64(&coroutineIDSeq, 1),
		State: Ready,
		Stage: FirstRound,
	}
}

// Current returns the coroutine's innermost (currently executing) frame,
// or nil if the stack is empty.
func (c *Coroutine) Current() *Frame {
	if len(c.frames) == 0 {
		return nil
	}
	return c.frames[len(c.frames)-1]
}

// Push installs f as the new innermost frame.
func (c *Coroutine) Push(f *Frame) {
	c.frames = append(c.frames, f)
}

// Pop removes and releases the innermost frame, setting the popped
// frame's result into its new parent's '?' symbol (spec.md §4.3's
// "result_from_child").
func (c *Coroutine) Pop() {
	n := len(c.frames)
	if n == 0 {
		return
	}
	popped := c.frames[n-1]
	c.frames = c.frames[:n-1]
	result := popped.GetSymbol(SymResult)
	popped.release()
	if parent := c.Current(); parent != nil {
		parent.SetSymbol(SymResult, result)
	} else {
		c.exitVal = result
	}
}

// FramesFrom returns the live frame stack starting at from (inclusive)
// and walking outward to the root, innermost first. Used by the VCM
// evaluator's symbol lookup to find the nearest enclosing frame that set
// a given symbol, since child frames never inherit one (spec.md §4.3).
// A from not currently on the stack yields just []*Frame{from}.
func (c *Coroutine) FramesFrom(from *Frame) []*Frame {
	idx := -1
	for i, f := range c.frames {
		if f == from {
			idx = i
			break
		}
	}
	if idx < 0 {
		return []*Frame{from}
	}
	out := make([]*Frame, 0, idx+1)
	for i := idx; i >= 0; i-- {
		out = append(out, c.frames[i])
	}
	return out
}

// Depth returns the number of live frames.
func (c *Coroutine) Depth() int { return len(c.frames) }

// IsDone reports whether the frame stack is empty.
func (c *Coroutine) IsDone() bool { return len(c.frames) == 0 }

// ExitValue returns the result carried out of the coroutine's last
// popped root frame.
func (c *Coroutine) ExitValue() variant.Variant {
	if c.exitVal == nil {
		return variant.UndefinedValue
	}
	return c.exitVal
}

// RaiseException captures err into the coroutine's exception slot,
// per spec.md §4.4/§7: whenever an operation reports an error, the
// scheduler moves it into the coroutine's single exception slot. A
// frame marked Silently instead demotes the error to a no-op, per §7's
// "frames marked silently downgrade errors to warnings".
func (c *Coroutine) RaiseException(err *errkind.Error, callSite *Frame) {
	if callSite != nil && callSite.Silently {
		return
	}
	c.Exception = &Exception{Err: err, CallSite: callSite}
}

// ClearException consumes the coroutine's exception slot (e.g. a
// matching <catch> frame during on_popping).
func (c *Coroutine) ClearException() {
	c.Exception = nil
}
