// Package runtime implements spec.md §4's frame stack, coroutine,
// heap, and observer/message dispatch: the cooperative scheduler that
// walks each coroutine's vDOM frames through the four-phase transition
// table. Grounded structurally on the teacher's vm/frame.go (the
// fixed-array-then-overflow storage pattern, reused here for the eight
// symbol variables instead of function locals) and vm/vm.go (one
// interpreter instance owning a run loop), generalized from "one VM per
// script" to "many coroutines per Heap" using the cooperative
// ready/wait scheduling shape found in the retrieval pack's
// other_examples/ MongooseMoo-barn scheduler reference.
package runtime

import (
	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/vdom"
	"github.com/purc-lang/purc/variant"
)

// Symbol indexes the eight named symbol variables spec.md §4.3 assigns
// index 0..7, mirroring vm/frame.go's DefaultFrameLocals fixed array.
type Symbol int

const (
	SymInput   Symbol = iota // '<'
	SymAt                    // '@'
	SymScratch               // '!'
	SymResult                // '?'
	SymPercent               // '%'
	SymCaret                 // '^'
	SymAmp                   // '&'
	SymColon                 // ':'
	symbolCount
)

func (s Symbol) String() string {
	switch s {
	case SymInput:
		return "<"
	case SymAt:
		return "@"
	case SymScratch:
		return "!"
	case SymResult:
		return "?"
	case SymPercent:
		return "%"
	case SymCaret:
		return "^"
	case SymAmp:
		return "&"
	case SymColon:
		return ":"
	default:
		return "?unknown?"
	}
}

// NextStep is the frame's current position in the phase transition table
// (spec.md §4.4).
type NextStep int

const (
	AfterPushed NextStep = iota
	SelectChild
	OnPopping
	Rerun
)

// Kind distinguishes a NORMAL frame (tied to a real vDOM element) from a
// PSEUDO frame (synthetic). The observer dispatch path pushes NORMAL
// frames; nothing in this module creates a PSEUDO one.
type Kind int

const (
	Normal Kind = iota
	Pseudo
)

// Preemptor is a one-shot transition override installed on a frame; if
// present when the frame's next step is AfterPushed, it runs instead of
// that step and then clears itself. It is not consulted in the other
// phases.
type Preemptor func(f *Frame) NextStep

// Frame is one element of a coroutine's execution stack, grounded on
// vm/frame.go's field layout (ActivateCode/ActivateFunction's
// locals-storage split becomes symbolVars' fixed array here).
type Frame struct {
	Kind Kind

	// Pos is the current vDOM element (nil for PSEUDO frames whose
	// handler body runs detached from any live element).
	Pos *vdom.Node
	// Scope is the vDOM node used for scoped-var ancestor-chain lookup —
	// spec.md §4.2's invariant that lookup walks Scope's ancestors, not
	// the live frame spine.
	Scope *vdom.Node
	// EDOMElement is the current output-DOM insertion point.
	EDOMElement any

	Ctxt        any
	CtxtDestroy func(ctxt any)

	AttrVars *variant.ObjectVariant

	symbolVars [symbolCount]variant.Variant

	NextStep  NextStep
	Silently  bool
	Preemptor Preemptor

	Ops ElementOps

	// childCursor is private iteration state for SelectChild; element
	// ops that need richer iteration state (iterate/choose/reduce) keep
	// their own cursor in Ctxt instead.
	childCursor int
}

// NewFrame allocates a frame with every symbol variable initialized to
// undefined, per spec.md §4.3's "all symbols start as undefined; child
// frames inherit none".
func NewFrame(kind Kind, ops ElementOps) *Frame {
	f := &Frame{Kind: kind, Ops: ops, NextStep: AfterPushed}
	for i := range f.symbolVars {
		f.symbolVars[i] = variant.UndefinedValue
	}
	return f
}

// GetSymbol returns the frame's current value for k.
func (f *Frame) GetSymbol(k Symbol) variant.Variant {
	return f.symbolVars[k]
}

// SetSymbol unrefs the old value and refs the new one before installing
// it, per spec.md §4.3's "setting a symbol unrefs the old value before
// refing the new".
func (f *Frame) SetSymbol(k Symbol, v variant.Variant) {
	old := f.symbolVars[k]
	if old != nil {
		old.Unref()
	}
	if v != nil {
		v.Ref()
	}
	f.symbolVars[k] = v
}

// IncPercent increments the '%' iteration counter.
func (f *Frame) IncPercent() {
	cur := f.GetSymbol(SymPercent)
	n, ok := cur.(*variant.NumberVariant)
	next := 1.0
	if ok {
		next = n.Value() + 1
	}
	f.SetSymbol(SymPercent, variant.NewNumber(next))
}

// release unrefs every live symbol variable, called once when a frame
// pops for good.
func (f *Frame) release() {
	for i := range f.symbolVars {
		if f.symbolVars[i] != nil {
			f.symbolVars[i].Unref()
			f.symbolVars[i] = nil
		}
	}
	if f.CtxtDestroy != nil {
		f.CtxtDestroy(f.Ctxt)
	}
}

// OpsResolver maps a vDOM tag name to the ElementOps that implement it,
// per spec.md §4.4's per-tag operation table. The scheduler calls a
// coroutine's resolver for every child frame it pushes so a tag's own
// Ops drive it, rather than inheriting whatever Ops happened to be
// running its parent.
type OpsResolver func(tag string) (ElementOps, bool)

// ElementOps is the per-tag vtable spec.md §4.4 names: after_pushed,
// select_child, rerun, on_popping. The scheduler calls all four methods
// directly; there is no default for a phase an implementation does not
// care about, so no-op phases are written out (SelectChild returning no
// child, Rerun returning false, OnPopping returning true).
type ElementOps interface {
	AfterPushed(co *Coroutine, f *Frame) (ctxt any, ok bool, err *errkind.Error)
	SelectChild(co *Coroutine, f *Frame) (child *vdom.Node, ok bool, err *errkind.Error)
	OnPopping(co *Coroutine, f *Frame) (pop bool, err *errkind.Error)
	Rerun(co *Coroutine, f *Frame) (rerun bool, err *errkind.Error)
}
