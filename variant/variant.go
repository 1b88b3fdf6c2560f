// Package variant implements the interpreter's tagged, reference-counted
// dynamic value system described in the core design: undefined, null,
// boolean, number, long-int, unsigned-long-int, string, byte-sequence,
// array, object, set, tuple, dynamic, and native kinds, each supporting
// Ref/Unref and (for containers) grow/shrink post-mutation listeners.
//
// Refcounting replaces the teacher's garbage-collected object.Object: every
// constructor returns a Variant owned by the caller at refcount 1, and
// reaching refcount zero invokes the kind's release behavior (unreffing a
// container's elements, and for *NativeVariant calling Eraser then
// OnRelease). Listeners registered on a container are not revoked on
// release.
package variant

import (
	"fmt"
	"sync/atomic"

	"github.com/purc-lang/purc/errkind"
)

// Variant is the interface every value kind implements. It mirrors the
// teacher's object.Object (Type/Inspect/Interface/Equals/IsTruthy) plus the
// refcounting and attribute-style access the core design requires.
type Variant interface {
	Kind() Kind
	Inspect() string
	Interface() any
	Equals(other Variant) bool
	IsTruthy() bool

	// Ref increments the refcount and returns the same Variant, so callers
	// can write `held := v.Ref()` at the point they take ownership.
	Ref() Variant
	// Unref decrements the refcount, releasing the value when it reaches
	// zero. Unref on an already-released value panics: the invariant in
	// spec.md §3 is that refcounts never go negative.
	Unref()
	// RefCount reports the current reference count, for diagnostics and
	// the refcount-balance testable property.
	RefCount() int32
}

// base is embedded by every concrete Variant type and supplies the
// refcounting machinery plus safe defaults, the way the teacher's
// object.base supplies GetAttr/SetAttr/IsTruthy defaults.
type base struct {
	refs    atomic.Int32
	release func()
}

func newBase() base {
	b := base{}
	b.refs.Store(1)
	return b
}

func (b *base) RefCount() int32 {
	return b.refs.Load()
}

func (b *base) ref() {
	b.refs.Add(1)
}

// unref decrements the refcount and runs release exactly once when it
// reaches zero. Concrete types call this from their Unref() so they can
// pass their own release behavior.
func (b *base) unref(release func()) {
	n := b.refs.Add(-1)
	if n < 0 {
		panic(fmt.Sprintf("variant: refcount went negative (%d)", n))
	}
	if n == 0 && release != nil {
		release()
	}
}

func (b *base) IsTruthy() bool { return true }

// Singletons for the two value-less kinds plus the two booleans, mirroring
// object.Nil/object.True/object.False. These are never released: callers
// may freely Ref/Unref them and the base refcount simply free-wheels,
// because UndefinedVariant/NullVariant/BoolVariant never hold listeners or
// other resources that need releasing.
var (
	UndefinedValue = &UndefinedVariant{base: newBase()}
	NullValue      = &NullVariant{base: newBase()}
	True           = &BoolVariant{base: newBase(), value: true}
	False          = &BoolVariant{base: newBase(), value: false}
)

// Bool returns the canonical True/False singleton for value.
func Bool(value bool) *BoolVariant {
	if value {
		return True
	}
	return False
}

// UndefinedVariant is the "undefined" kind: the initial value of every
// unset symbol variable and uninitialized scoped variable.
type UndefinedVariant struct{ base }

func (u *UndefinedVariant) Kind() Kind            { return Undefined }
func (u *UndefinedVariant) Inspect() string        { return "undefined" }
func (u *UndefinedVariant) Interface() any         { return nil }
func (u *UndefinedVariant) IsTruthy() bool         { return false }
func (u *UndefinedVariant) Ref() Variant           { u.ref(); return u }
func (u *UndefinedVariant) Unref()                 { u.unref(nil) }
func (u *UndefinedVariant) Equals(other Variant) bool {
	_, ok := other.(*UndefinedVariant)
	return ok
}

// NullVariant is the explicit "null" kind, distinct from undefined.
type NullVariant struct{ base }

func (n *NullVariant) Kind() Kind     { return Null }
func (n *NullVariant) Inspect() string { return "null" }
func (n *NullVariant) Interface() any  { return nil }
func (n *NullVariant) IsTruthy() bool  { return false }
func (n *NullVariant) Ref() Variant    { n.ref(); return n }
func (n *NullVariant) Unref()          { n.unref(nil) }
func (n *NullVariant) Equals(other Variant) bool {
	_, ok := other.(*NullVariant)
	return ok
}

// BoolVariant is the "boolean" kind.
type BoolVariant struct {
	base
	value bool
}

func (b *BoolVariant) Kind() Kind     { return Boolean }
func (b *BoolVariant) Value() bool    { return b.value }
func (b *BoolVariant) Interface() any  { return b.value }
func (b *BoolVariant) IsTruthy() bool  { return b.value }
func (b *BoolVariant) Ref() Variant    { b.ref(); return b }
func (b *BoolVariant) Unref()          { b.unref(nil) }
func (b *BoolVariant) Inspect() string {
	if b.value {
		return "true"
	}
	return "false"
}
func (b *BoolVariant) Equals(other Variant) bool {
	o, ok := other.(*BoolVariant)
	return ok && o.value == b.value
}

// TypeError builds an errkind.Error for a kind-mismatch in an operation.
func TypeError(op string, v Variant) *errkind.Error {
	return errkind.New(errkind.InvalidValue, "%s: unexpected kind %s", op, v.Kind())
}
