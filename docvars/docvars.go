// Package docvars builds spec.md §6's built-in document variables — the
// name → object bag bound at stack init: $HVML, $SYSTEM, $DATETIME, $T,
// $L, $STR, $STREAM, $DOC, $SESSION, $EJSON, $TIMERS. Each member is
// either a plain variant, a variant.DynamicVariant for values that must
// recompute on every read, or a Callable (a native variant wrapping a Go
// closure) for function-shaped members — grounded on the teacher's
// modules/*.Module() registration shape (a map[string]object.Object
// literal per module), generalized here to variant.Variant members.
package docvars

import (
	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/variant"
)

// Builtin is a callable document-variable member's Go implementation.
type Builtin func(args []variant.Variant) (variant.Variant, *errkind.Error)

var callableOps = &variant.NativeOps{}

// NewCallable wraps fn as a native variant so it can live as an ordinary
// object member; Invoke unwraps it back out to call it. This is the
// module's one escape hatch for function-shaped values, since spec.md §3
// names no dedicated "function" variant kind.
func NewCallable(fn Builtin) *variant.NativeVariant {
	return variant.NewNative("callable", fn, callableOps)
}

// Invoke calls v (which must have been built by NewCallable) with args.
func Invoke(v variant.Variant, args []variant.Variant) (variant.Variant, *errkind.Error) {
	n, ok := v.(*variant.NativeVariant)
	if !ok || n.TypeName() != "callable" {
		return nil, errkind.New(errkind.InvalidValue, "value is not callable")
	}
	fn, ok := n.Pointer().(Builtin)
	if !ok {
		return nil, errkind.New(errkind.InvalidValue, "value is not callable")
	}
	return fn(args)
}

func object(fields map[string]variant.Variant) *variant.ObjectVariant {
	return variant.NewObject(fields)
}

// Bag holds every built-in document variable, ready to be bound into a
// vdom.Store at stack init under its dollar-sign name.
type Bag struct {
	HVML     *variant.ObjectVariant
	System   *variant.ObjectVariant
	Datetime *variant.ObjectVariant
	Text     *variant.ObjectVariant
	Logical  *variant.ObjectVariant
	Str      *variant.ObjectVariant
	Stream   *variant.ObjectVariant
	Doc      *variant.ObjectVariant
	Session  *variant.ObjectVariant
	EJSON    *variant.ObjectVariant
	Timers   *variant.SetVariant
}

// New builds a fresh Bag. target is the HVML document's target attribute
// (spec.md §6's `<hvml target="html">`), copied into $HVML.target.
func New(target string) *Bag {
	return &Bag{
		HVML:     newHVML(target),
		System:   newSystem(),
		Datetime: newDatetime(),
		Text:     newText(),
		Logical:  newLogical(),
		Str:      newStr(),
		Stream:   newStream(),
		Doc:      newDoc(),
		Session:  object(map[string]variant.Variant{}),
		EJSON:    newEJSON(),
		Timers:   variant.NewSetByKeyField("id"),
	}
}

// Entries returns the name → variant bindings Bag contributes, ready for
// a vdom.Store.Bind loop at document-root scope.
func (b *Bag) Entries() map[string]variant.Variant {
	return map[string]variant.Variant{
		"HVML":     b.HVML,
		"SYSTEM":   b.System,
		"DATETIME": b.Datetime,
		"T":        b.Text,
		"L":        b.Logical,
		"STR":      b.Str,
		"STREAM":   b.Stream,
		"DOC":      b.Doc,
		"SESSION":  b.Session,
		"EJSON":    b.EJSON,
		"TIMERS":   b.Timers,
	}
}
