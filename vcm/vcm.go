// Package vcm declares the single seam between the interpreter core and
// the value-construction-tree expression evaluator spec.md §1 scopes
// out as an external collaborator: "invoked as a pure function
// eval(tree, stack, silently) -> variant". Element ops never evaluate a
// VCM tree themselves; they hold an Evaluator and call Eval.
package vcm

import (
	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/variant"
	"github.com/purc-lang/purc/vdom"
)

// Stack is whatever frame-stack view an evaluator needs to resolve
// symbol variables ('<', '@', '!', '?', '%', '^', '&', ':') and scoped
// variables while walking a VCM tree. It is a minimal interface rather
// than a concrete *runtime.Coroutine so this package never imports
// runtime (runtime imports vcm, not the reverse).
type Stack interface {
	// ResolveScoped looks up a '$'-prefixed name starting at scope and
	// walking its ancestor chain.
	ResolveScoped(scope *vdom.Node, name string) (variant.Variant, bool)
	// ResolveSymbol looks up one of the eight single-character symbol
	// variables, starting at the current frame and walking outward to the
	// first frame where it is set.
	ResolveSymbol(ch byte) (variant.Variant, bool)
}

// Evaluator turns an opaque vdom.VCMExpr into a variant, given the
// calling stack and whether evaluation should run "silently" (errors
// demoted to undefined rather than raised).
type Evaluator interface {
	Eval(tree vdom.VCMExpr, stack Stack, silently bool) (variant.Variant, *errkind.Error)
}

// Literal is a trivial Evaluator that treats every VCMExpr as an
// already-evaluated variant.Variant, or nil as undefined. It exists for
// tests and for hosts that pre-evaluate attributes before handing them
// to the core; a real HVML installation supplies its own Evaluator
// backed by the VCM grammar.
type Literal struct{}

func (Literal) Eval(tree vdom.VCMExpr, stack Stack, silently bool) (variant.Variant, *errkind.Error) {
	if tree == nil {
		return variant.UndefinedValue, nil
	}
	if v, ok := tree.(variant.Variant); ok {
		return v, nil
	}
	if !silently {
		return nil, errkind.New(errkind.InvalidValue, "literal evaluator: %T is not a pre-evaluated variant", tree)
	}
	return variant.UndefinedValue, nil
}
