// Package elemops implements the spec.md §6 element-operation vtable for
// each of the 25 HVML tags, grouped into the three families SPEC_FULL.md
// §6.2 names: sequencers, iterators/selectors, control/IO. Every Ops type
// here is stateless and shared across frames; per-invocation state lives
// on runtime.Frame.Ctxt, exactly as the teacher's bytecode dispatch keeps
// no state outside the active frame/stack.
package elemops

import (
	"github.com/purc-lang/purc/edom"
	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/executil"
	"github.com/purc-lang/purc/request"
	"github.com/purc-lang/purc/runtime"
	"github.com/purc-lang/purc/variant"
	"github.com/purc-lang/purc/vcm"
	"github.com/purc-lang/purc/vdom"
)

// Context bundles the external collaborators spec.md §1 scopes out of
// the core (the VCM evaluator, the output-DOM document, the request
// subsystem) that every element op needs access to. One Context is
// shared by every Ops instance in a Table.
type Context struct {
	Eval     vcm.Evaluator
	Vars     *vdom.Store
	Doc      *edom.Document
	Requests *request.Manager
}

// frameStack adapts a (Coroutine, Frame) pair to vcm.Stack, letting the
// VCM evaluator resolve scoped and symbol variables without importing
// runtime itself.
type frameStack struct {
	ctx *Context
	co  *runtime.Coroutine
	f   *runtime.Frame
}

func (s frameStack) ResolveScoped(scope *vdom.Node, name string) (variant.Variant, bool) {
	return s.ctx.Vars.Lookup(scope, name)
}

// ResolveSymbol walks the frame stack outward from s.f, returning the
// value held by the nearest frame that has actually set ch (spec.md
// §4.3's "all symbols start as undefined; child frames inherit none" —
// a frame that never set its own copy defers to its nearest enclosing
// one, e.g. `$%` written inside `<iterate>`'s body resolves against the
// `<iterate>` frame's own `%`, not its own never-set copy).
func (s frameStack) ResolveSymbol(ch byte) (variant.Variant, bool) {
	sym, ok := symbolFor(ch)
	if !ok {
		return nil, false
	}
	if s.co == nil {
		v := s.f.GetSymbol(sym)
		if v == nil {
			return variant.UndefinedValue, true
		}
		return v, true
	}
	for _, f := range s.co.FramesFrom(s.f) {
		if v := f.GetSymbol(sym); v != nil && v != variant.UndefinedValue {
			return v, true
		}
	}
	return variant.UndefinedValue, true
}

func symbolFor(ch byte) (runtime.Symbol, bool) {
	switch ch {
	case '<':
		return runtime.SymInput, true
	case '@':
		return runtime.SymAt, true
	case '!':
		return runtime.SymScratch, true
	case '?':
		return runtime.SymResult, true
	case '%':
		return runtime.SymPercent, true
	case '^':
		return runtime.SymCaret, true
	case '&':
		return runtime.SymAmp, true
	case ':':
		return runtime.SymColon, true
	default:
		return 0, false
	}
}

// evalAttr evaluates node's name attribute, if present, returning
// ok=false when the attribute is absent (the caller's default applies).
func (ctx *Context) evalAttr(co *runtime.Coroutine, f *runtime.Frame, node *vdom.Node, name string, silently bool) (variant.Variant, bool, *errkind.Error) {
	attr, ok := node.Attr(name)
	if !ok {
		return nil, false, nil
	}
	v, err := ctx.Eval.Eval(attr.Expr, frameStack{ctx: ctx, co: co, f: f}, silently)
	if err != nil {
		return nil, true, err
	}
	return v, true, nil
}

// evalAttrString is evalAttr narrowed to the common case of an
// attribute whose VCM tree evaluates to a string — used for the
// filter/key/formula/match grammar source text (e.g. `on="KEY: ..."`).
func (ctx *Context) evalAttrString(co *runtime.Coroutine, f *runtime.Frame, node *vdom.Node, name string, silently bool) (string, bool, *errkind.Error) {
	v, present, err := ctx.evalAttr(co, f, node, name, silently)
	if err != nil || !present {
		return "", present, err
	}
	s, ok := v.(*variant.StringVariant)
	if !ok {
		return "", true, errkind.New(errkind.InvalidValue, "%s attribute must evaluate to a string", name)
	}
	return s.Value(), true, nil
}

// executorFor builds the executil.Executor the tag's `on`/`with`
// attribute names, per SPEC_FULL.md §6.2's "`AfterPushed` constructs an
// `executil` executor ... per the tag's `on`/`with` attributes".
func (ctx *Context) executorFor(co *runtime.Coroutine, f *runtime.Frame, node *vdom.Node) (executil.Executor, *errkind.Error) {
	if text, ok, err := ctx.evalAttrString(co, f, node, "on", false); err != nil {
		return nil, err
	} else if ok {
		ast, perr := executil.ParseFilter(text)
		if perr != nil {
			return nil, errkind.New(errkind.InvalidValue, "on=%q: %v", text, perr)
		}
		return executil.NewFilterExecutor(ast)
	}
	if text, ok, err := ctx.evalAttrString(co, f, node, "with", false); err != nil {
		return nil, err
	} else if ok {
		ast, perr := executil.ParseFormula(text)
		if perr != nil {
			return nil, errkind.New(errkind.InvalidValue, "with=%q: %v", text, perr)
		}
		return executil.NewFormulaExecutor(ast)
	}
	if text, ok, err := ctx.evalAttrString(co, f, node, "by", false); err != nil {
		return nil, err
	} else if ok {
		ast, perr := executil.ParseMatch(text)
		if perr != nil {
			return nil, errkind.New(errkind.InvalidValue, "by=%q: %v", text, perr)
		}
		return executil.NewMatchExecutor(ast)
	}
	// No grammar attribute: match everything, preserving enumeration order.
	return executil.NewFilterExecutor(&executil.FilterAST{All: true})
}

// sourceFor resolves the container a looping/selecting tag walks: the
// nearest enclosing '<' input symbol, set by whichever ancestor frame
// bound one (e.g. an outer <iterate>'s own input, or a prior sibling's
// result), per spec.md §4.3's symbol-variable rules.
func (ctx *Context) sourceFor(co *runtime.Coroutine, f *runtime.Frame) variant.Variant {
	v, _ := frameStack{ctx: ctx, co: co, f: f}.ResolveSymbol('<')
	return v
}
