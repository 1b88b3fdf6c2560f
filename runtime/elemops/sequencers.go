package elemops

import (
	"context"

	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/runtime"
	"github.com/purc-lang/purc/variant"
	"github.com/purc-lang/purc/vdom"
)

// sequencerState is the per-frame walk cursor a plain left-to-right
// sequencer keeps in Frame.Ctxt.
type sequencerState struct {
	idx int
}

// sequencerOps implements the "evaluate attrs once, then run every
// child in document order" shape used by `hvml`, `head`, `body`,
// `init`, `define`, `update` and `bind` — grounded on
// the teacher's `compiler` package's statement-list walk (one
// instruction emitted per child node in order, no backtracking).
type sequencerOps struct {
	ctx *Context
}

func (o *sequencerOps) AfterPushed(co *runtime.Coroutine, f *runtime.Frame) (any, bool, *errkind.Error) {
	attrs, err := evalAttrsToObject(o.ctx, co, f, f.Pos)
	if err != nil {
		return nil, false, err
	}
	f.AttrVars = attrs
	return &sequencerState{}, true, nil
}

func (o *sequencerOps) SelectChild(co *runtime.Coroutine, f *runtime.Frame) (*vdom.Node, bool, *errkind.Error) {
	st, _ := f.Ctxt.(*sequencerState)
	if st == nil || f.Pos == nil || st.idx >= len(f.Pos.Children) {
		return nil, false, nil
	}
	child := f.Pos.Children[st.idx]
	st.idx++
	return child, true, nil
}

func (o *sequencerOps) OnPopping(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return true, nil
}

func (o *sequencerOps) Rerun(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return false, nil
}

// evalAttrsToObject evaluates every attribute on node through ctx.Eval
// and collects the results into an ObjectVariant, becoming the frame's
// `attr_vars` (spec.md §4.3).
func evalAttrsToObject(ctx *Context, co *runtime.Coroutine, f *runtime.Frame, node *vdom.Node) (*variant.ObjectVariant, *errkind.Error) {
	fields := map[string]variant.Variant{}
	if node == nil {
		return variant.NewObject(fields), nil
	}
	for _, attr := range node.Attrs {
		v, err := ctx.Eval.Eval(attr.Expr, frameStack{ctx: ctx, co: co, f: f}, false)
		if err != nil {
			return nil, err
		}
		fields[attr.Name] = v
	}
	return variant.NewObject(fields), nil
}

// hvmlOps is the document root tag: it opens the renderer's plain
// window exactly once (spec.md §6's createPlainWindow call, exercised by
// E1) before running its children as an ordinary sequencer walk.
type hvmlOps struct {
	sequencerOps
}

func (o *hvmlOps) AfterPushed(co *runtime.Coroutine, f *runtime.Frame) (any, bool, *errkind.Error) {
	if err := o.ctx.Doc.Open(context.Background()); err != nil {
		return nil, false, err
	}
	return o.sequencerOps.AfterPushed(co, f)
}

// bindOps implements `<bind>`: evaluates its `as` attribute's value and
// binds it under the name given by its `to` attribute, via the
// scoped-variable store, on top of the plain sequencer walk (spec.md
// §4.2's scoped-variable write path).
type bindOps struct {
	sequencerOps
}

func (o *bindOps) AfterPushed(co *runtime.Coroutine, f *runtime.Frame) (any, bool, *errkind.Error) {
	ctxt, ok, err := o.sequencerOps.AfterPushed(co, f)
	if err != nil || !ok {
		return ctxt, ok, err
	}
	name, present, err := o.ctx.evalAttrString(co, f, f.Pos, "to", false)
	if err != nil {
		return ctxt, false, err
	}
	if !present {
		return ctxt, true, nil
	}
	value, _, err := o.ctx.evalAttr(co, f, f.Pos, "as", false)
	if err != nil {
		return ctxt, false, err
	}
	if value == nil {
		value = variant.UndefinedValue
	}
	value.Ref()
	o.ctx.Vars.Bind(f.Scope, name, value)
	return ctxt, true, nil
}

// forgetOps implements `<forget>`: revokes the observer held by its
// `observer` attribute, which must evaluate to a native variant wrapping
// the *runtime.Observer returned at registration; any other value is
// ignored. Its children are not walked.
type forgetOps struct {
	ctx *Context
}

func (o *forgetOps) AfterPushed(co *runtime.Coroutine, f *runtime.Frame) (any, bool, *errkind.Error) {
	target, present, err := o.ctx.evalAttr(co, f, f.Pos, "observer", false)
	if err != nil {
		return nil, false, err
	}
	if !present {
		return nil, true, nil
	}
	if native, ok := target.(*variant.NativeVariant); ok {
		if obs, ok := native.Pointer().(*runtime.Observer); ok {
			co.RevokeObserver(obs)
		}
	}
	return nil, true, nil
}

func (o *forgetOps) SelectChild(co *runtime.Coroutine, f *runtime.Frame) (*vdom.Node, bool, *errkind.Error) {
	return nil, false, nil
}
func (o *forgetOps) OnPopping(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return true, nil
}
func (o *forgetOps) Rerun(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return false, nil
}

// backOps implements `<back>`: pops extra frames off the coroutine's
// stack, innermost first, until the current frame's element has the tag
// named by its `to` attribute (spec.md §4.3's "back to a named ancestor
// frame"). The root frame is never popped.
type backOps struct {
	ctx *Context
}

func (o *backOps) AfterPushed(co *runtime.Coroutine, f *runtime.Frame) (any, bool, *errkind.Error) {
	name, present, err := o.ctx.evalAttrString(co, f, f.Pos, "to", false)
	if err != nil {
		return nil, false, err
	}
	if !present {
		return nil, true, nil
	}
	for co.Depth() > 1 {
		cur := co.Current()
		if cur.Pos != nil && cur.Pos.Tag == name {
			break
		}
		co.Pop()
	}
	return nil, true, nil
}
func (o *backOps) SelectChild(co *runtime.Coroutine, f *runtime.Frame) (*vdom.Node, bool, *errkind.Error) {
	return nil, false, nil
}
func (o *backOps) OnPopping(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return true, nil
}
func (o *backOps) Rerun(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return false, nil
}

// archetypeOps leaves its children un-executed: AfterPushed succeeds and
// SelectChild never descends. The children are not recorded anywhere as
// a template.
type archetypeOps struct {
	ctx *Context
}

func (o *archetypeOps) AfterPushed(co *runtime.Coroutine, f *runtime.Frame) (any, bool, *errkind.Error) {
	return nil, true, nil
}
func (o *archetypeOps) SelectChild(co *runtime.Coroutine, f *runtime.Frame) (*vdom.Node, bool, *errkind.Error) {
	return nil, false, nil
}
func (o *archetypeOps) OnPopping(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return true, nil
}
func (o *archetypeOps) Rerun(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return false, nil
}
