package elemops

import (
	"context"

	"github.com/purc-lang/purc/edom"
	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/runtime"
	"github.com/purc-lang/purc/variant"
	"github.com/purc-lang/purc/vdom"
)

// outputOps is the ElementOps for every vDOM tag outside spec.md §6's
// 25-tag control vocabulary: an ordinary output element (span, div, p,
// ...) whose only job is to graft itself into the output DOM, carry its
// attributes and inline content across, and let its children run under
// whatever Ops the coroutine's resolver gives them in turn (spec.md
// §4.9's "every element not named above still produces output"). Without
// this, a resolver built from Table alone has no entry for markup tags
// and the interpreter never actually builds the output DOM it's
// supposed to.
type outputOps struct {
	ctx *Context
}

type outputState struct {
	sequencerState
}

func (o *outputOps) AfterPushed(co *runtime.Coroutine, f *runtime.Frame) (any, bool, *errkind.Error) {
	parent, _ := f.EDOMElement.(*edom.Element)
	if parent == nil {
		parent = o.ctx.Doc.Root
	}
	elem, err := o.ctx.Doc.AppendElement(context.Background(), parent, f.Pos.Tag)
	if err != nil {
		return nil, false, err
	}
	for _, attr := range f.Pos.Attrs {
		val, present, everr := o.ctx.evalAttrString(co, f, f.Pos, attr.Name, f.Silently)
		if everr != nil {
			return nil, false, everr
		}
		if !present {
			continue
		}
		if serr := o.ctx.Doc.SetAttribute(context.Background(), elem, attr.Name, val); serr != nil {
			return nil, false, serr
		}
	}
	if f.Pos.Content != nil {
		result, everr := o.ctx.Eval.Eval(f.Pos.Content, frameStack{ctx: o.ctx, co: co, f: f}, f.Silently)
		if everr != nil {
			return nil, false, everr
		}
		if serr := o.ctx.Doc.AppendContent(context.Background(), elem, displayText(result)); serr != nil {
			return nil, false, serr
		}
	}
	f.EDOMElement = elem
	return &outputState{}, true, nil
}

func (o *outputOps) SelectChild(co *runtime.Coroutine, f *runtime.Frame) (*vdom.Node, bool, *errkind.Error) {
	st, _ := f.Ctxt.(*outputState)
	if st == nil || f.Pos == nil || st.idx >= len(f.Pos.Children) {
		return nil, false, nil
	}
	child := f.Pos.Children[st.idx]
	st.idx++
	return child, true, nil
}

func (o *outputOps) OnPopping(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return true, nil
}

func (o *outputOps) Rerun(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return false, nil
}

// displayText renders v the way an output element's inline content is
// serialized: a bare string's own characters, every other kind its
// Inspect() form (e.g. a number's shortest decimal form, matching E2's
// expectation that `$%` renders "0", "1", "2", not "0.0" etc.).
func displayText(v variant.Variant) string {
	if s, ok := v.(*variant.StringVariant); ok {
		return s.Value()
	}
	return v.Inspect()
}
