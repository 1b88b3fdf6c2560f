package elemops

import (
	"context"

	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/request"
	"github.com/purc-lang/purc/runtime"
	"github.com/purc-lang/purc/variant"
	"github.com/purc-lang/purc/vdom"
)

// observeOps implements `<observe>`: registers an observer on the
// variant its `on` attribute evaluates to, for the event named by `for`,
// matching `to`'s sub-pattern, running the tag's own children as the
// handler body (spec.md §4.6).
type observeOps struct {
	ctx *Context
}

func (o *observeOps) AfterPushed(co *runtime.Coroutine, f *runtime.Frame) (any, bool, *errkind.Error) {
	observed, present, err := o.ctx.evalAttr(co, f, f.Pos, "on", false)
	if err != nil {
		return nil, false, err
	}
	if !present {
		return nil, true, nil
	}
	event, _, err := o.ctx.evalAttrString(co, f, f.Pos, "for", false)
	if err != nil {
		return nil, false, err
	}
	sub, _, err := o.ctx.evalAttrString(co, f, f.Pos, "to", false)
	if err != nil {
		return nil, false, err
	}
	obs := co.RegisterObserver(observed, variant.Event(event), sub, f.Scope, f.Pos, &sequencerOps{ctx: o.ctx})
	return obs, true, nil
}

func (o *observeOps) SelectChild(co *runtime.Coroutine, f *runtime.Frame) (*vdom.Node, bool, *errkind.Error) {
	return nil, false, nil
}
func (o *observeOps) OnPopping(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return true, nil
}
func (o *observeOps) Rerun(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return false, nil
}

// catchOps implements `<catch>`: on the frame's first select_child, if
// the coroutine's exception slot is set and its atom matches the `for`
// attribute (or `for` is absent, catching anything), the exception is
// consumed and the tag's children run as the recovery body; otherwise the
// exception propagates untouched. on_popping does not inspect the
// exception slot.
type catchOps struct {
	ctx *Context
}

type catchState struct {
	sequencerState
	shouldRun bool
	checked   bool
}

func (o *catchOps) AfterPushed(co *runtime.Coroutine, f *runtime.Frame) (any, bool, *errkind.Error) {
	return &catchState{}, true, nil
}

func (o *catchOps) SelectChild(co *runtime.Coroutine, f *runtime.Frame) (*vdom.Node, bool, *errkind.Error) {
	st := f.Ctxt.(*catchState)
	if !st.checked {
		st.checked = true
		if co.Exception != nil {
			atom, _, err := o.ctx.evalAttrString(co, f, f.Pos, "for", false)
			if err != nil {
				return nil, false, err
			}
			if atom == "" || atom == string(co.Exception.Err.Atom) {
				st.shouldRun = true
				co.ClearException()
			}
		}
	}
	if !st.shouldRun || f.Pos == nil || st.idx >= len(f.Pos.Children) {
		return nil, false, nil
	}
	child := f.Pos.Children[st.idx]
	st.idx++
	return child, true, nil
}

func (o *catchOps) OnPopping(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return true, nil
}
func (o *catchOps) Rerun(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return false, nil
}

// inheritOps implements `<inherit>`: evaluates its content VCM
// expression once, silently if its `silently` attribute is truthy, and
// stores the result as the frame's `?` symbol.
type inheritOps struct {
	ctx *Context
}

func (o *inheritOps) AfterPushed(co *runtime.Coroutine, f *runtime.Frame) (any, bool, *errkind.Error) {
	silentlyVal, present, err := o.ctx.evalAttr(co, f, f.Pos, "silently", false)
	if err != nil {
		return nil, false, err
	}
	silently := present && silentlyVal.IsTruthy()
	if f.Pos == nil || f.Pos.Content == nil {
		f.SetSymbol(runtime.SymResult, variant.UndefinedValue)
		return nil, true, nil
	}
	result, err := o.ctx.Eval.Eval(f.Pos.Content, frameStack{ctx: o.ctx, co: co, f: f}, silently)
	if err != nil {
		if silently {
			f.SetSymbol(runtime.SymResult, variant.UndefinedValue)
			return nil, true, nil
		}
		return nil, false, err
	}
	f.SetSymbol(runtime.SymResult, result)
	return nil, true, nil
}
func (o *inheritOps) SelectChild(co *runtime.Coroutine, f *runtime.Frame) (*vdom.Node, bool, *errkind.Error) {
	return nil, false, nil
}
func (o *inheritOps) OnPopping(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return true, nil
}
func (o *inheritOps) Rerun(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return false, nil
}

// exitOps implements `<exit>`: sets the coroutine's final result and
// empties its frame stack, ending the coroutine (spec.md §4.3).
type exitOps struct {
	ctx *Context
}

func (o *exitOps) AfterPushed(co *runtime.Coroutine, f *runtime.Frame) (any, bool, *errkind.Error) {
	result, present, err := o.ctx.evalAttr(co, f, f.Pos, "with", false)
	if err != nil {
		return nil, false, err
	}
	if !present {
		result = variant.UndefinedValue
	}
	f.SetSymbol(runtime.SymResult, result)
	for co.Depth() > 0 {
		co.Pop()
	}
	return nil, true, nil
}
func (o *exitOps) SelectChild(co *runtime.Coroutine, f *runtime.Frame) (*vdom.Node, bool, *errkind.Error) {
	return nil, false, nil
}
func (o *exitOps) OnPopping(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return true, nil
}
func (o *exitOps) Rerun(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return false, nil
}

// fetchOps is shared by `<load>`, `<call>`, `<include>`: issues a
// request.Request against the `from` attribute's URI, SYNC by default
// and ASYNC when the `with` attribute evaluates to the string "ASYNC",
// per SPEC_FULL.md §6.2's control/IO family description. The result
// lands in `?` once the request completes. For a SYNC request on_popping
// declines to pop until the result has landed, so the scheduler keeps
// re-stepping the frame; the coroutine is not moved to the Wait state.
type fetchOps struct {
	ctx  *Context
	kind request.Kind
}

type fetchState struct {
	req     *request.Request
	landed  bool
	result  variant.Variant
	failed  *errkind.Error
}

func (o *fetchOps) AfterPushed(co *runtime.Coroutine, f *runtime.Frame) (any, bool, *errkind.Error) {
	uri, present, err := o.ctx.evalAttrString(co, f, f.Pos, "from", false)
	if err != nil {
		return nil, false, err
	}
	if !present {
		return nil, true, nil
	}
	st := &fetchState{}
	kind := o.kind
	if withVal, ok, err := o.ctx.evalAttrString(co, f, f.Pos, "with", false); err == nil && ok && withVal == "ASYNC" {
		kind = request.ASYNC
	}
	spec := &request.Spec{URI: uri, Method: "GET"}
	req := o.ctx.Requests.Issue(context.Background(), kind, co.ID, 0, spec, func(res *request.Result, ferr error) {
		st.landed = true
		if ferr != nil {
			st.failed = errkind.New(errkind.ExternalFailure, "%v", ferr)
			return
		}
		st.result = variant.NewString(string(res.Body))
	})
	st.req = req
	if kind != request.RAW && !st.landed {
		co.Waits++
	}
	return st, true, nil
}

func (o *fetchOps) SelectChild(co *runtime.Coroutine, f *runtime.Frame) (*vdom.Node, bool, *errkind.Error) {
	return nil, false, nil
}

func (o *fetchOps) OnPopping(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	st, ok := f.Ctxt.(*fetchState)
	if !ok || st.req == nil {
		return true, nil
	}
	if !st.landed {
		return false, nil
	}
	co.Waits--
	if st.failed != nil {
		return true, st.failed
	}
	f.SetSymbol(runtime.SymResult, st.result)
	return true, nil
}

func (o *fetchOps) Rerun(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return false, nil
}
