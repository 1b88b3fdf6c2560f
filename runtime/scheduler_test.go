package runtime

import (
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/vdom"
	"github.com/purc-lang/purc/variant"
)

// leafOps is a minimal ElementOps with no children: after_pushed
// succeeds once, select_child always reports none, on_popping always
// pops. It stands in for a tag like <hvml> with no body, exercising E1
// (empty document) end to end through the scheduler.
type leafOps struct {
	pushed int
}

func (o *leafOps) AfterPushed(co *Coroutine, f *Frame) (any, bool, *errkind.Error) {
	o.pushed++
	return nil, true, nil
}
func (o *leafOps) SelectChild(co *Coroutine, f *Frame) (*vdom.Node, bool, *errkind.Error) {
	return nil, false, nil
}
func (o *leafOps) OnPopping(co *Coroutine, f *Frame) (bool, *errkind.Error) {
	return true, nil
}
func (o *leafOps) Rerun(co *Coroutine, f *Frame) (bool, *errkind.Error) {
	return false, nil
}

func TestStepDrivesLeafFrameToCompletion(t *testing.T) {
	co := NewCoroutine()
	ops := &leafOps{}
	root := NewFrame(Normal, ops)
	co.Push(root)

	for !co.IsDone() {
		Step(co)
	}

	assert.Equal(t, ops.pushed, 1)
	assert.True(t, co.IsDone())
}

// countingIterateOps models a tag with N children selected one at a
// time, incrementing '%' on every select, and reporting no child on
// the N+1th select, exercising the
// SELECT_CHILD/ON_POPPING loop (E2's iterate-with-counter scenario at
// the scheduler level, independent of the real <iterate> tag).
type countingIterateOps struct {
	total  int
	served int
}

func (o *countingIterateOps) AfterPushed(co *Coroutine, f *Frame) (any, bool, *errkind.Error) {
	return nil, true, nil
}
func (o *countingIterateOps) SelectChild(co *Coroutine, f *Frame) (*vdom.Node, bool, *errkind.Error) {
	if o.served >= o.total {
		return nil, false, nil
	}
	o.served++
	f.IncPercent()
	return vdom.NewDocument(), true, nil
}
func (o *countingIterateOps) OnPopping(co *Coroutine, f *Frame) (bool, *errkind.Error) {
	return true, nil
}
func (o *countingIterateOps) Rerun(co *Coroutine, f *Frame) (bool, *errkind.Error) {
	return false, nil
}

func TestSelectChildLoopServesEveryChild(t *testing.T) {
	co := NewCoroutine()
	ops := &countingIterateOps{total: 3}
	childOps := &leafOps{}

	root := NewFrame(Normal, ops)
	co.Push(root)

	for !co.IsDone() {
		f := co.Current()
		if f != nil && f.Ops == ops && f.NextStep == SelectChild {
			before := co.Depth()
			Step(co)
			if co.Depth() > before {
				// a child was pushed; swap its ops to leafOps so it pops
				// immediately on the next steps.
				co.Current().Ops = childOps
			}
			continue
		}
		Step(co)
	}

	assert.Equal(t, ops.served, 3)
}

// erroringOps fails after_pushed, exercising the exception-slot path.
type erroringOps struct{}

func (erroringOps) AfterPushed(co *Coroutine, f *Frame) (any, bool, *errkind.Error) {
	return nil, false, errkind.New(errkind.InvalidValue, "boom")
}
func (erroringOps) SelectChild(co *Coroutine, f *Frame) (*vdom.Node, bool, *errkind.Error) {
	return nil, false, nil
}
func (erroringOps) OnPopping(co *Coroutine, f *Frame) (bool, *errkind.Error) {
	return true, nil
}
func (erroringOps) Rerun(co *Coroutine, f *Frame) (bool, *errkind.Error) {
	return false, nil
}

func TestAfterPushedFailureRaisesExceptionAndPops(t *testing.T) {
	co := NewCoroutine()
	co.Push(NewFrame(Normal, erroringOps{}))

	for !co.IsDone() {
		Step(co)
	}

	assert.True(t, co.Exception != nil)
	assert.Equal(t, co.Exception.Err.Kind, errkind.InvalidValue)
}

// catchingOps models <catch>: on_popping consumes the coroutine's
// exception if one is set and always pops, exercising a named-exception
// catch (E4) at the scheduler level.
type catchingOps struct {
	checked bool
}

func (o *catchingOps) AfterPushed(co *Coroutine, f *Frame) (any, bool, *errkind.Error) {
	return nil, true, nil
}
func (o *catchingOps) SelectChild(co *Coroutine, f *Frame) (*vdom.Node, bool, *errkind.Error) {
	return nil, false, nil
}
func (o *catchingOps) OnPopping(co *Coroutine, f *Frame) (bool, *errkind.Error) {
	if co.Exception != nil {
		co.ClearException()
		return true, nil
	}
	return true, nil
}
func (o *catchingOps) Rerun(co *Coroutine, f *Frame) (bool, *errkind.Error) {
	return false, nil
}

func TestCatchConsumesException(t *testing.T) {
	co := NewCoroutine()
	co.RaiseException(errkind.New(errkind.NotExists, "missing"), nil)
	co.Push(NewFrame(Normal, &catchingOps{}))

	for !co.IsDone() {
		Step(co)
	}

	assert.True(t, co.Exception == nil)
}

func TestSilentlyFrameSuppressesException(t *testing.T) {
	co := NewCoroutine()
	f := NewFrame(Normal, erroringOps{})
	f.Silently = true
	co.Push(f)

	for !co.IsDone() {
		Step(co)
	}

	assert.True(t, co.Exception == nil)
}

// childTaggingOps selects exactly one child vdom.Node tagged "child",
// then pops; used to prove the pushed child frame gets its own Ops from
// the coroutine's resolver rather than inheriting the parent's.
type childTaggingOps struct {
	served bool
}

func (o *childTaggingOps) AfterPushed(co *Coroutine, f *Frame) (any, bool, *errkind.Error) {
	return nil, true, nil
}
func (o *childTaggingOps) SelectChild(co *Coroutine, f *Frame) (*vdom.Node, bool, *errkind.Error) {
	if o.served {
		return nil, false, nil
	}
	o.served = true
	return &vdom.Node{Tag: "child"}, true, nil
}
func (o *childTaggingOps) OnPopping(co *Coroutine, f *Frame) (bool, *errkind.Error) {
	return true, nil
}
func (o *childTaggingOps) Rerun(co *Coroutine, f *Frame) (bool, *errkind.Error) {
	return false, nil
}

func TestSelectChildResolvesChildOpsByOwnTag(t *testing.T) {
	co := NewCoroutine()
	parentOps := &childTaggingOps{}
	childOps := &leafOps{}
	co.OpsFor = func(tag string) (ElementOps, bool) {
		if tag == "child" {
			return childOps, true
		}
		return nil, false
	}
	co.Push(NewFrame(Normal, parentOps))

	for co.Depth() == 1 {
		Step(co)
	}

	assert.True(t, co.Current().Ops == childOps)
}

func TestSymbolRefCountingSwapsWithoutPanic(t *testing.T) {
	f := NewFrame(Normal, &leafOps{})
	f.SetSymbol(SymInput, variant.NewString("a"))
	f.SetSymbol(SymInput, variant.NewString("b"))
	assert.Equal(t, f.GetSymbol(SymInput).(*variant.StringVariant).Value(), "b")
}
