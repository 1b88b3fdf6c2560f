package elemops

import (
	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/executil"
	"github.com/purc-lang/purc/runtime"
	"github.com/purc-lang/purc/variant"
	"github.com/purc-lang/purc/vdom"
)

// loopState is an iterating tag's per-frame cursor: the executil.Executor
// walking the source container, where the current round's body-walk is
// (childIdx), and whether the executor is known exhausted.
type loopState struct {
	exec         executil.Executor
	childIdx     int
	have         bool
	exhausted    bool
	single       bool // choose/match family: at most one round ever runs
	pendingKey   variant.Variant
	pendingValue variant.Variant
}

// loopOps implements the "iterators/selectors" family's core
// select_child/on_popping/rerun shape SPEC_FULL.md §6.2 describes:
// "`SelectChild` asks the executor/test for the next element and
// increments `%` ... `OnPopping` asks the executor whether more
// iterations remain (`rerun` loops back to `SELECT_CHILD`)". `single`
// distinguishes `<choose>`/`<match>` (at most one matching round) from
// `<iterate>` (every matching round).
type loopOps struct {
	ctx    *Context
	single bool
}

func (o *loopOps) AfterPushed(co *runtime.Coroutine, f *runtime.Frame) (any, bool, *errkind.Error) {
	exec, err := o.ctx.executorFor(co, f, f.Pos)
	if err != nil {
		return nil, false, err
	}
	if err := exec.Create(o.ctx.sourceFor(co, f)); err != nil {
		return nil, false, err
	}
	f.SetSymbol(runtime.SymPercent, variant.NewNumber(0))
	return &loopState{exec: exec, single: o.single}, true, nil
}

func (o *loopOps) advance(st *loopState) (bool, *errkind.Error) {
	var key, value variant.Variant
	var ok bool
	var err *errkind.Error
	if st.single {
		key, value, ok, err = st.exec.Choose()
	} else {
		key, value, ok, err = st.exec.Iterate()
	}
	if err != nil {
		return false, err
	}
	if !ok {
		st.exhausted = true
		return false, nil
	}
	st.pendingKey, st.pendingValue = key, value
	return true, nil
}

func (o *loopOps) SelectChild(co *runtime.Coroutine, f *runtime.Frame) (*vdom.Node, bool, *errkind.Error) {
	st := f.Ctxt.(*loopState)
	if !st.have {
		got, err := o.advance(st)
		if err != nil {
			return nil, false, err
		}
		if !got {
			return nil, false, nil
		}
		st.have = true
		st.childIdx = 0
		f.SetSymbol(runtime.SymCaret, st.pendingKey)
		f.SetSymbol(runtime.SymInput, st.pendingValue)
	}
	if f.Pos == nil || st.childIdx >= len(f.Pos.Children) {
		st.have = false
		// % only advances once a round's body has fully run, so content
		// evaluated during round i (spec.md §8's E2) observes i, not i+1;
		// the last select_child that finds the executor exhausted leaves
		// % at the round count.
		f.IncPercent()
		if st.single {
			st.exhausted = true
		}
		return nil, false, nil
	}
	child := f.Pos.Children[st.childIdx]
	st.childIdx++
	return child, true, nil
}

func (o *loopOps) OnPopping(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	st := f.Ctxt.(*loopState)
	return st.exhausted, nil
}

func (o *loopOps) Rerun(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return true, nil
}

// reduceOps implements `<reduce>`: folds the executor's matching values
// through the `with` formula in one shot at after_pushed time and binds
// the fold result to `?`, rather than driving the tag's children as a
// loop body (HVML's `<reduce>` produces a scalar, it does not re-run a
// body).
type reduceOps struct {
	ctx *Context
}

func (o *reduceOps) AfterPushed(co *runtime.Coroutine, f *runtime.Frame) (any, bool, *errkind.Error) {
	exec, err := o.ctx.executorFor(co, f, f.Pos)
	if err != nil {
		return nil, false, err
	}
	if err := exec.Create(o.ctx.sourceFor(co, f)); err != nil {
		return nil, false, err
	}
	result, err := exec.Reduce(func(acc, value variant.Variant) (variant.Variant, *errkind.Error) {
		return value, nil
	})
	if err != nil {
		return nil, false, err
	}
	f.SetSymbol(runtime.SymResult, result)
	return nil, true, nil
}
func (o *reduceOps) SelectChild(co *runtime.Coroutine, f *runtime.Frame) (*vdom.Node, bool, *errkind.Error) {
	return nil, false, nil
}
func (o *reduceOps) OnPopping(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return true, nil
}
func (o *reduceOps) Rerun(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return false, nil
}

// sortOps implements `<sort>`: collects every matching (key, value) pair
// via Iterate and binds the resulting array to `?`. Ordering beyond what
// the grammar's own match order provides (e.g. an explicit `by`
// comparator) is left to the `with`/`on` attribute's own semantics,
// since sort-direction syntax is not part of the filter/key/formula/
// match mini-grammars this module implements.
type sortOps struct {
	ctx *Context
}

func (o *sortOps) AfterPushed(co *runtime.Coroutine, f *runtime.Frame) (any, bool, *errkind.Error) {
	exec, err := o.ctx.executorFor(co, f, f.Pos)
	if err != nil {
		return nil, false, err
	}
	if err := exec.Create(o.ctx.sourceFor(co, f)); err != nil {
		return nil, false, err
	}
	var values []variant.Variant
	for {
		_, v, ok, err := exec.Iterate()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			break
		}
		values = append(values, v)
	}
	f.SetSymbol(runtime.SymResult, variant.NewArray(values))
	return nil, true, nil
}
func (o *sortOps) SelectChild(co *runtime.Coroutine, f *runtime.Frame) (*vdom.Node, bool, *errkind.Error) {
	return nil, false, nil
}
func (o *sortOps) OnPopping(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return true, nil
}
func (o *sortOps) Rerun(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return false, nil
}

// conditionalState remembers whether a conditional tag's body already
// ran, so select_child offers children exactly once when the test
// passed.
type conditionalState struct {
	passed bool
	next   int
}

// conditionalOps implements the boolean-test family `<match>`, `<test>`,
// `<differ>`, `<except>`: after_pushed asks the executor its `on`/`with`/
// `by` attribute selects (see executorFor) whether anything matches
// (negate flips this for `<except>`/`<differ>`), and if so, select_child
// walks the tag's children exactly once as the body.
type conditionalOps struct {
	ctx    *Context
	negate bool
}

func (o *conditionalOps) AfterPushed(co *runtime.Coroutine, f *runtime.Frame) (any, bool, *errkind.Error) {
	exec, err := o.ctx.executorFor(co, f, f.Pos)
	if err != nil {
		return nil, false, err
	}
	if err := exec.Create(o.ctx.sourceFor(co, f)); err != nil {
		return nil, false, err
	}
	_, _, ok, err := exec.Choose()
	if err != nil {
		return nil, false, err
	}
	if o.negate {
		ok = !ok
	}
	f.SetSymbol(runtime.SymResult, variant.Bool(ok))
	return nil, true, nil
}

func (o *conditionalOps) SelectChild(co *runtime.Coroutine, f *runtime.Frame) (*vdom.Node, bool, *errkind.Error) {
	st, _ := f.Ctxt.(*conditionalState)
	if st == nil {
		st = &conditionalState{passed: f.GetSymbol(runtime.SymResult) == variant.True}
		f.Ctxt = st
	}
	if !st.passed || f.Pos == nil || st.next >= len(f.Pos.Children) {
		return nil, false, nil
	}
	child := f.Pos.Children[st.next]
	st.next++
	return child, true, nil
}

func (o *conditionalOps) OnPopping(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return true, nil
}
func (o *conditionalOps) Rerun(co *runtime.Coroutine, f *runtime.Frame) (bool, *errkind.Error) {
	return false, nil
}
