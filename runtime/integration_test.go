package runtime_test

// End-to-end scenarios exercising the full elemops.Resolver/edom/request
// stack together, one per scheduler-level scenario spec.md §8 names
// (E1-E6). Each builds a *vdom.Node tree directly (the tokenizer/parser
// is an external collaborator per spec.md §1) and drives it through a
// real runtime.Heap, rather than mocking any Ops.

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deepnoodle-ai/wonton/assert"

	"github.com/purc-lang/purc/edom"
	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/executil"
	"github.com/purc-lang/purc/renderer"
	"github.com/purc-lang/purc/request"
	"github.com/purc-lang/purc/runloop"
	"github.com/purc-lang/purc/runtime"
	"github.com/purc-lang/purc/runtime/elemops"
	"github.com/purc-lang/purc/timer"
	"github.com/purc-lang/purc/variant"
	"github.com/purc-lang/purc/vcm"
	"github.com/purc-lang/purc/vdom"
)

// symbolRef is a test-only VCMExpr that resolves a frame-stack symbol
// variable rather than standing in for an already-evaluated literal.
type symbolRef struct{ ch byte }

// raiseExpr is a test-only VCMExpr standing in for a VCM `raise(...)`
// call: evaluating it always fails with the given interned atom, the
// way a real VCM evaluator's raise() builtin would.
type raiseExpr struct{ atom errkind.Atom }

// testEval is the vcm.Evaluator every scenario below shares: ordinary
// attribute/content values are pre-evaluated variant.Variant literals
// (vcm.Literal's own trick), plus the two sentinel node kinds above for
// the cases that need live symbol lookup or a simulated raise.
type testEval struct{}

func (testEval) Eval(tree vdom.VCMExpr, stack vcm.Stack, silently bool) (variant.Variant, *errkind.Error) {
	switch t := tree.(type) {
	case nil:
		return variant.UndefinedValue, nil
	case symbolRef:
		v, _ := stack.ResolveSymbol(t.ch)
		return v, nil
	case raiseExpr:
		if silently {
			return variant.UndefinedValue, nil
		}
		return nil, errkind.Raise(t.atom, nil, "raised %s", t.atom)
	case variant.Variant:
		return t, nil
	}
	if !silently {
		return nil, errkind.New(errkind.InvalidValue, "test evaluator: unsupported node %T", tree)
	}
	return variant.UndefinedValue, nil
}

// fakeTransport records every renderer.Message it's handed and answers
// every call with a synthetic 200, so E1 can assert the exact
// createPlainWindow call the hvml root emits without a real renderer
// process on the other end.
type fakeTransport struct {
	mu    sync.Mutex
	calls []*renderer.Message
}

func (t *fakeTransport) Call(ctx context.Context, msg *renderer.Message) (*renderer.Response, error) {
	t.mu.Lock()
	t.calls = append(t.calls, msg)
	t.mu.Unlock()
	return &renderer.Response{RetCode: 200, RequestID: msg.RequestID, ResultValue: "page-1"}, nil
}

func (t *fakeTransport) snapshot() []*renderer.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*renderer.Message, len(t.calls))
	copy(out, t.calls)
	return out
}

// newElemCtx builds the elemops.Context + Heap pair every scenario needs,
// wired through a fresh output document and a non-running runloop (fine
// for scenarios with no async requests/timers to post onto it).
func newElemCtx(loop runloop.Runloop, doc *edom.Document) (*elemops.Context, *runtime.Heap) {
	reqMgr := request.NewManager(loop, stubFetcher{},
		func(uint64, uint64) bool { return true },
		func(uint64) bool { return true },
	)
	ctx := &elemops.Context{
		Eval:     testEval{},
		Vars:     vdom.NewStore(),
		Doc:      doc,
		Requests: reqMgr,
	}
	resolver := elemops.Resolver(ctx)
	return ctx, runtime.NewHeap(loop, reqMgr, resolver)
}

type stubFetcher struct{}

func (stubFetcher) Fetch(ctx context.Context, spec *request.Spec) (*request.Result, error) {
	return &request.Result{Status: 200}, nil
}

// spawnRoot spawns a coroutine on heap and pushes root as its first
// frame, resolving root's own Ops the same way the scheduler resolves
// every other frame's.
func spawnRoot(heap *runtime.Heap, ctx *elemops.Context, root *vdom.Node) *runtime.Coroutine {
	resolver := elemops.Resolver(ctx)
	ops, _ := resolver(root.Tag)
	co := heap.Spawn()
	f := runtime.NewFrame(runtime.Normal, ops)
	f.Pos = root
	f.Scope = root
	co.Push(f)
	return co
}

// E1: a bare <hvml/> document opens the renderer's plain window exactly
// once and produces no output-DOM content beyond the document shell.
func TestE1EmptyDocumentOpensPlainWindow(t *testing.T) {
	transport := &fakeTransport{}
	doc := edom.NewDocument()
	doc.Bridge = renderer.NewBridge(transport, time.Second)

	loop := runloop.NewSingle()
	root := vdom.NewDocument()

	ctx, heap := newElemCtx(loop, doc)
	co := spawnRoot(heap, ctx, root)

	heap.Run()

	assert.True(t, co.Exception == nil)
	assert.True(t, co.IsDone())
	assert.Equal(t, doc.Root.Serialize(), "<html><head></head><body></body></html>")

	calls := transport.snapshot()
	assert.Equal(t, len(calls), 1)
	assert.Equal(t, calls[0].Operation, renderer.OpCreatePlainWindow)
	assert.Equal(t, calls[0].Target, renderer.TargetSession)
}

// E2: <iterate> over a 3-element source increments '%' once per round
// and a nested <span>$%</span> observes that round's value (0, 1, 2),
// ending with '%' at 3 once the executor is exhausted.
func TestE2IterateCounterVisibleToNestedFrame(t *testing.T) {
	doc := edom.NewDocument()
	loop := runloop.NewSingle()

	root := vdom.NewDocument()
	body := &vdom.Node{Tag: "body"}
	root.AppendChild(body)
	iterate := &vdom.Node{Tag: "iterate"}
	body.AppendChild(iterate)
	span := &vdom.Node{Tag: "span", Content: symbolRef{ch: '%'}}
	iterate.AppendChild(span)

	ctx, heap := newElemCtx(loop, doc)
	co := spawnRoot(heap, ctx, root)

	source := variant.NewArray([]variant.Variant{
		variant.NewNumber(10), variant.NewNumber(20), variant.NewNumber(30),
	})

	bound := false
	var finalPercent float64 = -1
	for !co.IsDone() {
		cur := co.Current()
		if cur != nil && cur.Pos == iterate {
			if cur.NextStep == runtime.AfterPushed && !bound {
				cur.SetSymbol(runtime.SymInput, source)
				bound = true
			}
			if cur.NextStep == runtime.OnPopping {
				if n, ok := cur.GetSymbol(runtime.SymPercent).(*variant.NumberVariant); ok {
					finalPercent = n.Value()
				}
			}
		}
		if runtime.Step(co) {
			break
		}
	}

	assert.True(t, co.Exception == nil)
	assert.True(t, bound)
	assert.Equal(t, finalPercent, float64(3))
	assert.Equal(t, doc.Root.Serialize(),
		"<html><head></head><body></body><span>0</span><span>1</span><span>2</span></html>")
}

// E3: an <observe> parked on a sentinel variant runs its <exit> body once
// the owning timer fires "expired:t1", terminating the coroutine with
// the exit value.
func TestE3TimerExpiryDispatchesObserver(t *testing.T) {
	doc := edom.NewDocument()
	loop := runloop.NewSingle()
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(runCtx)

	sentinel := variant.NewString("timer-slot")

	root := vdom.NewDocument()
	observe := &vdom.Node{Tag: "observe", Attrs: []vdom.Attribute{
		{Name: "on", Expr: sentinel},
		{Name: "for", Expr: variant.NewString("expired:t1")},
	}}
	root.AppendChild(observe)
	exit := &vdom.Node{Tag: "exit", Attrs: []vdom.Attribute{
		{Name: "with", Expr: variant.NewString("fired")},
	}}
	observe.AppendChild(exit)

	ctx, heap := newElemCtx(loop, doc)
	co := spawnRoot(heap, ctx, root)

	heap.Run()
	assert.True(t, co.IsDone())
	assert.True(t, co.Waits > 0)

	timerMgr := timer.NewManager(loop)
	done := make(chan struct{})
	tm := timerMgr.Create("t1", nil, func(id string, _ any) {
		// observe's own "to" attribute is absent, so it registered with
		// sub="" (SPEC_FULL.md §6.2's control/IO family); the event name
		// alone lives in "for".
		co.DispatchMessage(sentinel, variant.Event("expired:t1"), "")
		// Heap.Wake would re-post onto the loop; this callback already
		// runs on the loop's own goroutine (runloop.Single.drainDueTimers),
		// so driving the newly pushed handler frame to completion here
		// is safe and avoids an extra async round trip before close(done).
		co.State = runtime.Ready
		heap.Tick()
		close(done)
	})
	tm.SetInterval(20 * time.Millisecond)
	tm.StartOneshot()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}

	assert.True(t, co.IsDone())
	result, ok := co.ExitValue().(*variant.StringVariant)
	assert.True(t, ok)
	assert.Equal(t, result.Value(), "fired")
}

// E4: a raised "BadName" exception propagates out of <inherit> and is
// consumed by the following <catch for="BadName">, which runs its own
// <exit> body instead of leaving the exception unhandled.
func TestE4CatchConsumesNamedException(t *testing.T) {
	doc := edom.NewDocument()
	loop := runloop.NewSingle()

	root := vdom.NewDocument()
	inherit := &vdom.Node{Tag: "inherit", Content: raiseExpr{atom: errkind.AtomBadName}}
	root.AppendChild(inherit)
	catch := &vdom.Node{Tag: "catch", Attrs: []vdom.Attribute{
		{Name: "for", Expr: variant.NewString("BadName")},
	}}
	root.AppendChild(catch)
	exit := &vdom.Node{Tag: "exit", Attrs: []vdom.Attribute{
		{Name: "with", Expr: variant.NewString("ok")},
	}}
	catch.AppendChild(exit)

	ctx, heap := newElemCtx(loop, doc)
	co := spawnRoot(heap, ctx, root)

	heap.Run()

	assert.True(t, co.Exception == nil)
	assert.True(t, co.IsDone())
	result, ok := co.ExitValue().(*variant.StringVariant)
	assert.True(t, ok)
	assert.Equal(t, result.Value(), "ok")
}

// E5: the filter mini-grammar round-trips through parse/print/re-parse,
// producing the same matching rule and for-clause both times.
func TestE5FilterGrammarRoundTrips(t *testing.T) {
	ast, err := executil.ParseFilter(`FILTER: LIKE '/^foo/i' MAX 16, FOR KV`)
	assert.Nil(t, err)
	assert.True(t, ast.Match != nil)
	assert.True(t, ast.Match.IsRegex)
	assert.Equal(t, ast.Match.MaxLen, 16)
	assert.Equal(t, ast.For, executil.ForKV)

	printed := executil.PrintFilter(ast)
	ast2, err := executil.ParseFilter(printed)
	assert.Nil(t, err)
	assert.Equal(t, executil.PrintFilter(ast2), printed)
}

// E6: a coroutine that issues two ASYNC requests and exits before either
// is activated sees both move PENDING -> CANCELLED -> DYING -> released,
// with no fetch ever dispatched and no late callback after cancellation.
func TestE6AsyncCancelBeforeActivation(t *testing.T) {
	loop := runloop.NewSingle()
	var fetchCalls int32
	fetcher := countingFetcher{calls: &fetchCalls}

	reqMgr := request.NewManager(loop, fetcher,
		func(uint64, uint64) bool { return true },
		func(uint64) bool { return true },
	)

	const coroutineID = 42
	var cb1Err, cb2Err error
	var cb1Res, cb2Res *request.Result
	var cb1Count, cb2Count int32

	req1 := reqMgr.Issue(context.Background(), request.ASYNC, coroutineID, 0,
		&request.Spec{URI: "https://example.test/a"}, func(res *request.Result, err error) {
			atomic.AddInt32(&cb1Count, 1)
			cb1Res, cb1Err = res, err
		})
	req2 := reqMgr.Issue(context.Background(), request.ASYNC, coroutineID, 0,
		&request.Spec{URI: "https://example.test/b"}, func(res *request.Result, err error) {
			atomic.AddInt32(&cb2Count, 1)
			cb2Res, cb2Err = res, err
		})

	// The coroutine exits here, before the loop has had any chance to run
	// the posted activate() calls, so both requests are still PENDING.
	reqMgr.CancelAll(coroutineID)

	assert.Equal(t, req1.State(), request.Dying)
	assert.Equal(t, req2.State(), request.Dying)
	assert.Equal(t, int(atomic.LoadInt32(&cb1Count)), 1)
	assert.Equal(t, int(atomic.LoadInt32(&cb2Count)), 1)
	assert.True(t, cb1Res == nil)
	assert.True(t, cb2Res == nil)
	assert.Equal(t, cb1Err, context.Canceled)
	assert.Equal(t, cb2Err, context.Canceled)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(runCtx)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int(atomic.LoadInt32(&fetchCalls)), 0)
	assert.Equal(t, int(atomic.LoadInt32(&cb1Count)), 1)
	assert.Equal(t, int(atomic.LoadInt32(&cb2Count)), 1)
}

type countingFetcher struct {
	calls *int32
}

func (f countingFetcher) Fetch(ctx context.Context, spec *request.Spec) (*request.Result, error) {
	atomic.AddInt32(f.calls, 1)
	return &request.Result{Status: 200}, nil
}
