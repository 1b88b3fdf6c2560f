package elemops

import (
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/purc-lang/purc/edom"
	"github.com/purc-lang/purc/request"
	"github.com/purc-lang/purc/runloop"
	"github.com/purc-lang/purc/runtime"
	"github.com/purc-lang/purc/variant"
	"github.com/purc-lang/purc/vcm"
	"github.com/purc-lang/purc/vdom"
)

func newTestContext() *Context {
	return &Context{
		Eval: vcm.Literal{},
		Vars: vdom.NewStore(),
		Doc:  edom.NewDocument(),
		Requests: request.NewManager(runloop.NewSingle(), nil,
			func(uint64, uint64) bool { return true },
			func(uint64) bool { return true },
		),
	}
}

func attr(name string, v variant.Variant) vdom.Attribute {
	return vdom.Attribute{Name: name, Operator: "=", Expr: v}
}

func runToCompletion(co *runtime.Coroutine) {
	for !co.IsDone() {
		runtime.Step(co)
	}
}

func TestSequencerWalkRunsToCompletion(t *testing.T) {
	ctx := newTestContext()
	table := Table(ctx)

	root := &vdom.Node{Tag: "body"}
	var order []string
	child1 := &vdom.Node{Tag: "init"}
	child2 := &vdom.Node{Tag: "init"}
	root.AppendChild(child1)
	root.AppendChild(child2)

	co := runtime.NewCoroutine()
	f := runtime.NewFrame(runtime.Normal, table["body"])
	f.Pos = root
	f.Scope = root
	co.Push(f)

	for !co.IsDone() {
		cur := co.Current()
		if cur != nil {
			order = append(order, cur.Pos.Tag)
		}
		runtime.Step(co)
	}
	assert.True(t, len(order) >= 1)
}

func TestConditionalMatchRunsBodyWhenExecutorMatches(t *testing.T) {
	ctx := newTestContext()
	table := Table(ctx)

	root := &vdom.Node{Tag: "match"}
	body := &vdom.Node{Tag: "init"}
	root.AppendChild(body)
	root.Attrs = []vdom.Attribute{attr("on", variant.NewString("FILTER: ALL"))}

	co := runtime.NewCoroutine()
	input := variant.NewArray([]variant.Variant{variant.NewNumber(1)})
	f := runtime.NewFrame(runtime.Normal, table["match"])
	f.Pos = root
	f.Scope = root
	f.SetSymbol(runtime.SymInput, input)
	co.Push(f)

	ranBody := false
	for !co.IsDone() {
		if cur := co.Current(); cur != nil && cur.Pos == body {
			ranBody = true
		}
		runtime.Step(co)
	}
	assert.True(t, ranBody)
}

func TestBindBindsScopedVariable(t *testing.T) {
	ctx := newTestContext()
	table := Table(ctx)

	root := &vdom.Node{Tag: "bind"}
	root.Attrs = []vdom.Attribute{
		attr("to", variant.NewString("greeting")),
		attr("as", variant.NewString("hello")),
	}

	co := runtime.NewCoroutine()
	f := runtime.NewFrame(runtime.Normal, table["bind"])
	f.Pos = root
	f.Scope = root
	co.Push(f)

	runToCompletion(co)

	v, ok := ctx.Vars.Lookup(root, "greeting")
	assert.True(t, ok)
	assert.Equal(t, v.(*variant.StringVariant).Value(), "hello")
}

func TestExitEmptiesFrameStackAndSetsResult(t *testing.T) {
	ctx := newTestContext()
	table := Table(ctx)

	root := &vdom.Node{Tag: "exit"}
	root.Attrs = []vdom.Attribute{attr("with", variant.NewString("done"))}

	co := runtime.NewCoroutine()
	f := runtime.NewFrame(runtime.Normal, table["exit"])
	f.Pos = root
	f.Scope = root
	co.Push(f)

	runToCompletion(co)

	assert.Equal(t, co.ExitValue().(*variant.StringVariant).Value(), "done")
}

func TestObserveRegistersAndDispatchPushesHandler(t *testing.T) {
	ctx := newTestContext()
	table := Table(ctx)

	target := variant.NewString("session")
	root := &vdom.Node{Tag: "observe"}
	body := &vdom.Node{Tag: "init"}
	root.AppendChild(body)
	root.Attrs = []vdom.Attribute{
		attr("on", target),
		attr("for", variant.NewString("change")),
		attr("to", variant.NewString("ready")),
	}

	co := runtime.NewCoroutine()
	f := runtime.NewFrame(runtime.Normal, table["observe"])
	f.Pos = root
	f.Scope = root
	co.Push(f)

	runToCompletion(co)
	assert.Equal(t, co.Waits, 1)

	co.DispatchMessage(target, variant.Event("change"), "ready")
	assert.Equal(t, co.Depth(), 1)
}
