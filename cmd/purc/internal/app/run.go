package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"

	"github.com/purc-lang/purc/edom"
	"github.com/purc-lang/purc/internal/config"
	"github.com/purc-lang/purc/internal/xlog"
	"github.com/purc-lang/purc/request"
	"github.com/purc-lang/purc/runloop"
	"github.com/purc-lang/purc/runtime"
	"github.com/purc-lang/purc/runtime/elemops"
	"github.com/purc-lang/purc/variant"
	"github.com/purc-lang/purc/vcm"
	"github.com/purc-lang/purc/vdom"
)

var runCmd = &cobra.Command{
	Use:   "run [document.json]",
	Short: "Run a vDOM document fixture through the interpreter core",
	Long: "Since the HVML tokenizer/vDOM parser is an out-of-scope external\n" +
		"collaborator (spec.md §1), run accepts a pre-parsed document as a\n" +
		"small JSON tree shape instead of raw HVML markup.",
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

// docNode is the on-disk JSON shape run decodes into a vdom.Node tree:
// attribute values are literal JSON scalars, evaluated by vcm.Literal
// rather than a real VCM expression grammar.
type docNode struct {
	Tag      string         `json:"tag"`
	Attrs    map[string]any `json:"attrs"`
	Children []docNode      `json:"children"`
}

func buildNode(d docNode, parent *vdom.Node) *vdom.Node {
	n := &vdom.Node{Tag: d.Tag, Parent: parent}
	for name, raw := range d.Attrs {
		n.Attrs = append(n.Attrs, vdom.Attribute{Name: name, Operator: "=", Expr: literalVariant(raw)})
	}
	for _, c := range d.Children {
		n.Children = append(n.Children, buildNode(c, n))
	}
	return n
}

func literalVariant(raw any) variant.Variant {
	switch v := raw.(type) {
	case string:
		return variant.NewString(v)
	case float64:
		return variant.NewNumber(v)
	case bool:
		return variant.Bool(v)
	case nil:
		return variant.NullValue
	default:
		return variant.UndefinedValue
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	var top docNode
	if err := json.Unmarshal(raw, &top); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	root := buildNode(top, nil)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	loop := runloop.NewSingle()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	reqMgr := request.NewManager(loop, request.NewHTTPFetcher(),
		func(uint64, uint64) bool { return true },
		func(uint64) bool { return true },
	)

	elemCtx := &elemops.Context{
		Eval:     vcm.Literal{},
		Vars:     vdom.NewStore(),
		Doc:      edom.NewDocument(),
		Requests: reqMgr,
	}
	resolver := elemops.Resolver(elemCtx)
	heap := runtime.NewHeap(loop, reqMgr, resolver)

	ops, _ := resolver(root.Tag)

	co := heap.Spawn()
	f := runtime.NewFrame(runtime.Normal, ops)
	f.Pos = root
	f.Scope = root
	co.Push(f)

	heap.Run()
	time.Sleep(10 * time.Millisecond) // let any in-flight async requests settle once

	if co.Exception != nil {
		xlog.DumpException(co.ID, co.Exception.Err.Kind.String(), co.Exception.Err.Msg)
		return fmt.Errorf(red("coroutine %d terminated with exception: %s"), co.ID, co.Exception.Err.Msg)
	}

	if cfg.DumpEJSON {
		out, err := prettyjson.Marshal(elemCtx.Doc.Root.Serialize())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), elemCtx.Doc.Root.Serialize())
	return nil
}
