package elemops

import (
	"github.com/purc-lang/purc/request"
	"github.com/purc-lang/purc/runtime"
)

// defaultLoadKind is the association new `<load>`/`<call>`/`<include>`
// requests start with before their `with` attribute is evaluated; SYNC
// matches spec.md §4.8's "requests default to SYNC unless upgraded".
const defaultLoadKind = request.SYNC

// Table builds the tag -> runtime.ElementOps registry for every tag
// spec.md §6 names, per the three families SPEC_FULL.md §6.2 splits
// them into. One Table is built per document/Context; every Ops value
// it returns is stateless and safe to share across every frame that
// runs that tag.
func Table(ctx *Context) map[string]runtime.ElementOps {
	seq := &sequencerOps{ctx: ctx}

	return map[string]runtime.ElementOps{
		// Sequencers.
		"hvml":      &hvmlOps{sequencerOps: sequencerOps{ctx: ctx}},
		"head":      seq,
		"body":      seq,
		"init":      seq,
		"define":    seq,
		"update":    seq,
		"archetype": &archetypeOps{ctx: ctx},
		"bind":      &bindOps{sequencerOps: sequencerOps{ctx: ctx}},
		"forget":    &forgetOps{ctx: ctx},
		"back":      &backOps{ctx: ctx},

		// Iterators/selectors.
		"iterate": &loopOps{ctx: ctx, single: false},
		"choose":  &loopOps{ctx: ctx, single: true},
		"reduce":  &reduceOps{ctx: ctx},
		"sort":    &sortOps{ctx: ctx},
		"match":   &conditionalOps{ctx: ctx, negate: false},
		"test":    &conditionalOps{ctx: ctx, negate: false},
		"differ":  &conditionalOps{ctx: ctx, negate: true},
		"except":  &conditionalOps{ctx: ctx, negate: true},

		// Control/IO.
		"observe": &observeOps{ctx: ctx},
		"catch":   &catchOps{ctx: ctx},
		"inherit": &inheritOps{ctx: ctx},
		"exit":    &exitOps{ctx: ctx},
		"load":    &fetchOps{ctx: ctx, kind: defaultLoadKind},
		"call":    &fetchOps{ctx: ctx, kind: defaultLoadKind},
		"include": &fetchOps{ctx: ctx, kind: defaultLoadKind},
	}
}

// Resolver builds the runtime.OpsResolver a Heap spawns coroutines with:
// Table's 25 control tags first, falling back to outputOps (spec.md
// §4.9's ordinary output elements — span, div, p, and every other tag
// outside the control vocabulary) for anything Table doesn't name. This
// is what makes the scheduler's per-child dispatch (spec.md §4.4) and the
// output-DOM build (spec.md §4.9) both actually run against a real
// document instead of only the document root.
func Resolver(ctx *Context) runtime.OpsResolver {
	table := Table(ctx)
	out := &outputOps{ctx: ctx}
	return func(tag string) (runtime.ElementOps, bool) {
		if ops, ok := table[tag]; ok {
			return ops, true
		}
		return out, true
	}
}
