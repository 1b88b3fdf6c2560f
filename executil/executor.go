package executil

import (
	"regexp"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/variant"
)

// Executor is the external-iterator vtable spec.md §9's glossary names:
// "create/choose/iterate/reduce/destroy", invoked by the `iterate`,
// `choose`, `reduce`, `sort`, `match`, `test`, `differ`, `except` tags
// (SPEC_FULL.md §6.2's Iterators/selectors family) against whichever
// mini-grammar their `on`/`with` attributes select.
type Executor interface {
	// Create binds source as the container this executor walks.
	Create(source variant.Variant) *errkind.Error
	// Choose returns the first matching (key, value) pair in
	// enumeration order, or ok=false if nothing matches — used by
	// `<choose>`/`<match>`.
	Choose() (key, value variant.Variant, ok bool, err *errkind.Error)
	// Iterate advances to the next matching (key, value) pair in
	// enumeration order, or ok=false when exhausted — used by
	// `<iterate>`.
	Iterate() (key, value variant.Variant, ok bool, err *errkind.Error)
	// Reduce folds every matching value through fn in enumeration order.
	Reduce(fn func(acc, value variant.Variant) (variant.Variant, *errkind.Error)) (variant.Variant, *errkind.Error)
	// Destroy releases any resources Create acquired. Matching elements
	// are never ref'd by the executor itself, so Destroy has nothing to
	// unref — it exists so every executor satisfies the same vtable
	// shape regardless of whether a given grammar needs cleanup.
	Destroy()
}

// compilePattern turns a Pattern into a predicate over (key, value),
// using regexp for LIKE's /regex/flags form and go-jmespath for AS's
// literal-path form (SPEC_FULL.md §4: "jmespath-community/go-jmespath
// ... powers executil's KEY/AS literal-path matching").
func compilePattern(pat *Pattern) (func(key string, value variant.Variant) (bool, *errkind.Error), *errkind.Error) {
	if pat == nil {
		return func(string, variant.Variant) (bool, *errkind.Error) { return true, nil }, nil
	}
	if pat.IsAsForm {
		expr := pat.Literal
		return func(_ string, value variant.Variant) (bool, *errkind.Error) {
			result, err := jmespath.Search(expr, value.Interface())
			if err != nil {
				return false, errkind.New(errkind.InvalidValue, "AS path %q: %v", expr, err)
			}
			return result != nil, nil
		}, nil
	}
	if pat.IsRegex {
		flags := ""
		if containsByte(pat.Flags, 'i') {
			flags = "(?i)"
		}
		re, cerr := regexp.Compile(flags + pat.Literal)
		if cerr != nil {
			return nil, errkind.New(errkind.InvalidValue, "bad regex %q: %v", pat.Literal, cerr)
		}
		return func(key string, _ variant.Variant) (bool, *errkind.Error) {
			if pat.HasMax && len(key) > pat.MaxLen {
				key = key[:pat.MaxLen]
			}
			return re.MatchString(key), nil
		}, nil
	}
	literal := pat.Literal
	return func(key string, _ variant.Variant) (bool, *errkind.Error) {
		if pat.HasMax && len(key) > pat.MaxLen {
			key = key[:pat.MaxLen]
		}
		return key == literal, nil
	}, nil
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

// enumeratePairs walks an array/object/set/tuple container yielding
// (key, value) in its natural order, generalizing the four container
// kinds behind a single iteration shape the executors consume.
func enumeratePairs(source variant.Variant) ([]variant.Variant, []variant.Variant, *errkind.Error) {
	var keys, values []variant.Variant
	switch c := source.(type) {
	case *variant.ArrayVariant:
		c.Enumerate(func(k, v variant.Variant) bool {
			keys = append(keys, k)
			values = append(values, v)
			return true
		})
	case *variant.ObjectVariant:
		c.Enumerate(func(k, v variant.Variant) bool {
			keys = append(keys, k)
			values = append(values, v)
			return true
		})
	case *variant.SetVariant:
		c.Enumerate(func(k, v variant.Variant) bool {
			keys = append(keys, k)
			values = append(values, v)
			return true
		})
	default:
		return nil, nil, errkind.New(errkind.InvalidValue, "executor source must be a container variant")
	}
	return keys, values, nil
}

func numberRulesMatch(rules []NumberRule, value variant.Variant) bool {
	n, ok := value.(*variant.NumberVariant)
	if !ok {
		return false
	}
	v := n.Value()
	for _, r := range rules {
		switch r.Cmp {
		case CmpLT:
			if !(v < r.Value) {
				return false
			}
		case CmpGT:
			if !(v > r.Value) {
				return false
			}
		case CmpLE:
			if !(v <= r.Value) {
				return false
			}
		case CmpGE:
			if !(v >= r.Value) {
				return false
			}
		case CmpNE:
			if !(v != r.Value) {
				return false
			}
		case CmpEQ:
			if !(v == r.Value) {
				return false
			}
		}
	}
	return true
}

// FilterExecutor walks a container yielding only pairs matching the
// parsed FilterAST, honoring the for-clause's choice of what Iterate
// actually yields as "value" (spec.md §6's KV | KEY | VALUE).
type FilterExecutor struct {
	ast      *FilterAST
	pred     func(key string, value variant.Variant) (bool, *errkind.Error)
	keys     []variant.Variant
	values   []variant.Variant
	matched  []int
	pos      int
}

func NewFilterExecutor(ast *FilterAST) (*FilterExecutor, *errkind.Error) {
	pred, err := compilePattern(ast.Match)
	if err != nil {
		return nil, err
	}
	return &FilterExecutor{ast: ast, pred: pred}, nil
}

func (e *FilterExecutor) Create(source variant.Variant) *errkind.Error {
	keys, values, err := enumeratePairs(source)
	if err != nil {
		return err
	}
	e.keys, e.values = keys, values
	for i, v := range values {
		ok := e.ast.All
		if !ok && e.ast.Match != nil {
			m, merr := e.pred(keyString(keys[i]), v)
			if merr != nil {
				return merr
			}
			ok = m
		}
		if !ok && len(e.ast.Numbers) > 0 {
			ok = numberRulesMatch(e.ast.Numbers, v)
		}
		if ok {
			e.matched = append(e.matched, i)
		}
	}
	return nil
}

func (e *FilterExecutor) yield(idx int) (variant.Variant, variant.Variant) {
	key, value := e.keys[idx], e.values[idx]
	switch e.ast.For {
	case ForKey:
		return key, key
	case ForValue:
		return key, value
	default: // ForKV, ForNone
		return key, value
	}
}

func (e *FilterExecutor) Choose() (variant.Variant, variant.Variant, bool, *errkind.Error) {
	if len(e.matched) == 0 {
		return nil, nil, false, nil
	}
	k, v := e.yield(e.matched[0])
	return k, v, true, nil
}

func (e *FilterExecutor) Iterate() (variant.Variant, variant.Variant, bool, *errkind.Error) {
	if e.pos >= len(e.matched) {
		return nil, nil, false, nil
	}
	k, v := e.yield(e.matched[e.pos])
	e.pos++
	return k, v, true, nil
}

func (e *FilterExecutor) Reduce(fn func(acc, value variant.Variant) (variant.Variant, *errkind.Error)) (variant.Variant, *errkind.Error) {
	var acc variant.Variant = variant.UndefinedValue
	for _, idx := range e.matched {
		_, v := e.yield(idx)
		next, err := fn(acc, v)
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}

func (e *FilterExecutor) Destroy() {}

// KeyExecutor is FilterExecutor's counterpart for the KEY grammar, which
// has no number-rules alternative. LIKE matches on the element's key; AS
// runs its JMESPath query against the element's value.
type KeyExecutor struct {
	inner *FilterExecutor
}

func NewKeyExecutor(ast *KeyAST) (*KeyExecutor, *errkind.Error) {
	fa := &FilterAST{All: ast.All, Match: ast.Match, For: ast.For}
	inner, err := NewFilterExecutor(fa)
	if err != nil {
		return nil, err
	}
	return &KeyExecutor{inner: inner}, nil
}

func (e *KeyExecutor) Create(source variant.Variant) *errkind.Error { return e.inner.Create(source) }
func (e *KeyExecutor) Choose() (variant.Variant, variant.Variant, bool, *errkind.Error) {
	return e.inner.Choose()
}
func (e *KeyExecutor) Iterate() (variant.Variant, variant.Variant, bool, *errkind.Error) {
	return e.inner.Iterate()
}
func (e *KeyExecutor) Reduce(fn func(acc, value variant.Variant) (variant.Variant, *errkind.Error)) (variant.Variant, *errkind.Error) {
	return e.inner.Reduce(fn)
}
func (e *KeyExecutor) Destroy() {}

// FormulaExecutor filters a container by a logical-of-number-comparisons
// condition (evaluated with the candidate value bound to the identifier
// `it` and to the element's own key name; any other identifier is an
// unbound-identifier error) and, for matching
// elements, evaluates the BY expression to produce Iterate's yielded
// value.
type FormulaExecutor struct {
	ast     *FormulaAST
	keys    []variant.Variant
	matched []int
	results []float64
	pos     int
}

func NewFormulaExecutor(ast *FormulaAST) (*FormulaExecutor, *errkind.Error) {
	return &FormulaExecutor{ast: ast}, nil
}

func (e *FormulaExecutor) Create(source variant.Variant) *errkind.Error {
	keys, values, err := enumeratePairs(source)
	if err != nil {
		return err
	}
	e.keys = keys
	for i, v := range values {
		n, ok := v.(*variant.NumberVariant)
		if !ok {
			continue
		}
		env := map[string]float64{keyString(keys[i]): n.Value(), "it": n.Value()}
		pass := true
		for ci, cond := range e.ast.Conditions {
			ok, cerr := evalComparison(cond, env)
			if cerr != nil {
				return cerr
			}
			if ci == 0 {
				pass = ok
				continue
			}
			switch e.ast.Joins[ci-1] {
			case "AND":
				pass = pass && ok
			case "OR":
				pass = pass || ok
			}
		}
		if !pass {
			continue
		}
		result, rerr := evalExpr(e.ast.Formula, env)
		if rerr != nil {
			return rerr
		}
		e.matched = append(e.matched, i)
		e.results = append(e.results, result)
	}
	return nil
}

func (e *FormulaExecutor) Choose() (variant.Variant, variant.Variant, bool, *errkind.Error) {
	if len(e.matched) == 0 {
		return nil, nil, false, nil
	}
	return e.keys[e.matched[0]], variant.NewNumber(e.results[0]), true, nil
}

func (e *FormulaExecutor) Iterate() (variant.Variant, variant.Variant, bool, *errkind.Error) {
	if e.pos >= len(e.matched) {
		return nil, nil, false, nil
	}
	k := e.keys[e.matched[e.pos]]
	v := variant.NewNumber(e.results[e.pos])
	e.pos++
	return k, v, true, nil
}

func (e *FormulaExecutor) Reduce(fn func(acc, value variant.Variant) (variant.Variant, *errkind.Error)) (variant.Variant, *errkind.Error) {
	var acc variant.Variant = variant.UndefinedValue
	for _, r := range e.results {
		next, err := fn(acc, variant.NewNumber(r))
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}

func (e *FormulaExecutor) Destroy() {}

// MatchExecutor evaluates a single value-comparison against every
// element, used by the `<match>`/`<test>`/`<differ>`/`<except>` tags.
type MatchExecutor struct {
	ast     *MatchAST
	keys    []variant.Variant
	matched []int
	pos     int
}

func NewMatchExecutor(ast *MatchAST) (*MatchExecutor, *errkind.Error) {
	return &MatchExecutor{ast: ast}, nil
}

func (e *MatchExecutor) Create(source variant.Variant) *errkind.Error {
	keys, values, err := enumeratePairs(source)
	if err != nil {
		return err
	}
	e.keys = keys
	for i, v := range values {
		n, ok := v.(*variant.NumberVariant)
		if !ok {
			continue
		}
		env := map[string]float64{"it": n.Value()}
		ok2, cerr := evalComparison(e.ast.Cmp, env)
		if cerr != nil {
			return cerr
		}
		if ok2 {
			e.matched = append(e.matched, i)
		}
	}
	return nil
}

func (e *MatchExecutor) Choose() (variant.Variant, variant.Variant, bool, *errkind.Error) {
	if len(e.matched) == 0 {
		return nil, nil, false, nil
	}
	idx := e.matched[0]
	return e.keys[idx], variant.True, true, nil
}

func (e *MatchExecutor) Iterate() (variant.Variant, variant.Variant, bool, *errkind.Error) {
	if e.pos >= len(e.matched) {
		return nil, nil, false, nil
	}
	idx := e.matched[e.pos]
	e.pos++
	return e.keys[idx], variant.True, true, nil
}

func (e *MatchExecutor) Reduce(fn func(acc, value variant.Variant) (variant.Variant, *errkind.Error)) (variant.Variant, *errkind.Error) {
	var acc variant.Variant = variant.UndefinedValue
	for range e.matched {
		next, err := fn(acc, variant.True)
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}

func (e *MatchExecutor) Destroy() {}

func keyString(k variant.Variant) string {
	if s, ok := k.(*variant.StringVariant); ok {
		return s.Value()
	}
	return k.Inspect()
}

func evalComparison(c Comparison, env map[string]float64) (bool, *errkind.Error) {
	l, err := evalExpr(c.Left, env)
	if err != nil {
		return false, err
	}
	r, err := evalExpr(c.Right, env)
	if err != nil {
		return false, err
	}
	switch c.Cmp {
	case CmpLT:
		return l < r, nil
	case CmpGT:
		return l > r, nil
	case CmpLE:
		return l <= r, nil
	case CmpGE:
		return l >= r, nil
	case CmpNE:
		return l != r, nil
	case CmpEQ:
		return l == r, nil
	default:
		return false, errkind.New(errkind.InvalidValue, "unknown comparator %q", c.Cmp)
	}
}

func evalExpr(e Expr, env map[string]float64) (float64, *errkind.Error) {
	switch n := e.(type) {
	case NumberLit:
		return n.Value, nil
	case IdentExpr:
		v, ok := env[n.Name]
		if !ok {
			return 0, errkind.New(errkind.NotExists, "unbound identifier %q in formula", n.Name)
		}
		return v, nil
	case *UnaryExpr:
		x, err := evalExpr(n.X, env)
		if err != nil {
			return 0, err
		}
		return -x, nil
	case *BinaryExpr:
		x, err := evalExpr(n.X, env)
		if err != nil {
			return 0, err
		}
		y, err := evalExpr(n.Y, env)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case "+":
			return x + y, nil
		case "-":
			return x - y, nil
		case "*":
			return x * y, nil
		case "/":
			if y == 0 {
				return 0, errkind.New(errkind.InvalidValue, "division by zero in formula")
			}
			return x / y, nil
		default:
			return 0, errkind.New(errkind.InvalidValue, "unknown operator %q", n.Op)
		}
	default:
		return 0, errkind.New(errkind.InvalidValue, "unknown expression node")
	}
}

var (
	_ Executor = (*FilterExecutor)(nil)
	_ Executor = (*KeyExecutor)(nil)
	_ Executor = (*FormulaExecutor)(nil)
	_ Executor = (*MatchExecutor)(nil)
)
