package docvars

import (
	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/variant"
)

// newLogical builds $L: the logical-comparison document variable
// (spec.md §6's "lt, streq, …"), grounded on the teacher's risor object
// package's own numeric/string equality helpers, generalized to operate
// on variants directly instead of VM-internal objects.
func newLogical() *variant.ObjectVariant {
	return object(map[string]variant.Variant{
		"lt":    NewCallable(numberCompare(func(a, b float64) bool { return a < b })),
		"le":    NewCallable(numberCompare(func(a, b float64) bool { return a <= b })),
		"gt":    NewCallable(numberCompare(func(a, b float64) bool { return a > b })),
		"ge":    NewCallable(numberCompare(func(a, b float64) bool { return a >= b })),
		"eq":    NewCallable(numberCompare(func(a, b float64) bool { return a == b })),
		"ne":    NewCallable(numberCompare(func(a, b float64) bool { return a != b })),
		"streq": NewCallable(stringCompare(func(a, b string) bool { return a == b })),
		"strne": NewCallable(stringCompare(func(a, b string) bool { return a != b })),
		"not": NewCallable(func(args []variant.Variant) (variant.Variant, *errkind.Error) {
			if len(args) != 1 {
				return nil, errkind.New(errkind.BadArg, "L.not: expected 1 argument, got %d", len(args))
			}
			return variant.Bool(!isTruthy(args[0])), nil
		}),
	})
}

func numberCompare(cmp func(a, b float64) bool) Builtin {
	return func(args []variant.Variant) (variant.Variant, *errkind.Error) {
		if len(args) != 2 {
			return nil, errkind.New(errkind.BadArg, "L: expected 2 arguments, got %d", len(args))
		}
		a, ok := args[0].(*variant.NumberVariant)
		if !ok {
			return nil, errkind.New(errkind.InvalidValue, "L: argument 1 must be a number")
		}
		b, ok := args[1].(*variant.NumberVariant)
		if !ok {
			return nil, errkind.New(errkind.InvalidValue, "L: argument 2 must be a number")
		}
		return variant.Bool(cmp(a.Value(), b.Value())), nil
	}
}

func stringCompare(cmp func(a, b string) bool) Builtin {
	return func(args []variant.Variant) (variant.Variant, *errkind.Error) {
		a, b, err := twoStrings("L", args)
		if err != nil {
			return nil, err
		}
		return variant.Bool(cmp(a, b)), nil
	}
}

// isTruthy treats booleans by their own value and every other variant
// as true unless it is undefined or null, mirroring HVML's "only
// undefined/null/false are falsy" rule.
func isTruthy(v variant.Variant) bool {
	switch t := v.(type) {
	case *variant.BoolVariant:
		return t.Value()
	case *variant.UndefinedVariant:
		return false
	case *variant.NullVariant:
		return false
	default:
		return true
	}
}
