package docvars

import (
	"strings"

	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/variant"
)

// newText builds $T, the text-manipulation document variable, grounded
// directly on the teacher's modules/strings builtins (contains/
// has_prefix/has_suffix/upper/lower/trim here re-exposed as Callable
// object members instead of VM builtin functions).
func newText() *variant.ObjectVariant {
	return object(map[string]variant.Variant{
		"upper": NewCallable(textUnary(strings.ToUpper)),
		"lower": NewCallable(textUnary(strings.ToLower)),
		"trim":  NewCallable(textUnary(strings.TrimSpace)),
		"contains": NewCallable(func(args []variant.Variant) (variant.Variant, *errkind.Error) {
			s, sub, err := twoStrings("T.contains", args)
			if err != nil {
				return nil, err
			}
			return variant.Bool(strings.Contains(s, sub)), nil
		}),
		"has_prefix": NewCallable(func(args []variant.Variant) (variant.Variant, *errkind.Error) {
			s, prefix, err := twoStrings("T.has_prefix", args)
			if err != nil {
				return nil, err
			}
			return variant.Bool(strings.HasPrefix(s, prefix)), nil
		}),
		"has_suffix": NewCallable(func(args []variant.Variant) (variant.Variant, *errkind.Error) {
			s, suffix, err := twoStrings("T.has_suffix", args)
			if err != nil {
				return nil, err
			}
			return variant.Bool(strings.HasSuffix(s, suffix)), nil
		}),
	})
}

func textUnary(fn func(string) string) Builtin {
	return func(args []variant.Variant) (variant.Variant, *errkind.Error) {
		s, err := oneString("T", args)
		if err != nil {
			return nil, err
		}
		return variant.NewString(fn(s)), nil
	}
}

func oneString(name string, args []variant.Variant) (string, *errkind.Error) {
	if len(args) != 1 {
		return "", errkind.New(errkind.BadArg, "%s: expected 1 argument, got %d", name, len(args))
	}
	s, ok := args[0].(*variant.StringVariant)
	if !ok {
		return "", errkind.New(errkind.InvalidValue, "%s: argument must be a string", name)
	}
	return s.Value(), nil
}

func twoStrings(name string, args []variant.Variant) (string, string, *errkind.Error) {
	if len(args) != 2 {
		return "", "", errkind.New(errkind.BadArg, "%s: expected 2 arguments, got %d", name, len(args))
	}
	a, ok := args[0].(*variant.StringVariant)
	if !ok {
		return "", "", errkind.New(errkind.InvalidValue, "%s: argument 1 must be a string", name)
	}
	b, ok := args[1].(*variant.StringVariant)
	if !ok {
		return "", "", errkind.New(errkind.InvalidValue, "%s: argument 2 must be a string", name)
	}
	return a.Value(), b.Value(), nil
}
