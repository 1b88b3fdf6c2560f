package docvars

import (
	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/variant"
)

// newEJSON builds $EJSON: `.query(path)` runs a JMESPath expression
// against an object/array/set variant tree, per SPEC_FULL.md §4's
// "jmespath-community/go-jmespath ... powers ... the $EJSON built-in's
// .query(path) member".
func newEJSON() *variant.ObjectVariant {
	return object(map[string]variant.Variant{
		"query": NewCallable(func(args []variant.Variant) (variant.Variant, *errkind.Error) {
			if len(args) != 2 {
				return nil, errkind.New(errkind.BadArg, "EJSON.query: expected 2 arguments, got %d", len(args))
			}
			path, err := pathArg(args[0])
			if err != nil {
				return nil, err
			}
			result, queryErr := jmespath.Search(path, args[1].Interface())
			if queryErr != nil {
				return nil, errkind.New(errkind.InvalidValue, "EJSON.query %q: %v", path, queryErr)
			}
			return fromInterface(result), nil
		}),
	})
}

func pathArg(v variant.Variant) (string, *errkind.Error) {
	s, ok := v.(*variant.StringVariant)
	if !ok {
		return "", errkind.New(errkind.InvalidValue, "EJSON.query: path argument must be a string")
	}
	return s.Value(), nil
}

// fromInterface lifts a plain Go value (as produced by encoding/json or
// go-jmespath) back into the variant system.
func fromInterface(v any) variant.Variant {
	switch t := v.(type) {
	case nil:
		return variant.NullValue
	case bool:
		return variant.Bool(t)
	case float64:
		return variant.NewNumber(t)
	case string:
		return variant.NewString(t)
	case []any:
		elems := make([]variant.Variant, len(t))
		for i, e := range t {
			elems[i] = fromInterface(e)
		}
		return variant.NewArray(elems)
	case map[string]any:
		fields := make(map[string]variant.Variant, len(t))
		for k, e := range t {
			fields[k] = fromInterface(e)
		}
		return variant.NewObject(fields)
	default:
		return variant.UndefinedValue
	}
}
