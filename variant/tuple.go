package variant

import "strings"

// TupleVariant is the "tuple" kind: a fixed-arity immutable sequence. No
// listenable mixin: tuples never mutate, so grow/shrink cannot fire.
type TupleVariant struct {
	base
	elements []Variant
}

func NewTuple(elements []Variant) *TupleVariant {
	t := &TupleVariant{base: newBase(), elements: append([]Variant{}, elements...)}
	for _, e := range t.elements {
		e.Ref()
	}
	return t
}

func (t *TupleVariant) Kind() Kind { return Tuple }

func (t *TupleVariant) Interface() any {
	out := make([]any, len(t.elements))
	for i, e := range t.elements {
		out[i] = e.Interface()
	}
	return out
}

func (t *TupleVariant) Ref() Variant { t.ref(); return t }

func (t *TupleVariant) Unref() {
	t.unref(func() {
		for _, e := range t.elements {
			e.Unref()
		}
	})
}

func (t *TupleVariant) Inspect() string {
	parts := make([]string, len(t.elements))
	for i, e := range t.elements {
		parts[i] = e.Inspect()
	}
	return "[!" + strings.Join(parts, ", ") + "!]"
}

func (t *TupleVariant) Equals(other Variant) bool {
	o, ok := other.(*TupleVariant)
	if !ok || len(o.elements) != len(t.elements) {
		return false
	}
	for i := range t.elements {
		if !t.elements[i].Equals(o.elements[i]) {
			return false
		}
	}
	return true
}

func (t *TupleVariant) Len() int { return len(t.elements) }

func (t *TupleVariant) Get(i int) (Variant, bool) {
	if i < 0 || i >= len(t.elements) {
		return nil, false
	}
	return t.elements[i], true
}

func (t *TupleVariant) Enumerate(fn func(key, value Variant) bool) {
	for i, e := range t.elements {
		if !fn(NewLongInt(int64(i)), e) {
			return
		}
	}
}
