package variant

import (
	"strings"

	"github.com/purc-lang/purc/errkind"
)

// ArrayVariant is the "array" kind: an ordered, mutable sequence.
// Iteration is snapshot-by-index (spec.md §4.1): Enumerate fixes its
// bound at the array's length when it is called and reads elements one
// index at a time off the live slice, without locking and without
// copying it up front. Elements appended during iteration are not
// visited; a removal during iteration ends the walk at the new length.
type ArrayVariant struct {
	base
	listenable
	elements []Variant
}

func NewArray(elements []Variant) *ArrayVariant {
	a := &ArrayVariant{base: newBase()}
	a.elements = append([]Variant{}, elements...)
	for _, e := range a.elements {
		e.Ref()
	}
	return a
}

func (a *ArrayVariant) Kind() Kind { return Array }

func (a *ArrayVariant) Interface() any {
	out := make([]any, len(a.elements))
	for i, e := range a.elements {
		out[i] = e.Interface()
	}
	return out
}

func (a *ArrayVariant) Ref() Variant { a.ref(); return a }

func (a *ArrayVariant) Unref() {
	a.unref(func() {
		for _, e := range a.elements {
			e.Unref()
		}
	})
}

func (a *ArrayVariant) Inspect() string {
	parts := make([]string, len(a.elements))
	for i, e := range a.elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (a *ArrayVariant) Equals(other Variant) bool {
	o, ok := other.(*ArrayVariant)
	if !ok || len(o.elements) != len(a.elements) {
		return false
	}
	for i := range a.elements {
		if !a.elements[i].Equals(o.elements[i]) {
			return false
		}
	}
	return true
}

func (a *ArrayVariant) Len() int { return len(a.elements) }

// Get returns the element at i, sized at the call, matching the
// size_at_call snapshot-iteration invariant.
func (a *ArrayVariant) Get(i int) (Variant, *errkind.Error) {
	if i < 0 || i >= len(a.elements) {
		return nil, errkind.New(errkind.NotExists, "array index %d out of range", i)
	}
	return a.elements[i], nil
}

// Append inserts value at the end and fires Grow.
func (a *ArrayVariant) Append(value Variant) {
	value.Ref()
	a.elements = append(a.elements, value)
	a.firePost(a, Grow, []Variant{NewLongInt(int64(len(a.elements) - 1)), value, nil, nil})
}

// Set replaces the element at i and fires no event (in-place replace is
// not a structural grow/shrink per spec.md §4.1, which only documents
// grow-on-insert and shrink-on-remove).
func (a *ArrayVariant) Set(i int, value Variant) *errkind.Error {
	if i < 0 || i >= len(a.elements) {
		return errkind.New(errkind.NotExists, "array index %d out of range", i)
	}
	value.Ref()
	old := a.elements[i]
	a.elements[i] = value
	old.Unref()
	return nil
}

// Remove deletes the element at i and fires Shrink.
func (a *ArrayVariant) Remove(i int) *errkind.Error {
	if i < 0 || i >= len(a.elements) {
		return errkind.New(errkind.NotExists, "array index %d out of range", i)
	}
	old := a.elements[i]
	a.elements = append(a.elements[:i], a.elements[i+1:]...)
	a.firePost(a, Shrink, []Variant{nil, nil, NewLongInt(int64(i)), old})
	old.Unref()
	return nil
}

func (a *ArrayVariant) Enumerate(fn func(key, value Variant) bool) {
	n := len(a.elements)
	for i := 0; i < n && i < len(a.elements); i++ {
		if !fn(NewLongInt(int64(i)), a.elements[i]) {
			return
		}
	}
}
