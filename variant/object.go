package variant

import (
	"sort"
	"strings"

	"github.com/purc-lang/purc/errkind"
)

// ObjectVariant is the "object" kind: an insertion-ordered mapping from
// string keys to Variant values.
type ObjectVariant struct {
	base
	listenable
	order []string
	data  map[string]Variant
}

func NewObject(fields map[string]Variant) *ObjectVariant {
	o := &ObjectVariant{base: newBase(), data: map[string]Variant{}}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic insertion order for a Go-map literal input
	for _, k := range keys {
		v := fields[k]
		v.Ref()
		o.data[k] = v
		o.order = append(o.order, k)
	}
	return o
}

func NewEmptyObject() *ObjectVariant {
	return &ObjectVariant{base: newBase(), data: map[string]Variant{}}
}

func (o *ObjectVariant) Kind() Kind { return Object }

func (o *ObjectVariant) Interface() any {
	out := make(map[string]any, len(o.data))
	for k, v := range o.data {
		out[k] = v.Interface()
	}
	return out
}

func (o *ObjectVariant) Ref() Variant { o.ref(); return o }

func (o *ObjectVariant) Unref() {
	o.unref(func() {
		for _, v := range o.data {
			v.Unref()
		}
	})
}

func (o *ObjectVariant) Inspect() string {
	parts := make([]string, 0, len(o.order))
	for _, k := range o.order {
		parts = append(parts, strconvQuote(k)+": "+o.data[k].Inspect())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (o *ObjectVariant) Equals(other Variant) bool {
	oo, ok := other.(*ObjectVariant)
	if !ok || len(oo.data) != len(o.data) {
		return false
	}
	for k, v := range o.data {
		ov, ok := oo.data[k]
		if !ok || !v.Equals(ov) {
			return false
		}
	}
	return true
}

func (o *ObjectVariant) Len() int { return len(o.order) }

// Get looks up key. silent controls whether a miss is an error (matching
// spec.md §4.1's object_get_by_ckey(obj, key, silent?)): when silent is
// true a miss returns (UndefinedValue, nil) instead of an error.
func (o *ObjectVariant) Get(key string, silent bool) (Variant, *errkind.Error) {
	if v, ok := o.data[key]; ok {
		return v, nil
	}
	if silent {
		return UndefinedValue, nil
	}
	return nil, errkind.New(errkind.NotExists, "no such key %q", key)
}

// Set inserts or replaces key, firing Grow on insert (post-mutation, as
// spec.md §4.1 requires) and nothing on replace.
func (o *ObjectVariant) Set(key string, value Variant) {
	value.Ref()
	old, existed := o.data[key]
	o.data[key] = value
	if !existed {
		o.order = append(o.order, key)
		o.firePost(o, Grow, []Variant{NewString(key), value, nil, nil})
		return
	}
	old.Unref()
}

// Remove deletes key, firing Shrink if it existed.
func (o *ObjectVariant) Remove(key string) *errkind.Error {
	old, ok := o.data[key]
	if !ok {
		return errkind.New(errkind.NotExists, "no such key %q", key)
	}
	delete(o.data, key)
	for i, k := range o.order {
		if k == key {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	o.firePost(o, Shrink, []Variant{nil, nil, NewString(key), old})
	old.Unref()
	return nil
}

func (o *ObjectVariant) Enumerate(fn func(key, value Variant) bool) {
	order := append([]string{}, o.order...)
	for _, k := range order {
		v, ok := o.data[k]
		if !ok {
			continue
		}
		if !fn(NewString(k), v) {
			return
		}
	}
}

func strconvQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(s)
	b.WriteByte('"')
	return b.String()
}
