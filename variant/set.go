package variant

import (
	"strings"

	"github.com/purc-lang/purc/errkind"
)

// KeyFieldFunc extracts the uniqueness key for an element placed into a
// SetVariant. When the set has no KeyField (keyfield == ""), elements are
// keyed by their own Inspect() string, i.e. unique-by-value.
type KeyFieldFunc func(element Variant) (string, *errkind.Error)

// SetVariant is the "set" kind: elements unique by a chosen key-field,
// exactly spec.md §3's description (used directly for $TIMERS, see
// spec.md §4.7).
type SetVariant struct {
	base
	listenable
	keyField string
	keyFn    KeyFieldFunc
	order    []string
	data     map[string]Variant
}

// defaultKeyFn keys by Inspect() when no key-field is configured.
func defaultKeyFn(element Variant) (string, *errkind.Error) {
	return element.Inspect(), nil
}

// fieldKeyFn keys objects by the string value of their keyField member.
func fieldKeyFn(keyField string) KeyFieldFunc {
	return func(element Variant) (string, *errkind.Error) {
		obj, ok := element.(*ObjectVariant)
		if !ok {
			return "", errkind.New(errkind.InvalidValue, "set key-field %q requires object elements", keyField)
		}
		v, kerr := obj.Get(keyField, false)
		if kerr != nil {
			return "", kerr
		}
		return v.Inspect(), nil
	}
}

// NewSetByKeyField creates an empty set whose uniqueness is determined by
// the named object field, mirroring make_set_by_ckey(keyfield, ...).
func NewSetByKeyField(keyField string) *SetVariant {
	s := &SetVariant{base: newBase(), data: map[string]Variant{}}
	if keyField != "" {
		s.keyField = keyField
		s.keyFn = fieldKeyFn(keyField)
	} else {
		s.keyFn = defaultKeyFn
	}
	return s
}

func (s *SetVariant) Kind() Kind { return Set }

func (s *SetVariant) Interface() any {
	out := make([]any, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.data[k].Interface())
	}
	return out
}

func (s *SetVariant) Ref() Variant { s.ref(); return s }

func (s *SetVariant) Unref() {
	s.unref(func() {
		for _, v := range s.data {
			v.Unref()
		}
	})
}

func (s *SetVariant) Inspect() string {
	parts := make([]string, 0, len(s.order))
	for _, k := range s.order {
		parts = append(parts, s.data[k].Inspect())
	}
	return "<<" + strings.Join(parts, ", ") + ">>"
}

func (s *SetVariant) Equals(other Variant) bool {
	o, ok := other.(*SetVariant)
	if !ok || len(o.data) != len(s.data) {
		return false
	}
	for k, v := range s.data {
		ov, ok := o.data[k]
		if !ok || !v.Equals(ov) {
			return false
		}
	}
	return true
}

func (s *SetVariant) Len() int { return len(s.order) }

// Add inserts element if its key is not already present, firing Grow.
// Returns false (no-op, no error) if the key already exists, matching set
// semantics (adding a duplicate is not an error, just a no-op).
func (s *SetVariant) Add(element Variant) (bool, *errkind.Error) {
	key, err := s.keyFn(element)
	if err != nil {
		return false, err
	}
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	element.Ref()
	s.data[key] = element
	s.order = append(s.order, key)
	s.firePost(s, Grow, []Variant{NewString(key), element, nil, nil})
	return true, nil
}

// Remove deletes the element whose key matches keyOf(element).
func (s *SetVariant) Remove(element Variant) (bool, *errkind.Error) {
	key, err := s.keyFn(element)
	if err != nil {
		return false, err
	}
	return s.removeByKey(key)
}

func (s *SetVariant) removeByKey(key string) (bool, *errkind.Error) {
	old, ok := s.data[key]
	if !ok {
		return false, nil
	}
	delete(s.data, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.firePost(s, Shrink, []Variant{nil, nil, NewString(key), old})
	old.Unref()
	return true, nil
}

func (s *SetVariant) Enumerate(fn func(key, value Variant) bool) {
	order := append([]string{}, s.order...)
	for _, k := range order {
		v, ok := s.data[k]
		if !ok {
			continue
		}
		if !fn(NewString(k), v) {
			return
		}
	}
}
