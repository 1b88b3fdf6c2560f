package variant

// Container is implemented by Array, Object, Set, and Tuple: anything
// indexable/iterable/mutable the way spec.md §3 describes. Mirrors the
// teacher's object.Container interface.
type Container interface {
	Variant
	Len() int
	Enumerate(fn func(key, value Variant) bool)
}
