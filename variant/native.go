package variant

import "github.com/purc-lang/purc/errkind"

// ObserverRef is a weak, non-owning reference to a registered observer:
// the coroutine that owns it plus an opaque per-coroutine handle. Native
// variants hold these instead of pointers into the owning coroutine's
// observer arena, which is the cycle-breaker spec.md §9's DESIGN NOTES
// calls for: destroying the NativeVariant never needs to chase into
// coroutine internals, and destroying the coroutine never needs the
// NativeVariant to still be alive.
type ObserverRef struct {
	CoroutineID uint64
	Handle      uint64
}

// NativeOps is the vtable a native variant's opaque pointer is paired
// with, exactly spec.md §3's "native (opaque pointer plus a vtable of
// per-kind callbacks)".
type NativeOps struct {
	// PropertyGetter/PropertySetter implement per-property semantics for
	// `native.prop` attribute access.
	PropertyGetter func(ptr any, name string) (Variant, *errkind.Error)
	PropertySetter func(ptr any, name string, value Variant) *errkind.Error

	// Cleaner is invoked when the native value's logical content should
	// be cleared but the Variant stays alive (e.g. `native.clear()`).
	Cleaner func(ptr any)

	// Eraser is invoked as part of release, before OnRelease, to free the
	// opaque Go-side resource the pointer stands for.
	Eraser func(ptr any)

	// OnObserve is called the first time an observer registers for a
	// given (event, sub) pair on this native value.
	OnObserve func(ptr any, event Event, sub ObserverRef)

	// OnForget is called exactly once, when the last observer for a
	// given (event, sub) pair is revoked.
	OnForget func(ptr any, event Event, sub ObserverRef)

	// OnRelease is called once, when the native variant's refcount
	// reaches zero, after Eraser.
	OnRelease func(ptr any)

	// Updater applies a structured update (e.g. from an HVML <update>
	// tag) to the native value's content.
	Updater func(ptr any, value Variant) *errkind.Error
}

// NativeVariant is the "native" kind: an opaque Go value plus its vtable,
// the escape hatch for host-provided objects (file handles, sockets,
// renderer proxies) to appear as ordinary variants.
type NativeVariant struct {
	base
	ptr  any
	ops  *NativeOps
	typ  string
	subs map[Event]map[ObserverRef]int // observer refcount per (event, sub)
}

func NewNative(typ string, ptr any, ops *NativeOps) *NativeVariant {
	return &NativeVariant{
		base: newBase(),
		ptr:  ptr,
		ops:  ops,
		typ:  typ,
		subs: map[Event]map[ObserverRef]int{},
	}
}

func (n *NativeVariant) Kind() Kind    { return Native }
func (n *NativeVariant) Pointer() any  { return n.ptr }
func (n *NativeVariant) TypeName() string { return n.typ }
func (n *NativeVariant) Interface() any { return n.ptr }
func (n *NativeVariant) Ref() Variant   { n.ref(); return n }

func (n *NativeVariant) Unref() {
	n.unref(func() {
		if n.ops != nil {
			if n.ops.Eraser != nil {
				n.ops.Eraser(n.ptr)
			}
			if n.ops.OnRelease != nil {
				n.ops.OnRelease(n.ptr)
			}
		}
	})
}

func (n *NativeVariant) Inspect() string {
	return "native<" + n.typ + ">"
}

func (n *NativeVariant) Equals(other Variant) bool {
	o, ok := other.(*NativeVariant)
	return ok && o.ptr == n.ptr
}

func (n *NativeVariant) GetProperty(name string) (Variant, *errkind.Error) {
	if n.ops == nil || n.ops.PropertyGetter == nil {
		return nil, errkind.New(errkind.NotExists, "native %s has no property %q", n.typ, name)
	}
	return n.ops.PropertyGetter(n.ptr, name)
}

func (n *NativeVariant) SetProperty(name string, value Variant) *errkind.Error {
	if n.ops == nil || n.ops.PropertySetter == nil {
		return errkind.New(errkind.NotAllowed, "native %s has no settable property %q", n.typ, name)
	}
	return n.ops.PropertySetter(n.ptr, name, value)
}

func (n *NativeVariant) Update(value Variant) *errkind.Error {
	if n.ops == nil || n.ops.Updater == nil {
		return errkind.New(errkind.NotAllowed, "native %s does not support update", n.typ)
	}
	return n.ops.Updater(n.ptr, value)
}

// Observe registers sub as watching (event) on this native value, calling
// OnObserve exactly when the first observer for that pair appears.
func (n *NativeVariant) Observe(event Event, sub ObserverRef) {
	subs, ok := n.subs[event]
	if !ok {
		subs = map[ObserverRef]int{}
		n.subs[event] = subs
	}
	subs[sub]++
	if subs[sub] == 1 && n.ops != nil && n.ops.OnObserve != nil {
		n.ops.OnObserve(n.ptr, event, sub)
	}
}

// Forget revokes one registration of sub for event, calling OnForget
// exactly when the last one for that pair is gone. Calling Forget for a
// (event, sub) pair that was never observed, or more times than it was
// observed, is a no-op rather than an error or a double OnForget call.
func (n *NativeVariant) Forget(event Event, sub ObserverRef) {
	subs, ok := n.subs[event]
	if !ok {
		return
	}
	count, ok := subs[sub]
	if !ok || count <= 0 {
		return
	}
	count--
	if count == 0 {
		delete(subs, sub)
		if n.ops != nil && n.ops.OnForget != nil {
			n.ops.OnForget(n.ptr, event, sub)
		}
		return
	}
	subs[sub] = count
}
