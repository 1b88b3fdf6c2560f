package variant

import "sync"

// Event names the synthetic container-mutation events plus the free-form
// event names native variants define via their vtable. Array/Object/Set
// emit Grow after an insert and Shrink after a remove, always to
// post-listeners, always after the mutation has already taken effect —
// matching spec.md §4.1's "post-listeners" wording.
type Event string

const (
	Grow   Event = "grow"
	Shrink Event = "shrink"
)

// PostListenerFunc receives the source container, the event, the ctxt
// opaque value supplied at registration, and the mutation args
// (key-new, value-new, key-old, value-old — any of which may be nil
// depending on the operation).
type PostListenerFunc func(source Variant, event Event, ctxt any, args []Variant)

// ListenerHandle identifies a registered listener for revocation. It is a
// plain counter, not a pointer into the listener slice, so revocation
// during iteration never invalidates other handles.
type ListenerHandle uint64

type listenerRecord struct {
	handle  ListenerHandle
	event   Event
	fn      PostListenerFunc
	ctxt    any
	revoked bool
}

// listenable is embedded by every container kind (Array/Object/Set) to
// supply RegisterPostListener/RevokeListener/firePost. It is the
// generalization of vm/observer.go's Observer/Config/Event shape from
// read-only VM execution tracing to mutation-triggering callbacks.
type listenable struct {
	mu        sync.Mutex
	listeners []*listenerRecord
	nextID    uint64
}

// RegisterPostListener subscribes fn to event on this container. The
// returned handle is the argument to RevokeListener.
func (l *listenable) RegisterPostListener(event Event, fn PostListenerFunc, ctxt any) ListenerHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	h := ListenerHandle(l.nextID)
	l.listeners = append(l.listeners, &listenerRecord{handle: h, event: event, fn: fn, ctxt: ctxt})
	return h
}

// RevokeListener removes the listener identified by handle. Safe to call
// more than once for the same handle (the second call is a no-op), which
// resolves the "double list_del" Open Question from spec.md §9: the
// revoked flag makes teardown idempotent instead of relying on callers
// never invoking it twice.
func (l *listenable) RevokeListener(handle ListenerHandle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, rec := range l.listeners {
		if rec.handle == handle {
			if rec.revoked {
				return
			}
			rec.revoked = true
			l.listeners = append(l.listeners[:i], l.listeners[i+1:]...)
			return
		}
	}
}

// firePost snapshots the listener list for event and invokes each
// surviving (non-revoked) entry synchronously, on the calling goroutine,
// after the structural mutation that triggered it is already complete.
// Snapshotting means a listener that revokes another listener mid-fire
// cannot skip or double-invoke a sibling.
func (l *listenable) firePost(source Variant, event Event, args []Variant) {
	l.mu.Lock()
	snapshot := make([]*listenerRecord, 0, len(l.listeners))
	for _, rec := range l.listeners {
		if rec.event == event && !rec.revoked {
			snapshot = append(snapshot, rec)
		}
	}
	l.mu.Unlock()
	for _, rec := range snapshot {
		rec.fn(source, event, rec.ctxt, args)
	}
}
