package runtime

import (
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/purc-lang/purc/vdom"
	"github.com/purc-lang/purc/variant"
)

// kindOf classifies an observed variant into one of the three observer
// lists spec.md §4.6 splits observers across, keyed by kind(observed):
// dynamic (computed getter/setter variants), native (opaque-pointer
// variants routing through on_observe/on_forget), and common for
// everything else, including the array/object/set containers whose
// grow/shrink events are delivered as ordinary common-list dispatches.
func kindOf(v variant.Variant) ObserverKind {
	switch v.(type) {
	case *variant.DynamicVariant:
		return ObserveDynamic
	case *variant.NativeVariant:
		return ObserveNative
	default:
		return ObserveCommon
	}
}

var observerIDSeq uint64

// isRegexForm reports whether sub is written "/pattern/flags", the form
// spec.md §4.6 says an observer's sub may take to match by regex instead
// of literal equality.
func isRegexForm(sub string) (pattern string, ok bool) {
	if len(sub) < 2 || sub[0] != '/' {
		return "", false
	}
	end := strings.LastIndexByte(sub, '/')
	if end <= 0 {
		return "", false
	}
	flags := sub[end+1:]
	body := sub[1:end]
	if flags == "i" {
		body = "(?i)" + body
	}
	return body, true
}

// RegisterObserver attaches a new observer for (observed, event, sub) to
// co, returning it so the caller (the <observe> element's AfterPushed)
// can stash it and revoke it later. sub may be a literal string or a
// "/regex/flags" form, compiled once here (spec.md §4.6).
func (c *Coroutine) RegisterObserver(observed variant.Variant, event variant.Event, sub string, scope *vdom.Node, pos *vdom.Node, ops ElementOps) *Observer {
	obs := &Observer{
		ID:          atomic.AddUint64(&observerIDSeq, 1),
		Kind:        kindOf(observed),
		Observed:    observed,
		Event:       event,
		Sub:         sub,
		ScopeNode:   scope,
		Pos:         pos,
		Ops:         ops,
	}
	if pattern, ok := isRegexForm(sub); ok {
		if re, err := regexp.Compile(pattern); err == nil {
			obs.subRegex = re
		}
	}
	list := &c.observersByKind[obs.Kind]
	*list = append(*list, obs)
	c.Waits++
	return obs
}

// RevokeObserver marks obs revoked and fires its OnRevoke hook if any;
// the slice entry is pruned lazily on the next DispatchMessage pass
// (spec.md §4.6's "revocation during dispatch must not invalidate the
// iterator" — mirrors Linux's list_for_each_entry_safe idiom).
func (c *Coroutine) RevokeObserver(obs *Observer) {
	if obs == nil || obs.revoked {
		return
	}
	obs.revoked = true
	if c.Waits > 0 {
		c.Waits--
	}
	if obs.OnRevoke != nil {
		obs.OnRevoke(obs.OnRevokeData)
	}
}

// pruneRevoked compacts list in place, dropping entries already revoked.
func pruneRevoked(list []*Observer) []*Observer {
	kept := list[:0]
	for _, o := range list {
		if !o.revoked {
			kept = append(kept, o)
		}
	}
	return kept
}

// DispatchMessage matches event/sub against every live observer of
// observed's kind on co, pushing a NORMAL frame per match to run the
// observer's handler body. Snapshotting the slice before iterating keeps
// a handler that revokes observers (including itself) from corrupting
// the walk, per spec.md §4.6.
func (c *Coroutine) DispatchMessage(observed variant.Variant, event variant.Event, sub string) {
	kind := kindOf(observed)
	live := c.observersByKind[kind]
	snapshot := make([]*Observer, len(live))
	copy(snapshot, live)

	matched := 0
	for _, obs := range snapshot {
		if obs.revoked || obs.Observed != observed {
			continue
		}
		if !obs.matches(event, sub) {
			continue
		}
		matched++
		c.pushHandlerFrame(obs)
	}

	c.observersByKind[kind] = pruneRevoked(c.observersByKind[kind])
	_ = matched
}

// pushHandlerFrame installs a NORMAL frame running obs's element ops on
// top of co's stack, with scope/edom_element/pos copied from the
// observer, so the next scheduler step drives the matched handler body
// (spec.md §4.6).
func (c *Coroutine) pushHandlerFrame(obs *Observer) {
	f := NewFrame(Normal, obs.Ops)
	f.Pos = obs.Pos
	f.Scope = obs.ScopeNode
	f.EDOMElement = obs.EDOMElement
	c.Push(f)
}
