package variant

import (
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/purc-lang/purc/errkind"
)

func TestNativeOnObserveOnForgetFireOnce(t *testing.T) {
	var observeCalls, forgetCalls int
	ops := &NativeOps{
		OnObserve: func(ptr any, event Event, sub ObserverRef) { observeCalls++ },
		OnForget:  func(ptr any, event Event, sub ObserverRef) { forgetCalls++ },
	}
	n := NewNative("socket", 1, ops)
	sub1 := ObserverRef{CoroutineID: 1, Handle: 1}
	sub2 := ObserverRef{CoroutineID: 1, Handle: 2}

	n.Observe("readable", sub1)
	n.Observe("readable", sub2)
	assert.Equal(t, observeCalls, 2) // distinct subs each trigger OnObserve once

	n.Forget("readable", sub1)
	assert.Equal(t, forgetCalls, 0) // sub2 still observing

	n.Forget("readable", sub2)
	assert.Equal(t, forgetCalls, 1)

	// Forgetting again is a no-op, not a second OnForget call.
	n.Forget("readable", sub2)
	assert.Equal(t, forgetCalls, 1)
}

func TestNativeReleaseCallsEraserThenOnRelease(t *testing.T) {
	var order []string
	ops := &NativeOps{
		Eraser:    func(ptr any) { order = append(order, "erase") },
		OnRelease: func(ptr any) { order = append(order, "release") },
	}
	n := NewNative("handle", 42, ops)
	n.Unref()
	assert.Equal(t, order, []string{"erase", "release"})
}

func TestNativePropertyAccess(t *testing.T) {
	ops := &NativeOps{
		PropertyGetter: func(ptr any, name string) (Variant, *errkind.Error) {
			return NewString("value-of-" + name), nil
		},
	}
	n := NewNative("obj", nil, ops)
	v, err := n.GetProperty("color")
	assert.Nil(t, err)
	assert.Equal(t, v.(*StringVariant).Value(), "value-of-color")
}
