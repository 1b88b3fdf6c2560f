package variant

import (
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
)

func TestObjectSetGetRoundTrip(t *testing.T) {
	o := NewEmptyObject()
	v := NewLongInt(42)
	o.Set("answer", v)
	got, err := o.Get("answer", false)
	assert.Nil(t, err)
	assert.True(t, got == Variant(v))
}

func TestObjectGetMissingNonSilentErrors(t *testing.T) {
	o := NewEmptyObject()
	_, err := o.Get("nope", false)
	assert.True(t, err != nil)
}

func TestObjectGetMissingSilentReturnsUndefined(t *testing.T) {
	o := NewEmptyObject()
	got, err := o.Get("nope", true)
	assert.Nil(t, err)
	assert.Equal(t, got, Variant(UndefinedValue))
}

func TestObjectGrowFiresOnInsertOnly(t *testing.T) {
	o := NewEmptyObject()
	var grows int
	o.RegisterPostListener(Grow, func(source Variant, event Event, ctxt any, args []Variant) {
		grows++
	}, nil)
	o.Set("a", NewLongInt(1))
	o.Set("a", NewLongInt(2)) // replace, not insert
	assert.Equal(t, grows, 1)
}

func TestObjectInsertionOrderPreserved(t *testing.T) {
	o := NewEmptyObject()
	o.Set("z", NewLongInt(1))
	o.Set("a", NewLongInt(2))
	o.Set("m", NewLongInt(3))
	var order []string
	o.Enumerate(func(key, value Variant) bool {
		order = append(order, key.(*StringVariant).Value())
		return true
	})
	assert.Equal(t, order, []string{"z", "a", "m"})
}

func TestObjectRemoveFiresShrink(t *testing.T) {
	o := NewEmptyObject()
	o.Set("a", NewLongInt(1))
	var shrinks int
	o.RegisterPostListener(Shrink, func(source Variant, event Event, ctxt any, args []Variant) {
		shrinks++
	}, nil)
	assert.Nil(t, o.Remove("a"))
	assert.Equal(t, shrinks, 1)
	assert.Equal(t, o.Len(), 0)
}
