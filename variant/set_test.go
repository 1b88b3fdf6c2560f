package variant

import (
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
)

func timerElement(id string, interval int64, active bool) *ObjectVariant {
	o := NewEmptyObject()
	o.Set("id", NewString(id))
	o.Set("interval", NewLongInt(interval))
	o.Set("active", Bool(active))
	return o
}

func TestSetByKeyFieldUniqueness(t *testing.T) {
	s := NewSetByKeyField("id")
	added, err := s.Add(timerElement("t1", 20, true))
	assert.Nil(t, err)
	assert.True(t, added)

	added, err = s.Add(timerElement("t1", 30, false))
	assert.Nil(t, err)
	assert.True(t, !added) // same key, no-op
	assert.Equal(t, s.Len(), 1)

	added, err = s.Add(timerElement("t2", 50, true))
	assert.Nil(t, err)
	assert.True(t, added)
	assert.Equal(t, s.Len(), 2)
}

func TestSetGrowShrink(t *testing.T) {
	s := NewSetByKeyField("id")
	var grows, shrinks int
	s.RegisterPostListener(Grow, func(source Variant, event Event, ctxt any, args []Variant) { grows++ }, nil)
	s.RegisterPostListener(Shrink, func(source Variant, event Event, ctxt any, args []Variant) { shrinks++ }, nil)

	el := timerElement("t1", 20, true)
	s.Add(el)
	assert.Equal(t, grows, 1)

	removed, err := s.Remove(el)
	assert.Nil(t, err)
	assert.True(t, removed)
	assert.Equal(t, shrinks, 1)
}

func TestSetDefaultKeyByValue(t *testing.T) {
	s := NewSetByKeyField("")
	added, _ := s.Add(NewLongInt(5))
	assert.True(t, added)
	added, _ = s.Add(NewLongInt(5))
	assert.True(t, !added)
}
