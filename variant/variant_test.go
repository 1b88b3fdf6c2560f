package variant

import (
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
)

func TestBoolSingletons(t *testing.T) {
	assert.Equal(t, Bool(true), True)
	assert.Equal(t, Bool(false), False)
	assert.True(t, True.IsTruthy())
	assert.True(t, !False.IsTruthy())
}

func TestUndefinedIsFalsy(t *testing.T) {
	assert.True(t, !UndefinedValue.IsTruthy())
	assert.True(t, !NullValue.IsTruthy())
}

func TestRefcountBalance(t *testing.T) {
	s := NewString("hello")
	assert.Equal(t, s.RefCount(), int32(1))
	s.Ref()
	assert.Equal(t, s.RefCount(), int32(2))
	s.Unref()
	assert.Equal(t, s.RefCount(), int32(1))
	s.Unref()
	assert.Equal(t, s.RefCount(), int32(0))
}

func TestRefcountNeverNegative(t *testing.T) {
	s := NewString("x")
	s.Unref()
	defer func() {
		r := recover()
		assert.True(t, r != nil)
	}()
	s.Unref()
}

func TestNumberInspect(t *testing.T) {
	assert.Equal(t, NewNumber(3.5).Inspect(), "3.5")
	assert.Equal(t, NewLongInt(42).Inspect(), "42L")
	assert.Equal(t, NewULongInt(7).Inspect(), "7UL")
}

func TestBytesEquals(t *testing.T) {
	a := NewBytes([]byte{1, 2, 3})
	b := NewBytes([]byte{1, 2, 3})
	c := NewBytes([]byte{1, 2})
	assert.True(t, a.Equals(b))
	assert.True(t, !a.Equals(c))
}
