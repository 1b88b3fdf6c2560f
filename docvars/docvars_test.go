package docvars

import (
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/purc-lang/purc/variant"
)

func TestNewBagPopulatesAllMembers(t *testing.T) {
	bag := New("html")
	entries := bag.Entries()
	for _, name := range []string{"HVML", "SYSTEM", "DATETIME", "T", "L", "STR", "STREAM", "DOC", "SESSION", "EJSON", "TIMERS"} {
		v, ok := entries[name]
		assert.True(t, ok)
		assert.True(t, v != nil)
	}
}

func TestHVMLTargetDefaultsToHTML(t *testing.T) {
	bag := New("")
	target, err := bag.HVML.Get("target", false)
	assert.Nil(t, err)
	assert.Equal(t, target.(*variant.StringVariant).Value(), "html")
}

func TestLogicalStreq(t *testing.T) {
	bag := New("html")
	streq, err := bag.Logical.Get("streq", false)
	assert.Nil(t, err)
	result, callErr := Invoke(streq, []variant.Variant{variant.NewString("a"), variant.NewString("a")})
	assert.Nil(t, callErr)
	assert.Equal(t, result.(*variant.BoolVariant).Value(), true)
}

func TestLogicalLt(t *testing.T) {
	bag := New("html")
	lt, err := bag.Logical.Get("lt", false)
	assert.Nil(t, err)
	result, callErr := Invoke(lt, []variant.Variant{variant.NewNumber(1), variant.NewNumber(2)})
	assert.Nil(t, callErr)
	assert.Equal(t, result.(*variant.BoolVariant).Value(), true)
}

func TestStrHashAndVerifyRoundTrip(t *testing.T) {
	bag := New("html")
	hash, err := bag.Str.Get("hash", false)
	assert.Nil(t, err)
	digest, hashErr := Invoke(hash, []variant.Variant{variant.NewString("secret")})
	assert.Nil(t, hashErr)

	verify, err := bag.Str.Get("verify", false)
	assert.Nil(t, err)
	ok, verifyErr := Invoke(verify, []variant.Variant{variant.NewString("secret"), digest})
	assert.Nil(t, verifyErr)
	assert.Equal(t, ok.(*variant.BoolVariant).Value(), true)

	bad, badErr := Invoke(verify, []variant.Variant{variant.NewString("wrong"), digest})
	assert.Nil(t, badErr)
	assert.Equal(t, bad.(*variant.BoolVariant).Value(), false)
}

func TestEJSONQuery(t *testing.T) {
	bag := New("html")
	query, err := bag.EJSON.Get("query", false)
	assert.Nil(t, err)

	obj := variant.NewObject(map[string]variant.Variant{
		"name": variant.NewString("purc"),
	})
	result, queryErr := Invoke(query, []variant.Variant{variant.NewString("name"), obj})
	assert.Nil(t, queryErr)
	assert.Equal(t, result.(*variant.StringVariant).Value(), "purc")
}

func TestTimersIsEmptySetInitially(t *testing.T) {
	bag := New("html")
	assert.Equal(t, bag.Timers.Len(), 0)
}
