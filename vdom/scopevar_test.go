package vdom

import (
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/purc-lang/purc/variant"
)

func TestScopeLookupClimbsAncestors(t *testing.T) {
	doc := NewDocument()
	body := &Node{Tag: "body"}
	doc.AppendChild(body)
	span := &Node{Tag: "span"}
	body.AppendChild(span)

	store := NewStore()
	store.Bind(doc, "title", variant.NewString("hello"))

	v, ok := store.Lookup(span, "title")
	assert.True(t, ok)
	assert.Equal(t, v.(*variant.StringVariant).Value(), "hello")
}

func TestScopeLookupPrefersNearest(t *testing.T) {
	doc := NewDocument()
	body := &Node{Tag: "body"}
	doc.AppendChild(body)

	store := NewStore()
	store.Bind(doc, "x", variant.NewLongInt(1))
	store.Bind(body, "x", variant.NewLongInt(2))

	v, ok := store.Lookup(body, "x")
	assert.True(t, ok)
	assert.Equal(t, v.(*variant.LongIntVariant).Value(), int64(2))
}

func TestScopeLookupMissReturnsFalse(t *testing.T) {
	doc := NewDocument()
	store := NewStore()
	_, ok := store.Lookup(doc, "nope")
	assert.True(t, !ok)
}

func TestScopeLookupIsCaseSensitiveAndExactName(t *testing.T) {
	doc := NewDocument()
	store := NewStore()
	store.Bind(doc, "Title", variant.NewLongInt(1))
	_, ok := store.Lookup(doc, "title")
	assert.True(t, !ok)
}
