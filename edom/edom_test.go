package edom

import (
	"context"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
)

func TestDocumentInitialStructure(t *testing.T) {
	doc := NewDocument()
	assert.Equal(t, doc.Root.Serialize(), "<html><head></head><body></body></html>")
}

func TestAppendElementAndContent(t *testing.T) {
	doc := NewDocument()
	doc.RebuildOnly = true // no renderer attached in this test
	span, err := doc.AppendElement(context.Background(), doc.Body(), "span")
	assert.Nil(t, err)
	assert.Nil(t, doc.AppendContent(context.Background(), span, "0"))
	assert.Equal(t, doc.Root.Serialize(), "<html><head></head><body><span>0</span></body></html>")
}

func TestDisplaceContentKeepsElementChildren(t *testing.T) {
	doc := NewDocument()
	doc.RebuildOnly = true
	body := doc.Body()
	doc.AppendContent(context.Background(), body, "old")
	child, _ := doc.AppendElement(context.Background(), body, "span")
	_ = child
	doc.DisplaceContent(context.Background(), body, "new")
	assert.Equal(t, doc.Root.Serialize(), "<html><head></head><body><span></span>new</body></html>")
}

func TestSetAttribute(t *testing.T) {
	doc := NewDocument()
	doc.RebuildOnly = true
	doc.SetAttribute(context.Background(), doc.Body(), "class", "main")
	assert.Equal(t, doc.Root.Serialize(), `<html><head></head><body class="main"></body></html>`)
}

func TestAddChildChunkGraftsInOrder(t *testing.T) {
	doc := NewDocument()
	doc.RebuildOnly = true
	doc.AddChildChunk(context.Background(), doc.Body(), `<span>0</span><span>1</span>`)
	assert.Equal(t, doc.Root.Serialize(), "<html><head></head><body><span>0</span><span>1</span></body></html>")
}

func TestSetChildChunkReplacesChildren(t *testing.T) {
	doc := NewDocument()
	doc.RebuildOnly = true
	doc.AddChildChunk(context.Background(), doc.Body(), `<span>old</span>`)
	doc.SetChildChunk(context.Background(), doc.Body(), `<p>new</p>`)
	assert.Equal(t, doc.Root.Serialize(), "<html><head></head><body><p>new</p></body></html>")
}
