// Package edom implements the output-DOM helpers from spec.md §4.9:
// append/replace/set-child/set-attribute primitives that mutate an
// in-process tree and mirror the edit to the renderer bridge, unless the
// stack is in rebuild-without-renderer mode.
package edom

import "strings"

// Node is either an *Element or Text; both satisfy this marker interface.
type Node interface {
	isEDOMNode()
}

// Text is a text node.
type Text string

func (Text) isEDOMNode() {}

// Element is a mutable output-DOM element.
type Element struct {
	Tag      string
	Attrs    map[string]string
	attrOrder []string
	Children []Node
	Parent   *Element
}

func (*Element) isEDOMNode() {}

// NewElement creates a detached element with no children or attributes.
func NewElement(tag string) *Element {
	return &Element{Tag: tag, Attrs: map[string]string{}}
}

// Serialize renders the element (and its subtree) as HTML-ish markup,
// used by the renderer-parity testable property (spec.md §8 item 6) to
// compare the internal tree against what the renderer received.
func (e *Element) Serialize() string {
	var b strings.Builder
	e.serializeInto(&b)
	return b.String()
}

func (e *Element) serializeInto(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(e.Tag)
	for _, name := range e.attrOrder {
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(e.Attrs[name])
		b.WriteByte('"')
	}
	b.WriteByte('>')
	for _, c := range e.Children {
		switch n := c.(type) {
		case Text:
			b.WriteString(string(n))
		case *Element:
			n.serializeInto(b)
		}
	}
	b.WriteString("</")
	b.WriteString(e.Tag)
	b.WriteByte('>')
}
