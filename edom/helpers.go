package edom

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/renderer"
)

// Document owns the output-DOM tree and, unless RebuildOnly is set,
// mirrors every edit to the renderer bridge bound to Page — spec.md
// §4.9's "rebuild-without-renderer mode".
type Document struct {
	Root        *Element
	Bridge      *renderer.Bridge
	Page        string // renderer page handle this document mirrors to
	RebuildOnly bool
}

func NewDocument() *Document {
	html := NewElement("html")
	html.AppendChild(NewElement("head"))
	html.AppendChild(NewElement("body"))
	return &Document{Root: html}
}

func (d *Document) Head() *Element { return d.Root.Children[0].(*Element) }
func (d *Document) Body() *Element { return d.Root.Children[1].(*Element) }

// Open issues the renderer's createPlainWindow call once per document
// (spec.md §6's window/page lifecycle; E1's "coroutine runs once, emits
// renderer createPlainWindow then exits"), recording the returned page
// handle into d.Page. A no-op in rebuild-without-renderer mode.
func (d *Document) Open(ctx context.Context) *errkind.Error {
	if d.RebuildOnly || d.Bridge == nil {
		return nil
	}
	resp, err := d.Bridge.Call(ctx, renderer.TargetSession, "", renderer.OpCreatePlainWindow, nil)
	if err != nil {
		return err
	}
	d.Page = resp.ResultValue
	return nil
}

func (e *Element) AppendChild(child Node) {
	if el, ok := child.(*Element); ok {
		el.Parent = e
	}
	e.Children = append(e.Children, child)
}

// mirror invokes op on the renderer bridge unless this document is in
// rebuild-without-renderer mode, swallowing any bridge error into the
// caller's error return via errkind.
func (d *Document) mirror(ctx context.Context, op renderer.Operation, data any) *errkind.Error {
	if d.RebuildOnly || d.Bridge == nil {
		return nil
	}
	_, err := d.Bridge.Call(ctx, renderer.TargetPage, d.Page, op, data)
	return err
}

// AppendElement creates a new child element under parent with the given
// tag and mirrors an appendChild renderer message.
func (d *Document) AppendElement(ctx context.Context, parent *Element, tag string) (*Element, *errkind.Error) {
	child := NewElement(tag)
	parent.AppendChild(child)
	if err := d.mirror(ctx, renderer.OpAppendChild, map[string]string{"tag": tag}); err != nil {
		return child, err
	}
	return child, nil
}

// AppendContent appends a text node under parent and mirrors
// appendContent.
func (d *Document) AppendContent(ctx context.Context, parent *Element, text string) *errkind.Error {
	parent.AppendChild(Text(text))
	return d.mirror(ctx, renderer.OpAppendContent, map[string]string{"text": text})
}

// DisplaceContent replaces all of parent's text-node children with a
// single new text node and mirrors displaceContent. Element children are
// left untouched, matching "displace" (replace-in-place) rather than a
// full clear.
func (d *Document) DisplaceContent(ctx context.Context, parent *Element, text string) *errkind.Error {
	kept := parent.Children[:0]
	for _, c := range parent.Children {
		if _, isText := c.(Text); !isText {
			kept = append(kept, c)
		}
	}
	parent.Children = append(kept, Text(text))
	return d.mirror(ctx, renderer.OpDisplaceContent, map[string]string{"text": text})
}

// SetAttribute sets key=val on elem and mirrors updateElementProperty.
func (d *Document) SetAttribute(ctx context.Context, elem *Element, key, val string) *errkind.Error {
	if _, exists := elem.Attrs[key]; !exists {
		elem.attrOrder = append(elem.attrOrder, key)
	}
	elem.Attrs[key] = val
	return d.mirror(ctx, renderer.OpUpdateElementProperty, map[string]string{"property": key, "value": val})
}

// AddChildChunk parses htmlChunk inside a hidden wrapper element and
// grafts its children onto parent in order, mirroring one appendChild
// renderer message for the whole chunk (the renderer re-parses the raw
// markup itself; the core only needs its own tree kept in sync).
func (d *Document) AddChildChunk(ctx context.Context, parent *Element, htmlChunk string) *errkind.Error {
	wrapper := parseChunk(htmlChunk)
	for _, c := range wrapper.Children {
		parent.AppendChild(c)
	}
	return d.mirror(ctx, renderer.OpAppendChild, map[string]string{"chunk": htmlChunk})
}

// SetChildChunk replaces all of parent's children with the parse of
// htmlChunk and mirrors one displaceChild message.
func (d *Document) SetChildChunk(ctx context.Context, parent *Element, htmlChunk string) *errkind.Error {
	wrapper := parseChunk(htmlChunk)
	parent.Children = wrapper.Children
	for _, c := range parent.Children {
		if el, ok := c.(*Element); ok {
			el.Parent = parent
		}
	}
	return d.mirror(ctx, renderer.OpDisplaceChild, map[string]string{"chunk": htmlChunk})
}

// parseChunk is a minimal fragment grafter: it understands
// "<tag attr="v">text<child/></tag>"-shaped markup well enough to graft
// plain HVML output chunks. It is intentionally not a full HTML5 parser —
// spec.md §1 scopes the real output-DOM/HTML library out of this core;
// this exists only so AddChildChunk/SetChildChunk have something to graft
// in tests and simple documents.
func parseChunk(chunk string) *Element {
	wrapper := NewElement("#fragment")
	p := &chunkParser{input: chunk}
	p.parseInto(wrapper)
	return wrapper
}

type chunkParser struct {
	input string
	pos   int
}

func (p *chunkParser) parseInto(parent *Element) {
	for p.pos < len(p.input) {
		next := strings.IndexByte(p.input[p.pos:], '<')
		if next < 0 {
			text := p.input[p.pos:]
			if strings.TrimSpace(text) != "" {
				parent.AppendChild(Text(text))
			}
			p.pos = len(p.input)
			return
		}
		if next > 0 {
			text := p.input[p.pos : p.pos+next]
			if strings.TrimSpace(text) != "" {
				parent.AppendChild(Text(text))
			}
			p.pos += next
		}
		if strings.HasPrefix(p.input[p.pos:], "</") {
			end := strings.IndexByte(p.input[p.pos:], '>')
			if end < 0 {
				p.pos = len(p.input)
				return
			}
			p.pos += end + 1
			return // closing tag: pop back to caller
		}
		end := strings.IndexByte(p.input[p.pos:], '>')
		if end < 0 {
			return
		}
		tagContent := p.input[p.pos+1 : p.pos+end]
		selfClosing := strings.HasSuffix(tagContent, "/")
		tagContent = strings.TrimSuffix(tagContent, "/")
		fields := strings.Fields(tagContent)
		if len(fields) == 0 {
			p.pos += end + 1
			continue
		}
		el := NewElement(fields[0])
		for _, f := range fields[1:] {
			if eq := strings.IndexByte(f, '='); eq > 0 {
				name := f[:eq]
				val := strings.Trim(f[eq+1:], `"'`)
				el.Attrs[name] = val
				el.attrOrder = append(el.attrOrder, name)
			}
		}
		parent.AppendChild(el)
		p.pos += end + 1
		if !selfClosing {
			p.parseInto(el)
		}
	}
}

// MarshalJSON lets an Element's subtree be embedded in a renderer
// message's data payload when a full structural mirror (rather than a
// single-field diff) is needed.
func (e *Element) MarshalJSON() ([]byte, error) {
	type alias struct {
		Tag      string            `json:"tag"`
		Attrs    map[string]string `json:"attrs,omitempty"`
		Children []string          `json:"children,omitempty"`
	}
	a := alias{Tag: e.Tag, Attrs: e.Attrs}
	for _, c := range e.Children {
		switch n := c.(type) {
		case Text:
			a.Children = append(a.Children, string(n))
		case *Element:
			a.Children = append(a.Children, n.Tag)
		}
	}
	return json.Marshal(a)
}
