package docvars

import "github.com/purc-lang/purc/variant"

// newDoc builds $DOC: document-level control members (only title).
// HVML's $DOC is deliberately thin in this module — the real estate it
// occupies in a full implementation (base URI resolution, document-level
// query selectors) is carried by the edom package instead, which owns
// the actual output-DOM tree $DOC would otherwise proxy.
func newDoc() *variant.ObjectVariant {
	return object(map[string]variant.Variant{
		"title": variant.NewString(""),
	})
}
