package docvars

import "github.com/purc-lang/purc/variant"

// newHVML builds $HVML: the control-properties object spec.md §6
// describes as carrying the document's own control attributes (the
// `target` from `<hvml target="html">`, plus a fixed base URI member).
func newHVML(target string) *variant.ObjectVariant {
	if target == "" {
		target = "html"
	}
	return object(map[string]variant.Variant{
		"target": variant.NewString(target),
		"base":   variant.NewString(""),
	})
}
