package docvars

import (
	goruntime "runtime"

	"github.com/purc-lang/purc/variant"
)

// newSystem builds $SYSTEM: host platform properties, grounded on the
// teacher's os module's thin stdlib wrapping (here `runtime.GOOS`/
// `runtime.GOARCH` instead of the teacher's os.* calls, since HVML's
// $SYSTEM is a read-only descriptive bag rather than a side-effecting
// os module).
func newSystem() *variant.ObjectVariant {
	return object(map[string]variant.Variant{
		"os":      variant.NewString(goruntime.GOOS),
		"arch":    variant.NewString(goruntime.GOARCH),
		"version": variant.NewString(goruntime.Version()),
	})
}
