package docvars

import (
	"time"

	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/variant"
)

// newDatetime builds $DATETIME: `now` is a dynamic member that
// recomputes the current instant on every read (rather than caching it
// at document-init time), grounded on the teacher's modules/time's
// `Now`/`Unix`/`Parse` builtins.
func newDatetime() *variant.ObjectVariant {
	return object(map[string]variant.Variant{
		"now": variant.NewDynamic(func() (variant.Variant, *errkind.Error) {
			return variant.NewString(time.Now().Format(time.RFC3339)), nil
		}, nil),
		"unix": NewCallable(func(args []variant.Variant) (variant.Variant, *errkind.Error) {
			return variant.NewLongInt(time.Now().Unix()), nil
		}),
	})
}
