package docvars

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/variant"
)

// newStr builds $STR: string utilities plus the hash/verify pair backed
// by golang.org/x/crypto/bcrypt (SPEC_FULL.md §4, grounded on risor's
// modules/bcrypt submodule).
func newStr() *variant.ObjectVariant {
	return object(map[string]variant.Variant{
		"hash": NewCallable(func(args []variant.Variant) (variant.Variant, *errkind.Error) {
			password, err := oneString("STR.hash", args)
			if err != nil {
				return nil, err
			}
			digest, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if hashErr != nil {
				return nil, errkind.New(errkind.ExternalFailure, "STR.hash: %v", hashErr)
			}
			return variant.NewString(string(digest)), nil
		}),
		"verify": NewCallable(func(args []variant.Variant) (variant.Variant, *errkind.Error) {
			password, digest, strErr := twoStrings("STR.verify", args)
			if strErr != nil {
				return nil, strErr
			}
			cmpErr := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
			return variant.Bool(cmpErr == nil), nil
		}),
	})
}
