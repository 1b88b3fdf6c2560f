package variant

import "github.com/purc-lang/purc/errkind"

// GetterFunc/SetterFunc back a DynamicVariant: a pair of function pointers
// that compute a value on read and validate/apply one on write.
type GetterFunc func() (Variant, *errkind.Error)
type SetterFunc func(value Variant) *errkind.Error

// DynamicVariant is the "dynamic" kind: a computed property pair, used for
// built-in document-variable members like `$DATETIME.now` (spec.md §6)
// that must recompute on every read rather than holding a fixed value.
type DynamicVariant struct {
	base
	getter GetterFunc
	setter SetterFunc
}

func NewDynamic(getter GetterFunc, setter SetterFunc) *DynamicVariant {
	return &DynamicVariant{base: newBase(), getter: getter, setter: setter}
}

func (d *DynamicVariant) Kind() Kind { return Dynamic }

func (d *DynamicVariant) Get() (Variant, *errkind.Error) {
	if d.getter == nil {
		return nil, errkind.New(errkind.NotAllowed, "dynamic value has no getter")
	}
	return d.getter()
}

func (d *DynamicVariant) SetValue(value Variant) *errkind.Error {
	if d.setter == nil {
		return errkind.New(errkind.NotAllowed, "dynamic value has no setter")
	}
	return d.setter(value)
}

func (d *DynamicVariant) Interface() any {
	v, err := d.Get()
	if err != nil {
		return nil
	}
	return v.Interface()
}

func (d *DynamicVariant) Ref() Variant { d.ref(); return d }
func (d *DynamicVariant) Unref()       { d.unref(nil) }
func (d *DynamicVariant) Inspect() string {
	v, err := d.Get()
	if err != nil {
		return "dynamic(<error>)"
	}
	return "dynamic(" + v.Inspect() + ")"
}
func (d *DynamicVariant) Equals(other Variant) bool {
	return d == other
}
