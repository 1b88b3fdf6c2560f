package variant

import (
	"encoding/hex"
	"fmt"
	"strconv"
)

// NumberVariant is the "number" kind: an IEEE-754 double.
type NumberVariant struct {
	base
	value float64
}

func NewNumber(value float64) *NumberVariant {
	return &NumberVariant{base: newBase(), value: value}
}

func (n *NumberVariant) Kind() Kind      { return Number }
func (n *NumberVariant) Value() float64  { return n.value }
func (n *NumberVariant) Interface() any  { return n.value }
func (n *NumberVariant) Ref() Variant    { n.ref(); return n }
func (n *NumberVariant) Unref()          { n.unref(nil) }
func (n *NumberVariant) Inspect() string { return strconv.FormatFloat(n.value, 'g', -1, 64) }
func (n *NumberVariant) Equals(other Variant) bool {
	o, ok := other.(*NumberVariant)
	return ok && o.value == n.value
}

// LongIntVariant is the "long-int" kind: a signed 64-bit integer.
type LongIntVariant struct {
	base
	value int64
}

func NewLongInt(value int64) *LongIntVariant {
	return &LongIntVariant{base: newBase(), value: value}
}

func (i *LongIntVariant) Kind() Kind      { return LongInt }
func (i *LongIntVariant) Value() int64    { return i.value }
func (i *LongIntVariant) Interface() any  { return i.value }
func (i *LongIntVariant) Ref() Variant    { i.ref(); return i }
func (i *LongIntVariant) Unref()          { i.unref(nil) }
func (i *LongIntVariant) Inspect() string { return strconv.FormatInt(i.value, 10) + "L" }
func (i *LongIntVariant) Equals(other Variant) bool {
	o, ok := other.(*LongIntVariant)
	return ok && o.value == i.value
}

// ULongIntVariant is the "unsigned-long-int" kind: an unsigned 64-bit integer.
type ULongIntVariant struct {
	base
	value uint64
}

func NewULongInt(value uint64) *ULongIntVariant {
	return &ULongIntVariant{base: newBase(), value: value}
}

func (i *ULongIntVariant) Kind() Kind      { return ULongInt }
func (i *ULongIntVariant) Value() uint64   { return i.value }
func (i *ULongIntVariant) Interface() any  { return i.value }
func (i *ULongIntVariant) Ref() Variant    { i.ref(); return i }
func (i *ULongIntVariant) Unref()          { i.unref(nil) }
func (i *ULongIntVariant) Inspect() string { return strconv.FormatUint(i.value, 10) + "UL" }
func (i *ULongIntVariant) Equals(other Variant) bool {
	o, ok := other.(*ULongIntVariant)
	return ok && o.value == i.value
}

// StringVariant is the "string" kind: UTF-8 text.
type StringVariant struct {
	base
	value string
}

func NewString(value string) *StringVariant {
	return &StringVariant{base: newBase(), value: value}
}

func (s *StringVariant) Kind() Kind      { return String }
func (s *StringVariant) Value() string   { return s.value }
func (s *StringVariant) Interface() any  { return s.value }
func (s *StringVariant) Ref() Variant    { s.ref(); return s }
func (s *StringVariant) Unref()          { s.unref(nil) }
func (s *StringVariant) Inspect() string { return strconv.Quote(s.value) }
func (s *StringVariant) String() string  { return s.value }
func (s *StringVariant) Equals(other Variant) bool {
	o, ok := other.(*StringVariant)
	return ok && o.value == s.value
}

// BytesVariant is the "byte-sequence" kind.
type BytesVariant struct {
	base
	value []byte
}

func NewBytes(value []byte) *BytesVariant {
	return &BytesVariant{base: newBase(), value: value}
}

func (b *BytesVariant) Kind() Kind      { return ByteSequence }
func (b *BytesVariant) Value() []byte   { return b.value }
func (b *BytesVariant) Interface() any  { return b.value }
func (b *BytesVariant) Ref() Variant    { b.ref(); return b }
func (b *BytesVariant) Unref()          { b.unref(nil) }
func (b *BytesVariant) Inspect() string { return fmt.Sprintf("b\"%s\"", hex.EncodeToString(b.value)) }
func (b *BytesVariant) Equals(other Variant) bool {
	o, ok := other.(*BytesVariant)
	if !ok || len(o.value) != len(b.value) {
		return false
	}
	for i := range b.value {
		if b.value[i] != o.value[i] {
			return false
		}
	}
	return true
}
