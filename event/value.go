// Copyright The LibTrace Authors
// SPDX-License-Identifier: Apache-2.0

// Package event defines the polymorphic value model used to represent
// decoded trace events, and the event envelope handed to consumers.
package event // import "github.com/fdoray/libtrace/event"

import (
	"unicode/utf16"
)

// Kind identifies the concrete type held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	// KindString is a narrow string: a byte sequence interpreted as text.
	KindString
	// KindWString is a wide string: a sequence of UTF-16 code units.
	KindWString
	KindStruct
	KindArray
)

// Value is a node of a decoded event tree. The set of implementations is
// closed: the scalar leaves below, String, WString, Struct and Array.
// Values are owned by their containing Struct or Array (or the Event);
// consumers receive borrows and must not retain them past the callback.
type Value interface {
	Kind() Kind

	// Equal reports deep equality: kinds match and all fields or
	// elements are recursively equal. Struct field order is significant.
	Equal(other Value) bool
}

type (
	Int8    int8
	Uint8   uint8
	Int16   int16
	Uint16  uint16
	Int32   int32
	Uint32  uint32
	Int64   int64
	Uint64  uint64
	Float32 float32
	Float64 float64

	// String is a narrow string leaf.
	String string
)

// WString is a wide string leaf. The in-memory representation keeps the
// original UTF-16 code-unit sequence so that decoding round-trips even in
// the presence of unpaired surrogates.
type WString struct {
	units []uint16
}

// NewWString builds a wide string from UTF-16 code units. The slice is
// owned by the returned value.
func NewWString(units []uint16) WString {
	return WString{units: units}
}

// WStringFromString converts a Go string to a wide string value.
func WStringFromString(s string) WString {
	return WString{units: utf16.Encode([]rune(s))}
}

// Units returns the UTF-16 code units of the string.
func (w WString) Units() []uint16 { return w.units }

// String decodes the code units to a Go string. Unpaired surrogates are
// replaced with U+FFFD.
func (w WString) String() string { return string(utf16.Decode(w.units)) }

func (Int8) Kind() Kind    { return KindInt8 }
func (Uint8) Kind() Kind   { return KindUint8 }
func (Int16) Kind() Kind   { return KindInt16 }
func (Uint16) Kind() Kind  { return KindUint16 }
func (Int32) Kind() Kind   { return KindInt32 }
func (Uint32) Kind() Kind  { return KindUint32 }
func (Int64) Kind() Kind   { return KindInt64 }
func (Uint64) Kind() Kind  { return KindUint64 }
func (Float32) Kind() Kind { return KindFloat32 }
func (Float64) Kind() Kind { return KindFloat64 }
func (String) Kind() Kind  { return KindString }
func (WString) Kind() Kind { return KindWString }

func (v Int8) Equal(o Value) bool    { x, ok := o.(Int8); return ok && v == x }
func (v Uint8) Equal(o Value) bool   { x, ok := o.(Uint8); return ok && v == x }
func (v Int16) Equal(o Value) bool   { x, ok := o.(Int16); return ok && v == x }
func (v Uint16) Equal(o Value) bool  { x, ok := o.(Uint16); return ok && v == x }
func (v Int32) Equal(o Value) bool   { x, ok := o.(Int32); return ok && v == x }
func (v Uint32) Equal(o Value) bool  { x, ok := o.(Uint32); return ok && v == x }
func (v Int64) Equal(o Value) bool   { x, ok := o.(Int64); return ok && v == x }
func (v Uint64) Equal(o Value) bool  { x, ok := o.(Uint64); return ok && v == x }
func (v Float32) Equal(o Value) bool { x, ok := o.(Float32); return ok && v == x }
func (v Float64) Equal(o Value) bool { x, ok := o.(Float64); return ok && v == x }
func (v String) Equal(o Value) bool  { x, ok := o.(String); return ok && v == x }

func (v WString) Equal(o Value) bool {
	x, ok := o.(WString)
	if !ok || len(v.units) != len(x.units) {
		return false
	}
	for i, u := range v.units {
		if x.units[i] != u {
			return false
		}
	}
	return true
}

// AsUint64 widens an integral value to uint64. Returns false for
// non-integral kinds. Signed values are converted two's complement.
func AsUint64(v Value) (uint64, bool) {
	switch x := v.(type) {
	case Uint8:
		return uint64(x), true
	case Uint16:
		return uint64(x), true
	case Uint32:
		return uint64(x), true
	case Uint64:
		return uint64(x), true
	case Int8:
		return uint64(int64(x)), true
	case Int16:
		return uint64(int64(x)), true
	case Int32:
		return uint64(int64(x)), true
	case Int64:
		return uint64(x), true
	}
	return 0, false
}

// Field is a named member of a Struct.
type Field struct {
	Name  string
	Value Value
}

// Struct is an ordered sequence of named values. Field order is insertion
// order and is significant for equality. Duplicate names are permitted;
// lookup returns the first match.
type Struct struct {
	fields []Field
}

// NewStruct returns an empty struct value.
func NewStruct() *Struct { return &Struct{} }

func (*Struct) Kind() Kind { return KindStruct }

// AddField appends a field. O(1).
func (s *Struct) AddField(name string, v Value) {
	s.fields = append(s.fields, Field{Name: name, Value: v})
}

// NumFields returns the field count.
func (s *Struct) NumFields() int { return len(s.fields) }

// FieldAt returns the i-th field in insertion order.
func (s *Struct) FieldAt(i int) Field { return s.fields[i] }

// Field returns the first field with the given name.
func (s *Struct) Field(name string) (Value, bool) {
	for i := range s.fields {
		if s.fields[i].Name == name {
			return s.fields[i].Value, true
		}
	}
	return nil, false
}

// FieldAsUint64 looks up a field and widens it to uint64.
func (s *Struct) FieldAsUint64(name string) (uint64, bool) {
	v, ok := s.Field(name)
	if !ok {
		return 0, false
	}
	return AsUint64(v)
}

// FieldAsString looks up a narrow string field.
func (s *Struct) FieldAsString(name string) (string, bool) {
	v, ok := s.Field(name)
	if !ok {
		return "", false
	}
	x, ok := v.(String)
	return string(x), ok
}

// FieldAsWString looks up a wide string field and decodes it.
func (s *Struct) FieldAsWString(name string) (string, bool) {
	v, ok := s.Field(name)
	if !ok {
		return "", false
	}
	x, ok := v.(WString)
	if !ok {
		return "", false
	}
	return x.String(), true
}

// FieldAsArray looks up an array field.
func (s *Struct) FieldAsArray(name string) (*Array, bool) {
	v, ok := s.Field(name)
	if !ok {
		return nil, false
	}
	x, ok := v.(*Array)
	return x, ok
}

func (s *Struct) Equal(o Value) bool {
	x, ok := o.(*Struct)
	if !ok || len(s.fields) != len(x.fields) {
		return false
	}
	for i := range s.fields {
		if s.fields[i].Name != x.fields[i].Name ||
			!s.fields[i].Value.Equal(x.fields[i].Value) {
			return false
		}
	}
	return true
}

// Array is a homogeneous ordered sequence of values.
type Array struct {
	elements []Value
}

// NewArray returns an empty array value.
func NewArray() *Array { return &Array{} }

func (*Array) Kind() Kind { return KindArray }

// Append adds an element at the end.
func (a *Array) Append(v Value) { a.elements = append(a.elements, v) }

// Len returns the element count.
func (a *Array) Len() int { return len(a.elements) }

// At returns the i-th element.
func (a *Array) At(i int) Value { return a.elements[i] }

func (a *Array) Equal(o Value) bool {
	x, ok := o.(*Array)
	if !ok || len(a.elements) != len(x.elements) {
		return false
	}
	for i := range a.elements {
		if !a.elements[i].Equal(x.elements[i]) {
			return false
		}
	}
	return true
}
