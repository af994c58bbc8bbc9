package sds

import (
	"fmt"
	"strconv"
)

// T is the closed set of scalar types a column, parameter, or array may
// hold. It is deliberately not extensible: every piece of code in this
// package that switches on T is expected to handle all eleven values.
type T int

const (
	TLongDouble T = iota
	TDouble
	TFloat
	TInt64
	TUInt64
	TInt32
	TUInt32
	TInt16
	TUInt16
	TString
	TChar

	// TAnyNumeric, TAnyInteger and TAnyFloat are sentinels accepted only by
	// CheckType; they must never be stored in a NamedDef or Layout.
	TAnyNumeric
	TAnyInteger
	TAnyFloat
)

// VariableSize is the value Size returns for TString, whose on-disk and
// in-memory representation has no fixed width.
const VariableSize = -1

var typeNames = map[T]string{
	TLongDouble: "longdouble",
	TDouble:     "double",
	TFloat:      "float",
	TInt64:      "int64",
	TUInt64:     "uint64",
	TInt32:      "int32",
	TUInt32:     "uint32",
	TInt16:      "int16",
	TUInt16:     "uint16",
	TString:     "string",
	TChar:       "character",
}

var typeSizes = map[T]int{
	TLongDouble: 16, // stored in memory as float64; 16 is the storage
	// size of the 80-bit extended format. The binary codec rejects
	// LongDouble with UnsupportedType (see data_codec.go); this value is
	// informational only.
	TDouble: 8,
	TFloat:  4,
	TInt64:  8,
	TUInt64: 8,
	TInt32:  4,
	TUInt32: 4,
	TInt16:  2,
	TUInt16: 2,
	TString: VariableSize,
	TChar:   1,
}

// Name returns the canonical textual name used in the namelist header.
func (t T) Name() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("T(%d)", int(t))
}

// ParseType is the inverse of Name. It fails with a *Error of kind
// BadField for unknown names, including the sentinel "any" types, which
// are never valid in a stored definition.
func ParseType(name string) (T, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, &Error{Kind: BadField, Op: "ParseType", Msg: "unknown type name " + strconv.Quote(name)}
}

// Size returns the fixed on-disk size in bytes for t, or VariableSize for
// TString.
func (t T) Size() int {
	if s, ok := typeSizes[t]; ok {
		return s
	}
	return VariableSize
}

// Stored reports whether t is a concrete, storable type (i.e. not one of
// the any-numeric/any-integer/any-float sentinels).
func (t T) Stored() bool {
	_, ok := typeNames[t]
	return ok
}

// IsInteger reports whether t is one of the fixed-width integer types.
func (t T) IsInteger() bool {
	switch t {
	case TInt64, TUInt64, TInt32, TUInt32, TInt16, TUInt16, TAnyInteger:
		return true
	}
	return false
}

// IsFloat reports whether t is one of the floating-point types.
func (t T) IsFloat() bool {
	switch t {
	case TLongDouble, TDouble, TFloat, TAnyFloat:
		return true
	}
	return false
}

// IsNumeric reports whether t is an integer or floating-point type (and
// so eligible for the numeric cast matrix).
func (t T) IsNumeric() bool {
	return t.IsInteger() || t.IsFloat() || t == TAnyNumeric
}

// IsUnsigned16Or32 reports whether t is one of the two types that bump a
// layout's computed version to at least 2.
func (t T) IsUnsigned16Or32() bool {
	return t == TUInt16 || t == TUInt32
}

// Is64BitInteger reports whether t is one of the two types that bump a
// layout's computed version to at least 5.
func (t T) Is64BitInteger() bool {
	return t == TInt64 || t == TUInt64
}

// CheckType validates a type against an expectation that may itself be
// one of the sentinel "any" values("accepted only in
// check/validate routines — never as a stored type").
func CheckType(got, want T) bool {
	switch want {
	case TAnyNumeric:
		return got.IsNumeric()
	case TAnyInteger:
		return got.IsInteger()
	case TAnyFloat:
		return got.IsFloat()
	default:
		return got == want
	}
}
