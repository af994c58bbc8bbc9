package sds

import "strconv"

// toFloat64 extracts the numeric value of v, which must hold one of the
// concrete Go types used to represent a numeric T (see inferType in
// setters.go for the canonical list).
func toFloat64(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint32:
		return float64(x), true
	case int16:
		return float64(x), true
	case uint16:
		return float64(x), true
	}
	return 0, false
}

// zeroValue returns the in-memory zero value for t, used when clearing
// pages and growing buffers.
func zeroValue(t T) interface{} {
	switch t {
	case TLongDouble, TDouble:
		return float64(0)
	case TFloat:
		return float32(0)
	case TInt64:
		return int64(0)
	case TUInt64:
		return uint64(0)
	case TInt32:
		return int32(0)
	case TUInt32:
		return uint32(0)
	case TInt16:
		return int16(0)
	case TUInt16:
		return uint16(0)
	case TString:
		return ""
	case TChar:
		return byte(0)
	}
	return nil
}

// Cast converts v (assumed to already hold the Go type naturally
// associated with srcType) to the Go type naturally associated with
// target, per the rules in:
//
//   - numeric -> numeric: value copy with C-style truncation, no
//     overflow detection;
//   - string -> string / char -> char: copy;
//   - anything else crossing the string/numeric boundary: TypeMismatch.
func Cast(op string, target T, srcType T, v interface{}) (interface{}, error) {
	if target == TString {
		if srcType == TString {
			s, _ := v.(string)
			return s, nil // Go strings are immutable; assignment already
			// satisfies "deep copy" — there is no mutable backing buffer to
			// alias.
		}
		if srcType.IsNumeric() {
			return formatNumericToString(srcType, v), nil
		}
		return nil, newErr(op, TypeMismatch, "cannot cast "+srcType.Name()+" to string", nil)
	}
	if srcType == TString {
		return nil, newErr(op, TypeMismatch, "cannot cast string to "+target.Name(), nil)
	}
	if target == TChar {
		if srcType != TChar {
			return nil, newErr(op, TypeMismatch, "cannot cast "+srcType.Name()+" to character", nil)
		}
		b, _ := v.(byte)
		return b, nil
	}
	if srcType == TChar {
		return nil, newErr(op, TypeMismatch, "cannot cast character to "+target.Name(), nil)
	}
	if !target.IsNumeric() || !srcType.IsNumeric() {
		return nil, newErr(op, TypeMismatch, "incompatible types "+srcType.Name()+" -> "+target.Name(), nil)
	}
	f, ok := toFloat64(v)
	if !ok {
		return nil, newErr(op, TypeMismatch, "value is not of declared type "+srcType.Name(), nil)
	}
	switch target {
	case TLongDouble, TDouble:
		return f, nil
	case TFloat:
		return float32(f), nil
	case TInt64:
		return int64(f), nil
	case TUInt64:
		return uint64(int64(f)), nil
	case TInt32:
		return int32(f), nil
	case TUInt32:
		return uint32(int32(f)), nil
	case TInt16:
		return int16(f), nil
	case TUInt16:
		return uint16(int16(f)), nil
	}
	return nil, newErr(op, TypeMismatch, "unsupported target type "+target.Name(), nil)
}

// formatNumericToString implements the per-type textual formatting used
// when a numeric source is assigned into a string-typed column or
// parameter.
func formatNumericToString(srcType T, v interface{}) string {
	switch srcType {
	case TDouble:
		f, _ := toFloat64(v)
		return strconv.FormatFloat(f, 'g', 15, 64)
	case TLongDouble:
		f, _ := toFloat64(v)
		return strconv.FormatFloat(f, 'g', 18, 64)
	case TFloat:
		f, _ := toFloat64(v)
		return strconv.FormatFloat(f, 'g', 8, 32)
	case TInt32:
		i, _ := v.(int32)
		return strconv.FormatInt(int64(i), 10)
	case TInt64:
		i, _ := v.(int64)
		return strconv.FormatInt(i, 10)
	case TUInt64:
		u, _ := v.(uint64)
		return strconv.FormatUint(u, 10)
	case TUInt32:
		u, _ := v.(uint32)
		return strconv.FormatUint(uint64(u), 10)
	case TInt16:
		i, _ := v.(int16)
		return strconv.FormatInt(int64(i), 10)
	case TUInt16:
		u, _ := v.(uint16)
		return strconv.FormatUint(uint64(u), 10)
	}
	f, _ := toFloat64(v)
	return strconv.FormatFloat(f, 'g', -1, 64)
}
