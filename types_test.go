package sds

import "testing"

func TestTypeNameRoundTrip(t *testing.T) {
	for _, tt := range []T{
		TLongDouble, TDouble, TFloat, TInt64, TUInt64, TInt32, TUInt32,
		TInt16, TUInt16, TString, TChar,
	} {
		name := tt.Name()
		got, err := ParseType(name)
		if err != nil {
			t.Fatalf("ParseType(%q) = %v", name, err)
		}
		if got != tt {
			t.Errorf("ParseType(Name(%v)) = %v, want %v", tt, got, tt)
		}
	}
}

func TestParseTypeRejectsSentinel(t *testing.T) {
	for _, name := range []string{"any numeric", "unknown", ""} {
		if _, err := ParseType(name); err == nil {
			t.Errorf("ParseType(%q) succeeded, want error", name)
		}
	}
}

func TestTypeClassification(t *testing.T) {
	for _, tt := range []struct {
		t         T
		isInt     bool
		isFloat   bool
		isNumeric bool
	}{
		{TInt32, true, false, true},
		{TUInt64, true, false, true},
		{TDouble, false, true, true},
		{TLongDouble, false, true, true},
		{TString, false, false, false},
		{TChar, false, false, false},
	} {
		if got := tt.t.IsInteger(); got != tt.isInt {
			t.Errorf("%v.IsInteger() = %v, want %v", tt.t, got, tt.isInt)
		}
		if got := tt.t.IsFloat(); got != tt.isFloat {
			t.Errorf("%v.IsFloat() = %v, want %v", tt.t, got, tt.isFloat)
		}
		if got := tt.t.IsNumeric(); got != tt.isNumeric {
			t.Errorf("%v.IsNumeric() = %v, want %v", tt.t, got, tt.isNumeric)
		}
	}
}

func TestVersionBumpTypes(t *testing.T) {
	for _, tt := range []struct {
		t    T
		bump bool
	}{
		{TUInt16, true},
		{TUInt32, true},
		{TInt64, false},
		{TDouble, false},
	} {
		if got := tt.t.IsUnsigned16Or32(); got != tt.bump {
			t.Errorf("%v.IsUnsigned16Or32() = %v, want %v", tt.t, got, tt.bump)
		}
	}
	if !TInt64.Is64BitInteger() || !TUInt64.Is64BitInteger() {
		t.Error("Int64/UInt64 should be Is64BitInteger")
	}
	if TInt32.Is64BitInteger() {
		t.Error("Int32 should not be Is64BitInteger")
	}
}

func TestCheckTypeSentinels(t *testing.T) {
	if !CheckType(TInt32, TAnyInteger) {
		t.Error("TInt32 should satisfy TAnyInteger")
	}
	if CheckType(TDouble, TAnyInteger) {
		t.Error("TDouble should not satisfy TAnyInteger")
	}
	if !CheckType(TFloat, TAnyFloat) {
		t.Error("TFloat should satisfy TAnyFloat")
	}
	if !CheckType(TUInt16, TAnyNumeric) {
		t.Error("TUInt16 should satisfy TAnyNumeric")
	}
	if !CheckType(TString, TString) {
		t.Error("TString should satisfy itself")
	}
	if CheckType(TString, TAnyNumeric) {
		t.Error("TString should not satisfy TAnyNumeric")
	}
}
