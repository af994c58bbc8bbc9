package sds

import "testing"

func TestCastNumericToNumeric(t *testing.T) {
	got, err := Cast("TestCast", TInt32, TDouble, float64(3.9))
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if got.(int32) != 3 {
		t.Errorf("Cast(double 3.9 -> int32) = %v, want 3 (truncation, no rounding)", got)
	}
}

func TestCastNumericToString(t *testing.T) {
	got, err := Cast("TestCast", TString, TInt32, int32(42))
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if got.(string) != "42" {
		t.Errorf("Cast(int32 42 -> string) = %q, want %q", got, "42")
	}
}

func TestCastStringToNumericFails(t *testing.T) {
	_, err := Cast("TestCast", TInt32, TString, "42")
	if err == nil {
		t.Fatal("Cast(string -> int32) succeeded, want TypeMismatch")
	}
	if e, ok := err.(*Error); !ok || e.Kind != TypeMismatch {
		t.Errorf("Cast err = %v, want Kind=TypeMismatch", err)
	}
}

func TestCastCharOnlyAcceptsChar(t *testing.T) {
	if _, err := Cast("TestCast", TChar, TInt32, int32(1)); err == nil {
		t.Fatal("Cast(int32 -> char) succeeded, want TypeMismatch")
	}
	got, err := Cast("TestCast", TChar, TChar, byte('x'))
	if err != nil {
		t.Fatalf("Cast(char -> char): %v", err)
	}
	if got.(byte) != 'x' {
		t.Errorf("Cast(char -> char) = %v, want 'x'", got)
	}
}

func TestCastStringToStringCopies(t *testing.T) {
	got, err := Cast("TestCast", TString, TString, "hello")
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if got.(string) != "hello" {
		t.Errorf("Cast(string -> string) = %q, want %q", got, "hello")
	}
}

func TestZeroValue(t *testing.T) {
	for _, tt := range []struct {
		t    T
		want interface{}
	}{
		{TDouble, float64(0)},
		{TFloat, float32(0)},
		{TInt64, int64(0)},
		{TUInt64, uint64(0)},
		{TString, ""},
		{TChar, byte(0)},
	} {
		if got := zeroValue(tt.t); got != tt.want {
			t.Errorf("zeroValue(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}
