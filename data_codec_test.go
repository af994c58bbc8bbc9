package sds

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func writeSamplePage(t *testing.T, path string, comp Compression, mode Mode, columnMajor bool, fixedRowCount bool) {
	t.Helper()
	l := NewLayout()
	l.DefineParameter(ParameterDef{NamedDef: NamedDef{Name: "gain", Type: TDouble}})
	l.DefineColumn(ColumnDef{NamedDef: NamedDef{Name: "x", Type: TDouble}})
	l.DefineColumn(ColumnDef{NamedDef: NamedDef{Name: "label", Type: TString}})
	l.DataMode.Mode = mode
	l.DataMode.ColumnMajor = columnMajor
	l.DataMode.FixedRowCount = fixedRowCount

	ds, err := InitializeOutput(path, comp, l)
	if err != nil {
		t.Fatalf("InitializeOutput: %v", err)
	}
	defer ds.Terminate(false)

	if err := ds.StartPage(3); err != nil {
		t.Fatalf("StartPage: %v", err)
	}
	ds.SetParameterByName("gain", 2.5)
	ds.SetRowValues(0, RowValue{Name: "x", Value: 1.0}, RowValue{Name: "label", Value: "a"})
	ds.SetRowValues(1, RowValue{Name: "x", Value: 2.0}, RowValue{Name: "label", Value: "b"})
	if err := ds.WritePage(); err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	if fixedRowCount {
		if err := ds.StartPage(3); err != nil {
			t.Fatalf("StartPage (to flush fixed row count): %v", err)
		}
	}
}

func readBackAndCheck(t *testing.T, path string, comp Compression) {
	t.Helper()
	in, err := InitializeInput(path, comp, ReadAccess)
	if err != nil {
		t.Fatalf("InitializeInput: %v", err)
	}
	defer in.Terminate(false)
	if err := in.ReadLayout(); err != nil {
		t.Fatalf("ReadLayout: %v", err)
	}
	ok, err := in.ReadPage()
	if err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if !ok {
		t.Fatal("ReadPage reported no page present")
	}
	if in.NRows() != 2 {
		t.Fatalf("NRows() = %d, want 2", in.NRows())
	}
	v, err := in.ParameterValueByName("gain")
	if err != nil || v != 2.5 {
		t.Errorf("gain = %v, %v, want 2.5, nil", v, err)
	}
	vals, _ := in.ColumnValues(0)
	if vals[0] != 1.0 || vals[1] != 2.0 {
		t.Errorf("column x = %v, want [1 2]", vals)
	}
	labels, _ := in.ColumnValues(1)
	if labels[0] != "a" || labels[1] != "b" {
		t.Errorf("column label = %v, want [a b]", labels)
	}

	ok, err = in.ReadPage()
	if err != nil {
		t.Fatalf("second ReadPage: %v", err)
	}
	if ok {
		t.Error("ReadPage reported a second page where none was written")
	}
}

func TestWriteReadPageASCIIRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/page.sds"
	writeSamplePage(t, path, Plain, ASCIIMode, false, false)
	readBackAndCheck(t, path, Plain)
}

func TestWriteReadPageBinaryRowMajorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/page.sds"
	writeSamplePage(t, path, Plain, BinaryMode, false, false)
	readBackAndCheck(t, path, Plain)
}

func TestWriteReadPageBinaryColumnMajorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/page.sds"
	writeSamplePage(t, path, Plain, BinaryMode, true, false)
	readBackAndCheck(t, path, Plain)
}

func TestWriteReadPageGzipRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/page.sds.gz"
	writeSamplePage(t, path, Gzip, ASCIIMode, false, false)
	readBackAndCheck(t, path, Gzip)
}

func TestFixedRowCountIsPatchedInPlace(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/fixed.sds"
	writeSamplePage(t, path, Plain, ASCIIMode, false, true)
	readBackAndCheck(t, path, Plain)
}

func TestFixedRowCountIsPatchedInPlaceBinaryColumnMajor(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/fixed-binary.sds"
	writeSamplePage(t, path, Plain, BinaryMode, true, true)
	readBackAndCheck(t, path, Plain)
}

// TestBinaryRowCountWidthMatchesVersion pins §4.7/§6: the binary page
// body's row count is Int64 once any 64-bit integer column forces the
// layout to version 5, and Int32 below that (Scenario C).
func TestBinaryRowCountWidthMatchesVersion(t *testing.T) {
	cases := []struct {
		version  int
		wantSize int
	}{
		{1, 4},
		{4, 4},
		{5, 8},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if err := writeRowCount(&buf, binary.BigEndian, 7, c.version); err != nil {
			t.Fatalf("writeRowCount(version %d): %v", c.version, err)
		}
		if buf.Len() != c.wantSize {
			t.Errorf("version %d row count = %d bytes, want %d", c.version, buf.Len(), c.wantSize)
		}
		n, err := readRowCount(&buf, binary.BigEndian, c.version)
		if err != nil {
			t.Fatalf("readRowCount(version %d): %v", c.version, err)
		}
		if n != 7 {
			t.Errorf("readRowCount(version %d) = %d, want 7", c.version, n)
		}
	}
}

func TestFixedRowCountRejectedOnCompressedOutput(t *testing.T) {
	l := NewLayout()
	l.DataMode.FixedRowCount = true
	dir := t.TempDir()
	if _, err := InitializeOutput(dir+"/fixed.sds.gz", Gzip, l); err == nil {
		t.Fatal("InitializeOutput with FixedRowCount on a gzip stream succeeded, want error")
	}
}

func TestParseASCIIScalarRejectsMalformedNumber(t *testing.T) {
	if _, err := parseASCIIScalar(TDouble, "not-a-number"); err == nil {
		t.Error("parseASCIIScalar(double, not-a-number) succeeded, want error")
	}
}

func TestWriteBinaryScalarRejectsLongDouble(t *testing.T) {
	err := writeBinaryScalar(nil, binaryOrder(BigEndian), TLongDouble, float64(1))
	if err == nil {
		t.Fatal("writeBinaryScalar(LongDouble) succeeded, want UnsupportedType")
	}
	if e, ok := err.(*Error); !ok || e.Kind != UnsupportedType {
		t.Errorf("err = %v, want Kind=UnsupportedType", err)
	}
}

func TestTokenizeASCIIRowHandlesQuotedField(t *testing.T) {
	got := tokenizeASCIIRow(`1.5 "a label" 2.5`)
	want := []string{"1.5", `"a label"`, "2.5"}
	if len(got) != len(want) {
		t.Fatalf("tokenizeASCIIRow = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitEvenlyDistributesRemainder(t *testing.T) {
	got := splitEvenly(7, 3)
	want := []int{3, 2, 2}
	if len(got) != len(want) {
		t.Fatalf("splitEvenly(7,3) = %v, want %v", got, want)
	}
	sum := 0
	for i, n := range got {
		sum += n
		if n != want[i] {
			t.Errorf("splitEvenly(7,3)[%d] = %d, want %d", i, n, want[i])
		}
	}
	if sum != 7 {
		t.Errorf("splitEvenly(7,3) total = %d, want 7", sum)
	}
}
