package sds

import "testing"

func newTestDataset(t *testing.T, l *Layout) *Dataset {
	t.Helper()
	ds := &Dataset{working: l, original: NewLayout()}
	if err := ds.StartPage(4); err != nil {
		t.Fatalf("StartPage: %v", err)
	}
	return ds
}

func sampleLayout() *Layout {
	l := NewLayout()
	l.DefineParameter(ParameterDef{NamedDef: NamedDef{Name: "title", Type: TString}})
	l.DefineParameter(ParameterDef{NamedDef: NamedDef{Name: "gain", Type: TDouble}})
	l.DefineColumn(ColumnDef{NamedDef: NamedDef{Name: "x", Type: TDouble}})
	l.DefineColumn(ColumnDef{NamedDef: NamedDef{Name: "label", Type: TString}})
	l.DefineArray(ArrayDef{NamedDef: NamedDef{Name: "grid", Type: TInt32}, Dimensions: 2})
	return l
}

func TestSetParameterByNameAndIndex(t *testing.T) {
	ds := newTestDataset(t, sampleLayout())
	if err := ds.SetParameterByName("title", "run 1"); err != nil {
		t.Fatalf("SetParameterByName: %v", err)
	}
	if err := ds.SetParameterByIndex(1, float64(2.5)); err != nil {
		t.Fatalf("SetParameterByIndex: %v", err)
	}
	v, err := ds.ParameterValueByName("title")
	if err != nil || v != "run 1" {
		t.Errorf("ParameterValueByName(title) = %v, %v, want %q, nil", v, err, "run 1")
	}
	v, err = ds.ParameterValue(1)
	if err != nil || v != 2.5 {
		t.Errorf("ParameterValue(1) = %v, %v, want 2.5, nil", v, err)
	}
}

func TestSetParameterUnknownNameFails(t *testing.T) {
	ds := newTestDataset(t, sampleLayout())
	if err := ds.SetParameterByName("missing", 1.0); err == nil {
		t.Fatal("SetParameterByName(missing) succeeded, want error")
	}
	if !ds.Failed() {
		t.Error("error chain should record the failed SetParameterByName")
	}
}

func TestSetParameterCastsIntoDeclaredType(t *testing.T) {
	ds := newTestDataset(t, sampleLayout())
	if err := ds.SetParameterByName("gain", float32(3.0)); err != nil {
		t.Fatalf("SetParameterByName: %v", err)
	}
	v, err := ds.ParameterValueByName("gain")
	if err != nil {
		t.Fatalf("ParameterValueByName: %v", err)
	}
	if _, ok := v.(float64); !ok {
		t.Errorf("gain parameter holds %T, want float64 (declared TDouble)", v)
	}
}

func TestSetRowValues(t *testing.T) {
	ds := newTestDataset(t, sampleLayout())
	if err := ds.SetRowValues(0, RowValue{Name: "x", Value: 1.5}, RowValue{Name: "label", Value: "a"}); err != nil {
		t.Fatalf("SetRowValues: %v", err)
	}
	if err := ds.SetRowValues(2, RowValue{Name: "x", Value: 2.5}); err != nil {
		t.Fatalf("SetRowValues: %v", err)
	}
	if ds.NRows() != 3 {
		t.Errorf("NRows() = %d, want 3 (highest written row + 1)", ds.NRows())
	}
	v, _ := ds.ColumnValue(0, 0)
	if v != 1.5 {
		t.Errorf("ColumnValue(x,0) = %v, want 1.5", v)
	}
}

func TestSetRowValuesRejectsOutOfRangeRow(t *testing.T) {
	ds := newTestDataset(t, sampleLayout())
	if err := ds.SetRowValues(99, RowValue{Name: "x", Value: 1.0}); err == nil {
		t.Fatal("SetRowValues(99, ...) succeeded, want out-of-range error")
	}
}

func TestSetColumnSetsRowCount(t *testing.T) {
	ds := newTestDataset(t, sampleLayout())
	if err := ds.SetColumn(0, "", []interface{}{1.0, 2.0, 3.0}); err != nil {
		t.Fatalf("SetColumn: %v", err)
	}
	if ds.NRows() != 3 {
		t.Errorf("NRows() = %d, want 3", ds.NRows())
	}
	vals, err := ds.ColumnValues(0)
	if err != nil {
		t.Fatalf("ColumnValues: %v", err)
	}
	if len(vals) != 3 || vals[2] != 3.0 {
		t.Errorf("ColumnValues(x) = %v, want [1 2 3]", vals)
	}
}

func TestSetColumnRejectsOverAllocation(t *testing.T) {
	ds := newTestDataset(t, sampleLayout())
	vals := make([]interface{}, ds.NRowsAllocated()+1)
	for i := range vals {
		vals[i] = float64(i)
	}
	if err := ds.SetColumn(0, "", vals); err == nil {
		t.Fatal("SetColumn exceeding allocation succeeded, want error")
	}
}

func TestSetColumnFromDoublesCastsToString(t *testing.T) {
	ds := newTestDataset(t, sampleLayout())
	if err := ds.SetColumnFromDoubles(1, "", []float64{1, 2}); err != nil {
		t.Fatalf("SetColumnFromDoubles: %v", err)
	}
	vals, _ := ds.ColumnValues(1)
	if vals[0] != "1" {
		t.Errorf("SetColumnFromDoubles into string column: vals[0] = %v, want %q", vals[0], "1")
	}
}

func TestSetParametersFromLongsCasts(t *testing.T) {
	ds := newTestDataset(t, sampleLayout())
	if err := ds.SetParametersFromLongs(ParamValue{Name: "gain", Value: int64(7)}); err != nil {
		t.Fatalf("SetParametersFromLongs: %v", err)
	}
	v, _ := ds.ParameterValueByName("gain")
	if v != float64(7) {
		t.Errorf("gain = %v, want 7.0", v)
	}
}

func TestSetArrayAndGetArrayValue(t *testing.T) {
	ds := newTestDataset(t, sampleLayout())
	data := []interface{}{int32(1), int32(2), int32(3), int32(4), int32(5), int32(6)}
	if err := ds.SetArray(0, "", []int{2, 3}, data); err != nil {
		t.Fatalf("SetArray: %v", err)
	}
	dim, out, err := ds.ArrayValue(0)
	if err != nil {
		t.Fatalf("ArrayValue: %v", err)
	}
	if dim[0] != 2 || dim[1] != 3 || len(out) != 6 {
		t.Errorf("ArrayValue dim=%v len(data)=%d, want [2 3] 6", dim, len(out))
	}
}

func TestSetArrayRejectsWrongDataLength(t *testing.T) {
	ds := newTestDataset(t, sampleLayout())
	data := []interface{}{int32(1), int32(2)}
	if err := ds.SetArray(0, "", []int{2, 3}, data); err == nil {
		t.Fatal("SetArray with mismatched data length succeeded, want error")
	}
}

func TestSetArrayFromPointersRowMajor(t *testing.T) {
	ds := newTestDataset(t, sampleLayout())
	grid := [][]int32{{1, 2, 3}, {4, 5, 6}}
	err := ds.SetArrayFromPointers(0, "", []int{2, 3}, func(coords []int) interface{} {
		return grid[coords[0]][coords[1]]
	})
	if err != nil {
		t.Fatalf("SetArrayFromPointers: %v", err)
	}
	_, out, _ := ds.ArrayValue(0)
	want := []interface{}{int32(1), int32(2), int32(3), int32(4), int32(5), int32(6)}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestAppendToArrayRejectsMultiDimensional(t *testing.T) {
	ds := newTestDataset(t, sampleLayout())
	if err := ds.AppendToArray(0, "", []interface{}{int32(1)}); err == nil {
		t.Fatal("AppendToArray on a 2-D array succeeded, want UnsupportedType error")
	}
}

func TestAppendToArrayOneDimensional(t *testing.T) {
	l := NewLayout()
	l.DefineArray(ArrayDef{NamedDef: NamedDef{Name: "series", Type: TDouble}, Dimensions: 1})
	ds := newTestDataset(t, l)
	if err := ds.AppendToArray(0, "", []interface{}{1.0, 2.0}); err != nil {
		t.Fatalf("AppendToArray: %v", err)
	}
	if err := ds.AppendToArray(0, "", []interface{}{3.0}); err != nil {
		t.Fatalf("AppendToArray: %v", err)
	}
	_, out, _ := ds.ArrayValue(0)
	if len(out) != 3 || out[2] != 3.0 {
		t.Errorf("ArrayValue after two appends = %v, want [1 2 3]", out)
	}
}
