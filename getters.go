package sds

// ParameterValue returns the current value of the parameter at index.
func (ds *Dataset) ParameterValue(index int) (interface{}, error) {
	const op = "ParameterValue"
	i, err := ds.resolveParameter(op, index, "")
	if err != nil {
		return nil, ds.fail(op, err.Kind, err.Msg, nil)
	}
	return ds.parameterValues[i], nil
}

// ParameterValueByName is ParameterValue, identified by name.
func (ds *Dataset) ParameterValueByName(name string) (interface{}, error) {
	const op = "ParameterValueByName"
	i, err := ds.resolveParameter(op, 0, name)
	if err != nil {
		return nil, ds.fail(op, err.Kind, err.Msg, nil)
	}
	return ds.parameterValues[i], nil
}

// ColumnValue returns the value of column index at row.
func (ds *Dataset) ColumnValue(index, row int) (interface{}, error) {
	const op = "ColumnValue"
	i, err := ds.resolveColumn(op, index, "")
	if err != nil {
		return nil, ds.fail(op, err.Kind, err.Msg, nil)
	}
	if row < 0 || row >= ds.nRows {
		return nil, ds.fail(op, BadField, "row out of range", nil)
	}
	return ds.columns[i][row], nil
}

// ColumnValues returns a copy of column index's first NRows() values.
func (ds *Dataset) ColumnValues(index int) ([]interface{}, error) {
	const op = "ColumnValues"
	i, err := ds.resolveColumn(op, index, "")
	if err != nil {
		return nil, ds.fail(op, err.Kind, err.Msg, nil)
	}
	out := make([]interface{}, ds.nRows)
	copy(out, ds.columns[i][:ds.nRows])
	return out, nil
}

// ColumnFloat64s returns column index's current rows cast to float64,
// for numeric columns only; used by descriptive-statistics callers that
// want a uniform numeric view regardless of the column's declared type.
func (ds *Dataset) ColumnFloat64s(index int) ([]float64, error) {
	const op = "ColumnFloat64s"
	i, err := ds.resolveColumn(op, index, "")
	if err != nil {
		return nil, ds.fail(op, err.Kind, err.Msg, nil)
	}
	col := ds.working.Columns[i]
	if !col.Type.IsNumeric() {
		return nil, ds.fail(op, TypeMismatch, "column "+col.Name+" is not numeric", nil)
	}
	out := make([]float64, ds.nRows)
	for r := 0; r < ds.nRows; r++ {
		f, ok := toFloat64(ds.columns[i][r])
		if !ok {
			return nil, ds.fail(op, TypeMismatch, "column "+col.Name+" holds a non-numeric value", nil)
		}
		out[r] = f
	}
	return out, nil
}

// ArrayValue returns a read-only view of array index's current
// instance: its dimensions and flat data.
func (ds *Dataset) ArrayValue(index int) (dimension []int, data []interface{}, err error) {
	const op = "ArrayValue"
	i, rerr := ds.resolveArray(op, index, "")
	if rerr != nil {
		return nil, nil, ds.fail(op, rerr.Kind, rerr.Msg, nil)
	}
	ai := ds.arrays[i]
	dim := append([]int(nil), ai.Dimension...)
	out := append([]interface{}(nil), ai.Data...)
	return dim, out, nil
}
