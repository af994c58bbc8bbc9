package sds

// The copy family moves a layout or page data between two open Dataset
// handles. Every multi-value Copy* here is "no-throw for non-matching
// members": a target that lacks a same-named source member, or vice
// versa, is simply skipped rather than treated as an error. Only
// value-level failures (e.g. a cast that cannot be performed) are
// reported through the error chain.

// CopyLayout discards ds's current definitions and replaces them with
// an independent deep copy of source's, resetting the header-emission
// flags so the new layout will be written out fresh. ds and source must
// be different handles.
func (ds *Dataset) CopyLayout(source *Dataset) error {
	const op = "CopyLayout"
	if err := ds.checkUsable(op); err != nil {
		return err
	}
	if ds == source {
		return ds.fail(op, Protocol, "cannot copy a layout onto itself", nil)
	}
	if err := replaceLayoutDefs(ds.working, source.working); err != nil {
		return ds.errs.Append(err.(*Error))
	}
	ds.layoutWritten = false
	ds.byteOrderDeclared = false
	return nil
}

// CopyParameters copies, by name, every source parameter value whose
// name also names a parameter in ds, casting as needed.
func (ds *Dataset) CopyParameters(source *Dataset) error {
	const op = "CopyParameters"
	if err := ds.checkUsable(op); err != nil {
		return err
	}
	for si, sp := range source.working.Parameters {
		ti, ok := ds.working.IndexOfParameter(sp.Name)
		if !ok {
			continue
		}
		td := ds.working.Parameters[ti]
		v, cerr := Cast(op, td.Type, sp.Type, source.parameterValues[si])
		if cerr != nil {
			return ds.errs.Append(cerr.(*Error))
		}
		ds.parameterValues[ti] = v
	}
	return nil
}

// CopyArrays copies, by name, every source array instance whose name
// also names an array in ds, casting each element as needed.
func (ds *Dataset) CopyArrays(source *Dataset) error {
	const op = "CopyArrays"
	if err := ds.checkUsable(op); err != nil {
		return err
	}
	for si, sa := range source.working.Arrays {
		ti, ok := ds.working.IndexOfArray(sa.Name)
		if !ok {
			continue
		}
		td := ds.working.Arrays[ti]
		srcInst := source.arrays[si]
		out := make([]interface{}, len(srcInst.Data))
		for k, v := range srcInst.Data {
			cv, cerr := Cast(op, td.Type, sa.Type, v)
			if cerr != nil {
				return ds.errs.Append(cerr.(*Error))
			}
			out[k] = cv
		}
		dst := ds.arrays[ti]
		dst.Dimension = append([]int(nil), srcInst.Dimension...)
		dst.Elements = srcInst.Elements
		dst.Data = out
	}
	return nil
}

// CopyColumns copies, by name, every source column's current rows into
// the matching target column, casting each value as needed. ds must
// already have at least source.nRows rows allocated (§4.6, Scenario B);
// it does not grow the target to fit.
func (ds *Dataset) CopyColumns(source *Dataset) error {
	const op = "CopyColumns"
	if err := ds.checkUsable(op); err != nil {
		return err
	}
	if source.nRows > ds.nRowsAllocated {
		return ds.fail(op, Protocol, "target n_rows_allocated is smaller than source n_rows", nil)
	}
	for si, sc := range source.working.Columns {
		ti, ok := ds.working.IndexOfColumn(sc.Name)
		if !ok {
			continue
		}
		td := ds.working.Columns[ti]
		for r := 0; r < source.nRows; r++ {
			cv, cerr := Cast(op, td.Type, sc.Type, source.columns[si][r])
			if cerr != nil {
				return ds.errs.Append(cerr.(*Error))
			}
			ds.columns[ti][r] = cv
		}
		ds.columnFlag[ti] = true
	}
	if source.nRows > ds.nRows {
		ds.nRows = source.nRows
	}
	return nil
}

// CopyRowDirect copies one row's column values from source at
// sourceRow into ds at targetRow, by name, without touching row_flag or
// n_rows. It is the primitive the row-range Copy* helpers build on.
func (ds *Dataset) CopyRowDirect(targetRow int, source *Dataset, sourceRow int) error {
	const op = "CopyRowDirect"
	if err := ds.checkUsable(op); err != nil {
		return err
	}
	if targetRow < 0 || targetRow >= ds.nRowsAllocated {
		return ds.fail(op, BadField, "target row out of range", nil)
	}
	if sourceRow < 0 || sourceRow >= source.nRowsAllocated {
		return ds.fail(op, BadField, "source row out of range", nil)
	}
	for si, sc := range source.working.Columns {
		ti, ok := ds.working.IndexOfColumn(sc.Name)
		if !ok {
			continue
		}
		td := ds.working.Columns[ti]
		cv, cerr := Cast(op, td.Type, sc.Type, source.columns[si][sourceRow])
		if cerr != nil {
			return ds.errs.Append(cerr.(*Error))
		}
		ds.columns[ti][targetRow] = cv
	}
	return nil
}

// CopyRow is CopyRowDirect plus the row_flag/column_flag bookkeeping a
// setter would normally perform.
func (ds *Dataset) CopyRow(targetRow int, source *Dataset, sourceRow int) error {
	if err := ds.CopyRowDirect(targetRow, source, sourceRow); err != nil {
		return err
	}
	ds.rowFlag[targetRow] = true
	for i, sc := range source.working.Columns {
		if ti, ok := ds.working.IndexOfColumn(sc.Name); ok {
			ds.columnFlag[ti] = true
			_ = i
		}
	}
	if targetRow+1 > ds.nRows {
		ds.nRows = targetRow + 1
	}
	return nil
}

// CopyRows copies source's rows [first,last) into ds starting at ds's
// current n_rows, growing the table as needed.
func (ds *Dataset) CopyRows(source *Dataset, first, last int) error {
	const op = "CopyRows"
	if err := ds.checkUsable(op); err != nil {
		return err
	}
	if first < 0 || last > source.nRows || first > last {
		return ds.fail(op, BadField, "row range out of bounds", nil)
	}
	count := last - first
	if ds.nRows+count > ds.nRowsAllocated {
		if err := ds.LengthenTable(ds.nRows + count - ds.nRowsAllocated); err != nil {
			return err
		}
	}
	for r := 0; r < count; r++ {
		if err := ds.CopyRow(ds.nRows, source, first+r); err != nil {
			return err
		}
	}
	return nil
}

// CopyRowsOfInterest copies only the rows of source for which
// row_flag is set, in order, appending them to ds.
func (ds *Dataset) CopyRowsOfInterest(source *Dataset) error {
	const op = "CopyRowsOfInterest"
	if err := ds.checkUsable(op); err != nil {
		return err
	}
	for r := 0; r < source.nRows; r++ {
		if r >= len(source.rowFlag) || !source.rowFlag[r] {
			continue
		}
		if ds.nRows >= ds.nRowsAllocated {
			if err := ds.LengthenTable(1); err != nil {
				return err
			}
		}
		if err := ds.CopyRow(ds.nRows, source, r); err != nil {
			return err
		}
	}
	return nil
}

// CopyAdditionalRows appends every source row beyond the count already
// present in ds (source.nRows - ds.nRows rows), used by drivers that
// call it repeatedly as source accumulates new rows between pages.
func (ds *Dataset) CopyAdditionalRows(source *Dataset) error {
	if source.nRows <= ds.nRows {
		return nil
	}
	return ds.CopyRows(source, ds.nRows, source.nRows)
}

// CopyPage replaces ds's current page contents wholesale with source's:
// parameters, arrays and columns, by name, followed by all of source's
// rows. ds must already have StartPage called on it.
func (ds *Dataset) CopyPage(source *Dataset) error {
	const op = "CopyPage"
	if err := ds.checkUsable(op); err != nil {
		return err
	}
	if err := ds.ClearPage(); err != nil {
		return err
	}
	if err := ds.CopyParameters(source); err != nil {
		return err
	}
	if err := ds.CopyArrays(source); err != nil {
		return err
	}
	return ds.CopyColumns(source)
}
