package sds

// StartPage allocates or resizes buffers to hold at least expectedRows
// rows, resets flags and counters, and increments the page number.
// expectedRows <= 0 is clamped to 1.
func (ds *Dataset) StartPage(expectedRows int) error {
	const op = "StartPage"
	if err := ds.checkUsable(op); err != nil {
		return err
	}
	if expectedRows <= 0 {
		expectedRows = 1
	}

	if ds.pageStarted && ds.working.DataMode.FixedRowCount {
		if err := ds.updateFixedRowCountInPlace(); err != nil {
			return err
		}
	}

	if err := ds.SaveLayout(); err != nil {
		return err
	}

	first := !ds.pageStarted
	nParams := len(ds.working.Parameters)
	nArrays := len(ds.working.Arrays)
	nCols := len(ds.working.Columns)

	if first {
		ds.parameterValues = make([]interface{}, nParams)
		for i, p := range ds.working.Parameters {
			ds.parameterValues[i] = zeroValue(p.Type)
		}
		ds.arrays = make([]*ArrayInstance, nArrays)
		for i, a := range ds.working.Arrays {
			ds.arrays[i] = newArrayInstance(a)
		}
		ds.columns = make([][]interface{}, nCols)
		for i, c := range ds.working.Columns {
			ds.columns[i] = makeColumnBuffer(c.Type, expectedRows)
		}
		ds.rowFlag = make([]bool, expectedRows)
		ds.nRowsAllocated = expectedRows
	} else {
		if err := ds.RestoreLayout(); err != nil {
			return err
		}
		if len(ds.parameterValues) != nParams {
			ds.parameterValues = make([]interface{}, nParams)
		}
		for i, p := range ds.working.Parameters {
			ds.parameterValues[i] = zeroValue(p.Type)
		}
		ds.arrays = make([]*ArrayInstance, nArrays)
		for i, a := range ds.working.Arrays {
			ds.arrays[i] = newArrayInstance(a)
		}
		if expectedRows <= ds.nRowsAllocated {
			// Reuse existing buffers; only string entries need clearing.
			for i, c := range ds.working.Columns {
				if i >= len(ds.columns) {
					ds.columns = append(ds.columns, makeColumnBuffer(c.Type, ds.nRowsAllocated))
					continue
				}
				if c.Type == TString {
					for j := range ds.columns[i] {
						ds.columns[i][j] = ""
					}
				}
			}
		} else {
			for i, c := range ds.working.Columns {
				if i >= len(ds.columns) {
					ds.columns = append(ds.columns, makeColumnBuffer(c.Type, expectedRows))
					continue
				}
				ds.columns[i] = growColumnBuffer(ds.columns[i], c.Type, expectedRows)
			}
			ds.rowFlag = growRowFlag(ds.rowFlag, expectedRows)
			ds.nRowsAllocated = expectedRows
		}
	}

	ds.columnFlag = make([]bool, nCols)
	ds.columnOrder = make([]int, nCols)
	for i := range ds.columnFlag {
		ds.columnFlag[i] = true
		ds.columnOrder[i] = i
	}
	for i := range ds.rowFlag {
		ds.rowFlag[i] = true
	}

	ds.nRows = 0
	ds.pageStarted = true
	ds.writingPage = false
	ds.pageNumber++
	ds.firstRowInMem = 0
	return nil
}

func makeColumnBuffer(t T, n int) []interface{} {
	buf := make([]interface{}, n)
	z := zeroValue(t)
	for i := range buf {
		buf[i] = z
	}
	return buf
}

func growColumnBuffer(buf []interface{}, t T, n int) []interface{} {
	if n <= len(buf) {
		return buf
	}
	out := make([]interface{}, n)
	copy(out, buf)
	z := zeroValue(t)
	for i := len(buf); i < n; i++ {
		out[i] = z
	}
	return out
}

func growRowFlag(f []bool, n int) []bool {
	if n <= len(f) {
		return f
	}
	out := make([]bool, n)
	copy(out, f)
	return out
}

// updateFixedRowCountInPlace seeks back to the row-count field written
// for the current page (after its parameter and array values) and rewrites it with the
// final row count. Compressed streams never reach here because
// FixedRowCount is rejected at InitializeOutput.
func (ds *Dataset) updateFixedRowCountInPlace() error {
	if ds.stream.Compressed() {
		return ds.fail("StartPage", Protocol, "fixed row count is not supported on compressed streams", nil)
	}
	return ds.rewriteRowCount(ds.nRows)
}

// ShortenTable deallocates and reallocates each column buffer to
// exactly n elements, then sets n_rows = 0. n == 0 is a
// valid, explicit request to drop all rows while keeping zero
// allocated rows (distinct from LengthenTable(0), which is a no-op on
// an already-allocated page).
func (ds *Dataset) ShortenTable(n int) error {
	const op = "ShortenTable"
	if err := ds.checkUsable(op); err != nil {
		return err
	}
	if n < 0 {
		return ds.fail(op, BadField, "n must be >= 0", nil)
	}
	for i, c := range ds.working.Columns {
		ds.columns[i] = makeColumnBuffer(c.Type, n)
	}
	ds.rowFlag = make([]bool, n)
	for i := range ds.rowFlag {
		ds.rowFlag[i] = true
	}
	ds.nRowsAllocated = n
	ds.nRows = 0
	return nil
}

// LengthenTable grows each column buffer by delta elements, zero-fills
// the new tail, and reinitializes flags. LengthenTable(0) is a no-op.
func (ds *Dataset) LengthenTable(delta int) error {
	const op = "LengthenTable"
	if err := ds.checkUsable(op); err != nil {
		return err
	}
	if delta < 0 {
		return ds.fail(op, BadField, "delta must be >= 0", nil)
	}
	if delta == 0 {
		return nil
	}
	newTotal := ds.nRowsAllocated + delta
	for i, c := range ds.working.Columns {
		ds.columns[i] = growColumnBuffer(ds.columns[i], c.Type, newTotal)
	}
	ds.rowFlag = growRowFlag(ds.rowFlag, newTotal)
	for i := range ds.rowFlag {
		ds.rowFlag[i] = true
	}
	for i := range ds.columnFlag {
		ds.columnFlag[i] = true
		ds.columnOrder[i] = i
	}
	ds.nRowsAllocated = newTotal
	return nil
}

// ClearPage zeroes all value storage in place and resets flags,
// without changing n_rows_allocated.
func (ds *Dataset) ClearPage() error {
	const op = "ClearPage"
	if err := ds.checkUsable(op); err != nil {
		return err
	}
	for i, p := range ds.working.Parameters {
		ds.parameterValues[i] = zeroValue(p.Type)
	}
	for _, a := range ds.arrays {
		a.clear()
	}
	for i, c := range ds.working.Columns {
		z := zeroValue(c.Type)
		for j := range ds.columns[i] {
			ds.columns[i][j] = z
		}
	}
	for i := range ds.rowFlag {
		ds.rowFlag[i] = true
	}
	for i := range ds.columnFlag {
		ds.columnFlag[i] = true
		ds.columnOrder[i] = i
	}
	ds.nRows = 0
	return nil
}

// NRows returns the current logical row count.
func (ds *Dataset) NRows() int { return ds.nRows }

// NRowsAllocated returns the number of physically allocated rows.
func (ds *Dataset) NRowsAllocated() int { return ds.nRowsAllocated }

// PageNumber returns the 1-based count of StartPage calls so far.
func (ds *Dataset) PageNumber() int64 { return ds.pageNumber }

// checkInvariants validates the buffer-length and flag-length
// invariants a Dataset must hold between mutations. It is used by
// tests and is safe to call at any point.
func (ds *Dataset) checkInvariants() error {
	for i, c := range ds.columns {
		if len(c) != ds.nRowsAllocated {
			return newErr("checkInvariants", Protocol, "column buffer length mismatch", nil)
		}
		_ = i
	}
	if ds.nRows > ds.nRowsAllocated {
		return newErr("checkInvariants", Protocol, "n_rows exceeds n_rows_allocated", nil)
	}
	if len(ds.rowFlag) != ds.nRowsAllocated {
		return newErr("checkInvariants", Protocol, "row_flag length mismatch", nil)
	}
	nCols := len(ds.working.Columns)
	if len(ds.columnFlag) != nCols || len(ds.columnOrder) != nCols {
		return newErr("checkInvariants", Protocol, "column_flag/column_order length mismatch", nil)
	}
	seen := make([]bool, nCols)
	for _, idx := range ds.columnOrder {
		if idx < 0 || idx >= nCols || seen[idx] {
			return newErr("checkInvariants", Protocol, "column_order is not a permutation", nil)
		}
		seen[idx] = true
	}
	return nil
}
