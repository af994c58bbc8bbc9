package sds

import (
	"encoding/binary"
	"io"
	"strconv"
	"strings"
)

// rowCountWidth is the fixed textual width reserved for an ASCII row
// count, wide enough for any int64 plus padding; it lets
// rewriteRowCount patch the field in place without resizing the file.
const rowCountWidth = 20

func binaryOrder(bo ByteOrder) binary.ByteOrder {
	if bo == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// writeRowCount writes the binary page-body row count: Int64 for
// version 5+ layouts (any 64-bit integer column forces version 5), and
// Int32 below that, per §4.7/§6.
func writeRowCount(w io.Writer, order binary.ByteOrder, n, version int) error {
	if version >= 5 {
		return binary.Write(w, order, int64(n))
	}
	return binary.Write(w, order, int32(n))
}

// readRowCount is writeRowCount's counterpart.
func readRowCount(r io.Reader, order binary.ByteOrder, version int) (int, error) {
	if version >= 5 {
		var n int64
		err := binary.Read(r, order, &n)
		return int(n), err
	}
	var n int32
	err := binary.Read(r, order, &n)
	return int(n), err
}

func writeBinaryScalar(w io.Writer, order binary.ByteOrder, t T, v interface{}) error {
	switch t {
	case TLongDouble:
		return newErr("writeBinaryScalar", UnsupportedType, "LongDouble has no binary representation", nil)
	case TDouble:
		return binary.Write(w, order, v.(float64))
	case TFloat:
		return binary.Write(w, order, v.(float32))
	case TInt64:
		return binary.Write(w, order, v.(int64))
	case TUInt64:
		return binary.Write(w, order, v.(uint64))
	case TInt32:
		return binary.Write(w, order, v.(int32))
	case TUInt32:
		return binary.Write(w, order, v.(uint32))
	case TInt16:
		return binary.Write(w, order, v.(int16))
	case TUInt16:
		return binary.Write(w, order, v.(uint16))
	case TChar:
		_, err := w.Write([]byte{v.(byte)})
		return err
	case TString:
		s, _ := v.(string)
		if err := binary.Write(w, order, int32(len(s))); err != nil {
			return err
		}
		_, err := io.WriteString(w, s)
		return err
	}
	return newErr("writeBinaryScalar", UnsupportedType, "unsupported type "+t.Name(), nil)
}

func readBinaryScalar(r io.Reader, order binary.ByteOrder, t T) (interface{}, error) {
	switch t {
	case TLongDouble:
		return nil, newErr("readBinaryScalar", UnsupportedType, "LongDouble has no binary representation", nil)
	case TDouble:
		var v float64
		err := binary.Read(r, order, &v)
		return v, err
	case TFloat:
		var v float32
		err := binary.Read(r, order, &v)
		return v, err
	case TInt64:
		var v int64
		err := binary.Read(r, order, &v)
		return v, err
	case TUInt64:
		var v uint64
		err := binary.Read(r, order, &v)
		return v, err
	case TInt32:
		var v int32
		err := binary.Read(r, order, &v)
		return v, err
	case TUInt32:
		var v uint32
		err := binary.Read(r, order, &v)
		return v, err
	case TInt16:
		var v int16
		err := binary.Read(r, order, &v)
		return v, err
	case TUInt16:
		var v uint16
		err := binary.Read(r, order, &v)
		return v, err
	case TChar:
		buf := make([]byte, 1)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return buf[0], nil
	case TString:
		var n int32
		if err := binary.Read(r, order, &n); err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return string(buf), nil
	}
	return nil, newErr("readBinaryScalar", UnsupportedType, "unsupported type "+t.Name(), nil)
}

func formatASCIIScalar(t T, v interface{}) string {
	switch t {
	case TString:
		s, _ := v.(string)
		return quoteValue(s)
	case TChar:
		b, _ := v.(byte)
		return quoteValue(string(rune(b)))
	}
	return formatNumericToString(t, v)
}

func parseASCIIScalar(t T, tok string) (interface{}, error) {
	const op = "parseASCIIScalar"
	switch t {
	case TString:
		return unquoteValue(tok), nil
	case TChar:
		s := unquoteValue(tok)
		if len(s) == 0 {
			return byte(0), nil
		}
		return s[0], nil
	case TLongDouble, TDouble:
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, newErr(op, CodecError, "invalid floating value "+strconv.Quote(tok), err)
		}
		return f, nil
	case TFloat:
		f, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return nil, newErr(op, CodecError, "invalid floating value "+strconv.Quote(tok), err)
		}
		return float32(f), nil
	case TInt64:
		i, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, newErr(op, CodecError, "invalid integer value "+strconv.Quote(tok), err)
		}
		return i, nil
	case TUInt64:
		u, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			return nil, newErr(op, CodecError, "invalid integer value "+strconv.Quote(tok), err)
		}
		return u, nil
	case TInt32:
		i, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return nil, newErr(op, CodecError, "invalid integer value "+strconv.Quote(tok), err)
		}
		return int32(i), nil
	case TUInt32:
		u, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return nil, newErr(op, CodecError, "invalid integer value "+strconv.Quote(tok), err)
		}
		return uint32(u), nil
	case TInt16:
		i, err := strconv.ParseInt(tok, 10, 16)
		if err != nil {
			return nil, newErr(op, CodecError, "invalid integer value "+strconv.Quote(tok), err)
		}
		return int16(i), nil
	case TUInt16:
		u, err := strconv.ParseUint(tok, 10, 16)
		if err != nil {
			return nil, newErr(op, CodecError, "invalid integer value "+strconv.Quote(tok), err)
		}
		return uint16(u), nil
	}
	return nil, newErr(op, UnsupportedType, "unsupported type "+t.Name(), nil)
}

// tokenizeASCIIRow splits a line into space-separated tokens, treating a
// double-quoted run (with backslash-escaped internal quotes, as written
// by quoteValue) as a single token.
func tokenizeASCIIRow(line string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && inQuote && i+1 < len(runes) && runes[i+1] == '"':
			cur.WriteRune(r)
			cur.WriteRune(runes[i+1])
			i++
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case (r == ' ' || r == '\t') && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// WritePage writes ds's current page (parameters, arrays, then the
// column table) to its stream, in the format ds.working.DataMode
// declares. It must be called after StartPage and before the next
// StartPage or Terminate.
func (ds *Dataset) WritePage() error {
	const op = "WritePage"
	if err := ds.checkUsable(op); err != nil {
		return err
	}
	if err := ds.WriteLayout(); err != nil {
		return err
	}
	dm := ds.working.DataMode
	ascii := dm.Mode == ASCIIMode
	order := binaryOrder(ds.working.ByteOrder)

	for i, p := range ds.working.Parameters {
		if p.HasFixedValue {
			continue
		}
		v := ds.parameterValues[i]
		if ascii {
			if err := ds.stream.Printf("%s\n", formatASCIIScalar(p.Type, v)); err != nil {
				return ds.fail(op, IOErr, "", err)
			}
		} else {
			if err := writeBinaryScalar(ds.stream, order, p.Type, v); err != nil {
				return ds.failCodec(op, err)
			}
		}
	}

	for i, a := range ds.working.Arrays {
		inst := ds.arrays[i]
		if ascii {
			dims := make([]string, len(inst.Dimension))
			for k, d := range inst.Dimension {
				dims[k] = strconv.Itoa(d)
			}
			if err := ds.stream.Printf("%s\n", strings.Join(dims, " ")); err != nil {
				return ds.fail(op, IOErr, "", err)
			}
		} else {
			for _, d := range inst.Dimension {
				if err := binary.Write(ds.stream, order, int32(d)); err != nil {
					return ds.fail(op, IOErr, "", err)
				}
			}
		}
		for _, v := range inst.Data {
			if ascii {
				if err := ds.stream.Printf("%s\n", formatASCIIScalar(a.Type, v)); err != nil {
					return ds.fail(op, IOErr, "", err)
				}
			} else {
				if err := writeBinaryScalar(ds.stream, order, a.Type, v); err != nil {
					return ds.failCodec(op, err)
				}
			}
		}
	}

	if !dm.NoRowCounts {
		if err := ds.writeRowCountPlaceholder(ascii, order); err != nil {
			return err
		}
	}

	if err := ds.writeColumnData(ascii, order, dm); err != nil {
		return err
	}
	if dm.FixedRowCount {
		return nil // the final count is patched in by the next StartPage via rewriteRowCount.
	}
	return ds.stream.Flush()
}

func (ds *Dataset) failCodec(op string, err error) error {
	if e, ok := err.(*Error); ok {
		return ds.errs.Append(e)
	}
	return ds.fail(op, CodecError, "", err)
}

// writeRowCountPlaceholder records the stream offset of the row count
// it writes, so a later rewriteRowCount can patch it in place. The
// offset is only recorded on seekable (uncompressed) streams:
// FixedRowCount is rejected on compressed streams at InitializeOutput,
// so the recorded offset would never be used there, and Tell itself
// is not guaranteed to work on a gzip/lzma backend.
func (ds *Dataset) writeRowCountPlaceholder(ascii bool, order binary.ByteOrder) error {
	const op = "WritePage"
	if !ds.stream.Compressed() {
		// Tell reports the underlying file's position, which only
		// matches what's been logically written once anything still
		// sitting in the buffered writer has been flushed to it.
		if err := ds.stream.Flush(); err != nil {
			return ds.fail(op, IOErr, "", err)
		}
		off, err := ds.stream.Tell()
		if err != nil {
			return ds.fail(op, IOErr, "", err)
		}
		ds.rowCountOffset = off
		ds.rowCountValid = true
	}
	if ascii {
		padded := padInt(ds.nRows, rowCountWidth)
		return ds.mustWrite(ds.stream.Printf("%s\n", padded))
	}
	return ds.mustWrite(writeRowCount(ds.stream, order, ds.nRows, ds.working.Version()))
}

func (ds *Dataset) mustWrite(err error) error {
	if err != nil {
		return ds.fail("WritePage", IOErr, "", err)
	}
	return nil
}

func padInt(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func (ds *Dataset) writeColumnData(ascii bool, order binary.ByteOrder, dm DataMode) error {
	const op = "WritePage"
	cols := ds.working.Columns
	if dm.ColumnMajor && !ascii {
		for ci, c := range cols {
			for r := 0; r < ds.nRows; r++ {
				if err := writeBinaryScalar(ds.stream, order, c.Type, ds.columns[ci][r]); err != nil {
					return ds.failCodec(op, err)
				}
			}
		}
		return nil
	}
	for r := 0; r < ds.nRows; r++ {
		if ascii {
			fields := make([]string, len(cols))
			for ci, c := range cols {
				fields[ci] = formatASCIIScalar(c.Type, ds.columns[ci][r])
			}
			if err := ds.writeASCIIRowLines(fields, dm.LinesPerRow); err != nil {
				return err
			}
			continue
		}
		for ci, c := range cols {
			if err := writeBinaryScalar(ds.stream, order, c.Type, ds.columns[ci][r]); err != nil {
				return ds.failCodec(op, err)
			}
		}
	}
	return nil
}

func (ds *Dataset) writeASCIIRowLines(fields []string, linesPerRow int) error {
	if linesPerRow <= 1 || linesPerRow >= len(fields) {
		return ds.mustWrite(ds.stream.Printf("%s\n", strings.Join(fields, " ")))
	}
	chunks := splitEvenly(len(fields), linesPerRow)
	pos := 0
	for _, n := range chunks {
		if err := ds.mustWrite(ds.stream.Printf("%s\n", strings.Join(fields[pos:pos+n], " "))); err != nil {
			return err
		}
		pos += n
	}
	return nil
}

// splitEvenly divides n items as evenly as possible across parts groups.
func splitEvenly(n, parts int) []int {
	if parts <= 0 {
		parts = 1
	}
	out := make([]int, parts)
	base, rem := n/parts, n%parts
	for i := range out {
		out[i] = base
		if i < rem {
			out[i]++
		}
	}
	return out
}

// rewriteRowCount seeks back to the row-count field recorded by
// WritePage and overwrites it with n, then seeks forward again. It is
// only reachable on uncompressed streams; compressed streams reject
// FixedRowCount at InitializeOutput.
func (ds *Dataset) rewriteRowCount(n int) error {
	const op = "rewriteRowCount"
	if !ds.rowCountValid {
		return nil
	}
	// Flush before Tell: the page body just written may still be
	// sitting in the buffered writer, and Tell only reports the
	// underlying file's position, not what Printf/Write have buffered
	// ahead of it.
	if err := ds.stream.Flush(); err != nil {
		return ds.fail(op, IOErr, "", err)
	}
	cur, err := ds.stream.Tell()
	if err != nil {
		return ds.fail(op, IOErr, "", err)
	}
	if _, err := ds.stream.Seek(ds.rowCountOffset, io.SeekStart); err != nil {
		return ds.fail(op, IOErr, "", err)
	}
	ascii := ds.working.DataMode.Mode == ASCIIMode
	if ascii {
		if err := ds.mustWrite(ds.stream.Printf("%s\n", padInt(n, rowCountWidth))); err != nil {
			return err
		}
	} else {
		order := binaryOrder(ds.working.ByteOrder)
		if err := ds.mustWrite(writeRowCount(ds.stream, order, n, ds.working.Version())); err != nil {
			return err
		}
	}
	if err := ds.stream.Flush(); err != nil {
		return ds.fail(op, IOErr, "", err)
	}
	if _, err := ds.stream.Seek(cur, io.SeekStart); err != nil {
		return ds.fail(op, IOErr, "", err)
	}
	return nil
}

// ReadPage reads the next page from ds's stream into its page buffers,
// calling StartPage internally to size them. It returns (false, nil) at
// end of file, meaning no more pages remain.
func (ds *Dataset) ReadPage() (bool, error) {
	const op = "ReadPage"
	if err := ds.checkUsable(op); err != nil {
		return false, err
	}
	if !ds.layoutWritten {
		if err := ds.ReadLayout(); err != nil {
			return false, err
		}
	}
	dm := ds.working.DataMode
	ascii := dm.Mode == ASCIIMode
	order := binaryOrder(ds.working.ByteOrder)

	paramVals := make([]interface{}, len(ds.working.Parameters))
	for i, p := range ds.working.Parameters {
		if p.HasFixedValue {
			v, err := parseASCIIScalar(p.Type, p.FixedValue)
			if err != nil {
				return false, ds.errs.Append(err.(*Error))
			}
			paramVals[i] = v
			continue
		}
		if ascii {
			line, err := ds.stream.Gets()
			if err == io.EOF && i == 0 {
				return false, nil
			}
			if err != nil {
				return false, ds.fail(op, IOErr, "", err)
			}
			v, perr := parseASCIIScalar(p.Type, strings.TrimSpace(line))
			if perr != nil {
				return false, ds.errs.Append(perr.(*Error))
			}
			paramVals[i] = v
		} else {
			v, err := readBinaryScalar(ds.stream, order, p.Type)
			if err == io.EOF && i == 0 {
				return false, nil
			}
			if err != nil {
				return false, ds.failCodec(op, err)
			}
			paramVals[i] = v
		}
	}

	arrayInsts := make([]*ArrayInstance, len(ds.working.Arrays))
	for i, a := range ds.working.Arrays {
		dims := make([]int, a.Dimensions)
		if ascii {
			line, err := ds.stream.Gets()
			if err != nil {
				return false, ds.fail(op, IOErr, "", err)
			}
			toks := tokenizeASCIIRow(strings.TrimSpace(line))
			for k := 0; k < a.Dimensions && k < len(toks); k++ {
				dims[k], _ = strconv.Atoi(toks[k])
			}
		} else {
			for k := range dims {
				var d int32
				if err := binary.Read(ds.stream, order, &d); err != nil {
					return false, ds.fail(op, IOErr, "", err)
				}
				dims[k] = int(d)
			}
		}
		n := elementsOf(dims)
		data := make([]interface{}, n)
		for k := 0; k < n; k++ {
			if ascii {
				line, err := ds.stream.Gets()
				if err != nil {
					return false, ds.fail(op, IOErr, "", err)
				}
				v, perr := parseASCIIScalar(a.Type, strings.TrimSpace(line))
				if perr != nil {
					return false, ds.errs.Append(perr.(*Error))
				}
				data[k] = v
			} else {
				v, err := readBinaryScalar(ds.stream, order, a.Type)
				if err != nil {
					return false, ds.failCodec(op, err)
				}
				data[k] = v
			}
		}
		arrayInsts[i] = &ArrayInstance{Definition: a, Dimension: dims, Elements: n, Data: data}
	}

	nRows := 0
	if !dm.NoRowCounts {
		if ascii {
			line, err := ds.stream.Gets()
			if err != nil {
				return false, ds.fail(op, IOErr, "", err)
			}
			n, perr := strconv.Atoi(strings.TrimSpace(line))
			if perr != nil {
				return false, ds.fail(op, CodecError, "invalid row count", perr)
			}
			nRows = n
		} else {
			n, rerr := readRowCount(ds.stream, order, ds.working.Version())
			if rerr != nil {
				return false, ds.fail(op, IOErr, "", rerr)
			}
			nRows = n
		}
	}

	if err := ds.StartPage(maxInt(nRows, 1)); err != nil {
		return false, err
	}
	ds.parameterValues = paramVals
	ds.arrays = arrayInsts

	cols := ds.working.Columns
	if dm.ColumnMajor && !ascii {
		for ci, c := range cols {
			for r := 0; r < nRows; r++ {
				v, err := readBinaryScalar(ds.stream, order, c.Type)
				if err != nil {
					return false, ds.failCodec(op, err)
				}
				ds.columns[ci][r] = v
			}
		}
	} else {
		for r := 0; r < nRows; r++ {
			if ascii {
				fields, err := ds.readASCIIRowLines(len(cols), dm.LinesPerRow)
				if err != nil {
					return false, err
				}
				for ci, c := range cols {
					if ci >= len(fields) {
						break
					}
					v, perr := parseASCIIScalar(c.Type, fields[ci])
					if perr != nil {
						return false, ds.errs.Append(perr.(*Error))
					}
					ds.columns[ci][r] = v
				}
			} else {
				for ci, c := range cols {
					v, err := readBinaryScalar(ds.stream, order, c.Type)
					if err != nil {
						return false, ds.failCodec(op, err)
					}
					ds.columns[ci][r] = v
				}
			}
		}
	}
	ds.nRows = nRows
	for i := range ds.rowFlag {
		ds.rowFlag[i] = i < nRows
	}
	return true, nil
}

func (ds *Dataset) readASCIIRowLines(nFields, linesPerRow int) ([]string, error) {
	const op = "ReadPage"
	if linesPerRow <= 1 || linesPerRow >= nFields {
		line, err := ds.stream.Gets()
		if err != nil {
			return nil, ds.fail(op, IOErr, "", err)
		}
		return tokenizeASCIIRow(strings.TrimSpace(line)), nil
	}
	chunks := splitEvenly(nFields, linesPerRow)
	var fields []string
	for range chunks {
		line, err := ds.stream.Gets()
		if err != nil {
			return nil, ds.fail(op, IOErr, "", err)
		}
		fields = append(fields, tokenizeASCIIRow(strings.TrimSpace(line))...)
	}
	return fields, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
