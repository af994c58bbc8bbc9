package sds

import (
	"sort"
	"strconv"
	"strings"
)

// The on-disk header is a namelist document: a version line followed by
// &description/&parameter/&array/&column/&associate/&data blocks, each
// terminated by "&end". Values are bare tokens unless they contain
// whitespace, a comma, '&' or '"', in which case they are double-quoted
// with embedded quotes escaped by a backslash.

func quoteValue(s string) string {
	if s == "" {
		return `""`
	}
	if !strings.ContainsAny(s, " \t,\"&\n") {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// unquoteValue reverses quoteValue; s is assumed to be exactly one
// token as split by splitAttrs (no surrounding whitespace).
func unquoteValue(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	inner := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) && inner[i+1] == '"' {
			b.WriteByte('"')
			i++
			continue
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}

// splitAttrs splits a "key=value, key=value, ..." body into tokens,
// respecting double-quoted values that may themselves contain commas or
// backslash-escaped quotes.
func splitAttrs(body string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	runes := []rune(body)
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
		case r == ',' && !inQuote:
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if strings.TrimSpace(cur.String()) != "" {
		out = append(out, strings.TrimSpace(cur.String()))
	}
	return out
}

func parseAttrs(body string) map[string]string {
	out := make(map[string]string)
	for _, tok := range splitAttrs(body) {
		eq := strings.IndexByte(tok, '=')
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(tok[:eq])
		val := strings.TrimSpace(tok[eq+1:])
		out[key] = unquoteValue(val)
	}
	return out
}

func attrPair(key, val string) string {
	return key + "=" + quoteValue(val)
}

// WriteLayout emits the namelist header for ds's working layout. It is
// a no-op if the header has already been written for this handle.
func (ds *Dataset) WriteLayout() error {
	const op = "WriteLayout"
	if err := ds.checkUsable(op); err != nil {
		return err
	}
	if ds.layoutWritten {
		return nil
	}
	l := ds.working
	if err := ds.stream.Printf("SDS%d\n", l.Version()); err != nil {
		return ds.fail(op, IOErr, "", err)
	}
	if l.Description != "" || l.Contents != "" {
		if err := ds.stream.Printf("&description %s, %s &end\n",
			attrPair("text", l.Description), attrPair("contents", l.Contents)); err != nil {
			return ds.fail(op, IOErr, "", err)
		}
	}
	for _, p := range l.Parameters {
		fields := []string{
			attrPair("name", p.Name),
			attrPair("type", p.Type.Name()),
		}
		if p.Symbol != "" {
			fields = append(fields, attrPair("symbol", p.Symbol))
		}
		if p.Units != "" {
			fields = append(fields, attrPair("units", p.Units))
		}
		if p.Description != "" {
			fields = append(fields, attrPair("description", p.Description))
		}
		if p.FormatString != "" {
			fields = append(fields, attrPair("format_string", p.FormatString))
		}
		if p.HasFixedValue {
			fields = append(fields, attrPair("fixed_value", p.FixedValue))
		}
		if err := ds.stream.Printf("&parameter %s &end\n", strings.Join(fields, ", ")); err != nil {
			return ds.fail(op, IOErr, "", err)
		}
	}
	for _, a := range l.Arrays {
		fields := []string{
			attrPair("name", a.Name),
			attrPair("type", a.Type.Name()),
			attrPair("dimensions", strconv.Itoa(a.Dimensions)),
		}
		if a.Symbol != "" {
			fields = append(fields, attrPair("symbol", a.Symbol))
		}
		if a.Units != "" {
			fields = append(fields, attrPair("units", a.Units))
		}
		if a.Description != "" {
			fields = append(fields, attrPair("description", a.Description))
		}
		if a.GroupName != "" {
			fields = append(fields, attrPair("group_name", a.GroupName))
		}
		if err := ds.stream.Printf("&array %s &end\n", strings.Join(fields, ", ")); err != nil {
			return ds.fail(op, IOErr, "", err)
		}
	}
	for _, c := range l.Columns {
		fields := []string{
			attrPair("name", c.Name),
			attrPair("type", c.Type.Name()),
		}
		if c.Symbol != "" {
			fields = append(fields, attrPair("symbol", c.Symbol))
		}
		if c.Units != "" {
			fields = append(fields, attrPair("units", c.Units))
		}
		if c.Description != "" {
			fields = append(fields, attrPair("description", c.Description))
		}
		if c.FormatString != "" {
			fields = append(fields, attrPair("format_string", c.FormatString))
		}
		if err := ds.stream.Printf("&column %s &end\n", strings.Join(fields, ", ")); err != nil {
			return ds.fail(op, IOErr, "", err)
		}
	}
	for _, as := range l.Associates {
		fields := []string{attrPair("name", as.Name)}
		if as.Filename != "" {
			fields = append(fields, attrPair("filename", as.Filename))
		}
		if as.Path != "" {
			fields = append(fields, attrPair("path", as.Path))
		}
		if as.Contents != "" {
			fields = append(fields, attrPair("contents", as.Contents))
		}
		if as.Description != "" {
			fields = append(fields, attrPair("description", as.Description))
		}
		if as.SDDS {
			fields = append(fields, attrPair("sdds", "1"))
		}
		if err := ds.stream.Printf("&associate %s &end\n", strings.Join(fields, ", ")); err != nil {
			return ds.fail(op, IOErr, "", err)
		}
	}
	dataFields := []string{
		attrPair("mode", l.DataMode.Mode.String()),
		attrPair("lines_per_row", strconv.Itoa(l.DataMode.LinesPerRow)),
		attrPair("no_row_counts", boolAttr(l.DataMode.NoRowCounts)),
	}
	if l.DataMode.Mode == BinaryMode {
		dataFields = append(dataFields,
			attrPair("column_major", boolAttr(l.DataMode.ColumnMajor)),
			attrPair("endian", l.ByteOrder.String()))
		ds.byteOrderDeclared = true
	}
	if l.DataMode.FixedRowCount {
		dataFields = append(dataFields, attrPair("fixed_row_count", "1"))
	}
	if err := ds.stream.Printf("&data %s &end\n", strings.Join(dataFields, ", ")); err != nil {
		return ds.fail(op, IOErr, "", err)
	}
	ds.layoutWritten = true
	return ds.SaveLayout()
}

func boolAttr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ReadLayout parses the namelist header from ds's stream into its
// working layout. It must be called once, immediately after
// InitializeInput.
func (ds *Dataset) ReadLayout() error {
	const op = "ReadLayout"
	if err := ds.checkUsable(op); err != nil {
		return err
	}
	versionLine, err := ds.stream.Gets()
	if err != nil {
		return ds.fail(op, IOErr, "", err)
	}
	versionLine = strings.TrimSpace(versionLine)
	if !strings.HasPrefix(versionLine, "SDS") {
		return ds.fail(op, CodecError, "missing SDS version line", nil)
	}

	for {
		line, rerr := ds.stream.Gets()
		if rerr != nil {
			return ds.fail(op, IOErr, "", rerr)
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "!#") {
			continue
		}
		if !strings.HasPrefix(trimmed, "&") {
			return ds.fail(op, CodecError, "expected a namelist block, got "+strconv.Quote(trimmed), nil)
		}
		keyword, body, ok := splitBlock(trimmed)
		if !ok {
			return ds.fail(op, CodecError, "malformed namelist block "+strconv.Quote(trimmed), nil)
		}
		attrs := parseAttrs(body)
		switch keyword {
		case "description":
			ds.working.Description = attrs["text"]
			ds.working.Contents = attrs["contents"]
		case "parameter":
			t, terr := ParseType(attrs["type"])
			if terr != nil {
				return ds.errs.Append(terr.(*Error))
			}
			_, derr := ds.working.DefineParameter(ParameterDef{
				NamedDef: NamedDef{
					Name: attrs["name"], Symbol: attrs["symbol"], Units: attrs["units"],
					Description: attrs["description"], FormatString: attrs["format_string"], Type: t,
				},
				FixedValue:    attrs["fixed_value"],
				HasFixedValue: attrs["fixed_value"] != "",
			})
			if derr != nil {
				return ds.errs.Append(derr.(*Error))
			}
		case "array":
			t, terr := ParseType(attrs["type"])
			if terr != nil {
				return ds.errs.Append(terr.(*Error))
			}
			dims, _ := strconv.Atoi(attrs["dimensions"])
			if dims < 1 {
				dims = 1
			}
			_, derr := ds.working.DefineArray(ArrayDef{
				NamedDef: NamedDef{
					Name: attrs["name"], Symbol: attrs["symbol"], Units: attrs["units"],
					Description: attrs["description"], Type: t,
				},
				Dimensions: dims,
				GroupName:  attrs["group_name"],
			})
			if derr != nil {
				return ds.errs.Append(derr.(*Error))
			}
		case "column":
			t, terr := ParseType(attrs["type"])
			if terr != nil {
				return ds.errs.Append(terr.(*Error))
			}
			_, derr := ds.working.DefineColumn(ColumnDef{
				NamedDef: NamedDef{
					Name: attrs["name"], Symbol: attrs["symbol"], Units: attrs["units"],
					Description: attrs["description"], FormatString: attrs["format_string"], Type: t,
				},
			})
			if derr != nil {
				return ds.errs.Append(derr.(*Error))
			}
		case "associate":
			_, derr := ds.working.DefineAssociate(AssociateDef{
				Name: attrs["name"], Filename: attrs["filename"], Path: attrs["path"],
				Contents: attrs["contents"], Description: attrs["description"],
				SDDS: attrs["sdds"] == "1",
			})
			if derr != nil {
				return ds.errs.Append(derr.(*Error))
			}
		case "data":
			if attrs["mode"] == "binary" {
				ds.working.DataMode.Mode = BinaryMode
			} else {
				ds.working.DataMode.Mode = ASCIIMode
			}
			if n, aerr := strconv.Atoi(attrs["lines_per_row"]); aerr == nil && n > 0 {
				ds.working.DataMode.LinesPerRow = n
			} else {
				ds.working.DataMode.LinesPerRow = 1
			}
			ds.working.DataMode.NoRowCounts = attrs["no_row_counts"] == "1"
			ds.working.DataMode.ColumnMajor = attrs["column_major"] == "1"
			ds.working.DataMode.FixedRowCount = attrs["fixed_row_count"] == "1"
			if attrs["endian"] == "little" {
				ds.working.ByteOrder = LittleEndian
			} else {
				ds.working.ByteOrder = BigEndian
			}
			ds.layoutWritten = true
			if ds.working.DataMode.Mode == BinaryMode {
				ds.byteOrderDeclared = true
			}
			if err := ds.working.Validate(); err != nil {
				return ds.errs.Append(err.(*Error))
			}
			return ds.SaveLayout()
		default:
			return ds.fail(op, CodecError, "unknown namelist block "+keyword, nil)
		}
	}
}

// splitBlock extracts "keyword" and the attribute body from a line of
// the form "&keyword k=v, k=v &end".
func splitBlock(line string) (keyword, body string, ok bool) {
	if !strings.HasPrefix(line, "&") {
		return "", "", false
	}
	rest := line[1:]
	sp := strings.IndexAny(rest, " \t")
	if sp < 0 {
		return "", "", false
	}
	keyword = rest[:sp]
	rest = strings.TrimSpace(rest[sp+1:])
	rest = strings.TrimSuffix(strings.TrimSpace(rest), "&end")
	return keyword, strings.TrimSpace(rest), true
}

// orderedNames returns a sorted copy of names.
func orderedNames(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}
