package sds

// NamedDef holds the fields common to every kind of definition.
type NamedDef struct {
	Name         string
	Symbol       string
	Units        string
	Description  string
	FormatString string
	Type         T
}

// ColumnDef describes one column of the per-page row table.
type ColumnDef struct {
	NamedDef
	FieldLength int // informational
}

// ParameterDef describes one per-page scalar value.
type ParameterDef struct {
	NamedDef
	FieldLength   int // informational
	FixedValue    string
	HasFixedValue bool
}

// ArrayDef describes one per-page multi-dimensional array value.
type ArrayDef struct {
	NamedDef
	FieldLength int // informational
	Dimensions  int // >= 1
	GroupName   string
}

// AssociateDef is a named cross-reference to an external file. Unlike
// the other definition kinds it carries no Type.
type AssociateDef struct {
	Name        string
	Symbol      string
	Filename    string
	Path        string
	Contents    string
	Description string
	SDDS        bool
}

// Mode is the page-body representation: textual or binary.
type Mode int

const (
	ASCIIMode Mode = iota
	BinaryMode
)

func (m Mode) String() string {
	if m == BinaryMode {
		return "binary"
	}
	return "ascii"
}

// ByteOrder is the on-disk endianness declared for a binary layout.
type ByteOrder int

const (
	BigEndian ByteOrder = iota
	LittleEndian
)

func (b ByteOrder) String() string {
	if b == LittleEndian {
		return "little"
	}
	return "big"
}

// DataMode is the format metadata that, together with a set of
// definitions, fully describes how a page body is laid out on disk.
type DataMode struct {
	Mode              Mode
	LinesPerRow       int // ASCII only, >= 1
	NoRowCounts       bool
	ColumnMajor       bool // binary only
	FixedRowCount     bool
	ColumnMemoryMode  int // informational
}

// defaultDataMode is what a freshly created Layout carries. CopyLayout
// does not restore it wholesale; it resets only NoRowCounts,
// FixedRowCount and ColumnMemoryMode.
func defaultDataMode() DataMode {
	return DataMode{Mode: ASCIIMode, LinesPerRow: 1}
}

// Layout is the ordered set of column/parameter/array/associate
// definitions plus format metadata shared by every page of an open
// Dataset. The zero value is not ready for use; call
// NewLayout.
type Layout struct {
	Description string
	Contents    string

	Columns    []*ColumnDef
	Parameters []*ParameterDef
	Arrays     []*ArrayDef
	Associates []*AssociateDef

	DataMode  DataMode
	ByteOrder ByteOrder

	columnIndex    map[string]int
	parameterIndex map[string]int
	arrayIndex     map[string]int
	associateIndex map[string]int
}

// NewLayout returns an empty, ready-to-use Layout.
func NewLayout() *Layout {
	return &Layout{
		DataMode:       defaultDataMode(),
		columnIndex:    make(map[string]int),
		parameterIndex: make(map[string]int),
		arrayIndex:     make(map[string]int),
		associateIndex: make(map[string]int),
	}
}

func (l *Layout) ensureIndices() {
	if l.columnIndex == nil {
		l.columnIndex = make(map[string]int)
		for i, c := range l.Columns {
			l.columnIndex[c.Name] = i
		}
	}
	if l.parameterIndex == nil {
		l.parameterIndex = make(map[string]int)
		for i, p := range l.Parameters {
			l.parameterIndex[p.Name] = i
		}
	}
	if l.arrayIndex == nil {
		l.arrayIndex = make(map[string]int)
		for i, a := range l.Arrays {
			l.arrayIndex[a.Name] = i
		}
	}
	if l.associateIndex == nil {
		l.associateIndex = make(map[string]int)
		for i, a := range l.Associates {
			l.associateIndex[a.Name] = i
		}
	}
}

// DefineColumn appends a new column definition, failing with BadField
// if the name is empty and with Protocol if it is already used by
// another column.
func (l *Layout) DefineColumn(def ColumnDef) (int, error) {
	l.ensureIndices()
	if err := checkNewName(def.Name, l.columnIndex, "DefineColumn"); err != nil {
		return -1, err
	}
	idx := len(l.Columns)
	cp := def
	l.Columns = append(l.Columns, &cp)
	l.columnIndex[def.Name] = idx
	return idx, nil
}

// DefineParameter appends a new parameter definition.
func (l *Layout) DefineParameter(def ParameterDef) (int, error) {
	l.ensureIndices()
	if err := checkNewName(def.Name, l.parameterIndex, "DefineParameter"); err != nil {
		return -1, err
	}
	idx := len(l.Parameters)
	cp := def
	l.Parameters = append(l.Parameters, &cp)
	l.parameterIndex[def.Name] = idx
	return idx, nil
}

// DefineArray appends a new array definition, failing with BadField if
// Dimensions < 1.
func (l *Layout) DefineArray(def ArrayDef) (int, error) {
	l.ensureIndices()
	if err := checkNewName(def.Name, l.arrayIndex, "DefineArray"); err != nil {
		return -1, err
	}
	if def.Dimensions < 1 {
		return -1, newErr("DefineArray", BadField, "dimensions must be >= 1", nil)
	}
	idx := len(l.Arrays)
	cp := def
	l.Arrays = append(l.Arrays, &cp)
	l.arrayIndex[def.Name] = idx
	return idx, nil
}

// DefineAssociate appends a new associate definition.
func (l *Layout) DefineAssociate(def AssociateDef) (int, error) {
	l.ensureIndices()
	if err := checkNewName(def.Name, l.associateIndex, "DefineAssociate"); err != nil {
		return -1, err
	}
	idx := len(l.Associates)
	cp := def
	l.Associates = append(l.Associates, &cp)
	l.associateIndex[def.Name] = idx
	return idx, nil
}

func checkNewName(name string, index map[string]int, op string) error {
	if name == "" {
		return newErr(op, BadField, "name must not be empty", nil)
	}
	if _, exists := index[name]; exists {
		return newErr(op, Protocol, "duplicate name "+name, nil)
	}
	return nil
}

// IndexOfColumn, IndexOfParameter, IndexOfArray and IndexOfAssociate
// perform the name -> position lookups used throughout the setter and
// copy APIs.
func (l *Layout) IndexOfColumn(name string) (int, bool) {
	l.ensureIndices()
	i, ok := l.columnIndex[name]
	return i, ok
}

func (l *Layout) IndexOfParameter(name string) (int, bool) {
	l.ensureIndices()
	i, ok := l.parameterIndex[name]
	return i, ok
}

func (l *Layout) IndexOfArray(name string) (int, bool) {
	l.ensureIndices()
	i, ok := l.arrayIndex[name]
	return i, ok
}

func (l *Layout) IndexOfAssociate(name string) (int, bool) {
	l.ensureIndices()
	i, ok := l.associateIndex[name]
	return i, ok
}

// Version computes the lowest protocol version that can represent every
// type and layout feature currently present. It is always derived fresh rather than cached, so it
// can never be observed stale after a Define* call.
func (l *Layout) Version() int {
	v := 1
	bump := func(n int) {
		if n > v {
			v = n
		}
	}
	walk := func(t T) {
		if t.IsUnsigned16Or32() {
			bump(2)
		}
		if t == TLongDouble {
			bump(4)
		}
		if t.Is64BitInteger() {
			bump(5)
		}
	}
	for _, c := range l.Columns {
		walk(c.Type)
	}
	for _, p := range l.Parameters {
		walk(p.Type)
	}
	for _, a := range l.Arrays {
		walk(a.Type)
	}
	if l.DataMode.Mode == BinaryMode && l.DataMode.ColumnMajor {
		bump(3)
	}
	return v
}

// Validate re-checks the no-duplicate-names invariant across all four
// kinds. Define* already enforces this incrementally; Validate is a
// defensive re-check used after bulk mutation paths like ReadLayout.
func (l *Layout) Validate() error {
	if dup := firstDuplicate(namesOf(l.Columns)); dup != "" {
		return newErr("Validate", Protocol, "duplicate column name "+dup, nil)
	}
	if dup := firstDuplicate(namesOfParams(l.Parameters)); dup != "" {
		return newErr("Validate", Protocol, "duplicate parameter name "+dup, nil)
	}
	if dup := firstDuplicate(namesOfArrays(l.Arrays)); dup != "" {
		return newErr("Validate", Protocol, "duplicate array name "+dup, nil)
	}
	if dup := firstDuplicate(namesOfAssociates(l.Associates)); dup != "" {
		return newErr("Validate", Protocol, "duplicate associate name "+dup, nil)
	}
	return nil
}

func namesOf(cs []*ColumnDef) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func namesOfParams(ps []*ParameterDef) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func namesOfArrays(as []*ArrayDef) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Name
	}
	return out
}

func namesOfAssociates(as []*AssociateDef) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Name
	}
	return out
}

func firstDuplicate(names []string) string {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return n
		}
		seen[n] = true
	}
	return ""
}

// cloneLayout returns a deep copy of l: independent slices, definitions
// and index maps. Used by SaveLayout/RestoreLayout and CopyLayout so
// that the working and original layouts never alias.
func cloneLayout(l *Layout) *Layout {
	out := &Layout{
		Description: l.Description,
		Contents:    l.Contents,
		DataMode:    l.DataMode,
		ByteOrder:   l.ByteOrder,
	}
	out.Columns = make([]*ColumnDef, len(l.Columns))
	for i, c := range l.Columns {
		cp := *c
		out.Columns[i] = &cp
	}
	out.Parameters = make([]*ParameterDef, len(l.Parameters))
	for i, p := range l.Parameters {
		cp := *p
		out.Parameters[i] = &cp
	}
	out.Arrays = make([]*ArrayDef, len(l.Arrays))
	for i, a := range l.Arrays {
		cp := *a
		out.Arrays[i] = &cp
	}
	out.Associates = make([]*AssociateDef, len(l.Associates))
	for i, a := range l.Associates {
		cp := *a
		out.Associates[i] = &cp
	}
	out.ensureIndices()
	return out
}

// AppendLayout merges source into target: every definition in source
// whose name is not already present in target (within its own kind) is
// appended. Existing names are skipped silently.
func AppendLayout(target, source *Layout) error {
	target.ensureIndices()
	source.ensureIndices()
	for _, c := range source.Columns {
		if _, exists := target.columnIndex[c.Name]; exists {
			continue
		}
		if _, err := target.DefineColumn(*c); err != nil {
			return err
		}
	}
	for _, p := range source.Parameters {
		if _, exists := target.parameterIndex[p.Name]; exists {
			continue
		}
		if _, err := target.DefineParameter(*p); err != nil {
			return err
		}
	}
	for _, a := range source.Arrays {
		if _, exists := target.arrayIndex[a.Name]; exists {
			continue
		}
		if _, err := target.DefineArray(*a); err != nil {
			return err
		}
	}
	for _, a := range source.Associates {
		if _, exists := target.associateIndex[a.Name]; exists {
			continue
		}
		if _, err := target.DefineAssociate(*a); err != nil {
			return err
		}
	}
	return nil
}

// replaceLayoutDefs implements the definition-replacing half of
// CopyLayout: target's definitions are discarded and
// replaced with an independent deep copy of source's, and the DataMode
// flags NoRowCounts, FixedRowCount and ColumnMemoryMode are reset. The
// dataset-level flag resets (layout_written/byte_order_declared) are the
// caller's (Dataset's) responsibility, since those fields live on
// Dataset, not Layout.
func replaceLayoutDefs(target, source *Layout) error {
	if target == source {
		return newErr("CopyLayout", Protocol, "BUG: target and source layout alias", nil)
	}
	clone := cloneLayout(source)
	target.Description = clone.Description
	target.Contents = clone.Contents
	target.Columns = clone.Columns
	target.Parameters = clone.Parameters
	target.Arrays = clone.Arrays
	target.Associates = clone.Associates
	target.columnIndex = clone.columnIndex
	target.parameterIndex = clone.parameterIndex
	target.arrayIndex = clone.arrayIndex
	target.associateIndex = clone.associateIndex
	target.ByteOrder = clone.ByteOrder
	target.DataMode.NoRowCounts = false
	target.DataMode.FixedRowCount = false
	target.DataMode.ColumnMemoryMode = 0
	return nil
}
