package sds

import (
	"github.com/rtsoliday/sds/internal/stream"
)

// Compression selects which of the three stream backends a Dataset
// uses.
type Compression int

const (
	Plain Compression = iota
	Gzip
	Lzma
)

func (c Compression) toStream() stream.Compression {
	switch c {
	case Gzip:
		return stream.Gzip
	case Lzma:
		return stream.Lzma
	default:
		return stream.Plain
	}
}

// DetectCompression inspects a path's extension to choose a backend.
func DetectCompression(path string) Compression {
	switch stream.DetectCompression(path) {
	case stream.Gzip:
		return Gzip
	case stream.Lzma:
		return Lzma
	default:
		return Plain
	}
}

// AccessMode selects how InitializeInput/InitializeOutput opens a
// dataset's underlying stream.
type AccessMode int

const (
	WriteAccess AccessMode = iota
	ReadAccess
	MemAccess
)

// Dataset is a single open handle: it owns its layout, its page
// buffers, its stream and its error chain, and may not be used
// concurrently from more than one goroutine.
type Dataset struct {
	stream stream.Stream
	path   string
	lock   *stream.Lock

	access      AccessMode
	compression Compression

	working  *Layout
	original *Layout

	deferSavingLayout bool
	layoutWritten     bool
	byteOrderDeclared bool
	disconnected      bool
	pageStarted       bool
	writingPage       bool
	pageNumber        int64

	nRows          int
	nRowsAllocated int
	nRowsWritten   int64
	lastRowWritten int64
	firstRowInMem  int64

	rowCountOffset int64
	rowCountValid  bool

	parameterValues []interface{}
	arrays          []*ArrayInstance
	columns         [][]interface{}
	rowFlag         []bool
	columnFlag      []bool
	columnOrder     []int

	errs Chain
}

// InitializeOutput opens path for writing with layout as the working
// schema. If layout.DataMode.FixedRowCount is set and the stream is
// compressed, the call fails fast with a Protocol error rather than
// produce a file whose row count can never be patched in place.
func InitializeOutput(path string, comp Compression, layout *Layout) (*Dataset, error) {
	if layout.DataMode.FixedRowCount && comp != Plain {
		return nil, newErr("InitializeOutput", Protocol, "fixed row count is not supported on compressed streams", nil)
	}
	lk, err := stream.AcquireLock(path)
	if err != nil {
		return nil, translateStreamErr("InitializeOutput", err)
	}
	st, err := stream.Open(path, stream.WriteMode, comp.toStream())
	if err != nil {
		lk.Release()
		return nil, translateStreamErr("InitializeOutput", err)
	}
	ds := &Dataset{
		stream:      st,
		path:        path,
		lock:        lk,
		access:      WriteAccess,
		compression: comp,
		working:     layout,
		original:    NewLayout(),
	}
	return ds, nil
}

// InitializeInput opens path for reading. The layout is populated by
// ReadLayout (in header_codec.go) immediately after this call in
// normal use; InitializeInput itself only establishes the stream.
func InitializeInput(path string, comp Compression, access AccessMode) (*Dataset, error) {
	mode := stream.ReadMode
	if access == MemAccess {
		mode = stream.MemMode
	}
	st, err := stream.Open(path, mode, comp.toStream())
	if err != nil {
		return nil, translateStreamErr("InitializeInput", err)
	}
	return &Dataset{
		stream:      st,
		path:        path,
		access:      access,
		compression: comp,
		working:     NewLayout(),
		original:    NewLayout(),
	}, nil
}

func translateStreamErr(op string, err error) *Error {
	switch err {
	case stream.ErrLockConflict:
		return newErr(op, IOErr, "lock conflict", ErrLockConflict)
	case stream.ErrSeekUnsupported:
		return newErr(op, IOErr, "seek unsupported", ErrSeekUnsupported)
	case stream.ErrShortRead:
		return newErr(op, IOErr, "short read", ErrShortRead)
	case stream.ErrShortWrite:
		return newErr(op, IOErr, "short write", ErrShortWrite)
	default:
		return newErr(op, IOErr, "", err)
	}
}

// Layout returns the dataset's working layout.
func (ds *Dataset) Layout() *Layout { return ds.working }

// Errors returns the accumulated per-handle error chain.
func (ds *Dataset) Errors() []*Error { return ds.errs.Errors() }

// Failed reports whether the error chain is non-empty. No operation
// recovers from a non-empty chain; ClearErrors is the only way out.
func (ds *Dataset) Failed() bool { return ds.errs.Failed() }

// ClearErrors empties the chain.
func (ds *Dataset) ClearErrors() { ds.errs.Clear() }

func (ds *Dataset) fail(op string, kind Kind, msg string, cause error) error {
	return ds.errs.Append(newErr(op, kind, msg, cause))
}

func (ds *Dataset) checkUsable(op string) error {
	if ds.disconnected {
		return ds.fail(op, BadDataset, "dataset is disconnected", nil)
	}
	if ds.errs.Failed() {
		return ds.fail(op, Protocol, "error chain is non-empty; Terminate is the only valid next operation", nil)
	}
	return nil
}

// SaveLayout snapshots the working layout into the original, unless deferred. It is called implicitly at header emission
// and before each StartPage.
func (ds *Dataset) SaveLayout() error {
	if ds.deferSavingLayout {
		return nil
	}
	if ds.working == ds.original {
		return ds.fail("SaveLayout", Protocol, "BUG: working and original layout alias", nil)
	}
	ds.original = cloneLayout(ds.working)
	return nil
}

// RestoreLayout is the reverse of SaveLayout: the working layout is
// replaced by a fresh deep copy of the original.
func (ds *Dataset) RestoreLayout() error {
	if ds.working == ds.original {
		return ds.fail("RestoreLayout", Protocol, "BUG: working and original layout alias", nil)
	}
	ds.working = cloneLayout(ds.original)
	return nil
}

// SetDeferSavingLayout toggles whether SaveLayout is a no-op, letting
// a caller hold a layout change across several pages before committing
// it to the original snapshot.
func (ds *Dataset) SetDeferSavingLayout(defer_ bool) { ds.deferSavingLayout = defer_ }

// DisconnectFile releases the stream while keeping in-memory state,
// for use by a parallel driver. Every I/O operation must
// fail while disconnected.
func (ds *Dataset) DisconnectFile() error {
	if ds.disconnected {
		return nil
	}
	err := ds.stream.Close()
	ds.disconnected = true
	if ds.lock != nil {
		ds.lock.Release()
		ds.lock = nil
	}
	if err != nil {
		return ds.fail("DisconnectFile", IOErr, "", err)
	}
	return nil
}

// ReconnectFile re-acquires the stream after DisconnectFile.
func (ds *Dataset) ReconnectFile() error {
	if !ds.disconnected {
		return nil
	}
	mode := stream.ReadMode
	if ds.access == WriteAccess {
		mode = stream.WriteMode
	} else if ds.access == MemAccess {
		mode = stream.MemMode
	}
	if ds.access == WriteAccess {
		lk, err := stream.AcquireLock(ds.path)
		if err != nil {
			return ds.errs.Append(translateStreamErr("ReconnectFile", err))
		}
		ds.lock = lk
	}
	st, err := stream.Open(ds.path, mode, ds.compression.toStream())
	if err != nil {
		return ds.errs.Append(translateStreamErr("ReconnectFile", err))
	}
	ds.stream = st
	ds.disconnected = false
	return nil
}

// Terminate closes the stream and frees all buffers. When keepStrings is false (the default), string contents of
// array/column data are released along with everything else; Go's
// garbage collector makes this purely a matter of dropping references,
// but the flag is kept so callers can express the same "terminate mode"
// distinction the source exposes.
func (ds *Dataset) Terminate(keepStrings bool) error {
	var err error
	if !ds.disconnected && ds.stream != nil {
		err = ds.stream.Close()
	}
	if ds.lock != nil {
		ds.lock.Release()
		ds.lock = nil
	}
	ds.parameterValues = nil
	ds.arrays = nil
	if !keepStrings {
		ds.columns = nil
	}
	ds.rowFlag = nil
	ds.columnFlag = nil
	ds.columnOrder = nil
	ds.disconnected = true
	if err != nil {
		return ds.fail("Terminate", IOErr, "", err)
	}
	return nil
}
