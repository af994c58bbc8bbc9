package stream

import (
	"io"

	"golang.org/x/exp/mmap"
)

// memStream is the MEM_MODE backend: a read-only, memory-mapped view of
// the file. It is never compressed (there is nothing to decompress
// zero-copy), so opening a MemMode stream against a .gz/.xz path falls
// back to the regular gzip/lzma ReadMode backend in Open.
type memStream struct {
	textIO
	ra  *mmap.ReaderAt
	pos int64
}

// readerFunc adapts a Read method to io.Reader so the shared bufio-based
// Gets/Puts/Printf/Read helpers in textIO can sit on top of it while
// sharing the same cursor (m.pos) that Seek/Tell observe.
type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

func openMem(path string) (Stream, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	ms := &memStream{ra: ra}
	ms.textIO = newTextIO(nil, readerFunc(ms.readRaw), false)
	return ms, nil
}

// readRaw is the raw ReaderAt-backed source textIO's buffered reader
// pulls from; memStream.Read itself is promoted from textIO so the
// binary and text read paths share one buffer over the same cursor.
func (m *memStream) readRaw(buf []byte) (int, error) {
	if m.pos >= int64(m.ra.Len()) {
		return 0, io.EOF
	}
	n, err := m.ra.ReadAt(buf, m.pos)
	m.pos += int64(n)
	return n, err
}

// Write is promoted from textIO, which rejects it (this backend never
// sets a writer) with the same io.ErrClosedPipe every other read-only
// path returns.

func (m *memStream) Tell() (int64, error) { return m.pos, nil }

func (m *memStream) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(m.ra.Len()) + offset
	}
	m.resetReader(readerFunc(m.readRaw))
	return m.pos, nil
}

func (m *memStream) Eof() bool { return m.pos >= int64(m.ra.Len()) }

func (m *memStream) Flush() error { return nil }

func (m *memStream) Close() error { return m.ra.Close() }

func (m *memStream) Compressed() bool { return false }
