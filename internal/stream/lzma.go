package stream

import (
	"io"
	"os"

	"github.com/andrew-d/lzma"
)

// lzmaStream is the LZMA-compressed backend. Like the
// gzip backend it accumulates user bytes and compresses them in
// chunks, flushing the codec's finish marker on Close.
//
// Gets on this backend must cope with a known LZMA decode quirk where a
// spurious ' ' can appear immediately before the '\n' terminating a
// line; textIO.Gets collapses that sequence when collapseLzmaGets is
// set.
type lzmaStream struct {
	textIO
	f  *os.File
	zr io.ReadCloser
	zw io.WriteCloser
}

func openLzma(path string, mode Mode) (Stream, error) {
	switch mode {
	case WriteMode:
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		zw := lzma.NewWriter(f)
		ls := &lzmaStream{f: f, zw: zw}
		ls.textIO = newTextIO(zw, nil, false)
		return ls, nil
	case ReadMode:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		zr, err := lzma.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		ls := &lzmaStream{f: f, zr: zr}
		ls.textIO = newTextIO(nil, zr, true)
		return ls, nil
	default:
		return nil, ErrSeekUnsupported
	}
}

// Read and Write are promoted from the embedded textIO, so binary
// data shares the same buffered reader/writer as Puts/Printf/Gets
// instead of racing a second, unbuffered path to zr/zw.

func (l *lzmaStream) Tell() (int64, error) { return 0, ErrSeekUnsupported }

func (l *lzmaStream) Seek(int64, int) (int64, error) { return 0, ErrSeekUnsupported }

func (l *lzmaStream) Eof() bool {
	if l.zr == nil {
		return false
	}
	var b [1]byte
	n, err := l.zr.Read(b[:0])
	return n == 0 && err == io.EOF
}

func (l *lzmaStream) Flush() error { return l.flush() }

func (l *lzmaStream) Close() error {
	if l.zw != nil {
		if err := l.flush(); err != nil {
			l.f.Close()
			return err
		}
		if err := l.zw.Close(); err != nil {
			l.f.Close()
			return err
		}
		return l.f.Close()
	}
	if l.zr != nil {
		l.zr.Close()
	}
	return l.f.Close()
}

func (l *lzmaStream) Compressed() bool { return true }
