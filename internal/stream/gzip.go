package stream

import (
	"io"
	"os"

	kgzip "github.com/klauspost/compress/gzip"
	"github.com/klauspost/pgzip"
)

// gzipStream is the gzip-compressed backend. Reads use
// klauspost/compress/gzip (a drop-in, faster gzip.Reader); writes use
// klauspost/pgzip, which parallelizes the compress-in-chunks step the
// teacher already relies on for large outputs (cmd/distri/initrd.go).
//
// Seek/Tell are not supported here, and fixed row counts must be
// rejected by the caller before a page is ever written.
type gzipStream struct {
	textIO
	f  *os.File
	zr *kgzip.Reader
	zw *pgzip.Writer
}

func openGzip(path string, mode Mode) (Stream, error) {
	switch mode {
	case WriteMode:
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		zw := pgzip.NewWriter(f)
		gs := &gzipStream{f: f, zw: zw}
		gs.textIO = newTextIO(zw, nil, false)
		return gs, nil
	case ReadMode:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		zr, err := kgzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		gs := &gzipStream{f: f, zr: zr}
		gs.textIO = newTextIO(nil, zr, false)
		return gs, nil
	default:
		return nil, ErrSeekUnsupported
	}
}

// Read and Write are promoted from the embedded textIO, so binary
// data shares the same buffered reader/writer as Puts/Printf/Gets
// instead of racing a second, unbuffered path to zr/zw.

func (g *gzipStream) Tell() (int64, error) { return 0, ErrSeekUnsupported }

func (g *gzipStream) Seek(int64, int) (int64, error) { return 0, ErrSeekUnsupported }

func (g *gzipStream) Eof() bool {
	if g.zr == nil {
		return false
	}
	var b [1]byte
	n, err := g.zr.Read(b[:0])
	return n == 0 && err == io.EOF
}

func (g *gzipStream) Flush() error { return g.flush() }

func (g *gzipStream) Close() error {
	if g.zw != nil {
		if err := g.flush(); err != nil {
			g.f.Close()
			return err
		}
		if err := g.zw.Close(); err != nil {
			g.f.Close()
			return err
		}
		return g.f.Close()
	}
	if g.zr != nil {
		g.zr.Close()
	}
	return g.f.Close()
}

func (g *gzipStream) Compressed() bool { return true }
