package stream

import (
	"io"
	"os"

	"github.com/google/renameio"
)

// plainStream is the uncompressed file backend. Writes go to a
// renameio temp file that is atomically published on Close, the same
// pattern the teacher uses for build/meta files
// (renameio.WriteFile/renameio.TempFile in cmd/distri).
type plainStream struct {
	textIO
	f        *os.File
	pending  *renameio.PendingFile
	readOnly bool
}

func openPlain(path string, mode Mode) (Stream, error) {
	switch mode {
	case WriteMode:
		pf, err := renameio.TempFile("", path)
		if err != nil {
			return nil, err
		}
		ps := &plainStream{pending: pf}
		ps.textIO = newTextIO(pf, nil, false)
		return ps, nil
	case ReadMode:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		ps := &plainStream{f: f, readOnly: true}
		ps.textIO = newTextIO(nil, f, false)
		return ps, nil
	default:
		return nil, ErrSeekUnsupported
	}
}

// Read and Write are promoted from the embedded textIO, so binary
// data shares the same buffered reader/writer as Puts/Printf/Gets
// instead of going straight to p.f/p.pending and landing out of order
// relative to still-buffered text output.

func (p *plainStream) Tell() (int64, error) {
	if p.readOnly {
		return p.f.Seek(0, io.SeekCurrent)
	}
	if p.pending == nil {
		return 0, io.ErrClosedPipe
	}
	return p.pending.Seek(0, io.SeekCurrent)
}

func (p *plainStream) Seek(offset int64, whence int) (int64, error) {
	if err := p.flush(); err != nil {
		return 0, err
	}
	if p.readOnly {
		n, err := p.f.Seek(offset, whence)
		if err == nil {
			p.resetReader(p.f)
		}
		return n, err
	}
	if p.pending == nil {
		return 0, io.ErrClosedPipe
	}
	return p.pending.Seek(offset, whence)
}

func (p *plainStream) Eof() bool {
	if !p.readOnly {
		return false
	}
	pos, err1 := p.f.Seek(0, io.SeekCurrent)
	size, err2 := p.f.Seek(0, io.SeekEnd)
	if err1 != nil || err2 != nil {
		return false
	}
	p.f.Seek(pos, io.SeekStart)
	return pos >= size
}

func (p *plainStream) Flush() error { return p.flush() }

func (p *plainStream) Close() error {
	if p.readOnly {
		return p.f.Close()
	}
	if err := p.flush(); err != nil {
		p.pending.Cleanup()
		return err
	}
	return p.pending.CloseAtomicallyReplace()
}

func (p *plainStream) Compressed() bool { return false }

// FileIsLocked probes whether path is held by an advisory write lock
// without itself opening the file for writing.
func FileIsLocked(path string) (bool, error) {
	return fileIsLocked(path)
}

// AcquireLock takes the advisory write lock used while a file is open
// for writing; it must be released with (*Lock).Release.
type Lock struct {
	release func() error
}

func (l *Lock) Release() error {
	if l == nil || l.release == nil {
		return nil
	}
	return l.release()
}

// AcquireLock locks path for writing.
func AcquireLock(path string) (*Lock, error) {
	return acquireLock(path)
}
