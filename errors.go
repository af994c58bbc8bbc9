package sds

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/xerrors"
)

// Kind classifies the failure modes the core distinguishes.
type Kind int

const (
	BadDataset Kind = iota
	BadField
	BadTarget
	TypeMismatch
	IOErr
	CodecError
	Alloc
	UnsupportedType
	Protocol
)

func (k Kind) String() string {
	switch k {
	case BadDataset:
		return "BadDataset"
	case BadField:
		return "BadField"
	case BadTarget:
		return "BadTarget"
	case TypeMismatch:
		return "TypeMismatch"
	case IOErr:
		return "Io"
	case CodecError:
		return "CodecError"
	case Alloc:
		return "Alloc"
	case UnsupportedType:
		return "UnsupportedType"
	case Protocol:
		return "Protocol"
	default:
		return "Unknown"
	}
}

// Sub-kinds of IOErr. These are sentinel errors rather than additional
// Kind values so callers can use errors.Is against them while still
// classifying broadly on Kind.
var (
	ErrShortRead        = errors.New("short read")
	ErrShortWrite       = errors.New("short write")
	ErrSeekUnsupported  = errors.New("seek not supported on this stream")
	ErrLockConflict     = errors.New("file is locked by another writer")
	ErrFixedRowCountRej = errors.New("fixed row count is not supported on compressed streams")
)

// Error is the error type returned by every fallible operation in this
// package. Op names the operation/call site, mirroring the source's
// "SDS_CopyColumns: Problem with cast" style context strings.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// newErr builds an *Error, wrapping cause (if any) with xerrors so that
// %w-style unwrapping and stack-frame context survive through the
// Chain, matching the teacher's xerrors.Errorf idiom.
func newErr(op string, kind Kind, msg string, cause error) *Error {
	if cause != nil {
		cause = xerrors.Errorf("%s: %w", op, cause)
	}
	return &Error{Kind: kind, Op: op, Msg: msg, Err: cause}
}

// Chain is a per-handle accumulation of errors: errors are appended to
// a per-handle chain and preserved across operations until explicitly
// cleared.
//
// The mutex exists purely so a Dataset may safely be inspected
// (Errors/Failed) from a goroutine other than the one driving it, e.g.
// the internal/mpi rank coordinator reporting progress. Dataset
// methods themselves remain single-threaded.
type Chain struct {
	mu   sync.Mutex
	errs []*Error
}

// Append records err and returns it unchanged, so call sites can write
// `return ds.errs.Append(newErr(...))`.
func (c *Chain) Append(err *Error) *Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
	return err
}

// Failed reports whether the chain is non-empty. No operation
// recovers from a non-empty chain.
func (c *Chain) Failed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errs) > 0
}

// Errors returns a snapshot of the accumulated errors, oldest first.
func (c *Chain) Errors() []*Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Error, len(c.errs))
	copy(out, c.errs)
	return out
}

// Clear empties the chain.
func (c *Chain) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = nil
}

// String concatenates the chain, oldest first, one error per line, for
// a top-level program to print before exiting.
func (c *Chain) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := ""
	for i, e := range c.errs {
		if i > 0 {
			s += "\n"
		}
		s += e.Error()
	}
	return s
}
