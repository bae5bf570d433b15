// Package tdrerr defines the error kinds shared by the file codecs.
//
// Every error returned by ipfb and outsignal is a *Error carrying one of three
// kinds. Callers distinguish them with errors.Is against the sentinels:
//
//	if errors.Is(err, tdrerr.ErrFormat) { ... }
//
// IO errors keep the underlying *fs.PathError in the chain, so
// errors.Is(err, fs.ErrNotExist) keeps working.
package tdrerr

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	// KindIO is a filesystem failure: missing path, permission, disk full.
	KindIO Kind = iota + 1
	// KindFormat means the bytes were readable but violate the fixed layout.
	KindFormat
	// KindValidation means caller-supplied data violates a shape or range contract.
	KindValidation
)

var (
	ErrIO         = errors.New("i/o error")
	ErrFormat     = errors.New("format error")
	ErrValidation = errors.New("validation error")
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindFormat:
		return "format"
	case KindValidation:
		return "validation"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) sentinel() error {
	switch k {
	case KindIO:
		return ErrIO
	case KindFormat:
		return ErrFormat
	case KindValidation:
		return ErrValidation
	}
	return nil
}

// Error is the closed error type of the codecs.
type Error struct {
	Kind Kind
	Op   string // e.g. "ipfb.read"
	Path string // empty for in-memory operations
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String() + " error"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// IO wraps a filesystem error.
func IO(op, path string, err error) error {
	return &Error{Kind: KindIO, Op: op, Path: path, Err: err}
}

// Format reports a layout violation.
func Format(op, path, format string, args ...any) error {
	return &Error{Kind: KindFormat, Op: op, Path: path, Err: fmt.Errorf(format, args...)}
}

// Validation reports invalid in-memory input.
func Validation(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Err: fmt.Errorf(format, args...)}
}

// WithPath returns a copy of err with Path set when err is an *Error
// without one. Other errors are returned unchanged.
func WithPath(err error, path string) error {
	var e *Error
	if !errors.As(err, &e) || e.Path != "" {
		return err
	}
	c := *e
	c.Path = path
	return &c
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
