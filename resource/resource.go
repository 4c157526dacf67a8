// Package resource defines the seekable byte store that the patch engine
// and the materializer operate on, along with a few concrete backings.
package resource

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// A Resource is a byte-addressable, seekable store. Memory buffers, files
// and container payloads all implement it.
type Resource interface {
	Length() (int64, error)
	Seek(offset int64, whence int) (int64, error)
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Truncate(size int64) error
	Close() error
}

// IOError is returned whenever a resource operation yields a result
// inconsistent with the request: wrong offset, short read, short write.
type IOError struct {
	Op     string
	Offset int64
	Want   int64
	Got    int64
	Err    error
}

var _ error = (*IOError)(nil)

func (e *IOError) Error() string {
	msg := fmt.Sprintf("cannot %s at 0x%x (wanted %d, got %d)", e.Op, e.Offset, e.Want, e.Got)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// IsIOError returns true if err (or its cause) is an *IOError
func IsIOError(err error) bool {
	_, ok := errors.Cause(err).(*IOError)
	return ok
}

// SeekTo seeks r to an absolute offset, failing if it lands anywhere else.
func SeekTo(r Resource, offset int64) error {
	got, err := r.Seek(offset, io.SeekStart)
	if err != nil || got != offset {
		return errors.WithStack(&IOError{Op: "seek", Offset: offset, Want: offset, Got: got, Err: err})
	}
	return nil
}

// ReadByteAt seeks to offset and reads exactly one byte.
func ReadByteAt(r Resource, offset int64) (byte, error) {
	err := SeekTo(r, offset)
	if err != nil {
		return 0, err
	}

	var buf [1]byte
	n, err := r.Read(buf[:])
	if n != 1 {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return 0, errors.WithStack(&IOError{Op: "read", Offset: offset, Want: 1, Got: int64(n), Err: err})
	}
	return buf[0], nil
}

// WriteByteAt seeks to offset and writes exactly one byte.
func WriteByteAt(r Resource, offset int64, value byte) error {
	err := SeekTo(r, offset)
	if err != nil {
		return err
	}

	n, err := r.Write([]byte{value})
	if n != 1 || err != nil {
		if err == nil {
			err = io.ErrShortWrite
		}
		return errors.WithStack(&IOError{Op: "write", Offset: offset, Want: 1, Got: int64(n), Err: err})
	}
	return nil
}

// ReadAll returns the full contents of r, leaving it positioned at its end.
func ReadAll(r Resource) ([]byte, error) {
	length, err := r.Length()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = SeekTo(r, 0)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, length)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return nil, errors.WithStack(&IOError{Op: "read", Offset: 0, Want: length, Got: int64(n), Err: err})
	}
	return buf, nil
}
