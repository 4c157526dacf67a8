// Package materialize builds container payloads by streaming bytes from
// a source resource, either into a brand-new container (wrap) or over
// the payload of an existing one (replace).
package materialize

import (
	"fmt"
	"io"

	"github.com/itchio/img4kit/container"
	"github.com/itchio/img4kit/resource"
	"github.com/itchio/wharf/counter"
	"github.com/itchio/wharf/state"
	"github.com/pkg/errors"
)

// ChunkSize is how many bytes are moved per read/write round
const ChunkSize = 4096

// ShortCopyError is returned when the number of bytes written doesn't
// match the length reported by the source.
type ShortCopyError struct {
	Written  int64
	Expected int64
	Err      error
}

var _ error = (*ShortCopyError)(nil)

func (e *ShortCopyError) Error() string {
	msg := fmt.Sprintf("materialize: wrote %d of %d bytes", e.Written, e.Expected)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// IsShortCopyError returns true if err (or its cause) is a *ShortCopyError
func IsShortCopyError(err error) bool {
	_, ok := errors.Cause(err).(*ShortCopyError)
	return ok
}

type countingWriter interface {
	io.Writer
	Count() int64
}

type resourceWriter struct {
	res resource.Resource
}

func (rw *resourceWriter) Write(p []byte) (int, error) {
	n, err := rw.res.Write(p)
	if err == nil && n != len(p) {
		err = io.ErrShortWrite
	}
	return n, err
}

// Copy streams src into dst, from their current positions, in ChunkSize
// chunks. It fails unless exactly the length reported by src was
// written.
func Copy(dst, src resource.Resource, consumer *state.Consumer) (int64, error) {
	if consumer == nil {
		consumer = &state.Consumer{}
	}

	total, err := src.Length()
	if err != nil {
		return 0, errors.WithStack(err)
	}

	var cw countingWriter
	if total > 0 {
		cw = counter.NewWriterCallback(consumer.CountCallback(total), &resourceWriter{res: dst})
	} else {
		cw = counter.NewWriter(&resourceWriter{res: dst})
	}

	remaining := total
	buf := make([]byte, ChunkSize)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			written, writeErr := cw.Write(buf[:n])
			remaining -= int64(written)
			if writeErr != nil {
				return cw.Count(), errors.WithStack(&ShortCopyError{Written: cw.Count(), Expected: total, Err: writeErr})
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return cw.Count(), errors.WithStack(&ShortCopyError{Written: cw.Count(), Expected: total, Err: readErr})
		}
		if n == 0 {
			break
		}
	}

	if remaining != 0 {
		return cw.Count(), errors.WithStack(&ShortCopyError{Written: cw.Count(), Expected: total})
	}
	return cw.Count(), nil
}

// Wrap builds a new container from the stub template and streams src
// into its payload. The returned payload must be synced to materialize
// the container into the returned backing resource. On error, nothing
// usable is returned.
func Wrap(src resource.Resource, consumer *state.Consumer) (*container.Payload, *resource.Memory, error) {
	backing := resource.NewMemory(append([]byte{}, container.Stub...))

	p, err := container.Reopen(backing, 0)
	if err != nil {
		return nil, nil, err
	}

	// the stub carries a placeholder byte, drop it
	err = fill(p, src, 0, consumer)
	if err != nil {
		p.Close()
		return nil, nil, err
	}

	return p, backing, nil
}

// Replace reopens the container held in backing, without decompressing
// it, and overwrites its payload with the contents of src. Framing and
// extra elements are preserved.
func Replace(backing resource.Resource, src resource.Resource, consumer *state.Consumer) (*container.Payload, error) {
	p, err := container.Reopen(backing, container.SkipDecompression)
	if err != nil {
		return nil, err
	}

	total, err := src.Length()
	if err != nil {
		p.Close()
		return nil, errors.WithStack(err)
	}

	err = fill(p, src, total, consumer)
	if err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// fill truncates dst to size, then streams src into it from offset 0.
func fill(dst resource.Resource, src resource.Resource, size int64, consumer *state.Consumer) error {
	err := dst.Truncate(size)
	if err != nil {
		return errors.WithStack(err)
	}

	err = resource.SeekTo(dst, 0)
	if err != nil {
		return err
	}

	err = resource.SeekTo(src, 0)
	if err != nil {
		return err
	}

	_, err = Copy(dst, src, consumer)
	return err
}
