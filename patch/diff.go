package patch

import (
	"bufio"
	"fmt"
	"io"

	"github.com/itchio/img4kit/resource"
	"github.com/pkg/errors"
)

const diffChunkSize = 4096

// Diff writes a script turning the contents of oldRes into those of
// newRes. Both must be the same length. It returns the number of ops
// written.
func Diff(oldRes, newRes resource.Resource, w io.Writer) (int, error) {
	oldLength, err := oldRes.Length()
	if err != nil {
		return 0, errors.WithStack(err)
	}
	newLength, err := newRes.Length()
	if err != nil {
		return 0, errors.WithStack(err)
	}
	if oldLength != newLength {
		return 0, errors.Errorf("patch: can only diff equally-sized inputs (%d != %d bytes)", oldLength, newLength)
	}

	for _, r := range []resource.Resource{oldRes, newRes} {
		err = resource.SeekTo(r, 0)
		if err != nil {
			return 0, err
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d bytes compared\n", oldLength)

	oldBuf := make([]byte, diffChunkSize)
	newBuf := make([]byte, diffChunkSize)
	numOps := 0

	for offset := int64(0); offset < oldLength; {
		n := int64(diffChunkSize)
		if oldLength-offset < n {
			n = oldLength - offset
		}

		if _, err := io.ReadFull(oldRes, oldBuf[:n]); err != nil {
			return numOps, errors.WithStack(&resource.IOError{Op: "read", Offset: offset, Want: n, Err: err})
		}
		if _, err := io.ReadFull(newRes, newBuf[:n]); err != nil {
			return numOps, errors.WithStack(&resource.IOError{Op: "read", Offset: offset, Want: n, Err: err})
		}

		for i := int64(0); i < n; i++ {
			if oldBuf[i] == newBuf[i] {
				continue
			}
			fmt.Fprintf(bw, "0x%x 0x%02x 0x%02x\n", offset+i, oldBuf[i], newBuf[i])
			numOps++
		}
		offset += n
	}

	err = bw.Flush()
	if err != nil {
		return numOps, errors.WithStack(err)
	}
	return numOps, nil
}
