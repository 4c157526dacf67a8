package patch

import (
	"fmt"

	"github.com/itchio/img4kit/resource"
	"github.com/pkg/errors"
)

// Commit writes the new value of every op resolved to Apply, in script
// order. It stops at the first I/O error, leaving the resource partially
// patched: callers wanting atomicity should commit to a staged copy.
func Commit(res resource.Resource, script *Script, report *Report) error {
	for _, op := range script.Ops {
		switch op.Resolution {
		case Skip:
			continue
		case Apply:
			// muffin
		default:
			return errors.Errorf("patch: line %d: op at 0x%x was never validated", op.Line, op.Offset)
		}

		err := resource.WriteByteAt(res, op.Offset, op.New)
		if err != nil {
			return errors.WithMessage(err, fmt.Sprintf("patch: cannot patch 0x%x", op.Offset))
		}

		if report != nil {
			report.Written++
		}
	}

	return nil
}
