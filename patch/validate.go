package patch

import (
	"fmt"

	"github.com/itchio/img4kit/resource"
	"github.com/itchio/wharf/state"
	"github.com/pkg/errors"
)

// A Conflict is a byte that holds neither the value a script expects
// nor the value it wants to write.
type Conflict struct {
	Offset   int64
	Line     int
	Observed byte
	Expected byte
}

func (c Conflict) String() string {
	return fmt.Sprintf("offset 0x%x has %02x, expected %02x", c.Offset, c.Observed, c.Expected)
}

// ConflictError is returned by validation when conflicts were found and
// force mode is off. Nothing has been written when it is returned.
type ConflictError struct {
	Conflicts []Conflict
}

var _ error = (*ConflictError)(nil)

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 1 {
		return fmt.Sprintf("patch: %s", e.Conflicts[0])
	}
	return fmt.Sprintf("patch: %d conflicts, first: %s", len(e.Conflicts), e.Conflicts[0])
}

// IsConflictError returns true if err (or its cause) is a *ConflictError
func IsConflictError(err error) bool {
	_, ok := errors.Cause(err).(*ConflictError)
	return ok
}

// Report sums up what validation (and, later, commit) did with a script.
type Report struct {
	Total int
	// ops that will be (or were) written
	Apply int
	// ops left alone, including already-patched ones
	Skip int
	// ops whose byte already held the new value instead of the old one
	AlreadyPatched int
	// bytes actually written by Commit
	Written int

	Conflicts []Conflict
}

// ValidateParams control how conflicts are handled and where warnings go
type ValidateParams struct {
	// Resolve conflicting ops to Apply instead of failing
	Force bool

	Consumer *state.Consumer
}

// Validate reads the current value of every op's byte and resolves the
// op to Apply or Skip. The resource is not modified.
//
// Every op is checked, even after a deviation has been found, so that the
// report lists all conflicts at once. Conflicts fail validation unless
// params.Force is set, in which case conflicting ops are resolved to Apply.
func Validate(res resource.Resource, script *Script, params ValidateParams) (*Report, error) {
	consumer := params.Consumer
	if consumer == nil {
		consumer = &state.Consumer{}
	}

	report := &Report{Total: len(script.Ops)}

	for i := range script.Ops {
		op := &script.Ops[i]

		current, err := resource.ReadByteAt(res, op.Offset)
		if err != nil {
			return report, errors.WithMessage(err, fmt.Sprintf("patch: line %d", op.Line))
		}

		switch {
		case current == op.Old:
			if current == op.New {
				op.Resolution = Skip
			} else {
				op.Resolution = Apply
			}
		case current == op.New:
			consumer.Warnf("patch: offset 0x%x is already patched: %02x", op.Offset, current)
			op.Resolution = Skip
			report.AlreadyPatched++
		default:
			c := Conflict{
				Offset:   op.Offset,
				Line:     op.Line,
				Observed: current,
				Expected: op.Old,
			}
			consumer.Warnf("patch: %s", c)
			report.Conflicts = append(report.Conflicts, c)
			op.Resolution = Apply
		}

		if op.Resolution == Apply {
			report.Apply++
		} else {
			report.Skip++
		}
	}

	if len(report.Conflicts) > 0 && !params.Force {
		return report, errors.WithStack(&ConflictError{Conflicts: report.Conflicts})
	}

	return report, nil
}
