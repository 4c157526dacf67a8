// Package patch applies byte-level edit scripts to a resource.
//
// A script has one edit per line:
//
//	<offset> <old byte> <new byte>   # comment
//
// Scripts are parsed in full, validated against the resource without
// writing anything, and only then committed.
package patch

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Resolution is what the validator decided to do with an op
type Resolution int

const (
	// Pending ops have not been validated yet
	Pending Resolution = iota
	// Apply ops write their new value
	Apply
	// Skip ops already hold their new value
	Skip
)

func (r Resolution) String() string {
	switch r {
	case Pending:
		return "pending"
	case Apply:
		return "apply"
	case Skip:
		return "skip"
	}
	return fmt.Sprintf("Resolution(%d)", int(r))
}

// An Op is a single byte edit.
type Op struct {
	Offset int64
	Old    byte
	New    byte

	Resolution Resolution

	// 1-based line in the script the op was read from
	Line int
}

func (op Op) String() string {
	return fmt.Sprintf("0x%x: %02x -> %02x", op.Offset, op.Old, op.New)
}

// A Script is an ordered list of ops. Order is preserved from the
// source text and used for both validation and commit.
type Script struct {
	Ops      []Op
	Reversed bool
}

// ParseError is returned for any problem in the script text. The whole
// script is rejected when one occurs.
type ParseError struct {
	Line   int
	Reason string
}

var _ error = (*ParseError)(nil)

func (e *ParseError) Error() string {
	return fmt.Sprintf("patch: line %d: %s", e.Line, e.Reason)
}

// IsParseError returns true if err (or its cause) is a *ParseError
func IsParseError(err error) bool {
	_, ok := errors.Cause(err).(*ParseError)
	return ok
}

// Parse reads a script from r. length is the size of the resource the
// script targets; any offset at or beyond it is rejected. When undo is
// set, every op has its old and new values swapped.
func Parse(r io.Reader, length int64, undo bool) (*Script, error) {
	script := &Script{Reversed: undo}
	br := bufio.NewReader(r)

	for lineno := 1; ; lineno++ {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, errors.WithStack(err)
		}

		if err == io.EOF {
			if line != "" {
				return nil, errors.WithStack(&ParseError{Line: lineno, Reason: "malformed line (missing newline)"})
			}
			break
		}

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		op, ok, perr := parseLine(line, lineno)
		if perr != nil {
			return nil, errors.WithStack(perr)
		}
		if !ok {
			continue
		}

		if op.Offset >= length {
			return nil, errors.WithStack(&ParseError{
				Line:   lineno,
				Reason: fmt.Sprintf("offset 0x%x too big (resource is 0x%x bytes)", op.Offset, length),
			})
		}

		if undo {
			op.Old, op.New = op.New, op.Old
		}
		script.Ops = append(script.Ops, op)
	}

	return script, nil
}

func parseLine(line string, lineno int) (Op, bool, *ParseError) {
	if i := strings.IndexAny(line, "#;"); i >= 0 {
		line = line[:i]
	}

	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return Op{}, false, nil
	}

	if len(fields) != 3 {
		return Op{}, false, &ParseError{
			Line:   lineno,
			Reason: fmt.Sprintf("malformed line (expected 3 fields, got %d)", len(fields)),
		}
	}

	offset, err := parseLiteral(fields[0], 63)
	if err != nil {
		return Op{}, false, &ParseError{Line: lineno, Reason: fmt.Sprintf("malformed offset %q", fields[0])}
	}
	oldValue, err := parseLiteral(fields[1], 8)
	if err != nil {
		return Op{}, false, &ParseError{Line: lineno, Reason: fmt.Sprintf("malformed old value %q", fields[1])}
	}
	newValue, err := parseLiteral(fields[2], 8)
	if err != nil {
		return Op{}, false, &ParseError{Line: lineno, Reason: fmt.Sprintf("malformed new value %q", fields[2])}
	}

	return Op{
		Offset:     int64(offset),
		Old:        byte(oldValue),
		New:        byte(newValue),
		Resolution: Pending,
		Line:       lineno,
	}, true, nil
}

// parseLiteral accepts decimal, 0x-prefixed hex and 0-prefixed octal
func parseLiteral(s string, bits int) (uint64, error) {
	s = strings.TrimPrefix(s, "+")
	return strconv.ParseUint(s, 0, bits)
}
