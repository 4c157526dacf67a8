package patch

import (
	"io"

	"github.com/itchio/img4kit/resource"
	"github.com/itchio/wharf/state"
	"github.com/pkg/errors"
)

// Params control a single engine run
type Params struct {
	// Apply even if some bytes hold neither the old nor the new value
	Force bool
	// Swap old and new values, reverting a previously applied script
	Undo bool
	// Validate only, don't write anything
	DryRun bool

	Consumer *state.Consumer
}

// Run parses the script read from r, validates it against res, then
// commits it unless params.DryRun is set. The script that was parsed is
// returned alongside the report, so callers may inspect resolutions.
func Run(res resource.Resource, r io.Reader, params Params) (*Script, *Report, error) {
	consumer := params.Consumer
	if consumer == nil {
		consumer = &state.Consumer{}
	}

	length, err := res.Length()
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	script, err := Parse(r, length, params.Undo)
	if err != nil {
		return nil, nil, err
	}
	consumer.Debugf("patch: parsed %d ops (undo: %v)", len(script.Ops), params.Undo)

	report, err := Validate(res, script, ValidateParams{
		Force:    params.Force,
		Consumer: consumer,
	})
	if err != nil {
		return script, report, err
	}

	if len(report.Conflicts) > 0 {
		consumer.Warnf("patch: forcing through %d conflicts", len(report.Conflicts))
	}

	if params.DryRun {
		consumer.Debugf("patch: dry run, %d ops would be written", report.Apply)
		return script, report, nil
	}

	err = Commit(res, script, report)
	if err != nil {
		return script, report, err
	}

	consumer.Debugf("patch: wrote %d bytes, skipped %d", report.Written, report.Skip)
	return script, report, nil
}
