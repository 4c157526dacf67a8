package patch

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/itchio/img4kit/comm"
	"github.com/itchio/img4kit/container"
	"github.com/itchio/img4kit/mansion"
	patcher "github.com/itchio/img4kit/patch"
	"github.com/itchio/img4kit/resource"
	"github.com/pkg/errors"
)

var args = struct {
	input  *string
	script *string

	output *string
	force  *bool
	undo   *bool
	dryrun *bool
	raw    *bool
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("patch", "Apply a byte patch script to a container's payload")
	args.input = cmd.Arg("input", "Container (or plain file, with --raw) to patch").Required().String()
	args.script = cmd.Arg("script", "Patch script: one '<offset> <old> <new>' edit per line").Required().String()

	args.output = cmd.Flag("output", "Where to write the patched file, instead of replacing input").Short('o').String()
	args.force = cmd.Flag("force", "Apply even if some bytes hold neither the old nor the new value").Short('f').Bool()
	args.undo = cmd.Flag("undo", "Revert the script (swap old and new values)").Short('u').Bool()
	args.dryrun = cmd.Flag("dry-run", "Validate the script and show what would be written, without writing").Bool()
	args.raw = cmd.Flag("raw", "Treat input as a plain file: offsets are file offsets").Bool()
	ctx.Register(cmd, do)
}

func do(ctx *mansion.Context) {
	ctx.Must(Do(&Params{
		Input:  *args.input,
		Script: *args.script,

		Output: *args.output,
		Force:  *args.force || ctx.Config.Force,
		Undo:   *args.undo,
		DryRun: *args.dryrun,
		Raw:    *args.raw,
	}))
}

type Params struct {
	Input  string
	Script string

	Output string
	Force  bool
	Undo   bool
	DryRun bool
	Raw    bool
}

func (p Params) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Input, validation.Required),
		validation.Field(&p.Output, mansion.OutputRequired(p.Input)),
		validation.Field(&p.Script, validation.Required),
	)
}

// Result is what gets sent in JSON mode
type Result struct {
	Total          int  `json:"total"`
	Written        int  `json:"written"`
	Skipped        int  `json:"skipped"`
	AlreadyPatched int  `json:"alreadyPatched"`
	Conflicts      int  `json:"conflicts"`
	DryRun         bool `json:"dryRun"`
}

func Do(params *Params) error {
	err := params.Validate()
	if err != nil {
		return errors.WithStack(err)
	}

	// everything happens on a staged copy, which is only persisted
	// if the whole script went through.
	staged, err := resource.Load(params.Input)
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("cannot open '%s'", params.Input))
	}

	var target resource.Resource = staged
	var payload *container.Payload
	if !params.Raw {
		payload, err = container.Reopen(staged, container.SkipDecompression)
		if err != nil {
			return errors.WithMessage(err, fmt.Sprintf("%s (use --raw for plain files)", params.Input))
		}
		target = payload
	}

	scriptFile, err := resource.OpenInput(params.Script)
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("cannot read '%s'", params.Script))
	}
	defer scriptFile.Close()

	verb := "Patching"
	if params.Undo {
		verb = "Unpatching"
	}
	comm.Opf("%s %s with %s", verb, params.Input, params.Script)

	script, report, err := patcher.Run(target, scriptFile, patcher.Params{
		Force:    params.Force,
		Undo:     params.Undo,
		DryRun:   params.DryRun,
		Consumer: comm.NewStateConsumer(),
	})
	if script != nil && params.DryRun {
		printOps(script)
	}
	if err != nil {
		return errors.WithMessage(err, "cannot apply patch")
	}

	result := Result{
		Total:          report.Total,
		Written:        report.Written,
		Skipped:        report.Skip,
		AlreadyPatched: report.AlreadyPatched,
		Conflicts:      len(report.Conflicts),
		DryRun:         params.DryRun,
	}

	if params.DryRun {
		comm.ResultOrPrint(result, func() {
			comm.Statf("%d of %d edits would be written (dry run)", report.Apply, report.Total)
		})
		return nil
	}

	if payload != nil {
		err = payload.Sync()
		if err != nil {
			return errors.WithMessage(err, "cannot reassemble data")
		}
	}

	output := mansion.OutputPath(params.Input, params.Output)
	err = mansion.WriteOutput(output, staged.Bytes())
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("cannot write '%s'", output))
	}

	comm.ResultOrPrint(result, func() {
		comm.Statf("%d bytes patched, %d already in place, written to %s", report.Written, report.Skip, output)
	})
	return nil
}

func printOps(script *patcher.Script) {
	var rows [][]string
	for _, op := range script.Ops {
		rows = append(rows, []string{
			fmt.Sprintf("%d", op.Line),
			fmt.Sprintf("0x%x", op.Offset),
			fmt.Sprintf("%02x", op.Old),
			fmt.Sprintf("%02x", op.New),
			op.Resolution.String(),
		})
	}
	comm.Table([]string{"line", "offset", "old", "new", "action"}, rows)
}
