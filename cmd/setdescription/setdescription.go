package setdescription

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/itchio/img4kit/comm"
	"github.com/itchio/img4kit/container"
	"github.com/itchio/img4kit/mansion"
	"github.com/itchio/img4kit/resource"
	"github.com/pkg/errors"
)

var args = struct {
	input       *string
	description *string
	output      *string
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("set-description", "Change the description (version string) of a container")
	args.input = cmd.Arg("input", "Container to modify").Required().String()
	args.description = cmd.Arg("description", "New description, e.g. 'KernelCacheBuilder-1234'").Required().String()
	args.output = cmd.Flag("output", "Where to write the container, instead of replacing input").Short('o').String()
	ctx.Register(cmd, do)
}

func do(ctx *mansion.Context) {
	ctx.Must(Do(&Params{
		Input:       *args.input,
		Description: *args.description,
		Output:      *args.output,
	}))
}

type Params struct {
	Input       string
	Description string
	Output      string
}

func (p Params) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Input, validation.Required),
		validation.Field(&p.Output, mansion.OutputRequired(p.Input)),
		validation.Field(&p.Description, validation.Required),
	)
}

func Do(params *Params) error {
	err := params.Validate()
	if err != nil {
		return errors.WithStack(err)
	}

	staged, err := resource.Load(params.Input)
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("cannot open '%s'", params.Input))
	}

	payload, err := container.Reopen(staged, container.SkipDecompression)
	if err != nil {
		return errors.WithMessage(err, "cannot identify")
	}
	defer payload.Close()

	old := payload.Description()
	payload.SetDescription(params.Description)

	err = payload.Sync()
	if err != nil {
		return errors.WithMessage(err, "cannot reassemble data")
	}

	output := mansion.OutputPath(params.Input, params.Output)
	err = mansion.WriteOutput(output, staged.Bytes())
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("cannot write '%s'", output))
	}

	comm.Statf("Description changed from %q to %q, written to %s", old, params.Description, output)
	return nil
}
