package extract

import (
	"fmt"

	humanize "github.com/dustin/go-humanize"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/itchio/img4kit/comm"
	"github.com/itchio/img4kit/container"
	"github.com/itchio/img4kit/mansion"
	"github.com/itchio/img4kit/resource"
	"github.com/pkg/errors"
)

var args = struct {
	input  *string
	output *string
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("extract", "Write the bare payload of a container to a file")
	args.input = cmd.Arg("input", "Container to extract from").Required().String()
	args.output = cmd.Arg("output", "Where to write the payload").Required().String()
	ctx.Register(cmd, do)
}

func do(ctx *mansion.Context) {
	ctx.Must(Do(&Params{
		Input:  *args.input,
		Output: *args.output,
	}))
}

type Params struct {
	Input  string
	Output string
}

func (p Params) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Input, validation.Required),
		validation.Field(&p.Output, validation.Required),
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

	data := payload.Bytes()
	err = mansion.WriteOutput(params.Output, data)
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("cannot write '%s'", params.Output))
	}

	comm.Statf("%s payload (%s) extracted to %s", payload.Type(), humanize.IBytes(uint64(len(data))), params.Output)
	return nil
}
