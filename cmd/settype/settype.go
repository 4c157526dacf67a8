package settype

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
	input  *string
	typ    *string
	output *string
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("set-type", "Change the four-character type of a container")
	args.input = cmd.Arg("input", "Container to modify").Required().String()
	args.typ = cmd.Arg("type", "New type, e.g. 'krnl' or 'rdsk'").Required().String()
	args.output = cmd.Flag("output", "Where to write the container, instead of replacing input").Short('o').String()
	ctx.Register(cmd, do)
}

func do(ctx *mansion.Context) {
	ctx.Must(Do(&Params{
		Input:  *args.input,
		Type:   *args.typ,
		Output: *args.output,
	}))
}

type Params struct {
	Input  string
	Type   string
	Output string
}

func (p Params) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Input, validation.Required),
		validation.Field(&p.Output, mansion.OutputRequired(p.Input)),
		validation.Field(&p.Type, validation.Required, validation.Length(4, 4)),
	)
}

func Do(params *Params) error {
	err := params.Validate()
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("invalid type '%s'", params.Type))
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

	old := payload.Type()
	err = payload.SetType(params.Type)
	if err != nil {
		return errors.WithMessage(err, "cannot set type")
	}

	err = payload.Sync()
	if err != nil {
		return errors.WithMessage(err, "cannot reassemble data")
	}

	output := mansion.OutputPath(params.Input, params.Output)
	err = mansion.WriteOutput(output, staged.Bytes())
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("cannot write '%s'", output))
	}

	comm.Statf("Type changed from %s to %s, written to %s", old, params.Type, output)
	return nil
}
