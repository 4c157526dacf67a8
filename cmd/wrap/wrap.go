package wrap

import (
	"fmt"

	humanize "github.com/dustin/go-humanize"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/itchio/img4kit/comm"
	"github.com/itchio/img4kit/mansion"
	"github.com/itchio/img4kit/materialize"
	"github.com/itchio/img4kit/resource"
	"github.com/pkg/errors"
)

var args = struct {
	input       *string
	output      *string
	typ         *string
	description *string
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("wrap", "Wrap a plain file into a new IM4P container")
	args.input = cmd.Arg("input", "Payload to wrap (local path or http(s) URL)").Required().String()
	args.output = cmd.Flag("output", "Where to write the container, instead of replacing input").Short('o').String()
	args.typ = cmd.Flag("type", "Four-character type of the new container").Short('t').String()
	args.description = cmd.Flag("description", "Description of the new container").Short('d').String()
	ctx.Register(cmd, do)
}

func do(ctx *mansion.Context) {
	params := &Params{
		Input:       *args.input,
		Output:      *args.output,
		Type:        *args.typ,
		Description: *args.description,
	}
	if params.Type == "" {
		params.Type = ctx.Config.DefaultType
	}
	if params.Description == "" {
		params.Description = ctx.Config.DefaultDescription
	}
	ctx.Must(Do(params))
}

type Params struct {
	Input  string
	Output string

	// leave empty to keep the stub's values
	Type        string
	Description string
}

func (p Params) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Input, validation.Required),
		validation.Field(&p.Output, mansion.OutputRequired(p.Input)),
		validation.Field(&p.Type, validation.Length(4, 4)),
	)
}

func Do(params *Params) error {
	err := params.Validate()
	if err != nil {
		return errors.WithStack(err)
	}

	src, err := resource.OpenInput(params.Input)
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("cannot open '%s'", params.Input))
	}
	defer src.Close()

	total, err := src.Length()
	if err != nil {
		return errors.WithStack(err)
	}

	comm.Opf("Wrapping %s (%s)", params.Input, humanize.IBytes(uint64(total)))

	comm.StartProgressWithTotalBytes(total)
	payload, backing, err := materialize.Wrap(src, comm.NewStateConsumer())
	comm.EndProgress()
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("cannot wrap '%s'", params.Input))
	}
	defer payload.Close()

	if params.Type != "" {
		err = payload.SetType(params.Type)
		if err != nil {
			return err
		}
	}
	if params.Description != "" {
		payload.SetDescription(params.Description)
	}

	err = payload.Sync()
	if err != nil {
		return errors.WithMessage(err, "cannot reassemble data")
	}

	output := mansion.OutputPath(params.Input, params.Output)
	err = mansion.WriteOutput(output, backing.Bytes())
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("cannot write '%s'", output))
	}

	comm.Statf("%s wrapped as %s into %s", humanize.IBytes(uint64(total)), payload.Type(), output)
	return nil
}
