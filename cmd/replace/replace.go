package replace

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
	input   *string
	payload *string
	output  *string
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("replace", "Replace the payload of a container, keeping its framing")
	args.input = cmd.Arg("input", "Container whose payload to replace").Required().String()
	args.payload = cmd.Arg("payload", "New payload (local path or http(s) URL)").Required().String()
	args.output = cmd.Flag("output", "Where to write the container, instead of replacing input").Short('o').String()
	ctx.Register(cmd, do)
}

func do(ctx *mansion.Context) {
	ctx.Must(Do(&Params{
		Input:   *args.input,
		Payload: *args.payload,
		Output:  *args.output,
	}))
}

type Params struct {
	Input   string
	Payload string
	Output  string
}

func (p Params) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Input, validation.Required),
		validation.Field(&p.Output, mansion.OutputRequired(p.Input)),
		validation.Field(&p.Payload, validation.Required),
	)
}

func Do(params *Params) error {
	err := params.Validate()
	if err != nil {
		return errors.WithStack(err)
	}

	src, err := resource.OpenInput(params.Payload)
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("cannot open '%s'", params.Payload))
	}
	defer src.Close()

	staged, err := resource.Load(params.Input)
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("cannot open '%s'", params.Input))
	}

	total, err := src.Length()
	if err != nil {
		return errors.WithStack(err)
	}

	comm.Opf("Replacing payload of %s with %s (%s)", params.Input, params.Payload, humanize.IBytes(uint64(total)))

	comm.StartProgressWithTotalBytes(total)
	payload, err := materialize.Replace(staged, src, comm.NewStateConsumer())
	comm.EndProgress()
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("cannot replace payload of '%s'", params.Input))
	}
	defer payload.Close()

	err = payload.Sync()
	if err != nil {
		return errors.WithMessage(err, "cannot reassemble data")
	}

	output := mansion.OutputPath(params.Input, params.Output)
	err = mansion.WriteOutput(output, staged.Bytes())
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("cannot write '%s'", output))
	}

	comm.Statf("%s %s payload replaced, written to %s", payload.Kind(), payload.Type(), output)
	return nil
}
