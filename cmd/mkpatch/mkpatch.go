package mkpatch

import (
	"bytes"
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/itchio/img4kit/comm"
	"github.com/itchio/img4kit/mansion"
	"github.com/itchio/img4kit/patch"
	"github.com/itchio/img4kit/resource"
	"github.com/pkg/errors"
)

var args = struct {
	old    *string
	new    *string
	script *string
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("mkpatch", "Generate a patch script turning one file into another of the same size")
	args.old = cmd.Arg("old", "Original file").Required().String()
	args.new = cmd.Arg("new", "Modified file").Required().String()
	args.script = cmd.Arg("script", "Where to write the script (stdout if omitted)").String()
	ctx.Register(cmd, do)
}

func do(ctx *mansion.Context) {
	ctx.Must(Do(&Params{
		Old:    *args.old,
		New:    *args.new,
		Script: *args.script,
	}))
}

type Params struct {
	Old    string
	New    string
	Script string
}

func (p Params) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Old, validation.Required),
		validation.Field(&p.New, validation.Required),
	)
}

func Do(params *Params) error {
	err := params.Validate()
	if err != nil {
		return errors.WithStack(err)
	}

	oldRes, err := resource.OpenInput(params.Old)
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("cannot open '%s'", params.Old))
	}
	defer oldRes.Close()

	newRes, err := resource.OpenInput(params.New)
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("cannot open '%s'", params.New))
	}
	defer newRes.Close()

	var buf bytes.Buffer
	numOps, err := patch.Diff(oldRes, newRes, &buf)
	if err != nil {
		return err
	}

	if params.Script == "" {
		_, err = os.Stdout.Write(buf.Bytes())
		return errors.WithStack(err)
	}

	err = mansion.WriteOutput(params.Script, buf.Bytes())
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("cannot write '%s'", params.Script))
	}

	comm.Statf("%d edits written to %s", numOps, params.Script)
	return nil
}
