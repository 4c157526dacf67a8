package info

import (
	"fmt"

	humanize "github.com/dustin/go-humanize"
	"github.com/itchio/img4kit/comm"
	"github.com/itchio/img4kit/container"
	"github.com/itchio/img4kit/mansion"
	"github.com/itchio/img4kit/resource"
	"github.com/pkg/errors"
)

var args = struct {
	input *string
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("info", "Print the type, description and payload size of a container")
	args.input = cmd.Arg("input", "Container to inspect (local path or http(s) URL)").Required().String()
	ctx.Register(cmd, do)
}

func do(ctx *mansion.Context) {
	ctx.Must(Do(*args.input))
}

// Info describes a container
type Info struct {
	Kind        string `json:"kind"`
	Type        string `json:"type"`
	Description string `json:"description"`
	DataSize    int64  `json:"dataSize"`
	Extras      int    `json:"extras"`
}

// Inspect decodes the container at path without modifying it
func Inspect(path string) (*Info, error) {
	staged, err := resource.Load(path)
	if err != nil {
		return nil, errors.WithMessage(err, fmt.Sprintf("cannot open '%s'", path))
	}

	payload, err := container.Reopen(staged, container.SkipDecompression)
	if err != nil {
		return nil, errors.WithMessage(err, "cannot identify")
	}
	defer payload.Close()

	size, err := payload.Length()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &Info{
		Kind:        payload.Kind(),
		Type:        payload.Type(),
		Description: payload.Description(),
		DataSize:    size,
		Extras:      payload.Extras(),
	}, nil
}

func Do(path string) error {
	info, err := Inspect(path)
	if err != nil {
		return err
	}

	comm.ResultOrPrint(info, func() {
		comm.Logf("kind -> %s", info.Kind)
		comm.Logf("type -> %s", info.Type)
		comm.Logf("description -> %s", info.Description)
		comm.Logf("data -> %s (%d bytes)", humanize.IBytes(uint64(info.DataSize)), info.DataSize)
		if info.Extras > 0 {
			comm.Logf("extra elements -> %d", info.Extras)
		}
	})
	return nil
}
