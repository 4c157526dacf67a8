package mansion

import (
	"github.com/itchio/img4kit/comm"
	"github.com/itchio/img4kit/config"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

type DoCommand func(ctx *Context)

type Context struct {
	App      *kingpin.Application
	Commands map[string]DoCommand

	// Config holds defaults read from the config file
	Config *config.Config

	// Version is just the version number, as a string
	Version string

	// Quiet silences all output
	Quiet bool

	// Verbose enables chatty output
	Verbose bool

	// JSON enables JSON-lines output
	JSON bool
}

func NewContext(app *kingpin.Application) *Context {
	return &Context{
		App:      app,
		Commands: make(map[string]DoCommand),
		Config:   config.Default(),
	}
}

func (ctx *Context) Register(clause *kingpin.CmdClause, do DoCommand) {
	ctx.Commands[clause.FullCommand()] = do
}

func (ctx *Context) Must(err error) {
	if err != nil {
		if ctx.Verbose || ctx.JSON {
			comm.Dief("%+v", err)
		} else {
			comm.Dief("%s", err)
		}
	}
}
