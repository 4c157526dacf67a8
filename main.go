package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/itchio/img4kit/comm"
	"github.com/itchio/img4kit/config"
	"github.com/itchio/img4kit/mansion"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	version = "head" // set by command-line on CI release builds
	app     = kingpin.New("img4kit", "Patch, wrap and inspect IMG4/IM4P firmware containers")
)

var appArgs = struct {
	json       *bool
	quiet      *bool
	verbose    *bool
	timestamps *bool
	noColor    *bool
	config     *string
}{
	app.Flag("json", "Enable machine-readable JSON-lines output").Short('j').Bool(),
	app.Flag("quiet", "Hide progress indicators & other extra info").Short('q').Bool(),
	app.Flag("verbose", "Display as much extra info as possible").Short('v').Bool(),
	app.Flag("timestamps", "Prefix all output by timestamps (for logging purposes)").Bool(),
	app.Flag("no-color", "Never colorize output").Bool(),
	app.Flag("config", "Path to a TOML file holding defaults").Default(config.DefaultPath()).String(),
}

func main() {
	app.HelpFlag.Short('h')
	app.Version(version)
	app.VersionFlag.Short('V')

	ctx := mansion.NewContext(app)
	ctx.Version = version
	registerCommands(ctx)

	cmd, err := app.Parse(os.Args[1:])
	if *appArgs.timestamps {
		log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	} else {
		log.SetFlags(0)
	}

	ctx.Quiet = *appArgs.quiet
	ctx.Verbose = *appArgs.verbose
	ctx.JSON = *appArgs.json
	cfgErr := loadConfig(ctx, *appArgs.config, *appArgs.noColor)

	fullCmd := kingpin.MustParse(cmd, err)
	ctx.Must(cfgErr)

	do := ctx.Commands[fullCmd]
	if do == nil {
		comm.Dief("unknown command %s", fullCmd)
		return
	}
	do(ctx)
}

// loadConfig reads the config file into ctx, merging it with the settings
// already taken from flags. Logging is configured from the flags first so
// that messages emitted while loading honor --verbose and --json.
func loadConfig(ctx *mansion.Context, path string, noColor bool) error {
	configureLogging(ctx, noColor)

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	ctx.Config = cfg
	ctx.Verbose = ctx.Verbose || cfg.Verbose
	ctx.JSON = ctx.JSON || cfg.JSON
	configureLogging(ctx, noColor || cfg.NoColor)
	return nil
}

func configureLogging(ctx *mansion.Context, noColor bool) {
	comm.Configure(ctx.Quiet, ctx.Quiet, ctx.Verbose, ctx.JSON, false, noColor)

	level := slog.LevelInfo
	if ctx.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(comm.NewSlogHandler(level)))
}
