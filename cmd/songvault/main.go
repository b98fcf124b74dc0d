// Command songvault stores audio files in a managed catalog and keeps
// their tag windows in sync with it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/llehouerou/songvault/internal/config"
	"github.com/llehouerou/songvault/internal/errmsg"
	"github.com/llehouerou/songvault/internal/library"
	"github.com/llehouerou/songvault/internal/logging"
	"github.com/llehouerou/songvault/internal/render"
	"github.com/llehouerou/songvault/internal/state"
)

const usage = `usage: songvault [global flags] <command> [args]

commands:
  add <file> [--title T] [--artist A] [--field Name=Value ...]
  rm <id> [--keep-file]
  show <id>
  list
  edit <id> --field Name=Value [--field ...]
  search [--field Name=Value ...]
  find <text>
  export <dest> [--field Name=Value ...] [--structure S] [--workers N]
  reindex
  tag read <file>
  tag write <file> <field> <value>
  tag dump <file>
  config init [path] [--force]

global flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// globals are the flags accepted before the command name.
type globals struct {
	configPath string
	database   string
	storage    string
	logLevel   string
	noColor    bool
}

// app carries what every command needs. The catalog is opened on demand.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	out    *render.Printer
	errOut *render.Printer

	mgr *state.Manager
	lib *library.Library
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var g globals
	fs := flag.NewFlagSet("songvault", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&g.configPath, "config", "", "config file loaded after the default locations")
	fs.StringVar(&g.database, "db", "", "catalog database path")
	fs.StringVar(&g.storage, "storage", "", "storage directory for added files")
	fs.StringVar(&g.logLevel, "log-level", "", "trace|debug|info|warn|error|disabled")
	fs.BoolVar(&g.noColor, "no-color", false, "disable colored output")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	// config init must work without a readable config.
	if fs.Arg(0) == "config" {
		out := render.NewPrinter(stdout, g.noColor)
		errOut := render.NewPrinter(stderr, g.noColor)
		return exitCode(errOut, runConfig(out, fs.Args()[1:]))
	}

	cfg, err := config.Load(g.configPath)
	if err != nil {
		render.NewPrinter(stderr, g.noColor).Error(errmsg.Format(errmsg.OpConfigLoad, err))
		return 1
	}
	g.apply(cfg)

	a := &app{
		cfg:    cfg,
		log:    logging.New(cfg.Log.Level, cfg.Log.NoColor, stderr),
		out:    render.NewPrinter(stdout, cfg.Log.NoColor),
		errOut: render.NewPrinter(stderr, cfg.Log.NoColor),
	}
	defer a.close()

	return exitCode(a.errOut, a.dispatch(ctx, fs.Arg(0), fs.Args()[1:]))
}

func (g globals) apply(cfg *config.Config) {
	if g.database != "" {
		cfg.Database = g.database
	}
	if g.storage != "" {
		cfg.StorageDir = g.storage
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.noColor {
		cfg.Log.NoColor = true
	}
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "add":
		return a.cmdAdd(ctx, args)
	case "rm":
		return a.cmdRemove(args)
	case "show":
		return a.cmdShow(args)
	case "list", "ls":
		return a.cmdList(args)
	case "edit":
		return a.cmdEdit(args)
	case "search":
		return a.cmdSearch(args)
	case "find":
		return a.cmdFind(args)
	case "export":
		return a.cmdExport(ctx, args)
	case "reindex":
		return a.cmdReindex(args)
	case "tag":
		return a.cmdTag(args)
	default:
		return usageError{fmt.Sprintf("unknown command %q", cmd)}
	}
}

// library opens the catalog the first time a command needs it.
func (a *app) library() (*library.Library, error) {
	if a.lib != nil {
		return a.lib, nil
	}
	mgr, err := state.Open(a.cfg.Database)
	if err != nil {
		return nil, errors.New(errmsg.FormatWith(errmsg.OpDatabase, a.cfg.Database, err))
	}
	lib := library.New(mgr.DB(), a.cfg.StorageDir, a.log)
	if err := lib.EnsureFTSIndex(); err != nil {
		mgr.Close()
		return nil, errors.New(errmsg.Format(errmsg.OpReindex, err))
	}
	a.log.Debug().Str("db", mgr.Path()).Str("storage", a.cfg.StorageDir).Msg("catalog opened")
	a.mgr, a.lib = mgr, lib
	return lib, nil
}

func (a *app) close() {
	if a.mgr != nil {
		if err := a.mgr.Close(); err != nil {
			a.log.Warn().Err(err).Msg("close database")
		}
	}
}

// usageError marks bad invocations; they exit with status 2.
type usageError struct {
	msg string
}

func (e usageError) Error() string {
	return e.msg
}

func exitCode(errOut *render.Printer, err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return 0
	}
	errOut.Error(err.Error())
	var ue usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}
