// Package app wires configuration, logging, metrics and the device into the
// fibdev command tree.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agbru/fibdev/internal/config"
	"github.com/agbru/fibdev/internal/device"
	apperrors "github.com/agbru/fibdev/internal/errors"
	"github.com/agbru/fibdev/internal/fibonacci"
	"github.com/agbru/fibdev/internal/logging"
	"github.com/agbru/fibdev/internal/session"
	"github.com/agbru/fibdev/internal/ui"
)

// Application represents the fibdev application instance.
type Application struct {
	Config    config.AppConfig
	Factory   fibonacci.EngineFactory
	ErrWriter io.Writer
	In        io.Reader

	logger logging.Logger
	args   []string
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory sets a custom EngineFactory.
func WithFactory(f fibonacci.EngineFactory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// WithInput sets the reader the REPL and TUI consume.
func WithInput(in io.Reader) AppOption {
	return func(a *Application) { a.In = in }
}

// New creates an application for the command line args (args[0] is the
// program name). Flags are parsed when Run executes the command.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	a := &Application{
		Config:    config.Default(),
		ErrWriter: errWriter,
		In:        os.Stdin,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.Factory == nil {
		a.Factory = fibonacci.NewDefaultFactory()
	}
	if len(args) > 0 {
		a.args = args[1:]
	}
	return a, nil
}

// Run executes the command line and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := a.rootCommand()
	root.SetArgs(a.args)
	root.SetOut(out)
	root.SetErr(a.ErrWriter)
	root.SetIn(a.In)

	err := root.ExecuteContext(ctx)
	var exit exitError
	switch {
	case err == nil:
		return apperrors.ExitSuccess
	case errors.As(err, &exit):
		return exit.code
	case apperrors.IsContextError(err):
		fmt.Fprintln(a.ErrWriter, "canceled")
	default:
		fmt.Fprintf(a.ErrWriter, "%sError:%s %v\n", ui.ColorRed(), ui.ColorReset(), err)
	}
	return apperrors.ExitCode(err)
}

func (a *Application) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "fibdev",
		Short: "Exclusive-access Fibonacci device with a 128-bit fast doubling engine",
		Long: `fibdev exposes a Fibonacci "device": one session at a time opens it, moves
a cursor with seek and reads the decimal digits of F(cursor).

Without a subcommand it starts the interactive REPL.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.prepare,
		RunE:              a.runREPL,
	}
	config.BindFlags(root.PersistentFlags(), &a.Config)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperrors.NewConfigError("%v", err)
	})

	root.AddCommand(
		a.readCommand(),
		a.seekCommand(),
		a.replCommand(),
		a.serveCommand(),
		a.sweepCommand(),
		a.tuiCommand(),
		a.versionCommand(),
	)
	return root
}

// prepare resolves the configuration and sets up logging and colors before
// any subcommand runs.
func (a *Application) prepare(cmd *cobra.Command, _ []string) error {
	if err := config.Resolve(&a.Config, cmd.Flags()); err != nil {
		return err
	}
	if err := a.Config.Validate(a.Factory.List()); err != nil {
		return err
	}

	ui.InitTheme(a.Config.NoColor)
	logger, err := logging.NewConfiguredLogger(a.ErrWriter, "fibdev", a.Config.LogLevel, a.Config.LogJSON)
	if err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	a.logger = logger
	for _, w := range a.Config.Warnings() {
		a.logger.Warn(w)
	}
	a.logger.Debug("configuration resolved",
		logging.Int64("max_index", a.Config.MaxIndex),
		logging.String("engine", a.Config.Engine),
		logging.String("flags", changedFlags(cmd.Flags())))
	return nil
}

// newNode builds a device running the configured engine. Extra observers
// receive the session events alongside the logging observer.
func (a *Application) newNode(observers ...session.Observer) (*device.Node, error) {
	engine, err := a.Factory.Get(a.Config.Engine)
	if err != nil {
		return nil, apperrors.ValidationError{Field: "engine", Message: err.Error()}
	}
	obs := append(session.Observers{session.LogObserver{Logger: a.logger}}, observers...)
	dev := session.NewDevice(
		session.WithEngine(engine),
		session.WithMaxIndex(a.Config.MaxIndex),
		session.WithObserver(obs),
		session.WithLogger(a.logger),
	)
	return device.NewNode(dev), nil
}

func changedFlags(fs *pflag.FlagSet) string {
	var names []string
	fs.Visit(func(f *pflag.Flag) { names = append(names, f.Name) })
	return strings.Join(names, ",")
}
