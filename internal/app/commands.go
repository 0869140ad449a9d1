package app

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agbru/fibdev/internal/cli"
	"github.com/agbru/fibdev/internal/device"
	apperrors "github.com/agbru/fibdev/internal/errors"
	"github.com/agbru/fibdev/internal/fibonacci"
	"github.com/agbru/fibdev/internal/metrics"
	"github.com/agbru/fibdev/internal/server"
	"github.com/agbru/fibdev/internal/tui"
)

func (a *Application) readCommand() *cobra.Command {
	var showTime bool
	cmd := &cobra.Command{
		Use:   "read <n>",
		Short: "Print the digits of F(n); n is clamped to [0, max-index]",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseOffset(args[0])
			if err != nil {
				return err
			}
			return a.oneShot(cmd.OutOrStdout(), n, "set", showTime)
		},
	}
	cmd.Flags().BoolVarP(&showTime, "time", "t", false, "Show index, digit count and compute time.")
	return cmd
}

func (a *Application) seekCommand() *cobra.Command {
	var showTime bool
	cmd := &cobra.Command{
		Use:   "seek <offset> [set|cur|end]",
		Short: "Open a fresh session, seek and read once",
		Long: `seek opens the device with the cursor at 0, applies one seek and prints
"<index> <digits>". With "end" the target is max-index minus offset.
Put -- before a negative offset: fibdev seek -- -3 end`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			off, err := parseOffset(args[0])
			if err != nil {
				return err
			}
			whence := "set"
			if len(args) == 2 {
				whence = args[1]
			}
			return a.oneShot(cmd.OutOrStdout(), off, whence, showTime)
		},
	}
	cmd.Flags().BoolVarP(&showTime, "time", "t", false, "Show digit count and compute time.")
	return cmd
}

func (a *Application) oneShot(out io.Writer, offset int64, whenceName string, showTime bool) error {
	whence, err := device.ParseWhence(whenceName)
	if err != nil {
		return apperrors.ValidationError{Field: "whence", Message: err.Error()}
	}
	node, err := a.newNode()
	if err != nil {
		return err
	}
	f, err := node.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(offset, whence); err != nil {
		return err
	}
	r, err := f.ReadValue()
	if err != nil {
		return err
	}
	switch {
	case showTime:
		fmt.Fprintln(out, cli.FormatReading(r.Index, r.Digits, r.Elapsed))
	case whenceName == "set":
		cli.DisplayDigits(out, r.Digits)
	default:
		fmt.Fprintf(out, "%d %s\n", r.Index, r.Digits)
	}
	return nil
}

func (a *Application) replCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Drive the device interactively (default)",
		Args:  cobra.NoArgs,
		RunE:  a.runREPL,
	}
}

func (a *Application) runREPL(cmd *cobra.Command, _ []string) error {
	node, err := a.newNode()
	if err != nil {
		return err
	}
	r := cli.NewREPL(node)
	r.SetInput(cmd.InOrStdin())
	r.SetOutput(cmd.OutOrStdout())
	r.Start()
	return nil
}

func (a *Application) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve /fib/{n}, /metrics and /healthz over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := metrics.New()
			node, err := a.newNode(m)
			if err != nil {
				return err
			}
			srv := server.New(node, m, a.logger,
				server.WithAddr(a.Config.Addr),
				server.WithShutdownTimeout(a.Config.ShutdownTimeout))
			return srv.Run(cmd.Context())
		},
	}
}

func (a *Application) sweepCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: `Time every index from 0 to max-index and print "<index> <ns>" lines`,
		Long: `sweep reads each index through one device session, --runs times, and prints
the fastest compute time in nanoseconds. With --all every engine is swept;
--output then names one file per engine (<output>.<engine>).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := []string{a.Config.Engine}
			if all {
				names = a.Factory.List()
			}
			jobs := make([]cli.SweepJob, 0, len(names))
			for _, name := range names {
				e, err := a.Factory.Get(name)
				if err != nil {
					return err
				}
				jobs = append(jobs, cli.SweepJob{Name: name, Engine: e})
			}

			out := cmd.OutOrStdout()
			multi := len(jobs) > 1
			open := func(name string) (io.WriteCloser, error) {
				path := ""
				if a.Config.Output != "" {
					path = cli.SweepOutputPath(a.Config.Output, name, multi)
				}
				w, err := cli.OpenOutput(path, out)
				if err == nil && path == "" && multi {
					fmt.Fprintf(w, "# %s\n", name)
				}
				return w, err
			}

			cfg := cli.SweepConfig{
				MaxIndex: a.Config.MaxIndex,
				Runs:     a.Config.Runs,
				Verify:   a.Config.Verify,
				Logger:   a.logger,
			}
			results, err := cli.SweepAll(cmd.Context(), jobs, cfg, open, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cli.DisplaySweepSummary(cmd.ErrOrStderr(), results, a.Config.Verify)
			for _, r := range results {
				if r.Mismatches > 0 {
					return fmt.Errorf("%s: %d results differ from F(n) mod 2^128", r.Engine, r.Mismatches)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Sweep every registered engine.")
	return cmd
}

func (a *Application) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the sequence in a full-screen terminal view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			node, err := a.newNode()
			if err != nil {
				return err
			}
			if code := tui.Run(cmd.Context(), node, cmd.InOrStdin(), cmd.OutOrStdout()); code != apperrors.ExitSuccess {
				return exitError{code: code}
			}
			return nil
		},
	}
}

func (a *Application) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// The version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			PrintVersion(cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "engines: %v, safe index: %d\n", a.Factory.List(), fibonacci.MaxSafeIndex)
		},
	}
}

func parseOffset(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, apperrors.ValidationError{Field: "index", Message: fmt.Sprintf("%q is not an integer", s)}
	}
	return n, nil
}

// exitError carries an exit code already reported to the user.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
