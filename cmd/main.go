// Command jvrace builds race and horse master documents from JRA-VAN data.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/jvrace/internal/adapters/sink"
	"github.com/okian/jvrace/internal/config"
	"github.com/okian/jvrace/pkg/logger"
	"github.com/okian/jvrace/pkg/metrics"
)

// errWriteFailures makes the process exit non-zero after a run that could
// not write every document.
var errWriteFailures = errors.New("write failures")

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "jvrace:", err) //nolint:errcheck // best effort
		return 1
	}
	return 0
}

// cli carries state shared by the subcommands.
type cli struct {
	stdout   io.Writer
	stderr   io.Writer
	logLevel string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:           "jvrace",
		Short:         "Build race and horse masters from JRA-VAN binary data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log_level)")

	root.AddCommand(
		c.racesCmd(),
		c.horsesCmd(),
		c.raceIDCmd(),
	)
	return root
}

// setup loads the configuration and initializes logging.
func (c *cli) setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(c.stderr)); err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	if err := logger.SetLevelString(level); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// exportMetrics writes the textfile snapshot when one is configured.
func exportMetrics(ctx context.Context, cfg *config.Config) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Get().Warn(ctx, "metrics export failed", logger.String("path", cfg.MetricsFile), logger.Error(err))
	}
}

func printJSON(w io.Writer, v any) error {
	raw, err := sink.Encode(v)
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}
