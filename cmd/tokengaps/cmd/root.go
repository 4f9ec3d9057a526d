// Package cmd provides the CLI commands for tokengaps.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/tokengaps/internal/config"
	"github.com/Aman-CERP/tokengaps/internal/errors"
	"github.com/Aman-CERP/tokengaps/internal/logging"
	"github.com/Aman-CERP/tokengaps/internal/profiling"
	"github.com/Aman-CERP/tokengaps/internal/ui"
	"github.com/Aman-CERP/tokengaps/pkg/version"
)

// rootOptions is shared by all subcommands.
type rootOptions struct {
	debug      bool
	configPath string
	profile    profiling.Options

	cfg            *config.Config
	cfgErr         error
	logger         *slog.Logger
	loggingCleanup func()
	profiler       *profiling.Session
}

// config returns the loaded configuration, or the error loading it produced.
func (o *rootOptions) config() (*config.Config, error) {
	return o.cfg, o.cfgErr
}

// newRootCmd creates the root command for the tokengaps CLI together with
// the options its hooks fill in.
func newRootCmd() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "tokengaps",
		Short: "Analyze text and close position gaps left by removed tokens",
		Long: `tokengaps runs text through a configurable analysis chain whose last
stage forces every token's position increment to 1. Stop words and other
removed tokens then no longer leave holes that break phrase matching.

The chain is read from .tokengaps.yaml, the user config and TOKENGAPS_*
environment variables.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("tokengaps version {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.ValidationError(err.Error(), err)
	})

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging to ~/.tokengaps/logs/")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: .tokengaps.yaml in the current directory)")

	cmd.PersistentFlags().StringVar(&opts.profile.CPUPath, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&opts.profile.HeapPath, "profile-mem", "", "Write heap profile to file")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		return opts.start(c)
	}

	cmd.AddCommand(newAnalyzeCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd, opts
}

// start loads configuration and sets up logging. A config error is kept for
// the commands that need the config, so version still works with a broken file.
func (o *rootOptions) start(c *cobra.Command) error {
	if o.configPath != "" {
		o.cfg, o.cfgErr = config.LoadFile(o.configPath)
	} else {
		dir, err := os.Getwd()
		if err != nil {
			dir = "."
		}
		o.cfg, o.cfgErr = config.Load(dir)
	}

	logCfg := logging.DefaultConfig()
	if o.cfg != nil {
		logCfg.Level = o.cfg.Logging.Level
		logCfg.Format = o.cfg.Logging.Format
		logCfg.FilePath = o.cfg.Logging.File
	}
	if o.debug {
		logCfg = logging.DebugConfig()
	}
	logCfg.Stderr = c.ErrOrStderr()

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	o.logger = logger
	o.loggingCleanup = cleanup
	slog.SetDefault(logger)

	if o.debug {
		slog.Info("Debug logging enabled",
			slog.String("log_file", logCfg.FilePath),
			slog.String("version", version.Short()))
	}
	if o.cfgErr != nil {
		slog.Debug("config load failed", slog.String("error", o.cfgErr.Error()))
	}

	if o.profile.Enabled() {
		o.profiler, err = profiling.Start(o.profile)
		if err != nil {
			return err
		}
	}
	return nil
}

// stopProfiler writes pending profiles.
func (o *rootOptions) stopProfiler() error {
	if o.profiler == nil {
		return nil
	}
	err := o.profiler.Stop()
	o.profiler = nil
	return err
}

// closeLogging flushes and closes the log file.
func (o *rootOptions) closeLogging() {
	if o.loggingCleanup != nil {
		o.loggingCleanup()
		o.loggingCleanup = nil
	}
}

// execute runs root, then logs and reports any failure and releases
// profiling and logging. cobra skips post-run hooks when RunE fails, so
// cleanup lives here.
func execute(root *cobra.Command, opts *rootOptions) error {
	c, err := root.ExecuteC()
	if stopErr := opts.stopProfiler(); err == nil {
		err = stopErr
	}
	if err != nil {
		if c == nil {
			c = root
		}
		if opts.logger != nil {
			opts.logger.LogAttrs(context.Background(), slog.LevelInfo, "command failed", errors.LogAttrs(err)...)
		}
		reportError(c, err)
	}
	opts.closeLogging()
	return err
}

// reportError prints err to c's stderr, as JSON when the command was asked
// for JSON output.
func reportError(c *cobra.Command, err error) {
	w := c.ErrOrStderr()
	if wantsJSON(c) {
		if data, jerr := errors.FormatJSON(err); jerr == nil {
			_, _ = fmt.Fprintln(w, string(data))
			return
		}
	}

	p := ui.NewPrinter(w)
	p.Error(errors.FormatForCLI(err))
	if errors.GetCategory(err) == errors.CategoryValidation {
		p.Line("Run '%s --help' for usage.", c.CommandPath())
	}
}

func wantsJSON(c *cobra.Command) bool {
	f := c.Flags().Lookup("json")
	return f != nil && f.Value.String() == "true"
}

// exitCode maps err to the process exit status: 2 for fatal errors such as
// a corrupt index, 1 for any other failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsFatal(err):
		return 2
	default:
		return 1
	}
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute() int {
	root, opts := newRootCmd()
	return exitCode(execute(root, opts))
}
