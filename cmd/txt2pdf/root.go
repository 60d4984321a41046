package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-txt2pdf/internal/config"
	"github.com/alnah/go-txt2pdf/internal/logging"
)

// ErrUsage marks invalid arguments or flags.
var ErrUsage = errors.New("usage error")

// commonFlags holds flags shared by every command.
type commonFlags struct {
	config    string
	envFile   string
	logLevel  string
	logFormat string
	logFile   string
	quiet     bool
	verbose   bool
}

// execute runs the CLI with args and returns the process exit code.
func execute(parent context.Context, args []string, env *Environment) int {
	ctx, stop := notifyContext(parent)
	defer stop()

	var closer io.Closer
	cmd := rootCmd(env, &closer)
	cmd.SetArgs(args)
	cmd.SetOut(env.Stdout)
	cmd.SetErr(env.Stderr)

	err := cmd.ExecuteContext(ctx)
	if closer != nil {
		_ = closer.Close()
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, env.Config))
	}
	return exitCodeFor(err)
}

func rootCmd(env *Environment, closer *io.Closer) *cobra.Command {
	var f commonFlags

	cmd := &cobra.Command{
		Use:   "txt2pdf",
		Short: "Convert RTL plain text with pipe tables into paged documents",
		Long: `txt2pdf splits large .txt files into size-bounded chunks and renders each
chunk in parallel into a PDF (or HTML, or Chrome-printed PDF) part.

Configuration is layered: defaults, then --config YAML, then TXT2PDF_*
environment variables (a .env file is read when present), then flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, env, &f, closer)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.config, "config", "c", "", "YAML config file (env TXT2PDF_CONFIG)")
	pf.StringVar(&f.envFile, "env-file", "", "dotenv file to load (default .env, env TXT2PDF_ENV_FILE)")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: DEBUG, INFO, WARN, ERROR")
	pf.StringVar(&f.logFormat, "log-format", "", "log format: pretty, json")
	pf.StringVar(&f.logFile, "log-file", "", "also append JSON logs to this file")
	pf.BoolVarP(&f.quiet, "quiet", "q", false, "only print errors")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(convertCmd(env))
	cmd.AddCommand(inspectCmd(env))
	cmd.AddCommand(doctorCmd(env))
	cmd.AddCommand(sampleCmd(env))
	cmd.AddCommand(versionCmd(env))

	return cmd
}

// setup loads configuration and builds the logger.
func setup(cmd *cobra.Command, env *Environment, f *commonFlags, closer *io.Closer) error {
	envFile := firstNonEmpty(f.envFile, os.Getenv(config.EnvPrefix+"_ENV_FILE"))
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	cfg, err := config.Load(firstNonEmpty(f.config, os.Getenv(config.EnvPrefix+"_CONFIG")))
	if err != nil {
		return err
	}
	applyLogFlags(cmd.Flags(), f, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	env.Config = cfg

	logger, c, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: logging.Format(cfg.Log.Format),
		File:   cfg.Log.File,
		Writer: env.Stderr,
	})
	if err != nil {
		return err
	}
	*closer = c
	env.Logger = logger

	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug().Msgf(format, args...)
	}))

	for _, name := range config.UnknownEnvVars(env.Environ()) {
		logger.Warn().Str("var", name).Msg("unknown environment variable ignored")
	}
	return nil
}

func applyLogFlags(fs *flag.FlagSet, f *commonFlags, cfg *config.Config) {
	if fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if fs.Changed("log-file") {
		cfg.Log.File = f.logFile
	}
	switch {
	case f.verbose:
		cfg.Log.Level = "DEBUG"
	case f.quiet:
		cfg.Log.Level = "ERROR"
	}
}

// quiet reports whether --quiet was given.
func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Flags().GetBool("quiet")
	return q
}

// argsRange is cobra.RangeArgs with errors that match ErrUsage.
func argsRange(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.RangeArgs(lo, hi)(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return nil
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
