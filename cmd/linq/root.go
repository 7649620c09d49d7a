package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sinclairzx81/linqbox"
	"github.com/sinclairzx81/linqbox/internal/config"
	"github.com/sinclairzx81/linqbox/internal/output"
)

// exit codes
const (
	exitOK      = 0
	exitRuntime = 1
	exitQuery   = 2
	exitINT     = 130
)

// stdinIsTTY reports whether stdin is a terminal; replaced in tests.
var stdinIsTTY = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

type rootConfig struct {
	configPath string
	sources    []string
	format     string
	quiet      bool
	verbose    bool

	getenv func(string) string
	file   *config.Config
	log    *logrus.Logger
}

func newRootCmd() *cobra.Command {
	cfg := &rootConfig{}
	return buildRootCmd(cfg)
}

func buildRootCmd(cfg *rootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linq [query]",
		Short: "Run language integrated queries over JSON, YAML, SQLite and DynamoDB data",
		Long: `linq compiles a query such as

  from u in $users where u.age > 30 orderby u.name select u.name

and runs it over named sources given with --source or the config file.
Without a query argument the query is read from stdin, or the REPL starts
when stdin is a terminal.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.resolve(cmd.Flags().Changed, cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && stdinIsTTY() {
				return replStart(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			}
			expr, err := readQueryExpr(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			exec, err := newExecutor(cfg)
			if err != nil {
				return err
			}
			return runQueryExpr(cmd, cfg, exec, expr)
		},
	}
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.AddCommand(newQueryCmd(cfg))
	cmd.AddCommand(newExplainCmd(cfg))
	cmd.AddCommand(newSourcesCmd(cfg))
	cmd.AddCommand(newReplCmd(cfg))

	f := cmd.PersistentFlags()
	f.StringArrayVarP(&cfg.sources, "source", "s", nil, "named source as name=spec (repeatable), e.g. users=users.json or t=sqlite://app.db?table=t")
	f.StringVar(&cfg.configPath, "config", "", "config file (or LINQ_CONFIG env; default ./linq.yaml, ~/.config/linq/linq.yaml)")
	f.StringVarP(&cfg.format, "format", "f", "", "output format: json, jsonl, raw, table, yaml (default: json on TTY, jsonl when piped)")
	f.BoolVar(&cfg.quiet, "quiet", false, "only log errors to stderr")
	f.BoolVar(&cfg.verbose, "verbose", false, "log source loading and query timing to stderr")

	return cmd
}

// resolve loads the config file and fills in values for flags not
// explicitly set: environment first, then the file.
func (c *rootConfig) resolve(changed func(string) bool, errOut io.Writer) error {
	if c.getenv == nil {
		c.getenv = os.Getenv
	}
	file, err := config.Load(c.configPath, c.getenv)
	if err != nil {
		return err
	}
	c.file = file

	config.ApplyEnv(&c.format, changed("format"), c.getenv, "LINQ_FORMAT")
	if c.format == "" {
		c.format = file.Format
	}
	if c.format != "" && !slices.Contains(output.Formats, c.format) {
		return fmt.Errorf("unknown output format %q", c.format)
	}

	c.log = newLogger(errOut, file.Logging.Level, c.verbose, c.quiet)
	return nil
}

// newLogger builds the stderr logger. --verbose and --quiet override the
// configured level.
func newLogger(w io.Writer, level string, verbose, quiet bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: output.NoColor()})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.WarnLevel
	}
	switch {
	case verbose:
		lvl = logrus.DebugLevel
	case quiet:
		lvl = logrus.ErrorLevel
	}
	l.SetLevel(lvl)
	return l
}

// logger returns the configured logger, or one that discards everything
// when resolve has not run.
func (c *rootConfig) logger() *logrus.Logger {
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	}
	return c.log
}

// exitCode maps an error to the appropriate process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if isQueryError(err) {
		return exitQuery
	}
	return exitRuntime
}

func isQueryError(err error) bool {
	var q *queryError
	var te *linq.TypeError
	return errors.As(err, &q) || errors.As(err, &te) || linq.IsCompileError(err)
}
