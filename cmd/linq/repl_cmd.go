package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sinclairzx81/linqbox/internal/output"
	"github.com/sinclairzx81/linqbox/internal/query"
	"github.com/sinclairzx81/linqbox/internal/repl"
	"github.com/sinclairzx81/linqbox/internal/source"
)

// replStart launches the interactive loop. Tests replace it.
var replStart = runREPL

func newReplCmd(cfg *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive REPL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return replStart(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// replSession is the state behind one REPL: the executor and a private
// copy of the settings that dot commands may change.
type replSession struct {
	exec *query.Executor
	cfg  rootConfig
}

func newReplSession(exec *query.Executor, cfg *rootConfig) *replSession {
	return &replSession{exec: exec, cfg: *cfg}
}

func (s *replSession) run(ctx context.Context, expr string, w io.Writer) error {
	return execQuery(ctx, &s.cfg, s.exec, expr, w)
}

// load registers a name=spec definition and loads it at once so that a
// bad path is reported at the prompt.
func (s *replSession) load(ctx context.Context, def string) error {
	src, err := source.Parse(def)
	if err != nil {
		return err
	}
	if err := s.exec.Register(src); err != nil {
		return err
	}
	_, err = s.exec.Load(ctx, src.Name)
	return err
}

func (s *replSession) listSources(w io.Writer) {
	for _, info := range s.exec.Sources() {
		state := "not loaded"
		if info.Loaded {
			state = fmt.Sprintf("%d rows", info.Rows)
		}
		_, _ = fmt.Fprintf(w, "$%s\t%s\t(%s)\n", info.Name, info.Spec, state)
	}
}

func (s *replSession) setFormat(format string) error {
	if !slices.Contains(output.Formats, format) {
		return fmt.Errorf("unknown output format %q", format)
	}
	s.cfg.format = format
	return nil
}

// runREPL runs the loop on a readline terminal. The loop gets its own
// context: SIGINT cancels only the running query and SIGTERM closes the
// terminal, which ends the loop.
func runREPL(_ context.Context, cfg *rootConfig, out, errOut io.Writer) error {
	exec, err := newExecutor(cfg)
	if err != nil {
		return err
	}
	session := newReplSession(exec, cfg)

	interrupts := make(chan struct{}, 1)
	interrupt := func() {
		select {
		case interrupts <- struct{}{}:
		default:
		}
	}
	reader, err := repl.NewReadlineReader(repl.ReaderConfig{
		Prompt:      "linq> ",
		HistoryFile: repl.DefaultHistoryFile(),
		Out:         out,
		ErrOut:      errOut,
		OnInterrupt: interrupt,
		Completer:   &repl.Completer{FetchSources: exec.Names},
	})
	if err != nil {
		return err
	}
	var closeOnce sync.Once
	closeReader := func() { closeOnce.Do(func() { _ = reader.Close() }) }
	defer closeReader()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go forwardSignals(ctx, interrupt, closeReader)

	return repl.New(&repl.Config{
		Reader:      reader,
		Exec:        session.run,
		Out:         out,
		ErrOut:      errOut,
		InterruptCh: interrupts,
		OnLoad:      session.load,
		OnSources:   session.listSources,
		OnFormat:    session.setFormat,
	}).Run(ctx)
}

// forwardSignals calls onInt for every SIGINT and onTerm once for SIGTERM,
// until ctx is done.
func forwardSignals(ctx context.Context, onInt, onTerm func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	for {
		select {
		case sig := <-sigs:
			if sig == syscall.SIGTERM {
				onTerm()
				return
			}
			onInt()
		case <-ctx.Done():
			return
		}
	}
}
