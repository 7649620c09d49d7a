// Package repl runs queries interactively, one statement per prompt.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInterrupt is returned by Reader.Readline when the user presses Ctrl+C.
var ErrInterrupt = errors.New("interrupt")

var errQuit = errors.New("quit")

const (
	defaultPrompt = "linq> "
	contPrompt    = "... "
)

// Reader is the line editor behind the prompt.
type Reader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	AddHistory(line string) error
	Close() error
}

// ExecFunc runs a query and writes its results to w.
type ExecFunc func(ctx context.Context, expr string, w io.Writer) error

// Config holds REPL construction options. Only Reader and Exec are
// required.
type Config struct {
	Reader Reader
	Exec   ExecFunc
	Out    io.Writer
	ErrOut io.Writer
	// InterruptCh receives when the user interrupts a running query.
	InterruptCh <-chan struct{}
	Prompt      string
	// OnLoad handles .load with the name=spec definition.
	OnLoad    func(ctx context.Context, def string) error
	OnSources func(w io.Writer)
	OnFormat  func(format string) error
}

// Repl reads statements from a Reader and hands each one to Exec.
type Repl struct {
	cfg      Config
	commands []command
	pending  []string
}

type command struct {
	name  string
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

// New creates a Repl, filling in defaults for the optional Config fields.
func New(cfg *Config) *Repl {
	r := &Repl{cfg: *cfg}
	c := &r.cfg
	if c.Prompt == "" {
		c.Prompt = defaultPrompt
	}
	if c.Out == nil {
		c.Out = io.Discard
	}
	if c.ErrOut == nil {
		c.ErrOut = io.Discard
	}
	if c.OnLoad == nil {
		c.OnLoad = func(context.Context, string) error { return errors.New("loading sources is not supported") }
	}
	if c.OnSources == nil {
		c.OnSources = func(io.Writer) {}
	}
	if c.OnFormat == nil {
		c.OnFormat = func(string) error { return nil }
	}
	r.commands = r.dotCommands()
	return r
}

func (r *Repl) dotCommands() []command {
	quit := func(context.Context, []string) error { return errQuit }
	return []command{
		{name: ".exit", help: "exit the REPL", run: quit},
		{name: ".quit", help: "exit the REPL", run: quit},
		{name: ".load", usage: "<name>=<spec>", help: "register a source as $name",
			run: func(ctx context.Context, args []string) error {
				return r.cfg.OnLoad(ctx, strings.Join(args, " "))
			}},
		{name: ".sources", help: "list registered sources",
			run: func(context.Context, []string) error {
				r.cfg.OnSources(r.cfg.Out)
				return nil
			}},
		{name: ".format", usage: "<json|jsonl|raw|table|yaml>", help: "set the output format",
			run: func(_ context.Context, args []string) error {
				return r.cfg.OnFormat(args[0])
			}},
		{name: ".help", help: "show this help", run: r.help},
	}
}

func (r *Repl) help(context.Context, []string) error {
	_, _ = fmt.Fprintln(r.cfg.Out, "Available commands:")
	for _, c := range r.commands {
		_, _ = fmt.Fprintf(r.cfg.Out, "  %-36s %s\n", strings.TrimSpace(c.name+" "+c.usage), c.help)
	}
	return nil
}

// Run reads until EOF or a quit command and returns nil in both cases.
// Statements spanning several lines are joined with newlines until their
// brackets and quotes balance.
func (r *Repl) Run(ctx context.Context) error {
	for {
		if len(r.pending) == 0 {
			r.cfg.Reader.SetPrompt(r.cfg.Prompt)
		} else {
			r.cfg.Reader.SetPrompt(contPrompt)
		}
		line, err := r.cfg.Reader.Readline()
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, ErrInterrupt):
			r.pending = r.pending[:0]
			continue
		case err != nil:
			return err
		}

		if len(r.pending) == 0 {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, ".") {
				if errors.Is(r.dispatch(ctx, line), errQuit) {
					return nil
				}
				continue
			}
		}

		r.pending = append(r.pending, line)
		stmt := strings.Join(r.pending, "\n")
		if !balanced(stmt) {
			continue
		}
		r.pending = r.pending[:0]
		stmt = strings.TrimSpace(stmt)
		_ = r.cfg.Reader.AddHistory(stmt)
		r.eval(ctx, stmt)
	}
}

func (r *Repl) dispatch(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	for _, c := range r.commands {
		if c.name != fields[0] {
			continue
		}
		if c.usage != "" && len(fields) < 2 {
			_, _ = fmt.Fprintf(r.cfg.ErrOut, "usage: %s %s\n", c.name, c.usage)
			return nil
		}
		err := c.run(ctx, fields[1:])
		if err != nil && !errors.Is(err, errQuit) {
			_, _ = fmt.Fprintln(r.cfg.ErrOut, err)
		}
		return err
	}
	_, _ = fmt.Fprintf(r.cfg.ErrOut, "unknown command: %s\n", fields[0])
	return nil
}

// eval runs one statement. An interrupt cancels only this statement.
func (r *Repl) eval(ctx context.Context, stmt string) {
	// interrupts queued while waiting at the prompt belong to the line editor
	for len(r.cfg.InterruptCh) > 0 {
		<-r.cfg.InterruptCh
	}
	qctx, cancel := context.WithCancel(ctx)
	wait := r.cancelOnInterrupt(qctx, cancel)
	err := r.cfg.Exec(qctx, stmt, r.cfg.Out)
	cancel()
	wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintln(r.cfg.ErrOut, err)
	}
}

func (r *Repl) cancelOnInterrupt(ctx context.Context, cancel context.CancelFunc) (wait func()) {
	if r.cfg.InterruptCh == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-r.cfg.InterruptCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	return func() { <-done }
}

// balanced reports whether s leaves no string literal open and closes
// every bracket it opens outside of strings.
func balanced(s string) bool {
	depth := 0
	var quote rune
	escaped := false
	for _, c := range s {
		switch {
		case escaped:
			escaped = false
		case quote != 0 && c == '\\':
			escaped = true
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case strings.ContainsRune("([{", c):
			depth++
		case strings.ContainsRune(")]}", c):
			depth--
		}
	}
	return quote == 0 && depth <= 0
}
