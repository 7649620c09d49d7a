package repl

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
)

// ReaderConfig configures NewReadlineReader.
type ReaderConfig struct {
	Prompt      string
	HistoryFile string // empty disables persistent history
	Out, ErrOut io.Writer
	OnInterrupt func() // called without blocking when Ctrl+C is pressed
	Completer   TabCompleter
}

// DefaultHistoryFile returns ~/.linq_history, or "" when there is no home
// directory.
func DefaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".linq_history")
}

// readlineReader wraps *readline.Instance to implement Reader.
type readlineReader struct {
	rl *readline.Instance
}

// NewReadlineReader creates a Reader backed by github.com/chzyer/readline.
func NewReadlineReader(cfg ReaderConfig) (Reader, error) {
	rc := &readline.Config{
		Prompt:                 cfg.Prompt,
		HistoryFile:            cfg.HistoryFile,
		DisableAutoSaveHistory: true,
		HistorySearchFold:      true,
		InterruptPrompt:        "^C",
		EOFPrompt:              ".exit",
		Stdout:                 cfg.Out,
		Stderr:                 cfg.ErrOut,
	}
	if cfg.Completer != nil {
		rc.AutoComplete = cfg.Completer
	}
	if hook := cfg.OnInterrupt; hook != nil {
		rc.FuncFilterInputRune = func(r rune) (rune, bool) {
			if r == readline.CharInterrupt {
				hook()
			}
			return r, true
		}
	}
	rl, err := readline.NewEx(rc)
	if err != nil {
		return nil, err
	}
	return &readlineReader{rl: rl}, nil
}

func (r *readlineReader) Readline() (string, error) {
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupt
	}
	return line, err
}

func (r *readlineReader) SetPrompt(prompt string) {
	r.rl.SetPrompt(prompt)
}

func (r *readlineReader) AddHistory(line string) error {
	return r.rl.SaveHistory(line)
}

func (r *readlineReader) Close() error {
	return r.rl.Close()
}
