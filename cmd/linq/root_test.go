package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/sinclairzx81/linqbox"
)

func TestRootFormatDefault(t *testing.T) {
	t.Parallel()
	cmd := newRootCmd()
	format, err := cmd.PersistentFlags().GetString("format")
	if err != nil {
		t.Fatal(err)
	}
	if format != "" {
		t.Errorf("got %q, want empty (auto-detect)", format)
	}
}

func TestRootFormatShorthand(t *testing.T) {
	t.Parallel()
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"-f", "table"}); err != nil {
		t.Fatal(err)
	}
	got, _ := cmd.PersistentFlags().GetString("format")
	if got != "table" {
		t.Errorf("got %q, want %q", got, "table")
	}
}

func TestRootSourceRepeatable(t *testing.T) {
	t.Parallel()
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"-s", "a=a.json", "--source", "b=sqlite://b.db?table=t"}); err != nil {
		t.Fatal(err)
	}
	got, _ := cmd.PersistentFlags().GetStringArray("source")
	if len(got) != 2 || got[0] != "a=a.json" || got[1] != "b=sqlite://b.db?table=t" {
		t.Errorf("got %v", got)
	}
}

func TestRootFlagsDefined(t *testing.T) {
	t.Parallel()
	cmd := newRootCmd()
	for _, name := range []string{"source", "config", "format", "quiet", "verbose"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("--%s flag not defined", name)
		}
	}
}

func TestRootHasDefaultRunE(t *testing.T) {
	t.Parallel()
	root := newRootCmd()
	if root.RunE == nil {
		t.Error("root command: RunE not set (default query mode disabled)")
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	t.Parallel()
	root := newRootCmd()
	want := map[string]bool{"query": false, "explain": false, "sources": false, "repl": false}
	for _, sub := range root.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("%s subcommand not registered on root command", name)
		}
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	_, compileErr := linq.Query(`from x in`)
	if compileErr == nil {
		t.Fatal("expected compile error")
	}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"compile", compileErr, exitQuery},
		{"wrapped compile", fmt.Errorf("query: %w", compileErr), exitQuery},
		{"query error", &queryError{err: errors.New("bad")}, exitQuery},
		{"type error", &linq.TypeError{Msg: "Cannot read properties of null"}, exitQuery},
		{"source error", errors.New("source users: open users.json: no such file"), exitRuntime},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCode(tc.err); got != tc.want {
				t.Errorf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "linq.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func unchanged(string) bool { return false }

func TestResolveFormatPrecedence(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "format: table\n")
	tests := []struct {
		name    string
		flag    string
		changed bool
		env     map[string]string
		want    string
	}{
		{"config file", "", false, nil, "table"},
		{"env over file", "", false, map[string]string{"LINQ_FORMAT": "yaml"}, "yaml"},
		{"flag over env", "raw", true, map[string]string{"LINQ_FORMAT": "yaml"}, "raw"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := &rootConfig{configPath: path, format: tc.flag, getenv: envOf(tc.env)}
			changed := func(name string) bool { return tc.changed && name == "format" }
			if err := cfg.resolve(changed, io.Discard); err != nil {
				t.Fatal(err)
			}
			if cfg.format != tc.want {
				t.Errorf("format: got %q, want %q", cfg.format, tc.want)
			}
		})
	}
}

func TestResolveRejectsUnknownFormat(t *testing.T) {
	t.Parallel()
	cfg := &rootConfig{configPath: writeConfig(t, "{}\n"), format: "xml", getenv: envOf(nil)}
	if err := cfg.resolve(func(string) bool { return true }, io.Discard); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestResolveConfigFromEnv(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "sources:\n  users: users.json\n")
	cfg := &rootConfig{getenv: envOf(map[string]string{"LINQ_CONFIG": path})}
	if err := cfg.resolve(unchanged, io.Discard); err != nil {
		t.Fatal(err)
	}
	if cfg.file.Sources["users"] != "users.json" {
		t.Errorf("sources: got %v", cfg.file.Sources)
	}
	if cfg.file.BaseDir != filepath.Dir(path) {
		t.Errorf("base dir: got %q, want %q", cfg.file.BaseDir, filepath.Dir(path))
	}
}

func TestResolveMissingConfig(t *testing.T) {
	t.Parallel()
	cfg := &rootConfig{configPath: filepath.Join(t.TempDir(), "nope.yaml"), getenv: envOf(nil)}
	if err := cfg.resolve(unchanged, io.Discard); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestNewLoggerLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		level   string
		verbose bool
		quiet   bool
		want    logrus.Level
	}{
		{"configured", "info", false, false, logrus.InfoLevel},
		{"invalid falls back to warn", "loud", false, false, logrus.WarnLevel},
		{"verbose", "error", true, false, logrus.DebugLevel},
		{"quiet", "debug", false, true, logrus.ErrorLevel},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			l := newLogger(io.Discard, tc.level, tc.verbose, tc.quiet)
			if l.GetLevel() != tc.want {
				t.Errorf("got %v, want %v", l.GetLevel(), tc.want)
			}
		})
	}
}

func TestLoggerWithoutResolveDiscards(t *testing.T) {
	t.Parallel()
	cfg := &rootConfig{}
	l := cfg.logger()
	if l.Out != io.Discard {
		t.Error("expected discard output before resolve")
	}
	if cfg.logger() != l {
		t.Error("logger should be reused")
	}
}
