package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sinclairzx81/linqbox/internal/query"
)

func TestReplCmdRejectsArgs(t *testing.T) {
	t.Parallel()
	root := newRootCmd()
	root.SetArgs([]string{"repl", "extra-arg"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	if err := root.Execute(); err == nil {
		t.Error("expected error when passing args to repl command, got nil")
	}
}

// TestRootNoArgsTTYStartsREPL verifies that the root command starts the REPL
// when no args are given and stdin is a TTY.
func TestRootNoArgsTTYStartsREPL(t *testing.T) {
	oldTTY := stdinIsTTY
	stdinIsTTY = func() bool { return true }
	defer func() { stdinIsTTY = oldTTY }()

	started := false
	oldStart := replStart
	replStart = func(_ context.Context, _ *rootConfig, _, _ io.Writer) error {
		started = true
		return nil
	}
	defer func() { replStart = oldStart }()

	if _, _, err := execRoot(t, ""); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !started {
		t.Error("REPL not started when stdin is TTY and no args given")
	}
}

func TestReplCmdStartsREPL(t *testing.T) {
	var got *rootConfig
	oldStart := replStart
	replStart = func(_ context.Context, cfg *rootConfig, _, _ io.Writer) error {
		got = cfg
		return nil
	}
	defer func() { replStart = oldStart }()

	if _, _, err := execRoot(t, "", "-s", "users=users.json", "repl"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got == nil {
		t.Fatal("REPL not started via 'repl' subcommand")
	}
	if len(got.sources) != 1 || got.sources[0] != "users=users.json" {
		t.Errorf("repl config sources: got %v", got.sources)
	}
}

func TestReplInheritsGlobalFlags(t *testing.T) {
	t.Parallel()
	sub := findSub(newRootCmd(), "repl")
	if sub == nil {
		t.Fatal("repl subcommand not found")
	}
	for _, flag := range []string{"source", "config", "format", "verbose", "quiet"} {
		if sub.InheritedFlags().Lookup(flag) == nil {
			t.Errorf("repl cmd: --%s flag not inherited from root", flag)
		}
	}
}

func TestReplSessionRun(t *testing.T) {
	t.Parallel()
	exec := query.New()
	if err := exec.Bind("nums", []any{3, 1, 2}); err != nil {
		t.Fatal(err)
	}
	run := newReplSession(exec, &rootConfig{format: "jsonl"}).run

	var buf bytes.Buffer
	if err := run(context.Background(), "from n in $nums orderby n select n", &buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "1\n2\n3\n" {
		t.Errorf("got %q", buf.String())
	}
	if err := run(context.Background(), "!!!invalid!!!", io.Discard); err == nil {
		t.Error("expected parse error for invalid expression, got nil")
	}
}

func TestReplSessionLoad(t *testing.T) {
	t.Parallel()
	exec := query.New()
	load := newReplSession(exec, &rootConfig{}).load
	users := writeFile(t, "users.json", usersJSON)

	if err := load(context.Background(), "users="+users); err != nil {
		t.Fatal(err)
	}
	infos := exec.Sources()
	if len(infos) != 1 || !infos[0].Loaded || infos[0].Rows != 3 {
		t.Errorf("got %+v", infos)
	}
	if err := load(context.Background(), "no-equals-sign"); err == nil {
		t.Error("expected error for malformed definition")
	}
	if err := load(context.Background(), "bad=/missing/file.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReplSessionListSources(t *testing.T) {
	t.Parallel()
	exec := query.New()
	if err := exec.Bind("nums", []any{1, 2}); err != nil {
		t.Fatal(err)
	}
	session := newReplSession(exec, &rootConfig{})
	users := writeFile(t, "users.json", usersJSON)
	if err := session.load(context.Background(), "users="+users); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	session.listSources(&buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %q", buf.String())
	}
	if lines[0] != "$nums\t(bound)\t(2 rows)" {
		t.Errorf("line 0: got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "$users\t") || !strings.HasSuffix(lines[1], "(3 rows)") {
		t.Errorf("line 1: got %q", lines[1])
	}
}

func TestReplSessionSetFormat(t *testing.T) {
	t.Parallel()
	exec := query.New()
	if err := exec.Bind("nums", []any{1, 2}); err != nil {
		t.Fatal(err)
	}
	root := &rootConfig{format: "jsonl"}
	session := newReplSession(exec, root)

	if err := session.setFormat("xml"); err == nil || !strings.Contains(err.Error(), `unknown output format "xml"`) {
		t.Errorf("setFormat(xml) = %v", err)
	}
	if err := session.setFormat("raw"); err != nil {
		t.Fatal(err)
	}
	if root.format != "jsonl" {
		t.Errorf("session changed the shared config: %q", root.format)
	}
	var buf bytes.Buffer
	if err := session.run(context.Background(), `from n in $nums select "n" + n`, &buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "n1\nn2\n" {
		t.Errorf("got %q", buf.String())
	}
}
