package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sinclairzx81/linqbox/internal/linq/scanner"
	"github.com/sinclairzx81/linqbox/internal/query"
)

func TestExplainCmd(t *testing.T) {
	t.Parallel()
	// the file is never read
	out, _, err := execRoot(t, "", "-s", "users=/does/not/exist.json", "explain",
		`from u in $users where u.age>1 select u.name`)
	if err != nil {
		t.Fatal(err)
	}
	want := "query:   from u in $1 where (u.age > 1) select u.name\nsources: users\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestExplainCmdTokens(t *testing.T) {
	t.Parallel()
	out, _, err := execRoot(t, "", "-s", "users=u.json", "explain", "--tokens", `from u in $users select u`)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"OFFSET", "Keyword", "#0", "select"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExplainCmdParseError(t *testing.T) {
	t.Parallel()
	_, _, err := execRoot(t, "", "explain", `from u in [1] select`)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if exitCode(err) != exitQuery {
		t.Errorf("exit code: got %d, want %d", exitCode(err), exitQuery)
	}
}

func TestTokenText(t *testing.T) {
	t.Parallel()
	if got := tokenText(scanner.Token{Kind: scanner.Parameter, Index: 2}); got != "#2" {
		t.Errorf("parameter: got %q", got)
	}
	if got := tokenText(scanner.Token{Kind: scanner.Word, Text: "u"}); got != "u" {
		t.Errorf("word: got %q", got)
	}
}

func TestWriteExplanationWithoutTokens(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ex := &query.Explanation{Query: "from x in [] select x", Tokens: []scanner.Token{{Kind: scanner.Word, Text: "x"}}}
	if err := writeExplanation(&buf, ex, false); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "OFFSET") {
		t.Errorf("tokens listed without --tokens:\n%s", buf.String())
	}
}
