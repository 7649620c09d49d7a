package scanner

import (
	"errors"
	"testing"
)

func paramTokens(t *testing.T, inputs []Input) []Token {
	t.Helper()
	s, err := Tokenize(inputs)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	var out []Token
	for _, tok := range s.Remaining() {
		if tok.Kind == Parameter {
			out = append(out, tok)
		}
	}
	return out
}

func TestPositional(t *testing.T) {
	t.Parallel()
	inputs, err := Positional(`from x in $1 where x.a == $2 || x.b == $1 select x`, []any{"xs", 3})
	if err != nil {
		t.Fatal(err)
	}
	params := paramTokens(t, inputs)
	if len(params) != 3 {
		t.Fatalf("expected 3 parameter tokens, got %d", len(params))
	}
	wantIdx := []int{0, 1, 0}
	for i, p := range params {
		if p.Index != wantIdx[i] {
			t.Errorf("param %d: index %d, want %d", i, p.Index, wantIdx[i])
		}
	}
	if params[0].Offset != 10 {
		t.Errorf("expected offset 10, got %d", params[0].Offset)
	}
	if params[1].Value != 3 {
		t.Errorf("expected value 3, got %v", params[1].Value)
	}
}

func TestPositional_SkipsStringsAndWords(t *testing.T) {
	t.Parallel()
	inputs, err := Positional(`from x in $1 select ["$2", '$3 \' $4', a$5, $6x]`, []any{1})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(paramTokens(t, inputs)); got != 1 {
		t.Errorf("expected 1 parameter, got %d", got)
	}
}

func TestPositional_Unknown(t *testing.T) {
	t.Parallel()
	for _, text := range []string{`from x in $2 select x`, `from x in $0 select x`} {
		_, err := Positional(text, []any{1})
		var pe *UnknownPlaceholderError
		if !errors.As(err, &pe) {
			t.Fatalf("%q: expected UnknownPlaceholderError, got %v", text, err)
		}
		if pe.Offset != 10 {
			t.Errorf("%q: expected offset 10, got %d", text, pe.Offset)
		}
	}
}

func TestNamed(t *testing.T) {
	t.Parallel()
	inputs, params := Named(`from u in $users join o in $orders on u.id equals o.user select [$users, $other, "$orders"]`,
		map[string]any{"users": "U", "orders": "O"})
	if len(params) != 2 || params[0] != "U" || params[1] != "O" {
		t.Fatalf("unexpected params %v", params)
	}
	toks := paramTokens(t, inputs)
	wantIdx := []int{0, 1, 0}
	if len(toks) != len(wantIdx) {
		t.Fatalf("expected %d parameter tokens, got %d", len(wantIdx), len(toks))
	}
	for i, p := range toks {
		if p.Index != wantIdx[i] {
			t.Errorf("param %d: index %d, want %d", i, p.Index, wantIdx[i])
		}
	}

	s, err := Tokenize(inputs)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, tok := range s.Remaining() {
		if tok.Is(Word, "$other") {
			found = true
		}
	}
	if !found {
		t.Error("expected unknown placeholder to stay an identifier")
	}
}
