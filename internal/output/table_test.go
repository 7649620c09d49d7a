package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

func TestTable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		iter *mockIter
		want string
	}{
		{
			"aligned",
			newIter(`{"name":"alice","age":30,"city":"NYC"}`, `{"name":"bob","age":25,"city":"LA"}`),
			"name  | age | city\n" +
				"------+-----+-----\n" +
				"alice | 30  | NYC \n" +
				"bob   | 25  | LA  \n",
		},
		{
			"missing fields blank",
			newIter(`{"name":"alice","age":30}`, `{"name":"bob"}`, `{"age":99}`),
			"name  | age\n" +
				"------+----\n" +
				"alice | 30 \n" +
				"bob   |    \n" +
				"      | 99 \n",
		},
		{
			"columns in order of first appearance",
			newIter(`{"b":1,"a":2}`, `{"c":3,"a":4}`),
			"b | a | c\n" +
				"--+---+--\n" +
				"1 | 2 |  \n" +
				"  | 4 | 3\n",
		},
		{
			"nested values as JSON",
			newIter(`{"name":"x","tags":["a","b"]}`),
			"name | tags     \n" +
				"-----+----------\n" +
				"x    | [\"a\",\"b\"]\n",
		},
		{
			"undefined is blank",
			rowsOf(value.ObjectOf("k", value.Undefined, "v", "set")),
			"k | v  \n" +
				"--+----\n" +
				"  | set\n",
		},
		{
			"grouping",
			rowsOf(&value.Grouping{Key: "oslo", Values: []value.Value{1.0}}),
			"key  | values\n" +
				"-----+-------\n" +
				"oslo | [1]   \n",
		},
		{
			"non-object rows fall back to raw",
			newIter(`"hello"`, `"world"`, `42`),
			"hello\nworld\n42\n",
		},
		{"empty", rowsOf(), ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := Table(&buf, tc.iter); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tc.want {
				t.Errorf("got:\n%s\nwant:\n%s", buf.String(), tc.want)
			}
		})
	}
}

func TestTable_TruncateLongValues(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("é", maxColWidth+10)
	var buf bytes.Buffer
	if err := Table(&buf, rowsOf(value.ObjectOf("col", long))); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), buf.String())
	}
	want := strings.Repeat("é", maxColWidth-1) + "~"
	if lines[2] != want {
		t.Errorf("got %q, want %q", lines[2], want)
	}
}

func TestTable_MaxRowsTruncation(t *testing.T) {
	t.Parallel()
	iter := newIter(`{"n":1}`, `{"n":2}`, `{"n":3}`, `{"n":4}`)
	var out, errOut bytes.Buffer
	if err := tableWriter(&out, &errOut, iter, 3); err != nil {
		t.Fatal(err)
	}
	if errOut.String() != "warning: result truncated at 3 rows\n" {
		t.Errorf("warning: got %q", errOut.String())
	}
	if out.String() != "n\n-\n1\n2\n3\n" {
		t.Errorf("got %q", out.String())
	}
	if iter.pos != len(iter.items) {
		t.Errorf("iterator not drained: pos %d of %d", iter.pos, len(iter.items))
	}
}

func TestTable_IteratorError(t *testing.T) {
	t.Parallel()
	errStream := errors.New("stream error")
	iter := &mockIter{items: []value.Value{mustValue(`{"a":1}`)}, err: errStream}
	var buf bytes.Buffer
	if err := Table(&buf, iter); !errors.Is(err, errStream) {
		t.Errorf("expected stream error, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written before all rows are read, got %q", buf.String())
	}
}

func TestFit(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"ab", 4, "ab  "},
		{"abcd", 4, "abcd"},
		{"abcdef", 4, "abc~"},
		{"日本語テキスト", 3, "日本~"},
	}
	for _, tc := range tests {
		if got := fit(tc.in, tc.width); got != tc.want {
			t.Errorf("fit(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
