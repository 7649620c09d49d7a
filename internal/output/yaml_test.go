package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

func TestYAML_DocumentPerRow(t *testing.T) {
	t.Parallel()
	iter := newIter(`{"name":"alice","age":30}`, `"plain"`)
	var buf bytes.Buffer
	if err := YAML(&buf, iter); err != nil {
		t.Fatal(err)
	}
	want := "name: alice\nage: 30\n---\nplain\n"
	if got := buf.String(); got != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", got, want)
	}
}

func TestYAML_Empty(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := YAML(&buf, newIter()); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestYAML_IteratorError(t *testing.T) {
	t.Parallel()
	errStream := errors.New("stream error")
	iter := &mockIter{items: []value.Value{mustValue(`1`)}, err: errStream}
	var buf bytes.Buffer
	if err := YAML(&buf, iter); !errors.Is(err, errStream) {
		t.Errorf("expected stream error, got %v", err)
	}
}

func TestWrite_Dispatch(t *testing.T) {
	t.Parallel()
	cases := []struct {
		format string
		want   string
	}{
		{"jsonl", "{\"a\":1}\n\"s\"\n"},
		{"raw", "{\"a\":1}\ns\n"},
		{"json", "[\n  {\n    \"a\": 1\n  },\n  \"s\"\n]\n"},
		{"", "[\n  {\n    \"a\": 1\n  },\n  \"s\"\n]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.format, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := Write(&buf, tc.format, newIter(`{"a":1}`, `"s"`)); err != nil {
				t.Fatal(err)
			}
			if got := buf.String(); got != tc.want {
				t.Errorf("format %q: got %q, want %q", tc.format, got, tc.want)
			}
		})
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := Write(&buf, "xml", newIter()); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWrite_EmptyResult(t *testing.T) {
	t.Parallel()
	want := map[string]string{"json": "[]\n", "jsonl": "", "raw": "", "table": "", "yaml": ""}
	for _, format := range Formats {
		var buf bytes.Buffer
		if err := Write(&buf, format, newIter()); err != nil {
			t.Errorf("format %q: %v", format, err)
			continue
		}
		if got := buf.String(); got != want[format] {
			t.Errorf("format %q: got %q, want %q", format, got, want[format])
		}
	}
}
