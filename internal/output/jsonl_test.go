package output

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

func rowsOf(vs ...value.Value) *mockIter { return &mockIter{items: vs} }

func TestJSONL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		iter *mockIter
		want string
	}{
		{"empty", rowsOf(), ""},
		{"object keeps key order", newIter(`{"name":"alice","age":30}`), "{\"name\":\"alice\",\"age\":30}\n"},
		{"one row per line", newIter(`{"a":1}`, `[1,2]`, `"s"`), "{\"a\":1}\n[1,2]\n\"s\"\n"},
		{"non finite numbers", rowsOf(math.NaN(), math.Inf(1), 2.5), "null\nnull\n2.5\n"},
		{"undefined members dropped", rowsOf(value.ObjectOf("a", 1.0, "b", value.Undefined)), "{\"a\":1}\n"},
		{"undefined row", rowsOf(value.Undefined), "null\n"},
		{
			"grouping",
			rowsOf(&value.Grouping{Key: "oslo", Values: []value.Value{1.0, 2.0}}),
			"{\"key\":\"oslo\",\"values\":[1,2]}\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := JSONL(&buf, tc.iter); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tc.want {
				t.Errorf("got %q, want %q", buf.String(), tc.want)
			}
		})
	}
}

func TestJSONL_IteratorError(t *testing.T) {
	t.Parallel()
	errStream := errors.New("stream error")
	iter := &mockIter{items: []value.Value{mustValue(`{"a":1}`)}, err: errStream}
	var buf bytes.Buffer
	if err := JSONL(&buf, iter); !errors.Is(err, errStream) {
		t.Errorf("expected stream error, got %v", err)
	}
	// rows before the error are already written
	if buf.String() != "{\"a\":1}\n" {
		t.Errorf("got %q", buf.String())
	}
}
