package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

func TestRaw(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		iter *mockIter
		want string
	}{
		{"strings unquoted", newIter(`"hello world"`, `"tab\there"`), "hello world\ntab\there\n"},
		{"empty string", rowsOf(""), "\n"},
		{"numbers", rowsOf(1.0, 0.5, -3.0), "1\n0.5\n-3\n"},
		{"booleans and null", rowsOf(true, nil), "true\nnull\n"},
		{"object as compact JSON", newIter(`{"key":"val","n":[1,2]}`), "{\"key\":\"val\",\"n\":[1,2]}\n"},
		{"string inside array stays quoted", rowsOf([]value.Value{"a"}), "[\"a\"]\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := Raw(&buf, tc.iter); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tc.want {
				t.Errorf("got %q, want %q", buf.String(), tc.want)
			}
		})
	}
}

func TestRaw_IteratorError(t *testing.T) {
	t.Parallel()
	errStream := errors.New("stream error")
	iter := &mockIter{items: []value.Value{"hello"}, err: errStream}
	var buf bytes.Buffer
	if err := Raw(&buf, iter); !errors.Is(err, errStream) {
		t.Errorf("expected stream error, got %v", err)
	}
}
