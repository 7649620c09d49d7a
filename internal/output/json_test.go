package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"reflect"
	"testing"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

type mockIter struct {
	items []value.Value
	pos   int
	err   error // returned after all items
}

func (m *mockIter) Next() (value.Value, error) {
	if m.pos >= len(m.items) {
		if m.err != nil {
			return nil, m.err
		}
		return nil, io.EOF
	}
	item := m.items[m.pos]
	m.pos++
	return item, nil
}

func (m *mockIter) Close() error { return nil }

func mustValue(s string) value.Value {
	v, err := value.Unmarshal([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

func newIter(items ...string) *mockIter {
	rows := make([]value.Value, len(items))
	for i, s := range items {
		rows[i] = mustValue(s)
	}
	return &mockIter{items: rows}
}

func TestJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		iter *mockIter
		want string
	}{
		{"empty", newIter(), "[]\n"},
		{"single row unwrapped", newIter(`{"name":"alice","age":30}`), "{\n  \"name\": \"alice\",\n  \"age\": 30\n}\n"},
		{"scalar row", rowsOf("plain"), "\"plain\"\n"},
		{"rows as array", newIter(`{"a":1}`, `2`, `"c"`), "[\n  {\n    \"a\": 1\n  },\n  2,\n  \"c\"\n]\n"},
		{"empty object", rowsOf(value.NewObject()), "{}\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := JSON(&buf, tc.iter); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tc.want {
				t.Errorf("got:\n%s\nwant:\n%s", buf.String(), tc.want)
			}
		})
	}
}

func TestJSON_Valid(t *testing.T) {
	t.Parallel()
	iter := rowsOf(value.ObjectOf("n", math.NaN(), "s", "q\"uote"), []value.Value{value.Undefined, 1.0})
	var buf bytes.Buffer
	if err := JSON(&buf, iter); err != nil {
		t.Fatal(err)
	}
	var v []any
	if err := json.Unmarshal(buf.Bytes(), &v); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	want := []any{map[string]any{"n": nil, "s": "q\"uote"}, []any{nil, 1.0}}
	if !reflect.DeepEqual(v, want) {
		t.Errorf("got %#v, want %#v", v, want)
	}
}

func TestJSON_IteratorError(t *testing.T) {
	t.Parallel()
	errStream := errors.New("stream error")
	iter := &mockIter{items: []value.Value{mustValue(`{"a":1}`)}, err: errStream}
	var buf bytes.Buffer
	if err := JSON(&buf, iter); !errors.Is(err, errStream) {
		t.Errorf("expected stream error, got %v", err)
	}
}

func TestJSON_KeepsKeyOrder(t *testing.T) {
	t.Parallel()
	iter := newIter(`{"z":1,"a":2,"m":{"y":true,"b":null}}`)
	var buf bytes.Buffer
	if err := JSON(&buf, iter); err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"z\": 1,\n  \"a\": 2,\n  \"m\": {\n    \"y\": true,\n    \"b\": null\n  }\n}\n"
	if got := buf.String(); got != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}
