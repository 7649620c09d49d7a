// chzyer/readline races between Terminal.ioloop and Terminal.Close, so
// these tests stay out of -race runs.
//
//go:build !race

package repl

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// openHistory opens a reader on file, skipping the test when readline
// cannot start here.
func openHistory(t *testing.T, file string) Reader {
	t.Helper()
	r, err := NewReadlineReader(ReaderConfig{
		Prompt:      defaultPrompt,
		HistoryFile: file,
		Out:         io.Discard,
		ErrOut:      io.Discard,
		Completer:   &Completer{},
	})
	if err != nil {
		t.Skipf("readline unavailable: %v", err)
	}
	return r
}

func TestReadlineHistory(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		sessions [][]string
	}{
		{
			name:     "one session",
			sessions: [][]string{{"from n in [1] select n", "from x in $xs select x", "from s in $s select s"}},
		},
		{
			name: "appends across sessions",
			sessions: [][]string{
				{"from n in [1] select n"},
				{"from s in $s select s", "from u in $users where u.age > 30 select u"},
			},
		},
		{
			name:     "empty session keeps file",
			sessions: [][]string{{"from n in [1] select n"}, nil},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			file := filepath.Join(t.TempDir(), "history")
			var want []string
			for _, entries := range tt.sessions {
				r := openHistory(t, file)
				for _, e := range entries {
					if err := r.AddHistory(e); err != nil {
						t.Fatalf("AddHistory(%q): %v", e, err)
					}
				}
				if err := r.Close(); err != nil {
					t.Fatal(err)
				}
				want = append(want, entries...)
			}

			data, err := os.ReadFile(file)
			if err != nil {
				t.Fatal(err)
			}
			content := string(data)
			last := -1
			for _, e := range want {
				i := strings.Index(content, e)
				if i < 0 {
					t.Errorf("history missing %q:\n%s", e, content)
					continue
				}
				if i < last {
					t.Errorf("history entry %q out of order:\n%s", e, content)
				}
				last = i
			}
		})
	}
}

func TestDefaultHistoryFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if got, want := DefaultHistoryFile(), filepath.Join(home, ".linq_history"); got != want {
		t.Errorf("DefaultHistoryFile() = %q, want %q", got, want)
	}
}
