package output

import (
	"os"
	"testing"
)

// TestDetectFormat replaces terminal and so does not run in parallel.
func TestDetectFormat(t *testing.T) {
	orig := terminal
	t.Cleanup(func() { terminal = orig })

	tests := []struct {
		name     string
		tty      bool
		explicit string
		want     string
	}{
		{"terminal", true, "", "json"},
		{"pipe", false, "", "jsonl"},
		{"explicit on terminal", true, "yaml", "yaml"},
		{"explicit on pipe", false, "table", "table"},
	}
	for _, tt := range tests {
		terminal = func(*os.File) bool { return tt.tty }
		if got := DetectFormat(nil, tt.explicit); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
	terminal = func(*os.File) bool { return true }
	for _, f := range Formats {
		if got := DetectFormat(os.Stdout, f); got != f {
			t.Errorf("explicit %q: got %q", f, got)
		}
	}
}

func TestTerminal(t *testing.T) {
	t.Parallel()
	if terminal(nil) {
		t.Error("nil file reported as terminal")
	}
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = r.Close(); _ = w.Close() })
	if terminal(r) || terminal(w) {
		t.Error("pipe reported as terminal")
	}
}

func TestNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	if !NoColor() {
		t.Error("NoColor() = false with NO_COLOR set to an empty value")
	}
	if err := os.Unsetenv("NO_COLOR"); err != nil {
		t.Fatal(err)
	}
	if NoColor() {
		t.Error("NoColor() = true with NO_COLOR unset")
	}
}
