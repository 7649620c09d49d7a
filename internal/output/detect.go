package output

import (
	"os"

	"golang.org/x/term"
)

// terminal reports whether f is an interactive terminal. Tests replace it.
var terminal = func(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// DetectFormat picks the output format: an explicit format always wins,
// otherwise a terminal gets indented json and anything else gets jsonl.
func DetectFormat(stdout *os.File, explicit string) string {
	switch {
	case explicit != "":
		return explicit
	case terminal(stdout):
		return "json"
	default:
		return "jsonl"
	}
}

// NoColor reports whether NO_COLOR is present in the environment, whatever
// its value.
func NoColor() bool {
	_, set := os.LookupEnv("NO_COLOR")
	return set
}
