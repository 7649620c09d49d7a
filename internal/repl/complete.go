package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

// TabCompleter is implemented by types that provide readline tab completion.
type TabCompleter interface {
	Do(line []rune, pos int) (newLine [][]rune, length int)
}

// Completer provides query tab completion for the REPL.
// FetchSources is optional; if nil, $source completion is disabled.
type Completer struct {
	FetchSources func() []string
}

// clauseWords are the keywords a query is written with, plus the literals
// and operators that read as words.
var clauseWords = []string{
	"ascending", "by", "const", "delete", "descending", "equals", "false",
	"from", "group", "in", "instanceof", "into", "join", "let", "null",
	"on", "orderby", "select", "true", "typeof", "void", "where",
}

// identifiers lists what may start a bare word: clause words and globals.
func identifiers() []string {
	out := slices.Concat(clauseWords, value.GlobalNames())
	slices.Sort(out)
	return slices.Compact(out)
}

// Do implements readline.AutoCompleter. It completes $ names from
// FetchSources, names after a dot from the method table and bare words
// from clause words and globals. Nothing completes inside a string.
func (c *Completer) Do(line []rune, pos int) (newLine [][]rune, length int) {
	s := string(line[:pos])
	if inString(s) {
		return nil, 0
	}

	before, word := lastWord(s)
	switch {
	case strings.HasSuffix(before, "$"):
		return suffixes(c.sourceNames(), word), utf8.RuneCountInString(word)
	case strings.HasSuffix(before, "."):
		return suffixes(value.MethodNames(), word), utf8.RuneCountInString(word)
	case word == "":
		return nil, 0
	}
	return suffixes(identifiers(), word), utf8.RuneCountInString(word)
}

// inString reports whether s ends inside an unterminated string literal.
func inString(s string) bool {
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0 && ch == '\\':
			i++
		case quote != 0 && ch == quote:
			quote = 0
		case quote == 0 && (ch == '"' || ch == '\''):
			quote = ch
		}
	}
	return quote != 0
}

// lastWord splits s before its trailing run of identifier characters.
func lastWord(s string) (before, word string) {
	i := len(s)
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:i])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		i -= size
	}
	return s[:i], s[i:]
}

// suffixes returns what readline should append to prefix for every
// candidate that extends it.
func suffixes(candidates []string, prefix string) [][]rune {
	var out [][]rune
	for _, c := range candidates {
		if rest, ok := strings.CutPrefix(c, prefix); ok {
			out = append(out, []rune(rest))
		}
	}
	return out
}

func (c *Completer) sourceNames() []string {
	if c.FetchSources == nil {
		return nil
	}
	return c.FetchSources()
}
