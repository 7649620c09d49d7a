package scanner

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Positional converts text into inputs, replacing each $N placeholder
// outside string literals with parameter N-1 bound to args[N-1]. The same
// placeholder may appear more than once.
func Positional(text string, args []any) ([]Input, error) {
	var out []Input
	var err error
	walkPlaceholders(text, func(i int, r rune) int {
		if err != nil || r != '$' || !boundary(text, i) {
			return 0
		}
		j := i + 1
		for j < len(text) && text[j] >= '0' && text[j] <= '9' {
			j++
		}
		if j == i+1 || (j < len(text) && isWordByte(text[j])) {
			return 0
		}
		n, convErr := strconv.Atoi(text[i+1 : j])
		if convErr != nil || n < 1 || n > len(args) {
			err = &UnknownPlaceholderError{Offset: i, Name: text[i:j]}
			return 0
		}
		out = append(out, Input{Kind: InputParam, Offset: i, Index: n - 1, Value: args[n-1]})
		return j - i
	}, func(in Input) { out = append(out, in) })
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Named converts text into inputs, replacing each $name placeholder outside
// string literals whose name is a key of values. Parameter indices follow
// the order in which names first appear; the returned slice holds the
// matching values. Unknown names stay in the text as identifiers.
func Named(text string, values map[string]any) ([]Input, []any) {
	var out []Input
	var params []any
	index := map[string]int{}
	walkPlaceholders(text, func(i int, r rune) int {
		if r != '$' || !boundary(text, i) {
			return 0
		}
		j := i + 1
		for j < len(text) {
			c, size := utf8.DecodeRuneInString(text[j:])
			if !isWordRune(c) || c == '$' {
				break
			}
			j += size
		}
		name := text[i+1 : j]
		v, ok := values[name]
		if name == "" || !ok {
			return 0
		}
		n, seen := index[name]
		if !seen {
			n = len(params)
			index[name] = n
			params = append(params, v)
		}
		out = append(out, Input{Kind: InputParam, Offset: i, Index: n, Value: v})
		return j - i
	}, func(in Input) { out = append(out, in) })
	return out, params
}

// walkPlaceholders feeds every character of text to emit, except where
// match claims a placeholder outside a string literal by returning the
// number of bytes it consumed.
func walkPlaceholders(text string, match func(i int, r rune) int, emit func(Input)) {
	var quote rune
	escaped := false
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if quote == 0 {
			if n := match(i, r); n > 0 {
				i += n
				continue
			}
		}
		switch {
		case escaped:
			escaped = false
		case quote != 0 && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
		}
		emit(Input{Kind: InputChar, Char: r, Offset: i, Length: size})
		i += size
	}
}

// boundary reports whether the placeholder at i does not continue a word.
func boundary(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
