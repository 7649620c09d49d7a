package scanner

import "unicode/utf8"

// InputKind distinguishes literal characters from captured host values.
type InputKind int

const (
	InputChar InputKind = iota
	InputParam
)

// Input is a single unit fed to the scanner: either one character of query
// text or one parameter value captured between text fragments.
type Input struct {
	Kind   InputKind
	Char   rune
	Offset int
	Length int

	// Index and Value are set for InputParam.
	Index int
	Value any
}

// Chars converts text into character inputs starting at the given byte offset.
func Chars(text string, offset int) []Input {
	out := make([]Input, 0, len(text))
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		out = append(out, Input{Kind: InputChar, Char: r, Offset: offset + i, Length: size})
		i += size
	}
	return out
}

// Template interleaves text parts with parameter values the way a tagged
// template literal does: parts[0] values[0] parts[1] values[1] ... parts[n].
// Values beyond len(parts)-1 are ignored.
func Template(parts []string, values []any) []Input {
	var out []Input
	offset := 0
	for i, part := range parts {
		out = append(out, Chars(part, offset)...)
		offset += len(part)
		if i < len(values) && i < len(parts)-1 {
			out = append(out, Input{Kind: InputParam, Offset: offset, Index: i, Value: values[i]})
		}
	}
	return out
}
