// Package scanner turns query text and captured parameters into tokens.
package scanner

import (
	"strings"
	"unicode"
)

// Scan tokenizes inputs and drops tokens whose kind is listed in omit.
// Trivia is kept unless omitted, so that Scan(inputs) tiles the input.
func Scan(inputs []Input, omit ...Kind) ([]Token, error) {
	tokens := classify(inputs)
	tokens = coalesce(tokens, Letter, Word)
	tokens = coalesce(tokens, Digit, Number)
	for _, k := range []Kind{Whitespace, NewLine, Return, Tab} {
		tokens = coalesce(tokens, k, k)
	}
	tokens = joinWords(tokens)
	tokens, err := joinStrings(tokens)
	if err != nil {
		return nil, err
	}
	if err := checkInvalid(tokens); err != nil {
		return nil, err
	}
	tokens = joinDecimals(tokens)
	tokens = remapKeywords(tokens)
	return filter(tokens, omit), nil
}

// Tokenize scans inputs without trivia and returns a stream positioned at
// the first token.
func Tokenize(inputs []Input) (Stream, error) {
	tokens, err := Scan(inputs, Whitespace, NewLine, Return, Tab)
	if err != nil {
		return Stream{}, err
	}
	return NewStream(tokens), nil
}

func classify(inputs []Input) []Token {
	out := make([]Token, 0, len(inputs))
	for _, in := range inputs {
		if in.Kind == InputParam {
			out = append(out, Token{Kind: Parameter, Offset: in.Offset, Index: in.Index, Value: in.Value})
			continue
		}
		tok := Token{Text: string(in.Char), Offset: in.Offset, Length: in.Length}
		switch kind, ok := punctuation[in.Char]; {
		case ok:
			tok.Kind = kind
		case in.Char == '_' || in.Char == '$' || unicode.IsLetter(in.Char):
			tok.Kind = Letter
		case in.Char >= '0' && in.Char <= '9':
			tok.Kind = Digit
		case unicode.IsSpace(in.Char):
			tok.Kind = Whitespace
		default:
			tok.Kind = Invalid
		}
		out = append(out, tok)
	}
	return out
}

// coalesce merges each run of adjacent from tokens into one token of kind to.
func coalesce(tokens []Token, from, to Kind) []Token {
	out := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if tokens[i].Kind != from {
			out = append(out, tokens[i])
			i++
			continue
		}
		j := i + 1
		for j < len(tokens) && tokens[j].Kind == from {
			j++
		}
		out = append(out, merge(to, tokens[i:j]))
		i = j
	}
	return out
}

// joinWords folds integer numbers and further words that directly follow a
// word into it, so that user1 and a1b2 scan as single identifiers.
func joinWords(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if tokens[i].Kind != Word {
			out = append(out, tokens[i])
			i++
			continue
		}
		j := i + 1
		for j < len(tokens) && (tokens[j].Kind == Word || tokens[j].Kind == Number) {
			j++
		}
		out = append(out, merge(Word, tokens[i:j]))
		i = j
	}
	return out
}

// joinStrings merges everything from an opening quote through the next
// unescaped quote of the same kind into one String token.
func joinStrings(tokens []Token) ([]Token, error) {
	out := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); {
		open := tokens[i]
		if open.Kind != DoubleQuote && open.Kind != SingleQuote {
			out = append(out, open)
			i++
			continue
		}
		j := i + 1
		closed := false
		for j < len(tokens) {
			switch tokens[j].Kind {
			case BackSlash:
				j += 2
				continue
			case Parameter:
				// a parameter cannot live inside a string literal
				return nil, &UnterminatedStringError{Offset: open.Offset, Quote: rune(open.Text[0])}
			case open.Kind:
				closed = true
			}
			j++
			if closed {
				break
			}
		}
		if !closed {
			return nil, &UnterminatedStringError{Offset: open.Offset, Quote: rune(open.Text[0])}
		}
		out = append(out, merge(String, tokens[i:j]))
		i = j
	}
	return out, nil
}

func checkInvalid(tokens []Token) error {
	for _, t := range tokens {
		if t.Kind == Invalid {
			return &InvalidCharacterError{Offset: t.Offset, Char: []rune(t.Text)[0]}
		}
	}
	return nil
}

// joinDecimals merges .N, N.N and N. into single Number tokens.
func joinDecimals(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	kindAt := func(i int) Kind {
		if i < len(tokens) {
			return tokens[i].Kind
		}
		return Invalid
	}
	for i := 0; i < len(tokens); {
		switch {
		case tokens[i].Kind == Dot && kindAt(i+1) == Number:
			out = append(out, merge(Number, tokens[i:i+2]))
			i += 2
		case tokens[i].Kind == Number && kindAt(i+1) == Dot && kindAt(i+2) == Number:
			out = append(out, merge(Number, tokens[i:i+3]))
			i += 3
		case tokens[i].Kind == Number && kindAt(i+1) == Dot && !strings.Contains(tokens[i].Text, "."):
			out = append(out, merge(Number, tokens[i:i+2]))
			i += 2
		default:
			out = append(out, tokens[i])
			i++
		}
	}
	return out
}

func remapKeywords(tokens []Token) []Token {
	for i, t := range tokens {
		if t.Kind == Word && IsKeyword(t.Text) {
			tokens[i].Kind = Keyword
		}
	}
	return tokens
}

func filter(tokens []Token, omit []Kind) []Token {
	if len(omit) == 0 {
		return tokens
	}
	out := tokens[:0]
	for _, t := range tokens {
		skip := false
		for _, k := range omit {
			if t.Kind == k {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, t)
		}
	}
	return out
}

func merge(kind Kind, run []Token) Token {
	if len(run) == 1 {
		tok := run[0]
		tok.Kind = kind
		return tok
	}
	var b strings.Builder
	for _, t := range run {
		b.WriteString(t.Text)
	}
	last := run[len(run)-1]
	return Token{Kind: kind, Text: b.String(), Offset: run[0].Offset, Length: last.end() - run[0].Offset}
}
