package scanner

// Stream is a read position over a shared token slice. It is a value:
// advancing returns a new Stream and leaves the receiver untouched, so
// copying a Stream forks it.
type Stream struct {
	tokens []Token
	pos    int
	// reach is shared by every fork and holds the furthest position any
	// of them tried to read.
	reach *int
}

// NewStream returns a stream positioned at the first token.
func NewStream(tokens []Token) Stream {
	return Stream{tokens: tokens, reach: new(int)}
}

// Len returns the number of tokens not yet consumed.
func (s Stream) Len() int { return len(s.tokens) - s.pos }

// Pos returns the index of the next token.
func (s Stream) Pos() int { return s.pos }

// Peek returns the next token without consuming it.
func (s Stream) Peek() (Token, bool) {
	if s.pos >= len(s.tokens) {
		return Token{}, false
	}
	return s.tokens[s.pos], true
}

// Next returns the next token and the stream past it.
func (s Stream) Next() (Token, Stream, bool) {
	if s.reach != nil && s.pos > *s.reach {
		*s.reach = s.pos
	}
	tok, ok := s.Peek()
	if !ok {
		return Token{}, s, false
	}
	return tok, Stream{tokens: s.tokens, pos: s.pos + 1, reach: s.reach}, true
}

// Furthest returns the stream positioned at the furthest token any fork
// of s has tried to read, or s itself when no fork got further.
func (s Stream) Furthest() Stream {
	if s.reach == nil || *s.reach <= s.pos {
		return s
	}
	return Stream{tokens: s.tokens, pos: *s.reach, reach: s.reach}
}

// Remaining returns the unconsumed tokens.
func (s Stream) Remaining() []Token { return s.tokens[s.pos:] }

// Offset returns the byte offset of the next token, or the end of the
// input when the stream is exhausted.
func (s Stream) Offset() int {
	if tok, ok := s.Peek(); ok {
		return tok.Offset
	}
	if len(s.tokens) == 0 {
		return 0
	}
	return s.tokens[len(s.tokens)-1].end()
}
