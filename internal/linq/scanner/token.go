package scanner

import "fmt"

// Kind identifies the lexical class of a token.
type Kind int

const (
	Invalid Kind = iota

	// structural characters
	Plus
	Minus
	Asterisk
	Slash
	Percent
	Equal
	Tilde
	Exclamation
	Question
	Ampersand
	Caret
	GreaterThan
	LessThan
	BackSlash
	Pipe
	DoubleQuote
	SingleQuote
	Colon
	SemiColon
	Dot
	Comma
	LeftBrace
	RightBrace
	LeftParen
	RightParen
	LeftBracket
	RightBracket

	// trivia
	Whitespace
	NewLine
	Return
	Tab

	// transient classes, reduced before the stream is returned
	Letter
	Digit

	Word
	Number
	String
	Keyword
	Parameter
)

var kindNames = map[Kind]string{
	Invalid:      "Invalid",
	Plus:         "Plus",
	Minus:        "Minus",
	Asterisk:     "Asterisk",
	Slash:        "Slash",
	Percent:      "Percent",
	Equal:        "Equal",
	Tilde:        "Tilde",
	Exclamation:  "Exclamation",
	Question:     "Question",
	Ampersand:    "Ampersand",
	Caret:        "Caret",
	GreaterThan:  "GreaterThan",
	LessThan:     "LessThan",
	BackSlash:    "BackSlash",
	Pipe:         "Pipe",
	DoubleQuote:  "DoubleQuote",
	SingleQuote:  "SingleQuote",
	Colon:        "Colon",
	SemiColon:    "SemiColon",
	Dot:          "Dot",
	Comma:        "Comma",
	LeftBrace:    "LeftBrace",
	RightBrace:   "RightBrace",
	LeftParen:    "LeftParen",
	RightParen:   "RightParen",
	LeftBracket:  "LeftBracket",
	RightBracket: "RightBracket",
	Whitespace:   "Whitespace",
	NewLine:      "NewLine",
	Return:       "Return",
	Tab:          "Tab",
	Letter:       "Letter",
	Digit:        "Digit",
	Word:         "Word",
	Number:       "Number",
	String:       "String",
	Keyword:      "Keyword",
	Parameter:    "Parameter",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Trivia reports whether tokens of this kind carry no grammatical meaning.
func (k Kind) Trivia() bool {
	return k == Whitespace || k == NewLine || k == Return || k == Tab
}

// Token is a lexical unit. Offset and Length are byte positions in the
// concatenated template text; parameters occupy zero bytes.
type Token struct {
	Kind   Kind
	Text   string
	Offset int
	Length int

	// Index and Value are set for Parameter tokens only.
	Index int
	Value any
}

func (t Token) String() string {
	if t.Kind == Parameter {
		return fmt.Sprintf("%s(#%d)@%d", t.Kind, t.Index, t.Offset)
	}
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Text, t.Offset)
}

// Is reports whether the token has the given kind and text.
func (t Token) Is(kind Kind, text string) bool {
	return t.Kind == kind && t.Text == text
}

// end returns the byte offset just past the token.
func (t Token) end() int { return t.Offset + t.Length }

var punctuation = map[rune]Kind{
	'+':  Plus,
	'-':  Minus,
	'*':  Asterisk,
	'/':  Slash,
	'%':  Percent,
	'=':  Equal,
	'~':  Tilde,
	'!':  Exclamation,
	'?':  Question,
	'&':  Ampersand,
	'^':  Caret,
	'>':  GreaterThan,
	'<':  LessThan,
	'\\': BackSlash,
	'|':  Pipe,
	'"':  DoubleQuote,
	'\'': SingleQuote,
	':':  Colon,
	';':  SemiColon,
	'.':  Dot,
	',':  Comma,
	'{':  LeftBrace,
	'}':  RightBrace,
	'(':  LeftParen,
	')':  RightParen,
	'[':  LeftBracket,
	']':  RightBracket,
	' ':  Whitespace,
	'\n': NewLine,
	'\r': Return,
	'\t': Tab,
}

// keywords are reserved words that never scan as identifiers.
var keywords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "export": true, "extends": true, "finally": true, "for": true,
	"function": true, "if": true, "import": true, "in": true, "instanceof": true,
	"new": true, "return": true, "super": true, "switch": true, "this": true,
	"throw": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true,
	"true": true, "false": true, "null": true,

	"from": true, "join": true, "where": true, "orderby": true,
	"select": true, "group": true, "into": true, "by": true, "equals": true,
	"ascending": true, "descending": true, "let": true,
}

// IsKeyword reports whether word is reserved.
func IsKeyword(word string) bool { return keywords[word] }

// Keywords returns the reserved words in no particular order.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	return out
}
