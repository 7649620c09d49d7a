package scanner

import "fmt"

// InvalidCharacterError is returned for a character outside the language
// alphabet that does not appear inside a string literal.
type InvalidCharacterError struct {
	Offset int
	Char   rune
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("invalid character %q at offset %d", e.Char, e.Offset)
}

// UnterminatedStringError is returned when a quote has no matching close.
type UnterminatedStringError struct {
	Offset int
	Quote  rune
}

func (e *UnterminatedStringError) Error() string {
	return fmt.Sprintf("unterminated string starting with %q at offset %d", e.Quote, e.Offset)
}

// UnknownPlaceholderError is returned for a positional placeholder with no
// matching argument.
type UnknownPlaceholderError struct {
	Offset int
	Name   string
}

func (e *UnknownPlaceholderError) Error() string {
	return fmt.Sprintf("placeholder %s at offset %d has no argument", e.Name, e.Offset)
}
