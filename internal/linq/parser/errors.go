package parser

import "fmt"

// GrammarMismatchError is returned when the input does not parse as a
// query. Offset and Near locate the furthest token the grammar reached.
type GrammarMismatchError struct {
	Offset int
	Near   string
}

func (e *GrammarMismatchError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("syntax error: unexpected end of query at offset %d", e.Offset)
	}
	return fmt.Sprintf("syntax error at offset %d near %q", e.Offset, e.Near)
}

// IncompleteParseError is returned when a query parsed but tokens remain.
type IncompleteParseError struct {
	Offset int
	Near   string
}

func (e *IncompleteParseError) Error() string {
	return fmt.Sprintf("unexpected %q at offset %d after end of query", e.Near, e.Offset)
}
