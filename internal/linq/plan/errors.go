package plan

import "fmt"

// UnboundIdentifierError is returned when an expression names a binding
// that no preceding clause introduced and that is not a global.
type UnboundIdentifierError struct {
	Name   string
	Offset int
}

func (e *UnboundIdentifierError) Error() string {
	return fmt.Sprintf("unbound identifier %q at offset %d", e.Name, e.Offset)
}

// UnsupportedExpressionError is returned for syntax the grammar accepts
// but that has no meaning where it appears, such as a spread outside of
// an array, object or argument list.
type UnsupportedExpressionError struct {
	Expr string
}

func (e *UnsupportedExpressionError) Error() string {
	return fmt.Sprintf("unsupported expression %s", e.Expr)
}
