package linq

import (
	"errors"
	"fmt"

	"github.com/sinclairzx81/linqbox/internal/linq/parser"
	"github.com/sinclairzx81/linqbox/internal/linq/plan"
	"github.com/sinclairzx81/linqbox/internal/linq/scanner"
	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

type (
	InvalidCharacterError      = scanner.InvalidCharacterError
	UnterminatedStringError    = scanner.UnterminatedStringError
	UnknownPlaceholderError    = scanner.UnknownPlaceholderError
	GrammarMismatchError       = parser.GrammarMismatchError
	IncompleteParseError       = parser.IncompleteParseError
	UnboundIdentifierError     = plan.UnboundIdentifierError
	UnsupportedExpressionError = plan.UnsupportedExpressionError
	TypeError                  = value.TypeError
)

// ParamCountError is returned by Rebind when too few arguments are given.
type ParamCountError struct {
	Want, Got int
}

func (e *ParamCountError) Error() string {
	return fmt.Sprintf("query takes %d parameters, got %d", e.Want, e.Got)
}

// ParamKindError is returned by Rebind when an argument changes kind.
type ParamKindError struct {
	Index     int
	Want, Got string
}

func (e *ParamKindError) Error() string {
	return fmt.Sprintf("parameter $%d: expected %s, got %s", e.Index+1, e.Want, e.Got)
}

// IsCompileError reports whether err was raised while scanning, parsing or
// compiling a query, as opposed to while running it.
func IsCompileError(err error) bool {
	var (
		ic *InvalidCharacterError
		us *UnterminatedStringError
		up *UnknownPlaceholderError
		gm *GrammarMismatchError
		ip *IncompleteParseError
		ub *UnboundIdentifierError
		ue *UnsupportedExpressionError
	)
	return errors.As(err, &ic) || errors.As(err, &us) || errors.As(err, &up) ||
		errors.As(err, &gm) || errors.As(err, &ip) || errors.As(err, &ub) || errors.As(err, &ue)
}
