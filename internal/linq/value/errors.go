package value

import "fmt"

// TypeError is raised by operations applied to values of the wrong type,
// such as reading a property of null or iterating a number.
type TypeError struct {
	Msg string
}

func (e *TypeError) Error() string { return "TypeError: " + e.Msg }

func typeErrorf(format string, args ...any) error {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}
