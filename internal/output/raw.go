package output

import (
	"io"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

// Raw writes strings as they are and every other row as compact JSON.
func Raw(w io.Writer, iter RowIterator) error {
	return lines(w, iter, rawString)
}

func rawString(v value.Value) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	data, err := value.Marshal(v)
	return string(data), err
}
