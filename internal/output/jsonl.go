package output

import (
	"io"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

// JSONL writes one compact JSON document per row.
func JSONL(w io.Writer, iter RowIterator) error {
	return lines(w, iter, func(row value.Value) (string, error) {
		data, err := value.Marshal(row)
		return string(data), err
	})
}
