package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

// YAML formats results as a stream of YAML documents, one per row, keeping
// object key order. No rows write nothing.
func YAML(w io.Writer, iter RowIterator) error {
	var enc *yaml.Encoder
	err := forEach(iter, func(row value.Value) error {
		if enc == nil {
			enc = yaml.NewEncoder(w)
			enc.SetIndent(2)
		}
		return enc.Encode(value.ToYAML(row))
	})
	if err != nil || enc == nil {
		return err
	}
	return enc.Close()
}
