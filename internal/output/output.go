// Package output formats query results for the terminal and for pipes.
package output

import (
	"errors"
	"fmt"
	"io"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

// RowIterator streams rows from a query result.
type RowIterator interface {
	Next() (value.Value, error)
	Close() error
}

// Formats lists the accepted format names.
var Formats = []string{"json", "jsonl", "raw", "table", "yaml"}

// Write formats every row of iter in the named format.
func Write(w io.Writer, format string, iter RowIterator) error {
	switch format {
	case "json", "":
		return JSON(w, iter)
	case "jsonl":
		return JSONL(w, iter)
	case "raw":
		return Raw(w, iter)
	case "table":
		return Table(w, iter)
	case "yaml":
		return YAML(w, iter)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// forEach calls fn for every row until the iterator is exhausted.
func forEach(iter RowIterator, fn func(value.Value) error) error {
	for {
		row, err := iter.Next()
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

// lines writes each row on its own line as rendered by render.
func lines(w io.Writer, iter RowIterator, render func(value.Value) (string, error)) error {
	return forEach(iter, func(row value.Value) error {
		s, err := render(row)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, s+"\n")
		return err
	})
}
