package output

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

// JSON writes indented JSON. A lone row is written as itself, several rows
// as an array and no rows as [].
func JSON(w io.Writer, iter RowIterator) error {
	var (
		held  value.Value
		count int
	)
	err := forEach(iter, func(row value.Value) error {
		count++
		switch count {
		case 1:
			held = row
			return nil
		case 2:
			if _, err := io.WriteString(w, "[\n"); err != nil {
				return err
			}
		}
		err := writeElement(w, held, true)
		held = row
		return err
	})
	if err != nil {
		return err
	}
	switch count {
	case 0:
		_, err = io.WriteString(w, "[]\n")
	case 1:
		err = writeIndented(w, held, "")
	default:
		if err = writeElement(w, held, false); err == nil {
			_, err = io.WriteString(w, "]\n")
		}
	}
	return err
}

// writeElement writes v as an array element, with a trailing comma unless
// it is the last one.
func writeElement(w io.Writer, v value.Value, more bool) error {
	if _, err := io.WriteString(w, "  "); err != nil {
		return err
	}
	if !more {
		return writeIndented(w, v, "  ")
	}
	var buf bytes.Buffer
	if err := writeIndented(&buf, v, "  "); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	buf.WriteString(",\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func writeIndented(w io.Writer, v value.Value, prefix string) error {
	data, err := value.Marshal(v)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, prefix, "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}
