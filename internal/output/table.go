package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

const (
	maxTableRows = 10000
	maxColWidth  = 50
)

// Table formats object rows as an aligned ASCII table with a column for
// every key, in order of first appearance. Groupings show as key and
// values columns. Up to maxTableRows rows are buffered; the rest are
// dropped with a warning on stderr. Results whose first row is not an
// object are written as raw lines.
func Table(w io.Writer, iter RowIterator) error {
	return tableWriter(w, os.Stderr, iter, maxTableRows)
}

func tableWriter(w, errOut io.Writer, iter RowIterator, maxRows int) error {
	rows, truncated, err := collectRows(iter, maxRows)
	if err != nil {
		return err
	}
	if truncated {
		_, _ = fmt.Fprintf(errOut, "warning: result truncated at %d rows\n", maxRows)
	}
	if len(rows) == 0 {
		return nil
	}
	if _, ok := asObject(rows[0]); !ok {
		return rawLines(w, rows)
	}

	t := newLayout(rows)
	if err := t.writeLine(w, t.cols); err != nil {
		return err
	}
	if err := t.writeSeparator(w); err != nil {
		return err
	}
	for _, row := range rows {
		obj, ok := asObject(row)
		if !ok {
			if err := rawLines(w, []value.Value{row}); err != nil {
				return err
			}
			continue
		}
		cells := make([]string, len(t.cols))
		for i, col := range t.cols {
			cells[i] = cellValue(obj, col)
		}
		if err := t.writeLine(w, cells); err != nil {
			return err
		}
	}
	return nil
}

// collectRows buffers at most maxRows rows and drains the rest.
func collectRows(iter RowIterator, maxRows int) ([]value.Value, bool, error) {
	var rows []value.Value
	for {
		row, err := iter.Next()
		if errors.Is(err, io.EOF) {
			return rows, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		if len(rows) < maxRows {
			rows = append(rows, row)
			continue
		}
		for {
			if _, err := iter.Next(); err != nil {
				return rows, true, nil
			}
		}
	}
}

func asObject(v value.Value) (*value.Object, bool) {
	switch x := v.(type) {
	case *value.Object:
		return x, true
	case *value.Grouping:
		return value.ObjectOf("key", x.Key, "values", x.Values), true
	}
	return nil, false
}

// layout holds the columns of a table and their display widths in runes.
type layout struct {
	cols   []string
	widths []int
}

func newLayout(rows []value.Value) *layout {
	t := &layout{}
	index := map[string]int{}
	for _, row := range rows {
		obj, ok := asObject(row)
		if !ok {
			continue
		}
		for _, k := range obj.Keys() {
			i, seen := index[k]
			if !seen {
				i = len(t.cols)
				index[k] = i
				t.cols = append(t.cols, k)
				t.widths = append(t.widths, utf8.RuneCountInString(k))
			}
			t.widths[i] = max(t.widths[i], utf8.RuneCountInString(cellValue(obj, k)))
		}
	}
	for i := range t.widths {
		t.widths[i] = min(t.widths[i], maxColWidth)
	}
	return t
}

func (t *layout) writeLine(w io.Writer, cells []string) error {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fit(c, t.widths[i])
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, " | "))
	return err
}

func (t *layout) writeSeparator(w io.Writer) error {
	parts := make([]string, len(t.widths))
	for i, n := range t.widths {
		parts[i] = strings.Repeat("-", n)
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, "-+-"))
	return err
}

// fit pads s to width runes, cutting it with a trailing ~ when longer.
func fit(s string, width int) string {
	n := utf8.RuneCountInString(s)
	switch {
	case n > width && width > 0:
		return string([]rune(s)[:width-1]) + "~"
	case n < width:
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// cellValue renders a property: missing and undefined are blank, strings
// are unquoted and everything else is compact JSON.
func cellValue(obj *value.Object, col string) string {
	v, ok := obj.Get(col)
	if !ok || v == value.Undefined {
		return ""
	}
	s, err := rawString(v)
	if err != nil {
		return value.ToString(v)
	}
	return s
}

func rawLines(w io.Writer, rows []value.Value) error {
	for _, row := range rows {
		s, err := rawString(row)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, s); err != nil {
			return err
		}
	}
	return nil
}
