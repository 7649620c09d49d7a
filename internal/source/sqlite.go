package source

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

func loadSQLite(ctx context.Context, s Spec) (value.Value, error) {
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close() //nolint:errcheck

	query := s.Query
	if query == "" {
		query = "SELECT * FROM " + quoteIdent(s.Table)
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck
	return scanRows(rows)
}

// scanRows reads every row as an object keyed by column name in column
// order. Integers become numbers and blobs become strings.
func scanRows(rows *sql.Rows) (value.Value, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := value.NewArray(0)
	cells := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		obj := value.NewObject()
		for i, col := range cols {
			obj.Set(col, value.Of(cells[i]))
		}
		out = append(out, obj)
	}
	return out, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
