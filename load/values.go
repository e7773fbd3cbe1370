// Package load writes frames into Postgres tables.
package load

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/frame"
)

// DefaultBatchSize is used when a non-positive batch size is given.
const DefaultBatchSize = 1000

// pgValue converts a frame value to one pgx can encode.
func pgValue(v any) (any, error) {
	d, ok := v.(decimal.Decimal)
	if !ok {
		return v, nil
	}
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return nil, fmt.Errorf("failed to encode %s as numeric: %w", d, err)
	}
	return n, nil
}

// rowsOf returns rows [start, end) of f ready to be sent to Postgres.
func rowsOf(f *frame.Frame, start, end int) ([][]any, error) {
	rows := make([][]any, 0, end-start)
	for i := start; i < end; i++ {
		row := f.Row(i)
		for c, v := range row {
			pv, err := pgValue(v)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i, f.Names()[c], err)
			}
			row[c] = pv
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func quotedColumns(f *frame.Frame) []string {
	names := f.Names()
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = pgx.Identifier{name}.Sanitize()
	}
	return quoted
}
