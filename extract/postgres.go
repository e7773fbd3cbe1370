package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/frame"
)

// Querier is the subset of *pgx.Conn used to read tables back.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ReadRawData runs query and returns the result set as a Frame named after
// the result columns. The query is executed as given.
func ReadRawData(ctx context.Context, q Querier, table, query string, logger *slog.Logger) (*frame.Frame, error) {
	logger.Info("Start collecting data", "table", table)

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var records [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", table, err)
		}
		for i, v := range values {
			if values[i], err = fromPostgres(v); err != nil {
				return nil, fmt.Errorf("failed to read row from %s: %w", table, err)
			}
		}
		records = append(records, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over %s rows: %w", table, err)
	}

	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, fd := range fields {
		names[i] = fd.Name
	}

	f, err := frame.FromRecords(names, records)
	if err != nil {
		return nil, fmt.Errorf("failed to build frame for %s: %w", table, err)
	}
	logger.Info("Collected data", "table", table, "rows", f.Len())
	return f, nil
}

func fromPostgres(v any) (any, error) {
	n, ok := v.(pgtype.Numeric)
	if !ok {
		return v, nil
	}
	if !n.Valid {
		return nil, nil
	}
	text, err := n.Value()
	if err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(text.(string))
	if err != nil {
		return nil, fmt.Errorf("invalid numeric %v: %w", text, err)
	}
	return d, nil
}
