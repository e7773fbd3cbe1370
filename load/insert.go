package load

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/frame"
)

// BatchSender is the subset of *pgx.Conn used for pipelined inserts.
type BatchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// InsertFrame inserts every row of f into table with one parameterised
// INSERT per row, all sent in a single batch. An empty frame writes nothing.
func InsertFrame(ctx context.Context, s BatchSender, f *frame.Frame, table string, logger *slog.Logger) (int64, error) {
	if f.Len() == 0 {
		logger.Info("No data to upload", "table", table)
		return 0, nil
	}

	placeholders := make([]string, f.Width())
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{table}.Sanitize(), strings.Join(quotedColumns(f), ", "), strings.Join(placeholders, ", "))

	rows, err := rowsOf(f, 0, f.Len())
	if err != nil {
		return 0, fmt.Errorf("failed to prepare rows for %s: %w", table, err)
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(query, row...)
	}

	results := s.SendBatch(ctx, batch)
	var inserted int64
	for i := range rows {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return inserted, fmt.Errorf("failed to insert row %d into %s: %w", i, table, err)
		}
		inserted += tag.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return inserted, fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	logger.Info("Inserted data", "table", table, "rows", inserted)
	return inserted, nil
}
