package load

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/frame"
)

// Copier is the subset of *pgx.Conn used for binary COPY.
type Copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

type BatchResult struct {
	Batches int
	Rows    int64
}

// BatchUpload appends f to table in contiguous batches of batchSize rows,
// each sent with one COPY. It stops at the first failed batch; rows of the
// batches before it stay committed. The connection is left open.
func BatchUpload(ctx context.Context, c Copier, f *frame.Frame, table string, batchSize int, logger *slog.Logger) (BatchResult, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var result BatchResult
	for start := 0; start < f.Len(); start += batchSize {
		end := min(start+batchSize, f.Len())

		rows, err := rowsOf(f, start, end)
		if err != nil {
			return result, fmt.Errorf("failed to prepare batch %d for %s: %w", result.Batches+1, table, err)
		}

		n, err := c.CopyFrom(ctx, pgx.Identifier{table}, f.Names(), pgx.CopyFromRows(rows))
		if err != nil {
			return result, fmt.Errorf("failed to upload batch %d (rows %d-%d) to %s: %w", result.Batches+1, start, end-1, table, err)
		}

		result.Batches++
		result.Rows += n
		logger.Info("Uploaded batch", "table", table, "batch", result.Batches, "rows", n)
	}

	return result, nil
}
