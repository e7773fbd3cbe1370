package load

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/frame"
)

// CSVCopier streams CSV text into a COPY ... FROM STDIN statement.
// *pgconn.PgConn implements it.
type CSVCopier interface {
	CopyFrom(ctx context.Context, r io.Reader, sql string) (pgconn.CommandTag, error)
}

// CopyFrame writes f to an in-memory CSV buffer and loads it into table with
// a single COPY statement. Either every row is loaded or none is.
func CopyFrame(ctx context.Context, c CSVCopier, f *frame.Frame, table string, logger *slog.Logger) (int64, error) {
	var buf bytes.Buffer
	if err := f.WriteCSV(&buf, false); err != nil {
		return 0, fmt.Errorf("failed to serialise %s: %w", table, err)
	}

	query := fmt.Sprintf("COPY %s (%s) FROM STDIN WITH (FORMAT csv)",
		pgx.Identifier{table}.Sanitize(), strings.Join(quotedColumns(f), ", "))
	logger.Debug("Executing COPY", "query", query)

	tag, err := c.CopyFrom(ctx, &buf, query)
	if err != nil {
		return 0, fmt.Errorf("failed to copy data into %s: %w", table, err)
	}

	logger.Info("Copied data", "table", table, "rows", tag.RowsAffected())
	return tag.RowsAffected(), nil
}
