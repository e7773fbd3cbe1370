package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/frame"
)

// ColumnTypes maps a column kind to the Postgres type used when a table is
// created from a frame. Kinds not listed become VARCHAR.
var ColumnTypes = map[frame.Kind]string{
	frame.Integer: "INTEGER",
	frame.Float:   "DOUBLE PRECISION",
	frame.Decimal: "NUMERIC",
	frame.Date:    "DATE",
}

func ColumnType(k frame.Kind) string {
	if t, ok := ColumnTypes[k]; ok {
		return t
	}
	return "VARCHAR"
}

// CreateTableStatement returns a CREATE TABLE IF NOT EXISTS statement with
// one column per series of f, typed by ColumnTypes.
func CreateTableStatement(f *frame.Frame, table string) string {
	columns := make([]string, 0, f.Width())
	for _, s := range f.Series() {
		columns = append(columns, fmt.Sprintf("%s %s", pq.QuoteIdentifier(s.Name), ColumnType(s.Kind)))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pq.QuoteIdentifier(table), strings.Join(columns, ", "))
}

// CreateTableFromFrame opens its own connection to dsn, creates table from
// the layout of f when it does not exist and, when appendRows is set, copies
// the rows of f into it in one transaction.
func CreateTableFromFrame(ctx context.Context, dsn string, f *frame.Frame, table string, appendRows bool, logger *slog.Logger) (int64, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return 0, fmt.Errorf("failed to open connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, CreateTableStatement(f, table)); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", table, err)
	}
	logger.Info("Ensured table from inferred schema", "table", table)

	if !appendRows || f.Len() == 0 {
		return 0, nil
	}

	n, err := copyIn(ctx, conn, f, table)
	if err != nil {
		return 0, err
	}
	logger.Info("Appended rows", "table", table, "rows", n)
	return n, nil
}

func copyIn(ctx context.Context, conn *sql.DB, f *frame.Frame, table string) (int64, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, f.Names()...))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare copy into %s: %w", table, err)
	}

	for i := 0; i < f.Len(); i++ {
		if _, err := stmt.ExecContext(ctx, f.Row(i)...); err != nil {
			stmt.Close()
			return 0, fmt.Errorf("failed to copy row %d into %s: %w", i, table, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, fmt.Errorf("failed to flush copy into %s: %w", table, err)
	}
	if err := stmt.Close(); err != nil {
		return 0, fmt.Errorf("failed to close copy into %s: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit copy into %s: %w", table, err)
	}
	return int64(f.Len()), nil
}
