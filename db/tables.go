package db

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/template"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Querier is the subset of *pgx.Conn and pgx.Tx used for metadata and DDL.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func DatabaseExists(ctx context.Context, q Querier, name string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check database %s: %w", name, err)
	}
	return exists, nil
}

func TableExists(ctx context.Context, q Querier, table string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", table).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return exists, nil
}

// StockTableDDL returns the CREATE TABLE statement of the fixed stock price layout.
func StockTableDDL(table string, ifNotExists bool) (string, error) {
	return template.ExecuteSqlTemplate(sqlFiles, "sql/stock_table.sql", map[string]any{
		"Table":       table,
		"IfNotExists": ifNotExists,
	})
}

// CreateStockTable creates table with the stock price layout when database
// dbName exists and the table does not. A missing database is logged and
// leaves everything unchanged.
func CreateStockTable(ctx context.Context, q Querier, table, dbName string, logger *slog.Logger) error {
	dbExists, err := DatabaseExists(ctx, q, dbName)
	if err != nil {
		return err
	}
	if !dbExists {
		logger.Warn("Database does not exist", "database", dbName)
		return nil
	}

	tableExists, err := TableExists(ctx, q, table)
	if err != nil {
		return err
	}
	if tableExists {
		logger.Info("Table already exists", "table", table)
		return nil
	}

	ddl, err := StockTableDDL(table, false)
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	logger.Info("Table created successfully", "table", table)
	return nil
}
