package extract

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/marcboeker/go-duckdb"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/frame"
)

// Reader reads a delimited file into a Frame.
type Reader interface {
	ReadCSV(ctx context.Context, path string) (*frame.Frame, error)
}

// CSVReader parses CSV files through an in-memory DuckDB database, which
// sniffs the delimiter, header and column types.
type CSVReader struct {
	Logger    *slog.Logger
	DB        *sql.DB
	Connector *duckdb.Connector
}

func NewCSVReader(logger *slog.Logger) (*CSVReader, error) {
	connector, err := duckdb.NewConnector("", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	logger.Debug("Connected to DuckDB in-memory database")

	return &CSVReader{
		Logger:    logger,
		DB:        sql.OpenDB(connector),
		Connector: connector,
	}, nil
}

func (r *CSVReader) Close() {
	r.DB.Close()
	r.Connector.Close()
}

// ReadCSV reads the file at path with a header row.
func (r *CSVReader) ReadCSV(ctx context.Context, path string) (*frame.Frame, error) {
	query := fmt.Sprintf("SELECT * FROM read_csv_auto('%s', header=true);", strings.ReplaceAll(path, "'", "''"))
	r.Logger.Debug("Executing DuckDB query", "query", query)

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer rows.Close()

	f, err := frame.FromSQLRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return f, nil
}
