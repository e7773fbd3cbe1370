package pipeline

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/config"
	"github.com/aynalemL/Facebook-Stock-Market-Analysis/db"
	"github.com/aynalemL/Facebook-Stock-Market-Analysis/extract"
	"github.com/aynalemL/Facebook-Stock-Market-Analysis/frame"
	"github.com/aynalemL/Facebook-Stock-Market-Analysis/load"
)

// PostgresSink is a Sink over one pgx connection. Tables created from a
// frame's layout go through a separate lib/pq connection to DSN.
type PostgresSink struct {
	Conn   *pgx.Conn
	DSN    string
	Logger *slog.Logger
}

func PostgresDialer(creds config.PostgresCredential, logger *slog.Logger) Dialer {
	return func(ctx context.Context) (Sink, error) {
		conn, err := db.Connect(ctx, creds, logger)
		if err != nil {
			return nil, err
		}
		return &PostgresSink{Conn: conn, DSN: db.DSN(creds), Logger: logger}, nil
	}
}

func (s *PostgresSink) CreateStockTable(ctx context.Context, table, dbName string) error {
	return db.CreateStockTable(ctx, s.Conn, table, dbName, s.Logger)
}

func (s *PostgresSink) CopyFrame(ctx context.Context, f *frame.Frame, table string) (int64, error) {
	return load.CopyFrame(ctx, s.Conn.PgConn(), f, table, s.Logger)
}

func (s *PostgresSink) EnsureTable(ctx context.Context, f *frame.Frame, table string) error {
	_, err := db.CreateTableFromFrame(ctx, s.DSN, f, table, false, s.Logger)
	return err
}

func (s *PostgresSink) InsertFrame(ctx context.Context, f *frame.Frame, table string) (int64, error) {
	return load.InsertFrame(ctx, s.Conn, f, table, s.Logger)
}

func (s *PostgresSink) Close(ctx context.Context) error {
	return s.Conn.Close(ctx)
}

// RawData reads the facebook stock table back into a frame.
func RawData(ctx context.Context, q extract.Querier, logger *slog.Logger) (*frame.Frame, error) {
	return extract.ReadRawData(ctx, q, FacebookTable, "SELECT * FROM "+pgx.Identifier{FacebookTable}.Sanitize()+";", logger)
}

// Append reads the CSV file at path and appends its rows to table in
// batches of batchSize. The table must already exist.
func Append(ctx context.Context, reader extract.Reader, c load.Copier, path, table string, batchSize int, logger *slog.Logger) (load.BatchResult, error) {
	f, err := reader.ReadCSV(ctx, path)
	if err != nil {
		return load.BatchResult{}, err
	}
	return load.BatchUpload(ctx, c, f, table, batchSize, logger)
}
