package load

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/frame"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func numberedFrame(t *testing.T, n int) *frame.Frame {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{int64(i), fmt.Sprintf("row-%d", i)}
	}
	f, err := frame.FromRecords([]string{"id", "label"}, rows)
	require.NoError(t, err)
	return f
}

type mockCopier struct {
	CopyFromFunc func(table pgx.Identifier, columns []string, rows [][]any) (int64, error)
	batches      [][][]any
}

func (m *mockCopier) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	var rows [][]any
	for src.Next() {
		values, err := src.Values()
		if err != nil {
			return 0, err
		}
		rows = append(rows, values)
	}
	m.batches = append(m.batches, rows)
	if m.CopyFromFunc != nil {
		return m.CopyFromFunc(table, columns, rows)
	}
	return int64(len(rows)), nil
}

func TestBatchUpload(t *testing.T) {
	tests := []struct {
		name        string
		rows        int
		batchSize   int
		wantBatches int
		wantMaxSize int
	}{
		{name: "exact multiple", rows: 6, batchSize: 3, wantBatches: 2, wantMaxSize: 3},
		{name: "remainder", rows: 7, batchSize: 3, wantBatches: 3, wantMaxSize: 3},
		{name: "single batch", rows: 2, batchSize: 10, wantBatches: 1, wantMaxSize: 2},
		{name: "default size", rows: 2500, batchSize: 0, wantBatches: 3, wantMaxSize: DefaultBatchSize},
		{name: "empty frame", rows: 0, batchSize: 5, wantBatches: 0, wantMaxSize: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			copier := &mockCopier{}
			result, err := BatchUpload(context.Background(), copier, numberedFrame(t, tt.rows), "t", tt.batchSize, testLogger())
			require.NoError(t, err)

			assert.Equal(t, tt.wantBatches, result.Batches)
			assert.Equal(t, int64(tt.rows), result.Rows)
			require.Len(t, copier.batches, tt.wantBatches)

			var seen []int64
			for _, batch := range copier.batches {
				assert.LessOrEqual(t, len(batch), tt.wantMaxSize)
				for _, row := range batch {
					seen = append(seen, row[0].(int64))
				}
			}
			for i := range seen {
				assert.Equal(t, int64(i), seen[i], "every row is sent exactly once, in order")
			}
			assert.Len(t, seen, tt.rows)
		})
	}
}

func TestBatchUpload_StopsAtFirstFailure(t *testing.T) {
	calls := 0
	copier := &mockCopier{CopyFromFunc: func(table pgx.Identifier, columns []string, rows [][]any) (int64, error) {
		calls++
		assert.Equal(t, pgx.Identifier{"t"}, table)
		assert.Equal(t, []string{"id", "label"}, columns)
		if calls == 2 {
			return 0, errors.New("duplicate key value violates unique constraint")
		}
		return int64(len(rows)), nil
	}}

	result, err := BatchUpload(context.Background(), copier, numberedFrame(t, 10), "t", 3, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload batch 2 (rows 3-5) to t")
	assert.Equal(t, BatchResult{Batches: 1, Rows: 3}, result)
	assert.Equal(t, 2, calls)
}

func TestBatchUpload_EncodesDecimals(t *testing.T) {
	f, err := frame.FromRecords([]string{"close"}, [][]any{{decimal.RequireFromString("135.68")}})
	require.NoError(t, err)

	copier := &mockCopier{}
	_, err = BatchUpload(context.Background(), copier, f, "t", 1, testLogger())
	require.NoError(t, err)

	n, ok := copier.batches[0][0][0].(pgtype.Numeric)
	require.True(t, ok)
	value, err := n.Value()
	require.NoError(t, err)
	assert.Equal(t, "135.68", value)
}

type mockCSVCopier struct {
	CopyFromFunc func(body, sql string) (pgconn.CommandTag, error)
}

func (m *mockCSVCopier) CopyFrom(_ context.Context, r io.Reader, sql string) (pgconn.CommandTag, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return m.CopyFromFunc(string(body), sql)
}

func TestCopyFrame(t *testing.T) {
	day := time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC)
	f, err := frame.FromRecords(
		[]string{"date", "close", "volume", "stock_name"},
		[][]any{
			{day, decimal.RequireFromString("135.68"), int64(28146200), "Facebook"},
			{day.AddDate(0, 0, 1), decimal.RequireFromString("131.74"), int64(22717900), "Facebook"},
		},
	)
	require.NoError(t, err)

	var gotBody, gotSQL string
	copier := &mockCSVCopier{CopyFromFunc: func(body, sql string) (pgconn.CommandTag, error) {
		gotBody, gotSQL = body, sql
		return pgconn.NewCommandTag("COPY 2"), nil
	}}

	n, err := CopyFrame(context.Background(), copier, f, "companies_historical_stock_price_facebook", testLogger())
	require.NoError(t, err)

	assert.Equal(t, int64(2), n)
	assert.Equal(t, `COPY "companies_historical_stock_price_facebook" ("date", "close", "volume", "stock_name") FROM STDIN WITH (FORMAT csv)`, gotSQL)
	assert.Equal(t, "2019-01-02,135.68,28146200,Facebook\n2019-01-03,131.74,22717900,Facebook\n", gotBody)
}

func TestCopyFrame_Error(t *testing.T) {
	copier := &mockCSVCopier{CopyFromFunc: func(string, string) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, errors.New("relation does not exist")
	}}

	n, err := CopyFrame(context.Background(), copier, numberedFrame(t, 1), "missing", testLogger())
	assert.Equal(t, int64(0), n)
	assert.EqualError(t, err, "failed to copy data into missing: relation does not exist")
}

type mockBatchResults struct {
	execErrs []error
	pos      int
	closed   bool
}

func (r *mockBatchResults) Exec() (pgconn.CommandTag, error) {
	r.pos++
	if r.pos <= len(r.execErrs) && r.execErrs[r.pos-1] != nil {
		return pgconn.CommandTag{}, r.execErrs[r.pos-1]
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}
func (r *mockBatchResults) Query() (pgx.Rows, error) { return nil, errors.New("not implemented") }
func (r *mockBatchResults) QueryRow() pgx.Row        { return nil }
func (r *mockBatchResults) Close() error {
	r.closed = true
	return nil
}

type mockBatchSender struct {
	results *mockBatchResults
	batches []*pgx.Batch
}

func (m *mockBatchSender) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	m.batches = append(m.batches, b)
	return m.results
}

func TestInsertFrame(t *testing.T) {
	sender := &mockBatchSender{results: &mockBatchResults{}}

	n, err := InsertFrame(context.Background(), sender, numberedFrame(t, 3), "fb_yearly_earning", testLogger())
	require.NoError(t, err)

	assert.Equal(t, int64(3), n)
	require.Len(t, sender.batches, 1)
	batch := sender.batches[0]
	assert.Equal(t, 3, batch.Len())
	assert.Equal(t, `INSERT INTO "fb_yearly_earning" ("id", "label") VALUES ($1, $2)`, batch.QueuedQueries[0].SQL)
	assert.Equal(t, []any{int64(2), "row-2"}, batch.QueuedQueries[2].Arguments)
	assert.True(t, sender.results.closed)
}

func TestInsertFrame_Empty(t *testing.T) {
	sender := &mockBatchSender{results: &mockBatchResults{}}

	n, err := InsertFrame(context.Background(), sender, numberedFrame(t, 0), "nasdaq_index", testLogger())
	require.NoError(t, err)

	assert.Equal(t, int64(0), n)
	assert.Empty(t, sender.batches, "an empty frame performs no writes")
}

func TestInsertFrame_RowFailure(t *testing.T) {
	sender := &mockBatchSender{results: &mockBatchResults{execErrs: []error{nil, errors.New("value too long")}}}

	n, err := InsertFrame(context.Background(), sender, numberedFrame(t, 3), "t", testLogger())
	assert.Equal(t, int64(1), n)
	assert.EqualError(t, err, "failed to insert row 1 into t: value too long")
	assert.True(t, sender.results.closed)
}
