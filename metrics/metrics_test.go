package metrics

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestCollector(t *testing.T) {
	c := NewCollector(testLogger())

	c.RecordRows("fb_yearly_earning", 5)
	c.RecordRows("fb_yearly_earning", 3)
	c.RecordRows("nasdaq_index", 1)
	c.RecordFailure("nasdaq_index")
	c.RecordSkipped()
	c.RecordSkipped()
	c.ObserveDuration("nasdaq_index", 150*time.Millisecond)
	c.MarkCompleted(time.Unix(1700000000, 0))

	assert.Equal(t, 8.0, testutil.ToFloat64(c.rowsLoaded.WithLabelValues("fb_yearly_earning")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rowsLoaded.WithLabelValues("nasdaq_index")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.tableFailures.WithLabelValues("nasdaq_index")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.tablesSkipped))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(c.lastCompletion))
	assert.Equal(t, 1, testutil.CollectAndCount(c.tableDuration))
}

func TestPush(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewCollector(testLogger())
	c.RecordRows("fb_quarterly_earning", 4)

	require.NoError(t, c.Push(server.URL, "stock_etl"))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/metrics/job/stock_etl", gotPath)
	assert.Contains(t, gotBody, "stock_etl_rows_loaded_total")
}

func TestPush_Disabled(t *testing.T) {
	c := NewCollector(testLogger())
	assert.NoError(t, c.Push("", "stock_etl"))
}

func TestPush_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewCollector(testLogger())
	err := c.Push(server.URL, "stock_etl")
	assert.ErrorContains(t, err, "failed to push metrics")
}
