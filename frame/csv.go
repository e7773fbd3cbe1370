package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// FormatValue renders a value the way it is written to CSV. Nil renders as
// the empty string, which Postgres COPY in CSV format reads as NULL.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case decimal.Decimal:
		return t.String()
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(t)
	}
}

// WriteCSV writes the frame as comma-separated records, optionally preceded by a header row.
func (f *Frame) WriteCSV(w io.Writer, header bool) error {
	writer := csv.NewWriter(w)

	if header {
		if err := writer.Write(f.Names()); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	record := make([]string, f.Width())
	for i := 0; i < f.Len(); i++ {
		for c, s := range f.series {
			record[c] = FormatValue(s.Values[i])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV data: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}
