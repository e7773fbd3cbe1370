// Package transform shapes raw stock frames into the fixed stock table layout.
package transform

import (
	"fmt"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/frame"
)

// StockColumns is the column order of every cleaned stock frame.
var StockColumns = []string{"date", "open", "high", "low", "close", "volume", "stock_name"}

var priceColumns = []string{"open", "high", "low", "close"}

var stockRenames = map[string]string{
	"Date":   "date",
	"Open":   "open",
	"High":   "high",
	"Low":    "low",
	"Close":  "close",
	"Volume": "volume",
}

// CleanStockData returns a copy of f with lower-case column names, dates
// parsed, the OpenInt column removed, prices rounded to two decimals and one
// row per date. The first row for a date wins. Cleaning a cleaned frame is a
// no-op.
func CleanStockData(f *frame.Frame) (*frame.Frame, error) {
	out := f.Rename(stockRenames).DropIfExists("OpenInt")

	date, ok := out.Column("date")
	if !ok {
		return nil, fmt.Errorf("column %q not found", "date")
	}
	parsed, err := date.ParseDates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse dates: %w", err)
	}
	if out, err = out.WithSeries(parsed); err != nil {
		return nil, err
	}

	for _, name := range priceColumns {
		col, ok := out.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		converted, err := col.ToDecimal(2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert prices: %w", err)
		}
		if out, err = out.WithSeries(converted); err != nil {
			return nil, err
		}
	}

	volume, ok := out.Column("volume")
	if !ok {
		return nil, fmt.Errorf("column %q not found", "volume")
	}
	converted, err := volume.ToInteger()
	if err != nil {
		return nil, fmt.Errorf("failed to convert volume: %w", err)
	}
	if out, err = out.WithSeries(converted); err != nil {
		return nil, err
	}

	if out, err = out.DropDuplicates("date"); err != nil {
		return nil, err
	}
	return out.Select(StockColumns...)
}
