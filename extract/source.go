package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/frame"
)

const (
	StocksDir              = "Stocks"
	QuarterlyEarningFile   = "fb_quarterly_earning_index.csv"
	YearlyEarningFile      = "fb_yearly_earning_index.csv"
	NasdaqIndexFile        = "nasdaq_index.csv"
	supplementaryDateField = "date"
)

// Stock describes one supported stock file under the Stocks directory and the
// supplementary file holding its most recent prices.
type Stock struct {
	Key           string
	Name          string
	Supplementary string
}

// Stocks maps the primary file name to the stock it holds.
var Stocks = map[string]Stock{
	"fb.us.txt":   {Key: "fb", Name: "Facebook", Supplementary: "Facebook_cleaned.csv"},
	"goog.us.txt": {Key: "google", Name: "Google", Supplementary: "Google_cleaned.csv"},
}

// Source reads the raw input files below Dir.
type Source struct {
	Reader Reader
	Dir    string
	Logger *slog.Logger
}

// ReadStockData reads every supported stock file, prepends its supplementary
// rows and tags each row with the stock name. Results are keyed by Stock.Key.
func (s *Source) ReadStockData(ctx context.Context) (map[string]*frame.Frame, error) {
	dir := filepath.Join(s.Dir, StocksDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock files: %w", err)
	}

	stocks := make(map[string]*frame.Frame)
	for _, entry := range entries {
		stock, ok := Stocks[entry.Name()]
		if !ok {
			s.Logger.Info("Not included in this analysis yet, please check back later.", "file", entry.Name())
			continue
		}

		f, err := s.readStock(ctx, filepath.Join(dir, entry.Name()), stock)
		if err != nil {
			return nil, err
		}
		stocks[stock.Key] = f
		s.Logger.Info("Read stock data", "stock", stock.Name, "rows", f.Len())
	}

	return stocks, nil
}

func (s *Source) readStock(ctx context.Context, path string, stock Stock) (*frame.Frame, error) {
	history, err := s.Reader.ReadCSV(ctx, path)
	if err != nil {
		return nil, err
	}

	latest, err := s.Reader.ReadCSV(ctx, filepath.Join(s.Dir, stock.Supplementary))
	if err != nil {
		return nil, err
	}
	latest = latest.RenameFold(history.Names())

	dateName := supplementaryDateField
	for _, name := range latest.Names() {
		if strings.EqualFold(name, supplementaryDateField) {
			dateName = name
		}
	}
	if col, ok := latest.Column(dateName); ok {
		parsed, err := col.ParseDates()
		if err != nil {
			return nil, fmt.Errorf("failed to parse dates in %s: %w", stock.Supplementary, err)
		}
		if latest, err = latest.WithSeries(parsed); err != nil {
			return nil, err
		}
	}

	combined, err := frame.Concat(latest, history)
	if err != nil {
		return nil, fmt.Errorf("failed to combine %s data: %w", stock.Name, err)
	}
	return combined.WithConstant("stock_name", stock.Name), nil
}

// ReadEarning returns the quarterly and yearly earning tables.
func (s *Source) ReadEarning(ctx context.Context) (quarterly, yearly *frame.Frame, err error) {
	if yearly, err = s.Reader.ReadCSV(ctx, filepath.Join(s.Dir, YearlyEarningFile)); err != nil {
		return nil, nil, err
	}
	if quarterly, err = s.Reader.ReadCSV(ctx, filepath.Join(s.Dir, QuarterlyEarningFile)); err != nil {
		return nil, nil, err
	}
	return quarterly, yearly, nil
}

func (s *Source) NasdaqIndex(ctx context.Context) (*frame.Frame, error) {
	return s.Reader.ReadCSV(ctx, filepath.Join(s.Dir, NasdaqIndexFile))
}
