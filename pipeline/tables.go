package pipeline

import (
	"log/slog"
	"time"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/config"
)

const (
	FacebookTable         = "companies_historical_stock_price_facebook"
	GoogleTable           = "companies_historical_stock_price_Google"
	NasdaqTable           = "nasdaq_index"
	YearlyEarningTable    = "fb_yearly_earning"
	QuarterlyEarningTable = "fb_quarterly_earning"
)

// LegacyTables is the table list of the first release, kept for
// compatibility. Its first entry joins the facebook and Google names, so
// neither stock table is loaded, and nasdaq_index is absent.
var LegacyTables = []string{
	FacebookTable + GoogleTable,
	YearlyEarningTable,
	QuarterlyEarningTable,
	YearlyEarningTable,
}

// DefaultTables loads every table once.
var DefaultTables = []string{
	FacebookTable,
	GoogleTable,
	NasdaqTable,
	YearlyEarningTable,
	QuarterlyEarningTable,
}

// Branch is the extract, transform and load path a table name selects.
type Branch string

const (
	BranchFacebook         Branch = "facebook"
	BranchGoogle           Branch = "google"
	BranchNasdaq           Branch = "nasdaq_index"
	BranchYearlyEarning    Branch = "fb_yearly_earning"
	BranchQuarterlyEarning Branch = "fb_quarterly_earning"
	BranchSkipped          Branch = "skipped"
)

var branches = map[string]Branch{
	FacebookTable:         BranchFacebook,
	GoogleTable:           BranchGoogle,
	NasdaqTable:           BranchNasdaq,
	YearlyEarningTable:    BranchYearlyEarning,
	QuarterlyEarningTable: BranchQuarterlyEarning,
}

var stockKeys = map[Branch]string{
	BranchFacebook: "fb",
	BranchGoogle:   "google",
}

// BranchFor matches table exactly; unknown names are skipped.
func BranchFor(table string) Branch {
	if b, ok := branches[table]; ok {
		return b
	}
	return BranchSkipped
}

// TablesFromConfig returns pipeline.tables when set, LegacyTables when
// pipeline.legacy_table_list is set, and DefaultTables otherwise.
func TablesFromConfig(cfg config.PipelineConfig, logger *slog.Logger) []string {
	if tables := cfg.TableList(); len(tables) > 0 {
		return tables
	}
	if cfg.LegacyTableList {
		logger.Warn("Using the legacy table list: the stock price and nasdaq_index tables will not be loaded")
		return LegacyTables
	}
	return DefaultTables
}

type Outcome struct {
	Table    string
	Branch   Branch
	Rows     int64
	Err      error
	Duration time.Duration
}

type Report struct {
	Outcomes []Outcome
}

func (r Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

func (r Report) Rows() int64 {
	var total int64
	for _, o := range r.Outcomes {
		total += o.Rows
	}
	return total
}

// Branches lists the distinct branches taken, in first-taken order.
// Skipped tables are not included.
func (r Report) Branches() []Branch {
	seen := make(map[Branch]bool)
	var taken []Branch
	for _, o := range r.Outcomes {
		if o.Branch == BranchSkipped || seen[o.Branch] {
			continue
		}
		seen[o.Branch] = true
		taken = append(taken, o.Branch)
	}
	return taken
}
