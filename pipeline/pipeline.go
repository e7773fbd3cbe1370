package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/config"
	"github.com/aynalemL/Facebook-Stock-Market-Analysis/extract"
	"github.com/aynalemL/Facebook-Stock-Market-Analysis/frame"
	"github.com/aynalemL/Facebook-Stock-Market-Analysis/metrics"
	"github.com/aynalemL/Facebook-Stock-Market-Analysis/transform"
	"github.com/aynalemL/Facebook-Stock-Market-Analysis/utils"
)

// Source provides the raw input frames.
type Source interface {
	ReadStockData(ctx context.Context) (map[string]*frame.Frame, error)
	ReadEarning(ctx context.Context) (quarterly, yearly *frame.Frame, err error)
	NasdaqIndex(ctx context.Context) (*frame.Frame, error)
}

// Sink writes frames over one database connection.
type Sink interface {
	CreateStockTable(ctx context.Context, table, dbName string) error
	CopyFrame(ctx context.Context, f *frame.Frame, table string) (int64, error)
	EnsureTable(ctx context.Context, f *frame.Frame, table string) error
	InsertFrame(ctx context.Context, f *frame.Frame, table string) (int64, error)
	Close(ctx context.Context) error
}

// Dialer opens a new Sink. The pipeline dials once per table.
type Dialer func(ctx context.Context) (Sink, error)

type Pipeline struct {
	Source          Source
	Dial            Dialer
	Logger          *slog.Logger
	Metrics         *metrics.Collector
	Clock           utils.TimeProvider
	Tables          []string
	DBName          string
	ContinueOnError bool

	closers []func()
}

// NewPipeline wires the file source and the Postgres sink from config.
func NewPipeline(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	reader, err := extract.NewCSVReader(logger)
	if err != nil {
		return nil, fmt.Errorf("error creating CSV reader: %w", err)
	}

	inputDir, err := utils.ResolveDir(cfg.Pipeline.InputDir)
	if err != nil {
		reader.Close()
		return nil, err
	}

	return &Pipeline{
		Source: &extract.Source{
			Reader: reader,
			Dir:    inputDir,
			Logger: logger,
		},
		Dial:            PostgresDialer(cfg.Postgres, logger),
		Logger:          logger,
		Metrics:         metrics.NewCollector(logger),
		Clock:           utils.RealTimeProvider{},
		Tables:          TablesFromConfig(cfg.Pipeline, logger),
		DBName:          cfg.Pipeline.DBName,
		ContinueOnError: cfg.Pipeline.ContinueOnError,
		closers:         []func(){reader.Close},
	}, nil
}

func (p *Pipeline) Close() {
	for _, closeFn := range p.closers {
		closeFn()
	}
}

// Run processes every table in order. Extraction and cleaning errors abort
// the run and are returned directly. Connection and load errors are recorded on the table's Outcome;
// the run continues past them when ContinueOnError is set and the joined
// errors are returned at the end.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	var report Report
	var errorList []error

	for _, table := range p.Tables {
		start := p.now()
		outcome, err := p.processTable(ctx, table)
		if err != nil {
			err = fmt.Errorf("error extracting data for %s: %w", table, err)
			outcome.Err = err
		}
		outcome.Duration = p.now().Sub(start)
		report.Outcomes = append(report.Outcomes, outcome)
		p.record(outcome)

		if err != nil {
			return report, err
		}
		if outcome.Err != nil {
			errorList = append(errorList, outcome.Err)
			p.Logger.Error("Failed to load table", "table", table, "error", outcome.Err)
			if !p.ContinueOnError {
				break
			}
			continue
		}
		p.Logger.Info("Completed uploading the data to postgres table", "table", table, "rows", outcome.Rows)
	}

	if p.Metrics != nil {
		p.Metrics.MarkCompleted(p.now())
	}

	if len(errorList) > 0 {
		return report, errors.Join(errorList...)
	}
	return report, nil
}

// processTable runs one table on its own connection. The returned error is
// fatal to the run; load failures are reported through Outcome.Err.
func (p *Pipeline) processTable(ctx context.Context, table string) (Outcome, error) {
	outcome := Outcome{Table: table, Branch: BranchFor(table)}

	p.Logger.Info("Create connection", "table", table)
	sink, err := p.Dial(ctx)
	if err != nil {
		outcome.Err = fmt.Errorf("error connecting for %s: %w", table, err)
		return outcome, nil
	}
	defer func() {
		if err := sink.Close(ctx); err != nil {
			p.Logger.Warn("Failed to close connection", "table", table, "error", err)
		}
	}()

	p.Logger.Info("Get raw data", "table", table)
	nasdaq, err := p.Source.NasdaqIndex(ctx)
	if err != nil {
		return outcome, err
	}
	quarterly, yearly, err := p.Source.ReadEarning(ctx)
	if err != nil {
		return outcome, err
	}

	switch outcome.Branch {
	case BranchFacebook, BranchGoogle:
		stock, err := p.readStock(ctx, outcome.Branch)
		if err != nil {
			return outcome, err
		}
		p.Logger.Info("Upload stock data", "table", table, "stock", outcome.Branch)
		outcome.Rows, outcome.Err = p.loadStock(ctx, sink, stock, table)
	case BranchNasdaq:
		p.Logger.Info("Upload NASDAQ data to non-partitioned table", "table", table)
		outcome.Rows, outcome.Err = loadTable(ctx, sink, nasdaq, table)
	case BranchYearlyEarning:
		p.Logger.Info("Upload yearly earning data to non-partitioned table", "table", table)
		outcome.Rows, outcome.Err = loadTable(ctx, sink, yearly, table)
	case BranchQuarterlyEarning:
		p.Logger.Info("Upload quarterly earning data to non-partitioned table", "table", table)
		outcome.Rows, outcome.Err = loadTable(ctx, sink, quarterly, table)
	default:
		p.Logger.Warn("Table name matches no pipeline branch, skipping", "table", table)
	}

	return outcome, nil
}

func (p *Pipeline) readStock(ctx context.Context, branch Branch) (*frame.Frame, error) {
	stocks, err := p.Source.ReadStockData(ctx)
	if err != nil {
		return nil, err
	}

	key := stockKeys[branch]
	raw, ok := stocks[key]
	if !ok {
		return nil, fmt.Errorf("no %s stock data found", key)
	}

	cleaned, err := transform.CleanStockData(raw)
	if err != nil {
		return nil, fmt.Errorf("error cleaning %s stock data: %w", key, err)
	}
	return cleaned, nil
}

func (p *Pipeline) loadStock(ctx context.Context, sink Sink, f *frame.Frame, table string) (int64, error) {
	if err := sink.CreateStockTable(ctx, table, p.DBName); err != nil {
		return 0, fmt.Errorf("error creating table %s: %w", table, err)
	}
	rows, err := sink.CopyFrame(ctx, f, table)
	if err != nil {
		return rows, fmt.Errorf("error loading %s: %w", table, err)
	}
	return rows, nil
}

func loadTable(ctx context.Context, sink Sink, f *frame.Frame, table string) (int64, error) {
	if err := sink.EnsureTable(ctx, f, table); err != nil {
		return 0, fmt.Errorf("error creating table %s: %w", table, err)
	}
	rows, err := sink.InsertFrame(ctx, f, table)
	if err != nil {
		return rows, fmt.Errorf("error loading %s: %w", table, err)
	}
	return rows, nil
}

func (p *Pipeline) now() time.Time {
	if p.Clock == nil {
		return time.Now()
	}
	return p.Clock.Now()
}

func (p *Pipeline) record(outcome Outcome) {
	if p.Metrics == nil {
		return
	}
	p.Metrics.ObserveDuration(outcome.Table, outcome.Duration)
	switch {
	case outcome.Err != nil:
		p.Metrics.RecordFailure(outcome.Table)
	case outcome.Branch == BranchSkipped:
		p.Metrics.RecordSkipped()
	default:
		p.Metrics.RecordRows(outcome.Table, outcome.Rows)
	}
}
