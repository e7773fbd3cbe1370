package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/template"
)

// TxBeginner starts a transaction. *pgx.Conn implements it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PartitionScheme stores stock prices in one child table per stock that
// inherits from Parent. A BEFORE INSERT trigger on Parent routes each row to
// the child matching its stock_name and rejects unknown stocks.
type PartitionScheme struct {
	Parent string
	Stocks []string
}

type Partition struct {
	Stock string
	Table string
}

// DefaultPartitionScheme partitions the combined stock table by the two
// stocks the pipeline loads.
var DefaultPartitionScheme = PartitionScheme{
	Parent: "companies_historical_stock_price",
	Stocks: []string{"Facebook", "Google"},
}

func (p PartitionScheme) Partitions() []Partition {
	partitions := make([]Partition, len(p.Stocks))
	for i, stock := range p.Stocks {
		partitions[i] = Partition{Stock: stock, Table: p.Parent + "_" + strings.ToLower(stock)}
	}
	return partitions
}

func (p PartitionScheme) Function() string { return "insert_" + p.Parent }

func (p PartitionScheme) Trigger() string { return "insert_" + p.Parent + "_trigger" }

// Statements renders the DDL of the scheme in execution order.
func (p PartitionScheme) Statements() ([]string, error) {
	if p.Parent == "" || len(p.Stocks) == 0 {
		return nil, fmt.Errorf("partition scheme needs a parent table and at least one stock")
	}

	parent, err := StockTableDDL(p.Parent, true)
	if err != nil {
		return nil, err
	}
	statements := []string{parent}

	for _, partition := range p.Partitions() {
		child, err := template.ExecuteSqlTemplate(sqlFiles, "sql/partition_child.sql", map[string]any{
			"Table":  partition.Table,
			"Stock":  partition.Stock,
			"Parent": p.Parent,
		})
		if err != nil {
			return nil, err
		}
		statements = append(statements, child)
	}

	function, err := template.ExecuteSqlTemplate(sqlFiles, "sql/partition_function.sql", map[string]any{
		"Function": p.Function(),
		"Children": p.Partitions(),
	})
	if err != nil {
		return nil, err
	}

	trigger, err := template.ExecuteSqlTemplate(sqlFiles, "sql/partition_trigger.sql", map[string]any{
		"Trigger":  p.Trigger(),
		"Parent":   p.Parent,
		"Function": p.Function(),
	})
	if err != nil {
		return nil, err
	}

	dropTrigger := fmt.Sprintf("DROP TRIGGER IF EXISTS %s ON %s",
		pgx.Identifier{p.Trigger()}.Sanitize(), pgx.Identifier{p.Parent}.Sanitize())

	return append(statements, function, dropTrigger, trigger), nil
}

// Create executes the scheme in one transaction. Running it again replaces
// the routing function and trigger and keeps existing tables.
func (p PartitionScheme) Create(ctx context.Context, conn TxBeginner, logger *slog.Logger) error {
	statements, err := p.Statements()
	if err != nil {
		return err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, statement := range statements {
		logger.Debug("Executing partition statement", "query", statement)
		if _, err := tx.Exec(ctx, statement); err != nil {
			return fmt.Errorf("failed to create partitioned table %s: %w", p.Parent, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit partitioned table %s: %w", p.Parent, err)
	}

	logger.Info("Partitioned table created successfully", "table", p.Parent, "partitions", len(p.Stocks))
	return nil
}
