package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/db"
	"github.com/aynalemL/Facebook-Stock-Market-Analysis/extract"
	"github.com/aynalemL/Facebook-Stock-Market-Analysis/pipeline"
)

func newAppendCmd() *cobra.Command {
	var (
		table     string
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "append <csv-file>",
		Short: "Appends the rows of a CSV file to an existing table in batches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := initializeConfigAndLogger()
			if err != nil {
				return err
			}
			defer closeLogger(closeLog)

			if !cmd.Flags().Changed("batch-size") {
				batchSize = cfg.Pipeline.BatchSize
			}

			reader, err := extract.NewCSVReader(log)
			if err != nil {
				return fmt.Errorf("error creating CSV reader: %w", err)
			}
			defer reader.Close()

			conn, err := db.Connect(cmd.Context(), cfg.Postgres, log)
			if err != nil {
				return err
			}
			defer conn.Close(cmd.Context())

			result, err := pipeline.Append(cmd.Context(), reader, conn, args[0], table, batchSize, log)
			if err != nil {
				log.Error("Append failed", "error", err, "batches", result.Batches, "rows", result.Rows)
				return err
			}
			log.Info("Append completed", "table", table, "batches", result.Batches, "rows", result.Rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&table, "table", pipeline.FacebookTable, "table to append to")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "rows per batch (defaults to pipeline.batch_size)")
	return cmd
}
