package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/db"
	"github.com/aynalemL/Facebook-Stock-Market-Analysis/pipeline"
)

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Prints the facebook stock price table as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := initializeConfigAndLogger()
			if err != nil {
				return err
			}
			defer closeLogger(closeLog)

			conn, err := db.Connect(cmd.Context(), cfg.Postgres, log)
			if err != nil {
				return err
			}
			defer conn.Close(cmd.Context())

			f, err := pipeline.RawData(cmd.Context(), conn, log)
			if err != nil {
				return fmt.Errorf("error reading raw data: %w", err)
			}
			return f.WriteCSV(cmd.OutOrStdout(), true)
		},
	}
}
