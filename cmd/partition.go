package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/db"
)

func newPartitionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "partition",
		Short: "Creates the stock price table partitioned by stock name",
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

			if err := db.DefaultPartitionScheme.Create(cmd.Context(), conn, log); err != nil {
				return fmt.Errorf("error creating partitions: %w", err)
			}
			return nil
		},
	}
}
