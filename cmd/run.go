package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/pipeline"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Runs the stock price ETL job (default command)",
		RunE:  runETL,
	}
}

func runETL(cmd *cobra.Command, _ []string) error {
	cfg, log, closeLog, err := initializeConfigAndLogger()
	if err != nil {
		return err
	}
	defer closeLogger(closeLog)

	log.Info("Starting the ETL job", "env", cfg.Env)

	p, err := pipeline.NewPipeline(cfg, log)
	if err != nil {
		log.Error("Error creating pipeline", "error", err)
		return err
	}
	defer p.Close()

	report, err := p.Run(cmd.Context())

	if pushErr := p.Metrics.Push(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); pushErr != nil {
		log.Warn("Failed to push metrics", "error", pushErr)
	}

	if err != nil {
		log.Error("ETL job failed", "error", err, "failed_tables", len(report.Failed()), "rows", report.Rows())
		return err
	}

	log.Info("ETL job completed", "rows", report.Rows(), "branches", report.Branches())
	fmt.Fprintln(cmd.OutOrStdout(), "Finished running the ETL job.")
	return nil
}
