package cmd

import (
	"errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/spf13/cobra"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/provision"
)

func newProvisionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Creates the RDS database instance described in the aws config section",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := initializeConfigAndLogger()
			if err != nil {
				return err
			}
			defer closeLogger(closeLog)

			client, err := provision.NewClient(cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey, cfg.AWS.Region)
			if err != nil {
				return err
			}

			instance, err := provision.CreateDBInstance(cmd.Context(), client, provision.InstanceInput(cfg.AWS), log)
			if errors.Is(err, provision.ErrInstanceExists) {
				return nil
			}
			if err != nil {
				return err
			}

			log.Info("Database instance status", "identifier", aws.StringValue(instance.DBInstanceIdentifier), "status", aws.StringValue(instance.DBInstanceStatus))
			return nil
		},
	}
}
