// Package provision creates the RDS instance that hosts the stock database.
package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/rds"
	"github.com/aws/aws-sdk-go/service/rds/rdsiface"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/config"
)

// ErrInstanceExists is returned when the requested instance identifier is taken.
var ErrInstanceExists = errors.New("db instance already exists")

// NewClient returns an RDS client authenticated with a static key pair.
func NewClient(accessKeyID, secretAccessKey, region string) (*rds.RDS, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKeyID, secretAccessKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return rds.New(sess), nil
}

// InstanceInput builds the CreateDBInstance request from the aws config section.
func InstanceInput(cfg config.AWSConfig) *rds.CreateDBInstanceInput {
	input := &rds.CreateDBInstanceInput{
		DBInstanceIdentifier: aws.String(cfg.DBInstanceIdentifier),
		DBInstanceClass:      aws.String(cfg.DBInstanceClass),
		Engine:               aws.String(cfg.Engine),
		AllocatedStorage:     aws.Int64(cfg.AllocatedStorage),
		MasterUsername:       aws.String(cfg.MasterUsername),
		MasterUserPassword:   aws.String(cfg.MasterPassword),
	}
	if cfg.DBName != "" {
		input.DBName = aws.String(cfg.DBName)
	}
	return input
}

// InstanceExists reports whether an instance with identifier exists.
func InstanceExists(ctx context.Context, api rdsiface.RDSAPI, identifier string) (bool, error) {
	_, err := api.DescribeDBInstancesWithContext(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(identifier),
	})
	if err == nil {
		return true, nil
	}
	var aerr awserr.Error
	if errors.As(err, &aerr) && aerr.Code() == rds.ErrCodeDBInstanceNotFoundFault {
		return false, nil
	}
	return false, fmt.Errorf("failed to describe db instance %s: %w", identifier, err)
}

// CreateDBInstance creates the instance described by input unless one with
// the same identifier already exists, in which case ErrInstanceExists is returned.
func CreateDBInstance(ctx context.Context, api rdsiface.RDSAPI, input *rds.CreateDBInstanceInput, logger *slog.Logger) (*rds.DBInstance, error) {
	identifier := aws.StringValue(input.DBInstanceIdentifier)
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid db instance request: %w", err)
	}

	exists, err := InstanceExists(ctx, api, identifier)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Info("Database instance already exists, please double check the identifier and retry", "identifier", identifier)
		return nil, fmt.Errorf("%w: %s", ErrInstanceExists, identifier)
	}

	out, err := api.CreateDBInstanceWithContext(ctx, input)
	if err != nil {
		logger.Error("Failed creating db instance", "identifier", identifier, "error", err)
		return nil, fmt.Errorf("failed to create db instance %s: %w", identifier, err)
	}

	logger.Info("Database instance created", "identifier", aws.StringValue(out.DBInstance.DBInstanceIdentifier))
	return out.DBInstance, nil
}
