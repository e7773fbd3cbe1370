package provision

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/rds"
	"github.com/aws/aws-sdk-go/service/rds/rdsiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/config"
)

// mockRDS embeds the interface so only the methods under test need bodies.
type mockRDS struct {
	rdsiface.RDSAPI
	DescribeErr error
	CreateErr   error
	created     []*rds.CreateDBInstanceInput
}

func (m *mockRDS) DescribeDBInstancesWithContext(_ aws.Context, in *rds.DescribeDBInstancesInput, _ ...request.Option) (*rds.DescribeDBInstancesOutput, error) {
	if m.DescribeErr != nil {
		return nil, m.DescribeErr
	}
	return &rds.DescribeDBInstancesOutput{
		DBInstances: []*rds.DBInstance{{DBInstanceIdentifier: in.DBInstanceIdentifier}},
	}, nil
}

func (m *mockRDS) CreateDBInstanceWithContext(_ aws.Context, in *rds.CreateDBInstanceInput, _ ...request.Option) (*rds.CreateDBInstanceOutput, error) {
	m.created = append(m.created, in)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return &rds.CreateDBInstanceOutput{
		DBInstance: &rds.DBInstance{DBInstanceIdentifier: in.DBInstanceIdentifier},
	}, nil
}

var notFound = awserr.New(rds.ErrCodeDBInstanceNotFoundFault, "DBInstance stock-db not found", nil)

func testInput() *rds.CreateDBInstanceInput {
	return InstanceInput(config.AWSConfig{
		DBInstanceIdentifier: "stock-db",
		DBInstanceClass:      "db.t3.micro",
		Engine:               "postgres",
		AllocatedStorage:     20,
		MasterUsername:       "postgres",
		MasterPassword:       "secret123",
		DBName:               "historical_stock_price",
	})
}

func TestCreateDBInstance(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	tests := []struct {
		name        string
		api         *mockRDS
		wantErr     error
		wantErrText string
		wantCreates int
	}{
		{
			name:        "creates missing instance",
			api:         &mockRDS{DescribeErr: notFound},
			wantCreates: 1,
		},
		{
			name:        "existing instance",
			api:         &mockRDS{},
			wantErr:     ErrInstanceExists,
			wantCreates: 0,
		},
		{
			name:        "describe fails",
			api:         &mockRDS{DescribeErr: errors.New("throttled")},
			wantErrText: "failed to describe db instance stock-db: throttled",
		},
		{
			name:        "create fails",
			api:         &mockRDS{DescribeErr: notFound, CreateErr: errors.New("quota exceeded")},
			wantErrText: "failed to create db instance stock-db: quota exceeded",
			wantCreates: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instance, err := CreateDBInstance(context.Background(), tt.api, testInput(), logger)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrText != "":
				assert.EqualError(t, err, tt.wantErrText)
			default:
				require.NoError(t, err)
				assert.Equal(t, "stock-db", aws.StringValue(instance.DBInstanceIdentifier))
			}
			assert.Len(t, tt.api.created, tt.wantCreates)
		})
	}
}

func TestCreateDBInstance_InvalidInput(t *testing.T) {
	api := &mockRDS{DescribeErr: notFound}
	_, err := CreateDBInstance(context.Background(), api, &rds.CreateDBInstanceInput{}, slog.New(slog.NewTextHandler(os.Stdout, nil)))

	assert.ErrorContains(t, err, "invalid db instance request")
	assert.Empty(t, api.created)
}

func TestInstanceInput(t *testing.T) {
	input := testInput()
	assert.Equal(t, "stock-db", aws.StringValue(input.DBInstanceIdentifier))
	assert.Equal(t, int64(20), aws.Int64Value(input.AllocatedStorage))
	assert.Equal(t, "historical_stock_price", aws.StringValue(input.DBName))
	assert.NoError(t, input.Validate())

	assert.Nil(t, InstanceInput(config.AWSConfig{}).DBName)
}

func TestNewClient(t *testing.T) {
	client, err := NewClient("AKIA_TEST", "secret", "eu-west-1")
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", aws.StringValue(client.Config.Region))
}
