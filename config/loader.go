package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	JobLogger JobLoggerConfig    `mapstructure:"job_logger"`
	Postgres  PostgresCredential `mapstructure:"postgres_credential"`
	Pipeline  PipelineConfig     `mapstructure:"pipeline"`
	Metrics   MetricsConfig      `mapstructure:"metrics"`
	AWS       AWSConfig          `mapstructure:"aws"`
	Env       string             `mapstructure:"-"`
}

type JobLoggerConfig struct {
	Name    string `mapstructure:"name"`
	Project string `mapstructure:"project"`
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
}

type PostgresCredential struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

type PipelineConfig struct {
	InputDir        string `mapstructure:"input_dir"`
	DBName          string `mapstructure:"db_name"`
	BatchSize       int    `mapstructure:"batch_size"`
	Tables          string `mapstructure:"tables"`
	LegacyTableList bool   `mapstructure:"legacy_table_list"`
	ContinueOnError bool   `mapstructure:"continue_on_error"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

type AWSConfig struct {
	Region               string `mapstructure:"region"`
	AccessKeyID          string `mapstructure:"access_key_id"`
	SecretAccessKey      string `mapstructure:"secret_access_key"`
	DBInstanceIdentifier string `mapstructure:"db_instance_identifier"`
	DBInstanceClass      string `mapstructure:"db_instance_class"`
	Engine               string `mapstructure:"engine"`
	AllocatedStorage     int64  `mapstructure:"allocated_storage"`
	MasterUsername       string `mapstructure:"master_username"`
	MasterPassword       string `mapstructure:"master_password"`
	DBName               string `mapstructure:"db_name"`
}

// TableList returns the comma-separated pipeline.tables entries, trimmed.
// It is empty when no tables are configured.
func (p PipelineConfig) TableList() []string {
	var tables []string
	for _, table := range strings.Split(p.Tables, ",") {
		if table = strings.TrimSpace(table); table != "" {
			tables = append(tables, table)
		}
	}
	return tables
}

var defaults = map[string]any{
	"job_logger.level":            "info",
	"postgres_credential.port":    5432,
	"postgres_credential.sslmode": "disable",
	"pipeline.input_dir":          "input_data",
	"pipeline.db_name":            "historical_stock_price",
	"pipeline.batch_size":         1000,
	"pipeline.legacy_table_list":  false,
	"pipeline.continue_on_error":  true,
	"metrics.job":                 "stock_etl",
	"aws.engine":                  "postgres",
	"aws.db_instance_class":       "db.t3.micro",
	"aws.allocated_storage":       20,
}

var envBindings = map[string]string{
	"postgres_credential.password": "POSTGRES_PASSWORD",
	"aws.access_key_id":            "AWS_ACCESS_KEY_ID",
	"aws.secret_access_key":        "AWS_SECRET_ACCESS_KEY",
}

// NewConfig loads the INI configuration from the provided base config reader
// and merges it with the environment-specific configuration when given.
// Secrets set in the environment override the file values.
func NewConfig(baseConfigReader io.Reader, envConfigReader io.Reader, env string) (*Config, error) {
	if env == "" {
		env = "dev"
	}

	v := viper.New()
	v.SetConfigType("ini")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, name := range envBindings {
		if err := v.BindEnv(key, name); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", name, err)
		}
	}

	if err := v.ReadConfig(baseConfigReader); err != nil {
		return nil, fmt.Errorf("error reading base config: %w", err)
	}

	if envConfigReader != nil {
		if err := v.MergeConfig(envConfigReader); err != nil {
			return nil, fmt.Errorf("error merging %s config: %w", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	config.Env = env

	return &config, nil
}
