package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/config"
	"github.com/aynalemL/Facebook-Stock-Market-Analysis/logger"
)

const defaultConfigFile = "config/app.config"

var configFile string

var rootCmd = &cobra.Command{
	Use:           "etl",
	Short:         "Loads historical stock prices and earnings into Postgres",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runETL,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", defaultConfigFile, "path to the INI config file")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newPartitionCmd())
	rootCmd.AddCommand(newProvisionCmd())
	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newAppendCmd())
}

func isRunningOnGitHubActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// envConfigPath returns the environment overlay for path, e.g.
// config/app.prod.config for APP_ENV=prod.
func envConfigPath(path, env string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "." + env + ext
}

// initializeConfigAndLogger loads .env, the config file and its optional
// APP_ENV overlay, and builds the job logger. The returned function closes
// the log file.
func initializeConfigAndLogger() (*config.Config, *slog.Logger, func() error, error) {
	log := logger.NewLogger(os.Stderr, slog.LevelInfo, config.JobLoggerConfig{})
	if !isRunningOnGitHubActions() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Error("Error loading .env file", "error", err)
			return nil, nil, nil, err
		}
	}

	baseConfigFile, err := os.Open(configFile)
	if err != nil {
		log.Error("Error opening base config file", "path", configFile, "error", err)
		return nil, nil, nil, err
	}
	defer baseConfigFile.Close()

	env := os.Getenv("APP_ENV")
	var envConfigReader io.Reader
	if env != "" {
		envConfigFilename := envConfigPath(configFile, env)
		if _, err := os.Stat(envConfigFilename); err == nil {
			envConfigFile, err := os.Open(envConfigFilename)
			if err != nil {
				log.Error("Error opening environment config file", "path", envConfigFilename, "error", err)
				return nil, nil, nil, err
			}
			defer envConfigFile.Close()
			envConfigReader = envConfigFile
		}
	}

	cfg, err := config.NewConfig(baseConfigFile, envConfigReader, env)
	if err != nil {
		log.Error("Error reading config", "error", err)
		return nil, nil, nil, err
	}

	jobLog, closeLog, err := logger.Open(cfg.JobLogger)
	if err != nil {
		log.Error("Error creating logger", "error", err)
		return nil, nil, nil, err
	}

	return cfg, jobLog, closeLog, nil
}

// closeLogger releases the log file, reporting failures on stderr since the
// logger itself is gone.
func closeLogger(closeLog func() error) {
	if err := closeLog(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
