package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvConfigPath(t *testing.T) {
	tests := []struct {
		path string
		env  string
		want string
	}{
		{path: "config/app.config", env: "prod", want: "config/app.prod.config"},
		{path: "app.ini", env: "test", want: "app.test.ini"},
		{path: "settings", env: "dev", want: "settings.dev"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, envConfigPath(tt.path, tt.env))
		})
	}
}

func TestInitializeConfigAndLogger(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "app.config")
	require.NoError(t, os.WriteFile(base, []byte("[job_logger]\nname = stock_etl\nlevel = debug\n\n[pipeline]\nbatch_size = 500\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.prod.config"), []byte("[pipeline]\nbatch_size = 2000\n"), 0o644))

	previous := configFile
	t.Cleanup(func() { configFile = previous })
	configFile = base

	t.Setenv("GITHUB_ACTIONS", "true")

	t.Run("base only", func(t *testing.T) {
		t.Setenv("APP_ENV", "")
		cfg, log, closeLog, err := initializeConfigAndLogger()
		require.NoError(t, err)
		defer closeLog()

		assert.NotNil(t, log)
		assert.Equal(t, 500, cfg.Pipeline.BatchSize)
		assert.Equal(t, "dev", cfg.Env)
	})

	t.Run("environment overlay", func(t *testing.T) {
		t.Setenv("APP_ENV", "prod")
		cfg, _, closeLog, err := initializeConfigAndLogger()
		require.NoError(t, err)
		defer closeLog()

		assert.Equal(t, 2000, cfg.Pipeline.BatchSize)
		assert.Equal(t, "stock_etl", cfg.JobLogger.Name)
		assert.Equal(t, "prod", cfg.Env)
	})

	t.Run("missing overlay is ignored", func(t *testing.T) {
		t.Setenv("APP_ENV", "staging")
		cfg, _, closeLog, err := initializeConfigAndLogger()
		require.NoError(t, err)
		defer closeLog()

		assert.Equal(t, 500, cfg.Pipeline.BatchSize)
	})

	t.Run("missing base config", func(t *testing.T) {
		configFile = filepath.Join(dir, "absent.config")
		t.Cleanup(func() { configFile = base })

		_, _, _, err := initializeConfigAndLogger()
		assert.Error(t, err)
	})
}
