package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every config search location at empty temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", filepath.Join(dir, "home"))
	for _, key := range []string{"HABITS_FILE", "LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT", "LOG_FILENAME", "ENABLE_METRICS", "METRICS_TEXTFILE", "APP_NAME", "APP_ENVIRONMENT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "habits", cfg.App.Name)
	assert.Equal(t, DefaultHabitFile, cfg.Storage.File)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "stderr", cfg.Logger.Output)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("HABITS_FILE", "/tmp/other.json")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ENABLE_METRICS", "true")
	t.Setenv("METRICS_TEXTFILE", "/tmp/habits.prom")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.json", cfg.Storage.File)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/tmp/habits.prom", cfg.Metrics.Textfile)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "habits.yaml")
	content := `
storage:
  file: /var/lib/habits/habits.json
logger:
  level: info
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/habits/habits.json", cfg.Storage.File)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoad_XDGConfigFile(t *testing.T) {
	dir := isolate(t)
	configDir := filepath.Join(dir, "xdg", "habits")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("storage:\n  file: from-xdg.json\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-xdg.json", cfg.Storage.File)
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown log format", env: map[string]string{"LOG_FORMAT": "xml"}},
		{name: "unknown log level", env: map[string]string{"LOG_LEVEL": "loud"}},
		{name: "file output without filename", env: map[string]string{"LOG_OUTPUT": "file"}},
		{name: "metrics without textfile", env: map[string]string{"ENABLE_METRICS": "true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}
