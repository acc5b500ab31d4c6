package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config lookups at empty temp directories
func isolate(t *testing.T) string {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"NUTRIBOARD_STORE", "NUTRIBOARD_DB_PATH", "NUTRIBOARD_DATABASE_URL",
		"NUTRIBOARD_DATABASE_URL_FILE", "NUTRIBOARD_SOCKET", "NUTRIBOARD_LOG_LEVEL",
		"NUTRIBOARD_REPAIR_INTERVAL", "NUTRIBOARD_EVENT_DEBOUNCE", "NUTRIBOARD_THEME_FILE",
	} {
		t.Setenv(key, "")
	}
	return xdg
}

func writeConfig(t *testing.T, xdg, content string) {
	t.Helper()
	dir := filepath.Join(xdg, "nutriboard")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
}

func TestLoadConfigWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100*time.Millisecond, cfg.EventDebounce)
	assert.Zero(t, cfg.RepairInterval)
	assert.Equal(t, DefaultColorScheme(), cfg.ColorScheme)
}

func TestLoadConfigWithFile(t *testing.T) {
	xdg := isolate(t)
	writeConfig(t, xdg, `store: sqlite
db_path: /tmp/board.db
log_level: debug
repair_interval: 5m
theme:
  preset: monochrome
  accent: "#123456"
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/board.db", cfg.DBPath)
	assert.Equal(t, 5*time.Minute, cfg.RepairInterval)
	assert.Equal(t, "#123456", cfg.ColorScheme.Accent)
	assert.Equal(t, MonochromeColorScheme().Paused, cfg.ColorScheme.Paused)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	xdg := isolate(t)
	writeConfig(t, xdg, "store: [unclosed")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	xdg := isolate(t)
	writeConfig(t, xdg, "log_level: debug\nrepair_interval: 5m\n")
	t.Setenv("NUTRIBOARD_LOG_LEVEL", "warn")
	t.Setenv("NUTRIBOARD_REPAIR_INTERVAL", "30s")
	t.Setenv("NUTRIBOARD_SOCKET", "/tmp/nb.sock")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.RepairInterval)
	socket, err := cfg.Socket()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/nb.sock", socket)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("NUTRIBOARD_DB_PATH=/from/dotenv.db\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("NUTRIBOARD_DB_PATH") })
	// godotenv never overrides a variable that is present, even when empty
	require.NoError(t, os.Unsetenv("NUTRIBOARD_DB_PATH"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/from/dotenv.db", cfg.DBPath)
}

func TestLoadConfig_DatabaseURLFromFile(t *testing.T) {
	isolate(t)
	secret := filepath.Join(t.TempDir(), "dsn")
	require.NoError(t, os.WriteFile(secret, []byte("postgres://u:p@localhost/nb\n"), 0o600))
	t.Setenv("NUTRIBOARD_STORE", "postgres")
	t.Setenv("NUTRIBOARD_DATABASE_URL_FILE", secret)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost/nb", cfg.DatabaseURL)
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{"NUTRIBOARD_STORE": "mongo"}},
		{"postgres without url", map[string]string{"NUTRIBOARD_STORE": "postgres"}},
		{"bad interval", map[string]string{"NUTRIBOARD_REPAIR_INTERVAL": "soon"}},
		{"negative interval", map[string]string{"NUTRIBOARD_REPAIR_INTERVAL": "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	for level, want := range map[string]string{"debug": "DEBUG", "WARN": "WARN", "error": "ERROR", "": "INFO", "chatty": "INFO"} {
		cfg := &Config{LogLevel: level}
		assert.Equal(t, want, cfg.SlogLevel().String(), level)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)
	cfg := Default()
	cfg.RepairInterval = time.Minute

	require.NoError(t, cfg.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, loaded.RepairInterval)
}
