package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory so no stray .env is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, 400*time.Millisecond, cfg.Autosave.Debounce)
	require.Equal(t, "fs", cfg.Export.Driver)
}

func TestLoadFromFileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "tupad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
transport:
  mode: http
autosave:
  debounce: 250ms
export:
  driver: s3
  s3:
    bucket: from-file
    path_style: true
`), 0o644))

	t.Setenv("TUPAD_CONFIG_PATH", path)
	t.Setenv("TUPAD_SERVER_PORT", "7070")
	t.Setenv("TUPAD_EXPORT_S3_REGION", "ap-southeast-1")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, 250*time.Millisecond, cfg.Autosave.Debounce)
	require.Equal(t, "s3", cfg.Export.Driver)
	require.Equal(t, "from-file", cfg.Export.S3.Bucket)
	require.True(t, cfg.Export.S3.PathStyle)
	require.Equal(t, "ap-southeast-1", cfg.Export.S3.Region)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("TUPAD_DB_PATH=from-dotenv.db\nTUPAD_LOG_LEVEL=debug\n"), 0o644))

	t.Setenv("TUPAD_LOG_LEVEL", "warn")
	// Registered so the value godotenv sets is cleared after the test.
	t.Setenv("TUPAD_DB_PATH", "")
	require.NoError(t, os.Unsetenv("TUPAD_DB_PATH"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-dotenv.db", cfg.DB.Path)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"port not a number":   {"TUPAD_SERVER_PORT": "eighty"},
		"port out of range":   {"TUPAD_SERVER_PORT": "70000"},
		"unknown mode":        {"TUPAD_TRANSPORT_MODE": "grpc"},
		"bad debounce":        {"TUPAD_AUTOSAVE_DEBOUNCE": "soon"},
		"zero debounce":       {"TUPAD_AUTOSAVE_DEBOUNCE": "0s"},
		"unknown driver":      {"TUPAD_EXPORT_DRIVER": "ftp"},
		"s3 without bucket":   {"TUPAD_EXPORT_DRIVER": "s3"},
		"bad metrics toggle":  {"TUPAD_METRICS_ENABLED": "maybe"},
		"bad path style flag": {"TUPAD_EXPORT_S3_PATH_STYLE": "sideways"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	isolate(t)
	t.Setenv("TUPAD_CONFIG_PATH", "does-not-exist.yaml")

	_, err := Load()
	require.Error(t, err)
}
