package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func Test_parseFile_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	base := func() *Config {
		return &Config{
			ServerURL:      "http://defaults:1234",
			MePath:         "/api/me",
			PersistSession: true,
			RequestTimeout: 42 * time.Second,
		}
	}

	t.Run("json via -config", func(t *testing.T) {
		path := writeTempFile(t, "cfg.json", `{
			"server_url": "https://shop.example",
			"request_timeout": "10s",
			"persist_session": false
		}`)
		os.Args = []string{"testbin", "-config", path}

		cfg := base()
		parseFile(cfg)

		assert.Equal(t, "https://shop.example", cfg.ServerURL)
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
		assert.False(t, cfg.PersistSession)
		assert.Equal(t, "/api/me", cfg.MePath, "absent keys keep earlier values")
	})

	t.Run("yaml via -c", func(t *testing.T) {
		path := writeTempFile(t, "cfg.yml", "me_path: /session/whoami\nrequest_timeout: 1500000000\n")
		os.Args = []string{"testbin", "-c", path}

		cfg := base()
		parseFile(cfg)

		assert.Equal(t, "/session/whoami", cfg.MePath)
		assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
		assert.Equal(t, "http://defaults:1234", cfg.ServerURL)
		assert.True(t, cfg.PersistSession)
	})

	t.Run("no flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := base()
		parseFile(cfg)

		assert.Equal(t, base(), cfg)
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "nope.json")}
		require.Panics(t, func() { parseFile(base()) })
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		path := writeTempFile(t, "bad.json", `{ this is not valid json`)
		os.Args = []string{"testbin", "-config", path}
		require.Panics(t, func() { parseFile(base()) })
	})

	t.Run("invalid duration → panics", func(t *testing.T) {
		path := writeTempFile(t, "bad.yaml", "request_timeout: soon\n")
		os.Args = []string{"testbin", "-c", path}
		require.Panics(t, func() { parseFile(base()) })
	})
}
