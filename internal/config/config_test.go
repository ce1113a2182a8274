package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInitializeDefaults(t *testing.T) {
	path := writeConfig(t, `
ingest:
  local_folder: /tmp/messages
`)

	cfg, err := Initialize(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "INBOX", cfg.Email.Folder)
	assert.Equal(t, "Steam Store", cfg.Email.FromFilter)
	assert.Equal(t, "steam-ledger", cfg.Email.SecretID)
	assert.Equal(t, 4, cfg.Ingest.Threads)
	assert.Equal(t, 100, cfg.Ingest.EmailsPerBatch)
	assert.False(t, cfg.Ingest.MarkSeen)
	assert.Equal(t, "/tmp/messages", cfg.Ingest.LocalFolder)
}

func TestInitializeFileValues(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
email:
  address: trader@example.com
  server: imap.example.com
  folder: Steam
ingest:
  threads: 8
  database: /var/lib/ledger.db
  emails_per_batch: 25
  mark_seen: true
`)

	cfg, err := Initialize(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "trader@example.com", cfg.Email.Address)
	assert.Equal(t, "Steam", cfg.Email.Folder)
	assert.Equal(t, 8, cfg.Ingest.Threads)
	assert.Equal(t, "/var/lib/ledger.db", cfg.Ingest.Database)
	assert.Equal(t, 25, cfg.Ingest.EmailsPerBatch)
	assert.True(t, cfg.Ingest.MarkSeen)
}

func TestInitializeEnvOverride(t *testing.T) {
	path := writeConfig(t, `
ingest:
  local_folder: /tmp/messages
`)
	t.Setenv("STEAM_INGEST_THREADS", "16")
	t.Setenv("STEAM_LOG_LEVEL", "warn")

	cfg, err := Initialize(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Ingest.Threads)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestInitializeValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"bad log level",
			"log:\n  level: verbose\ningest:\n  local_folder: /tmp/x\n",
			"invalid log level",
		},
		{
			"bad log format",
			"log:\n  format: xml\ningest:\n  local_folder: /tmp/x\n",
			"invalid log format",
		},
		{
			"zero threads",
			"ingest:\n  threads: 0\n  local_folder: /tmp/x\n",
			"ingest.threads",
		},
		{
			"no mailbox and no local folder",
			"email:\n  address: trader@example.com\n",
			"email.address and email.server",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Initialize(writeConfig(t, tc.content))
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("STEAM_LEDGER_PASSWORD", "hunter2")

	secret, err := EnvCredentials{}.GetSecret("steam-ledger", "trader@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", secret)

	_, err = EnvCredentials{}.GetSecret("other-id", "trader@example.com")
	assert.ErrorContains(t, err, "OTHER_ID_PASSWORD")
}
