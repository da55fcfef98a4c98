package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	require.NoError(t, LoadConfig(""))
	c := Config()
	assert.Equal(t, "8196", c.ServerPort)
	assert.Equal(t, "memory", c.DB.Type)
	assert.Equal(t, "devnet", c.Ledger.Network)
	assert.Equal(t, 10, c.Quota.Limits["starter"])
	assert.Equal(t, -1, c.Quota.Limits["enterprise"])
	assert.Equal(t, 24*time.Hour, c.Auth.TokenValidityDuration())
}

func TestLoadConfigFile(t *testing.T) {
	content := `
server_port = "9000"
handle_cors = false

[auth]
signing_secret = "secret"
token_validity = "1h"

[database]
type = "postgresql"
host = "localhost"
port = 5432
user = "hallmark"
password = "pw"
dbname = "hallmarks"

[ledger]
network = "mainnet-beta"
rpc_endpoint = "https://example.invalid/rpc"
operator_key = "somekey"
anchor_timeout = "30s"

[quota.limits]
starter = 5
professional = 50
enterprise = -1
`
	path := filepath.Join(t.TempDir(), "hallmarksrv.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, LoadConfig(path))
	t.Cleanup(func() { _ = LoadConfig("") })

	c := Config()
	assert.Equal(t, "9000", c.ServerPort)
	assert.False(t, c.HandleCORS)
	assert.Equal(t, "mainnet-beta", c.Ledger.Network)
	assert.Equal(t, 30*time.Second, c.Ledger.AnchorTimeoutDuration())
	// Unset fields still pick up defaults.
	assert.Equal(t, "https://rpc.ankr.com/solana_devnet", c.Ledger.FallbackEndpoint)
	assert.Equal(t, "2s", c.Ledger.PollInterval)
	assert.Equal(t, 5, c.Quota.Limits["starter"])
	assert.Equal(t, "host=localhost port=5432 user=hallmark password=pw dbname=hallmarks sslmode=disable", c.DB.Dsn())
}

func TestLoadConfigErrors(t *testing.T) {
	assert.Error(t, LoadConfig("/nonexistent/hallmarksrv.conf"))

	path := filepath.Join(t.TempDir(), "bad.conf")
	require.NoError(t, os.WriteFile(path, []byte("server_port = ["), 0o600))
	assert.Error(t, LoadConfig(path))
}

func TestDurationFallback(t *testing.T) {
	l := LedgerParam{PollInterval: "not-a-duration", VerifyTimeout: "-5s"}
	assert.Equal(t, 2*time.Second, l.PollIntervalDuration())
	assert.Equal(t, 10*time.Second, l.VerifyTimeoutDuration())
}
