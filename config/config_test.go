package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.fogswap.io/v1", cfg.BaseURL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Watch.Interval)
	assert.Equal(t, []string{"finished"}, cfg.Watch.StopStatuses)
	assert.False(t, cfg.AutoDeposit.Enabled)
	assert.Equal(t, "confirmed", cfg.AutoDeposit.Solana.Commitment)
	assert.Equal(t, "http://127.0.0.1:18082/json_rpc", cfg.AutoDeposit.Monero.RPCUrl)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FOGSWAP_BASE_URL", "http://localhost:9000/v1")
	t.Setenv("FOGSWAP_TIMEOUT", "5s")
	t.Setenv("FOGSWAP_LOG_LEVEL", "debug")
	t.Setenv("FOGSWAP_WATCH_STOP_STATUSES", "finished,failed")
	t.Setenv("FOGSWAP_AUTO_DEPOSIT_ENABLED", "true")
	t.Setenv("FOGSWAP_AUTO_DEPOSIT_SOLANA_PRIVATE_KEY", "base58key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/v1", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"finished", "failed"}, cfg.Watch.StopStatuses)
	assert.True(t, cfg.AutoDeposit.Enabled)
	assert.Equal(t, "base58key", cfg.AutoDeposit.Solana.PrivateKey)
}

func TestLoad_Timeout(t *testing.T) {
	tests := []struct {
		env  string
		want time.Duration
	}{
		{env: "0s", want: 30 * time.Second},
		{env: "-1s", want: -time.Second},
		{env: "2m", want: 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			t.Setenv("FOGSWAP_TIMEOUT", tt.env)

			cfg, err := Load("")
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Timeout)
		})
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "fogswap.yaml")
	content := `
base_url: https://staging.fogswap.io/v1
watch:
  interval: 10s
auto_deposit:
  enabled: true
  evm:
    enabled: true
    networks:
      eth:
        rpc_url: https://eth.llamarpc.com
        private_key: "0xabc"
        chain_id: 1
        gas_limit: 60000
  monero:
    enabled: true
    rpc_url: http://10.0.0.2:18083/json_rpc
    account_index: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://staging.fogswap.io/v1", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Watch.Interval)
	assert.Equal(t, []string{"finished"}, cfg.Watch.StopStatuses)

	eth, ok := cfg.AutoDeposit.EVM.Networks["eth"]
	require.True(t, ok)
	assert.Equal(t, int64(1), eth.ChainID)
	require.NotNil(t, eth.GasLimit)
	assert.Equal(t, uint64(60000), *eth.GasLimit)
	assert.Nil(t, eth.GasPrice)

	assert.Equal(t, "http://10.0.0.2:18083/json_rpc", cfg.AutoDeposit.Monero.RPCUrl)
	assert.Equal(t, uint32(2), cfg.AutoDeposit.Monero.AccountIndex)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FOGSWAP_BASE_URL", "not a url")

	_, err := Load("")
	assert.Error(t, err)
}
