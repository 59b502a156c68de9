package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "market_summary.json", cfg.Report.OutputPath)
	assert.Equal(t, 5, cfg.Report.TopN)
	assert.Equal(t, 0, cfg.Report.EveryMin)
	assert.Equal(t, "ETH", cfg.Capture.Asset)
	assert.Equal(t, "snapshot.json", cfg.Capture.OutputPath)
	assert.Equal(t, 20, cfg.Capture.TimeoutSec)
	assert.Equal(t, 3, cfg.Capture.ConnectGraceSec)
	assert.Equal(t, DefaultRestURL, cfg.Exchange.Hyperliquid.RestURL)
	assert.Equal(t, DefaultWsURL, cfg.Exchange.Hyperliquid.WsURL)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "hlsnap:report", cfg.Redis.Channel)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[app]
log_level = "debug"

[report]
output_path = "out/summary.json"
top_n = 10
every_min = 15

[capture]
asset = " btc "
timeout_sec = 5

[exchange.hyperliquid]
rest_url = "https://api.hyperliquid-testnet.xyz"
ws_url = "wss://api.hyperliquid-testnet.xyz/ws"
requests_per_sec = 5

[redis]
enabled = true
addr = "127.0.0.1:6379"
db = 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "out/summary.json", cfg.Report.OutputPath)
	assert.Equal(t, 10, cfg.Report.TopN)
	assert.Equal(t, 15, cfg.Report.EveryMin)
	assert.Equal(t, "BTC", cfg.Capture.Asset)
	assert.Equal(t, 5, cfg.Capture.TimeoutSec)
	assert.Equal(t, 3, cfg.Capture.ConnectGraceSec)
	assert.Equal(t, "https://api.hyperliquid-testnet.xyz", cfg.Exchange.Hyperliquid.RestURL)
	assert.Equal(t, 5.0, cfg.Exchange.Hyperliquid.RequestsPerSec)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "bad log level",
			body: "[app]\nlog_level = \"loud\"\n",
			want: "app.log_level",
		},
		{
			name: "rest url scheme",
			body: "[exchange.hyperliquid]\nrest_url = \"wss://api.hyperliquid.xyz\"\n",
			want: "exchange.hyperliquid.rest_url",
		},
		{
			name: "ws url scheme",
			body: "[exchange.hyperliquid]\nws_url = \"https://api.hyperliquid.xyz/ws\"\n",
			want: "exchange.hyperliquid.ws_url",
		},
		{
			name: "redis without addr",
			body: "[redis]\nenabled = true\n",
			want: "redis.addr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	_, err := Load(writeConfig(t, "[report\ntop_n = 3"))
	assert.Error(t, err)
}

func TestNormalizeAsset(t *testing.T) {
	assert.Equal(t, "ETH", NormalizeAsset(" eth "))
	assert.Equal(t, "", NormalizeAsset("   "))
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 5, cfg.Report.TopN)
	assert.Equal(t, "ETH", cfg.Capture.Asset)
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "configs", "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "ETH", cfg.Capture.Asset)
	assert.Equal(t, 5, cfg.Report.TopN)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Report.Quiet)
	assert.Equal(t, DefaultWsURL, cfg.Exchange.Hyperliquid.WsURL)
}

func TestLoadMaxRetries(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"absent", "[exchange.hyperliquid]\nrequests_per_sec = 1\n", 2},
		{"zero disables retries", "[exchange.hyperliquid]\nmax_retries = 0\n", 0},
		{"explicit", "[exchange.hyperliquid]\nmax_retries = 5\n", 5},
		{"negative", "[exchange.hyperliquid]\nmax_retries = -1\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Exchange.Hyperliquid.MaxRetries)
		})
	}
	assert.Equal(t, 2, Default().Exchange.Hyperliquid.MaxRetries)
}
