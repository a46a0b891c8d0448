package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "https://fapi.binance.com", c.Binance.BaseURL)
	assert.Equal(t, "BTCUSDT", c.Screener.ReferenceSymbol)
	assert.Equal(t, 10_000_000.0, c.Screener.MinQuoteVolume)
	assert.Equal(t, 0.001, c.Screener.MaxAbsFunding)
	assert.Equal(t, 5, c.Screener.MaxCandidates)
	assert.Equal(t, "gemini-2.5-flash", c.Gemini.Model)
	assert.InDelta(t, 0.6, float64(c.Gemini.Temperature), 1e-6)
	assert.Equal(t, 1500*time.Millisecond, c.Scan.StatusInterval)
	assert.Equal(t, 30*time.Minute, c.AutoScan.Interval)
	assert.Equal(t, "perpscout.scans", c.Kafka.Topic)
	assert.Equal(t, "info", c.Log.Level)
	assert.Zero(t, c.Memory.MaxKeys)
	assert.Equal(t, 5*time.Minute, c.Memory.CleanupInterval)
	assert.Equal(t, 10, c.Redis.PoolSize)
	assert.Equal(t, 30*time.Second, c.Redis.PoolTimeout)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
screener:
  reference_symbol: ETHUSDT
  max_candidates: 3
autoscan:
  enabled: true
  interval: 5m
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", c.Screener.ReferenceSymbol)
	assert.Equal(t, 3, c.Screener.MaxCandidates)
	assert.True(t, c.AutoScan.Enabled)
	assert.Equal(t, 5*time.Minute, c.AutoScan.Interval)
	assert.Equal(t, "USDT", c.Screener.QuoteAsset)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "gemini:\n  max_picks: 9\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "kafka:\n  enabled: true\n"))
	assert.ErrorContains(t, err, "kafka.brokers")

	_, err = Load(writeConfig(t, "kafka:\n  enabled: true\n  brokers: [a:9092]\n  compression: brotli\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key-1")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "@signals")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ADDR", "cache:6380")

	c, err := LoadWithEnv("")
	require.NoError(t, err)
	assert.Equal(t, "key-1", c.Gemini.APIKey)
	assert.Equal(t, "123:abc", c.Telegram.Token)
	assert.Equal(t, "@signals", c.Telegram.ChatID)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.True(t, c.Redis.Enabled)
	assert.Equal(t, "cache", c.Redis.Host)
	assert.Equal(t, 6380, c.Redis.Port)
}

func TestSampleConfigLoads(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.True(t, c.Binance.StreamEnabled)
	assert.Equal(t, "perpscout.scans.dlq", c.Kafka.Consumer.DLQTopic)
}
