package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProperties(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "indexer.properties")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.RPCURL)
	assert.Equal(t, "confirmed", cfg.Commitment)
	assert.Equal(t, 25, cfg.Concurrency)
	assert.Equal(t, 10, cfg.ReprocessConcurrency)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, []string{SinkAvro}, cfg.SinkNames())
	assert.Empty(t, cfg.S3Bucket)
	assert.NoError(t, cfg.Validate())
}

func TestLoadProperties(t *testing.T) {
	path := writeProperties(t, `
# local node
rpc.url = http://localhost:8899
rpc.requests_per_second = 40
indexer.concurrency = 8
output.path = /tmp/trades
output.sinks = avro, Parquet ,redis,avro
s3.bucket = trades-archive
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8899", cfg.RPCURL)
	assert.Equal(t, 40.0, cfg.RequestsPerSecond)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 10, cfg.ReprocessConcurrency)
	assert.Equal(t, "/tmp/trades", cfg.OutputPath)
	assert.Equal(t, []string{SinkAvro, SinkParquet, SinkRedis}, cfg.SinkNames())
	assert.Equal(t, "trades-archive", cfg.S3Bucket)
	assert.Equal(t, "trades", cfg.S3Prefix)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeProperties(t, "rpc.url = http://from-file:8899\n")
	t.Setenv("SOLANA_RPC_URL", "http://from-env:8899")
	t.Setenv("REPROCESS_CONCURRENCY", "3")
	t.Setenv("RETRY_BACKOFF", "2s")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:8899", cfg.RPCURL)
	assert.Equal(t, 3, cfg.ReprocessConcurrency)
	assert.Equal(t, 2*time.Second, cfg.RetryBackoff)
	assert.Equal(t, 3, cfg.MaxRetries, "unparsable values keep the file value")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.properties"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty rpc url", func(c *Config) { c.RPCURL = "" }},
		{"bad commitment", func(c *Config) { c.Commitment = "recent" }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }},
		{"unknown sink", func(c *Config) { c.Sinks = "avro,kafka" }},
		{"avro without path", func(c *Config) { c.OutputPath = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	cfg.LogFile = filepath.Join(t.TempDir(), "indexer.log")

	log, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("slot", 42).Info("block decoded")
	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "slot=42")

	cfg.LogLevel = "loud"
	_, err = NewLogger(cfg)
	assert.Error(t, err)
}
