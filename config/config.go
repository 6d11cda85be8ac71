package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/magiconair/properties"
)

// DefaultFile is read when no explicit path is given and it exists.
const DefaultFile = "indexer.properties"

// Sink names accepted in output.sinks.
const (
	SinkAvro       = "avro"
	SinkParquet    = "parquet"
	SinkCSV        = "csv"
	SinkClickHouse = "clickhouse"
	SinkRedis      = "redis"
)

var knownSinks = map[string]bool{
	SinkAvro:       true,
	SinkParquet:    true,
	SinkCSV:        true,
	SinkClickHouse: true,
	SinkRedis:      true,
}

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	RPCURL            string        `properties:"rpc.url,default=https://api.mainnet-beta.solana.com"`
	Commitment        string        `properties:"rpc.commitment,default=confirmed"`
	RequestsPerSecond float64       `properties:"rpc.requests_per_second,default=0"`
	Burst             int           `properties:"rpc.burst,default=1"`
	MaxRetries        int           `properties:"rpc.max_retries,default=3"`
	RetryBackoff      time.Duration `properties:"rpc.retry_backoff,default=500ms"`

	Concurrency          int           `properties:"indexer.concurrency,default=25"`
	ReprocessConcurrency int           `properties:"indexer.reprocess_concurrency,default=10"`
	PollInterval         time.Duration `properties:"indexer.poll_interval,default=2s"`

	OutputPath string `properties:"output.path,default=./data"`
	// Comma separated list of sink names.
	Sinks string `properties:"output.sinks,default=avro"`

	S3Endpoint  string `properties:"s3.endpoint,default="`
	S3Region    string `properties:"s3.region,default=us-east-1"`
	S3Bucket    string `properties:"s3.bucket,default="`
	S3Prefix    string `properties:"s3.prefix,default=trades"`
	S3AccessKey string `properties:"s3.access_key,default="`
	S3SecretKey string `properties:"s3.secret_key,default="`

	ClickHouseAddr     string `properties:"clickhouse.addr,default=localhost:9000"`
	ClickHouseDatabase string `properties:"clickhouse.database,default=default"`
	ClickHouseUsername string `properties:"clickhouse.username,default=default"`
	ClickHousePassword string `properties:"clickhouse.password,default="`

	RedisAddr string `properties:"redis.addr,default=localhost:6379"`

	MetricsAddr string `properties:"metrics.addr,default="`

	LogLevel      string `properties:"log.level,default=info"`
	LogFile       string `properties:"log.file,default="`
	LogMaxSizeMB  int    `properties:"log.max_size_mb,default=100"`
	LogMaxBackups int    `properties:"log.max_backups,default=5"`
	LogMaxAgeDays int    `properties:"log.max_age_days,default=14"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := properties.NewProperties().Decode(cfg); err != nil {
		panic(fmt.Sprintf("decode default config: %v", err))
	}
	return cfg
}

// Load reads path (or DefaultFile when path is empty and the file exists),
// then a .env file if present, then applies environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	p := properties.NewProperties()
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		var err error
		p, err = properties.LoadFile(path, properties.UTF8)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg, err := decode(p)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(p *properties.Properties) (*Config, error) {
	cfg := &Config{}
	if err := p.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.RPCURL = getEnv("SOLANA_RPC_URL", c.RPCURL)
	c.Commitment = getEnv("SOLANA_COMMITMENT", c.Commitment)
	c.RequestsPerSecond = getFloatEnv("RPC_REQUESTS_PER_SECOND", c.RequestsPerSecond)
	c.Burst = getIntEnv("RPC_BURST", c.Burst)
	c.MaxRetries = getIntEnv("MAX_RETRIES", c.MaxRetries)
	c.RetryBackoff = getDurationEnv("RETRY_BACKOFF", c.RetryBackoff)

	c.Concurrency = getIntEnv("INDEXER_CONCURRENCY", c.Concurrency)
	c.ReprocessConcurrency = getIntEnv("REPROCESS_CONCURRENCY", c.ReprocessConcurrency)
	c.PollInterval = getDurationEnv("POLL_INTERVAL", c.PollInterval)

	c.OutputPath = getEnv("OUTPUT_PATH", c.OutputPath)
	c.Sinks = getEnv("OUTPUT_SINKS", c.Sinks)

	c.S3Endpoint = getEnv("S3_ENDPOINT", c.S3Endpoint)
	c.S3Region = getEnv("S3_REGION", c.S3Region)
	c.S3Bucket = getEnv("S3_BUCKET", c.S3Bucket)
	c.S3Prefix = getEnv("S3_PREFIX", c.S3Prefix)
	c.S3AccessKey = getEnv("S3_ACCESS_KEY", c.S3AccessKey)
	c.S3SecretKey = getEnv("S3_SECRET_KEY", c.S3SecretKey)

	c.ClickHouseAddr = getEnv("CLICKHOUSE_ADDR", c.ClickHouseAddr)
	c.ClickHouseDatabase = getEnv("CLICKHOUSE_DATABASE", c.ClickHouseDatabase)
	c.ClickHouseUsername = getEnv("CLICKHOUSE_USERNAME", c.ClickHouseUsername)
	c.ClickHousePassword = getEnv("CLICKHOUSE_PASSWORD", c.ClickHousePassword)

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.MetricsAddr = getEnv("METRICS_ADDR", c.MetricsAddr)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
}

// SinkNames returns the enabled sinks, lower-cased and de-duplicated, in
// the order they were listed.
func (c *Config) SinkNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, name := range strings.Split(c.Sinks, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

func (c *Config) Validate() error {
	var errs []error
	if c.RPCURL == "" {
		errs = append(errs, errors.New("rpc.url is required"))
	}
	switch c.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		errs = append(errs, fmt.Errorf("rpc.commitment %q is not one of processed, confirmed or finalized", c.Commitment))
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("rpc.requests_per_second must not be negative"))
	}
	if c.MaxRetries < 1 {
		errs = append(errs, errors.New("rpc.max_retries must be at least 1"))
	}
	if c.Concurrency < 1 || c.ReprocessConcurrency < 1 {
		errs = append(errs, errors.New("indexer concurrency must be at least 1"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("indexer.poll_interval must be positive"))
	}
	for _, name := range c.SinkNames() {
		if !knownSinks[name] {
			errs = append(errs, fmt.Errorf("unknown sink %q", name))
		}
		if (name == SinkAvro || name == SinkCSV) && c.OutputPath == "" {
			errs = append(errs, fmt.Errorf("sink %s needs output.path", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
