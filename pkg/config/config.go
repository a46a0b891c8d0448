package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"PerpScout/pkg/logger"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string        `yaml:"environment" default:"development" validate:"required"`
	Log         logger.Config `yaml:"log"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"90s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Binance struct {
		BaseURL        string        `yaml:"base_url" default:"https://fapi.binance.com" validate:"required,url"`
		StreamURL      string        `yaml:"stream_url" default:"wss://fstream.binance.com/ws/!markPrice@arr@1s"`
		StreamEnabled  bool          `yaml:"stream_enabled"`
		Timeout        time.Duration `yaml:"timeout" default:"15s"`
		RatePerSecond  float64       `yaml:"rate_per_second" default:"5" validate:"gt=0"`
		RateBurst      int           `yaml:"rate_burst" default:"10" validate:"gte=1"`
		BreakerFails   uint32        `yaml:"breaker_failures" default:"3" validate:"gte=1"`
		BreakerTimeout time.Duration `yaml:"breaker_timeout" default:"60s"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
	} `yaml:"binance"`
	Screener struct {
		ReferenceSymbol string  `yaml:"reference_symbol" default:"BTCUSDT" validate:"required"`
		QuoteAsset      string  `yaml:"quote_asset" default:"USDT" validate:"required"`
		MinQuoteVolume  float64 `yaml:"min_quote_volume" default:"10000000" validate:"gte=0"`
		MinOpenInterest float64 `yaml:"min_open_interest" default:"1000000" validate:"gte=0"`
		MinVolatility   float64 `yaml:"min_volatility" default:"2" validate:"gte=0"`
		MaxAbsFunding   float64 `yaml:"max_abs_funding" default:"0.001" validate:"gte=0"`
		MaxCandidates   int     `yaml:"max_candidates" default:"5" validate:"gte=1,lte=50"`
		TrendBand       float64 `yaml:"trend_band" default:"1" validate:"gte=0"`
	} `yaml:"screener"`
	Sentiment struct {
		CorpusPath  string   `yaml:"corpus_path"`
		Bullish     []string `yaml:"bullish"`
		Bearish     []string `yaml:"bearish"`
		Influencers []string `yaml:"influencers"`
		Media       []string `yaml:"media"`
	} `yaml:"sentiment"`
	Gemini struct {
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model" default:"gemini-2.5-flash" validate:"required"`
		Temperature float32       `yaml:"temperature" default:"0.6" validate:"gte=0,lte=2"`
		MaxPicks    int           `yaml:"max_picks" default:"3" validate:"gte=1,lte=5"`
		Timeout     time.Duration `yaml:"timeout" default:"60s"`
	} `yaml:"gemini"`
	Telegram struct {
		APIEndpoint   string        `yaml:"api_endpoint" default:"https://api.telegram.org/bot%s/%s" validate:"required"`
		Token         string        `yaml:"token"`
		ChatID        string        `yaml:"chat_id"`
		AutoNotify    bool          `yaml:"auto_notify"`
		Timeout       time.Duration `yaml:"timeout" default:"15s"`
		RatePerSecond float64       `yaml:"rate_per_second" default:"20" validate:"gt=0"`
		RateBurst     int           `yaml:"rate_burst" default:"30" validate:"gte=1"`
	} `yaml:"telegram"`
	Scan struct {
		Timeout        time.Duration `yaml:"timeout" default:"90s"`
		StatusInterval time.Duration `yaml:"status_interval" default:"1500ms"`
		LockTTL        time.Duration `yaml:"lock_ttl" default:"3m"`
	} `yaml:"scan"`
	AutoScan struct {
		Enabled  bool          `yaml:"enabled"`
		Interval time.Duration `yaml:"interval" default:"30m"`
	} `yaml:"autoscan"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"perpscout"`

		PoolSize     int           `yaml:"pool_size" default:"10" validate:"gte=1"`
		MinIdleConns int           `yaml:"min_idle_conns" default:"2"`
		PoolTimeout  time.Duration `yaml:"pool_timeout" default:"30s"`
	} `yaml:"redis"`
	// Memory backs the journal and scan lock when Redis is disabled.
	Memory struct {
		// MaxKeys of 0 keeps every key; journal entries are never evicted.
		MaxKeys         int           `yaml:"max_keys" validate:"gte=0"`
		CleanupInterval time.Duration `yaml:"cleanup_interval" default:"5m"`
	} `yaml:"memory"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"perpscout.scans"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id" default:"perpscout-signals"`
			Workers    int           `yaml:"workers" default:"2" validate:"gte=1"`
			BufferSize int           `yaml:"buffer_size" default:"64" validate:"gte=1"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled     bool          `yaml:"enabled"`
		Host        string        `yaml:"host" default:"localhost"`
		Port        int           `yaml:"port" default:"9000"`
		Database    string        `yaml:"database" default:"perpscout"`
		User        string        `yaml:"user" default:"default"`
		Password    string        `yaml:"password"`
		UseHTTP     bool          `yaml:"use_http"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"clickhouse"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file. An empty path yields pure defaults.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		c.Binance.BaseURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Redis.Host = host
		if ok {
			if p, err := strconv.Atoi(port); err == nil {
				c.Redis.Port = p
			}
		}
		c.Redis.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Kafka.Consumer.Enabled && !c.Kafka.Enabled {
		return fmt.Errorf("kafka.consumer requires kafka.enabled")
	}
	if c.AutoScan.Interval <= 0 {
		return fmt.Errorf("autoscan.interval must be positive")
	}
	if c.Memory.CleanupInterval <= 0 {
		return fmt.Errorf("memory.cleanup_interval must be positive")
	}
	if c.Scan.StatusInterval <= 0 {
		return fmt.Errorf("scan.status_interval must be positive")
	}
	return nil
}
