package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Forecast struct {
		WindowWeeks       int           `yaml:"window_weeks" default:"10"`
		CycleAnchor       int64         `yaml:"cycle_anchor" default:"1674000000"`
		AnomalyThreshold  float64       `yaml:"anomaly_threshold" default:"0.5"`
		SpikeMultiplier   float64       `yaml:"spike_multiplier" default:"5"`
		RewardShare       float64       `yaml:"reward_share" default:"0.7"`
		ValuationDecimals int32         `yaml:"valuation_decimals" default:"18"`
		FeeDecimals       int32         `yaml:"fee_decimals" default:"30"`
		RefreshCron       string        `yaml:"refresh_cron" default:"0 */5 * * * *"`
		CacheTTL          time.Duration `yaml:"cache_ttl" default:"5m"`
		Timeout           time.Duration `yaml:"timeout" default:"20s"`
	} `yaml:"forecast"`
	Source struct {
		Type     string `yaml:"type" default:"subgraph"`
		Subgraph struct {
			URL        string        `yaml:"url" default:"https://api.thegraph.com/subgraphs/name/gmx-io/gmx-avalanche-stats"`
			Period     string        `yaml:"period" default:"daily"`
			Timeout    time.Duration `yaml:"timeout" default:"10s"`
			Retries    int           `yaml:"retries" default:"3"`
			RetryDelay time.Duration `yaml:"retry_delay" default:"500ms"`
		} `yaml:"subgraph"`
		SyncCron string `yaml:"sync_cron" default:"0 0 * * * *"`
	} `yaml:"source"`
	Kafka struct {
		Enabled       bool     `yaml:"enabled"`
		Brokers       []string `yaml:"brokers"`
		SnapshotTopic string   `yaml:"snapshot_topic" default:"fee-snapshots"`
		ForecastTopic string   `yaml:"forecast_topic" default:"fee-forecasts"`
		RequiredAcks  int      `yaml:"required_acks" default:"-1"`
		Compression   string   `yaml:"compression" default:"snappy"`
		Producer      struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id" default:"feecast-ingest"`
			Workers    int           `yaml:"workers" default:"2"`
			BufferSize int           `yaml:"buffer_size" default:"64"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"200ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host" default:"localhost"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"feecast"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		AsyncInsert  bool          `yaml:"async_insert"`
		WaitForAsync bool          `yaml:"wait_for_async_insert"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled" default:"true"`
		RPS     float64 `yaml:"rps" default:"10"`
		Burst   int     `yaml:"burst" default:"20"`
	} `yaml:"rate_limit"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, fills unset fields with defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
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

	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("SUBGRAPH_URL"); v != "" {
		c.Source.Subgraph.URL = v
	}
	if v := getenv("SOURCE_TYPE"); v != "" {
		c.Source.Type = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Forecast.WindowWeeks < 1 {
		return fmt.Errorf("forecast.window_weeks must be >= 1, got %d", c.Forecast.WindowWeeks)
	}
	if c.Forecast.AnomalyThreshold <= 0 || c.Forecast.AnomalyThreshold > 1 {
		return fmt.Errorf("forecast.anomaly_threshold must be in (0,1], got %v", c.Forecast.AnomalyThreshold)
	}
	if c.Forecast.SpikeMultiplier <= 0 {
		return fmt.Errorf("forecast.spike_multiplier must be positive")
	}
	if c.Forecast.RewardShare <= 0 || c.Forecast.RewardShare > 1 {
		return fmt.Errorf("forecast.reward_share must be in (0,1], got %v", c.Forecast.RewardShare)
	}
	if c.Forecast.ValuationDecimals < 0 || c.Forecast.FeeDecimals < 0 {
		return fmt.Errorf("forecast decimals must be non-negative")
	}

	switch c.Source.Type {
	case "subgraph":
		if c.Source.Subgraph.URL == "" {
			return fmt.Errorf("source.subgraph.url is required")
		}
	case "clickhouse":
		if !c.ClickHouse.Enabled {
			return fmt.Errorf("source.type 'clickhouse' requires clickhouse.enabled")
		}
	default:
		return fmt.Errorf("source.type must be 'subgraph' or 'clickhouse', got '%s'", c.Source.Type)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Kafka.Consumer.Enabled && !c.ClickHouse.Enabled {
		return fmt.Errorf("kafka.consumer requires clickhouse.enabled")
	}
	if c.RateLimit.Enabled && c.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate_limit.rps must be positive")
	}
	return nil
}

// HistoryDays is the number of daily records to request so the window and
// the current cycle are fully covered.
func (c *Config) HistoryDays() int {
	return 7*(c.Forecast.WindowWeeks+1) + 7
}
