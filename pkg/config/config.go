package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Logging     struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Backend struct {
		Type         string        `yaml:"type"` // kafka or clickhouse
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		SampleTopic  string   `yaml:"sample_topic"`
		AlertTopic   string   `yaml:"alert_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Feed struct {
		WebSocketURL   string        `yaml:"websocket_url"`
		APIKey         string        `yaml:"api_key"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"feed"`
	Market struct {
		Name  string   `yaml:"name"`  // ps, xbox or pc
		Items []string `yaml:"items"` // tracked item ids
	} `yaml:"market"`
	Signal struct {
		SeriesWindow  time.Duration `yaml:"series_window"`
		ScanInterval  time.Duration `yaml:"scan_interval"`
		MinAlertScore int           `yaml:"min_alert_score"`
		CacheOnly     bool          `yaml:"cache_only"`
		TaxRate       float64       `yaml:"tax_rate"`
		Stabilization struct {
			MinHours       int     `yaml:"min_hours"`
			MaxVariancePct float64 `yaml:"max_variance_pct"`
		} `yaml:"stabilization"`
		Hysteresis struct {
			UpgradeMargin      int           `yaml:"upgrade_margin"`
			DowngradeMargin    int           `yaml:"downgrade_margin"`
			StickyWindow       time.Duration `yaml:"sticky_window"`
			StickyTolerancePct float64       `yaml:"sticky_tolerance_pct"`
		} `yaml:"hysteresis"`
		Pulse struct {
			CacheTTL   time.Duration `yaml:"cache_ttl"`
			SampleSize int           `yaml:"sample_size"`
		} `yaml:"pulse"`
	} `yaml:"signal"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

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

	if v := os.Getenv("MARKET"); v != "" {
		c.Market.Name = v
	}
	if v := os.Getenv("ITEMS"); v != "" {
		c.Market.Items = strings.Split(v, ",")
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("FEED_API_KEY"); v != "" {
		c.Feed.APIKey = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Signal.SeriesWindow == 0 {
		c.Signal.SeriesWindow = 7 * 24 * time.Hour
	}
	if c.Signal.ScanInterval == 0 {
		c.Signal.ScanInterval = 15 * time.Minute
	}
	if c.Signal.MinAlertScore == 0 {
		c.Signal.MinAlertScore = 60
	}
	if c.Signal.TaxRate == 0 {
		c.Signal.TaxRate = 0.05
	}
	if c.Signal.Stabilization.MinHours == 0 {
		c.Signal.Stabilization.MinHours = 6
	}
	if c.Signal.Stabilization.MaxVariancePct == 0 {
		c.Signal.Stabilization.MaxVariancePct = 5
	}
	if c.Signal.Hysteresis.UpgradeMargin == 0 {
		c.Signal.Hysteresis.UpgradeMargin = 10
	}
	if c.Signal.Hysteresis.DowngradeMargin == 0 {
		c.Signal.Hysteresis.DowngradeMargin = 15
	}
	if c.Signal.Hysteresis.StickyWindow == 0 {
		c.Signal.Hysteresis.StickyWindow = 2 * time.Hour
	}
	if c.Signal.Hysteresis.StickyTolerancePct == 0 {
		c.Signal.Hysteresis.StickyTolerancePct = 3
	}
	if c.Signal.Pulse.CacheTTL == 0 {
		c.Signal.Pulse.CacheTTL = 10 * time.Minute
	}
	if c.Signal.Pulse.SampleSize == 0 {
		c.Signal.Pulse.SampleSize = 25
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type == "" {
		return fmt.Errorf("backend.type is required")
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return fmt.Errorf("backend.type must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if c.Market.Name == "" {
		return fmt.Errorf("market.name is required")
	}
	if len(c.Market.Items) == 0 {
		return fmt.Errorf("market.items cannot be empty")
	}
	if c.Signal.TaxRate < 0 || c.Signal.TaxRate >= 1 {
		return fmt.Errorf("signal.tax_rate must be in [0, 1)")
	}
	return nil
}
