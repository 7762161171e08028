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
	Server      struct {
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
		Type         string        `yaml:"type"`
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
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
	MeterFeed struct {
		APIKey         string        `yaml:"api_key"`
		WebSocketURL   string        `yaml:"websocket_url"`
		Indicators     []string      `yaml:"indicators"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"meterfeed"`
	Analytics struct {
		ModelFamily      string        `yaml:"model_family"`
		TestFraction     float64       `yaml:"test_fraction"`
		ForecastHorizon  int           `yaml:"forecast_horizon"`
		TrainWindow      int           `yaml:"train_window"`
		AnomalyThreshold float64       `yaml:"anomaly_threshold"`
		AnomalyMethods   []string      `yaml:"anomaly_methods"`
		RetrainInterval  time.Duration `yaml:"retrain_interval"`
		CacheTTL         time.Duration `yaml:"cache_ttl"`
		Redis            struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"analytics"`
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

	// Validate required fields
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

	// Override with environment variables
	if v := os.Getenv("METERFEED_API_KEY"); v != "" {
		c.MeterFeed.APIKey = v
	}
	if v := os.Getenv("INDICATORS"); v != "" {
		c.MeterFeed.Indicators = strings.Split(v, ",")
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("MODEL_FAMILY"); v != "" {
		c.Analytics.ModelFamily = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Analytics.ModelFamily == "" {
		c.Analytics.ModelFamily = "decomposition"
	}
	if c.Analytics.TestFraction == 0 {
		c.Analytics.TestFraction = 0.2
	}
	if c.Analytics.ForecastHorizon == 0 {
		c.Analytics.ForecastHorizon = 24
	}
	if c.Analytics.TrainWindow == 0 {
		c.Analytics.TrainWindow = 24 * 30
	}
	if c.Analytics.AnomalyThreshold == 0 {
		c.Analytics.AnomalyThreshold = 3.0
	}
	if c.Analytics.RetrainInterval == 0 {
		c.Analytics.RetrainInterval = time.Hour
	}
	if c.Analytics.CacheTTL == 0 {
		c.Analytics.CacheTTL = 30 * time.Second
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
	if len(c.MeterFeed.Indicators) == 0 {
		return fmt.Errorf("meterfeed.indicators cannot be empty")
	}
	switch c.Analytics.ModelFamily {
	case "decomposition", "random_forest", "gradient_boosting", "sequence":
	default:
		return fmt.Errorf("analytics.model_family unknown: '%s'", c.Analytics.ModelFamily)
	}
	if c.Analytics.TestFraction <= 0 || c.Analytics.TestFraction >= 1 {
		return fmt.Errorf("analytics.test_fraction must be in (0, 1), got %v", c.Analytics.TestFraction)
	}
	return nil
}
