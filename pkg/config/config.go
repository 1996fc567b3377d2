package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"WCSPull/internal/domain/models"
)

type Config struct {
	Environment string `yaml:"environment"`
	Logging     struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Server struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORS            bool          `yaml:"cors"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Analysis struct {
		SamplingRate float64                `yaml:"sampling_rate"`
		Epochs       []float64              `yaml:"epochs_minutes"`
		Thresholds   []models.ThresholdSpec `yaml:"thresholds"`
		TieBreak     string                 `yaml:"tie_break"`
	} `yaml:"analysis"`
	Ingest struct {
		DataDir       string `yaml:"data_dir"`
		DefaultFormat string `yaml:"default_format"`
	} `yaml:"ingest"`
	Export struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"export"`
	Cache struct {
		Backend   string        `yaml:"backend"` // memory, redis or layered
		ReportTTL time.Duration `yaml:"report_ttl"`
		MaxSize   int           `yaml:"max_size"`
	} `yaml:"cache"`
	Batch struct {
		Workers    int  `yaml:"workers"`
		BufferSize int  `yaml:"buffer_size"`
		UseQueue   bool `yaml:"use_queue"`
	} `yaml:"batch"`
	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
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

	if v := os.Getenv("WCSPULL_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("WCSPULL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("WCSPULL_DATA_DIR"); v != "" {
		c.Ingest.DataDir = v
	}
	if v := os.Getenv("WCSPULL_OUTPUT_DIR"); v != "" {
		c.Export.OutputDir = v
	}
	if v := os.Getenv("WCSPULL_CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("WCSPULL_REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Redis.Host = host
		if ok {
			if p, err := strconv.Atoi(port); err == nil {
				c.Redis.Port = p
			}
		}
	}
	if v := os.Getenv("WCSPULL_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Analysis.SamplingRate == 0 {
		c.Analysis.SamplingRate = 10
	}
	if len(c.Analysis.Epochs) == 0 {
		c.Analysis.Epochs = []float64{1, 3, 5, 10}
	}
	if len(c.Analysis.Thresholds) == 0 {
		c.Analysis.Thresholds = []models.ThresholdSpec{
			{Label: "Default", Signal: models.SignalVelocity, Min: 0, Max: 100},
			{Label: "High-speed", Signal: models.SignalVelocity, Min: 5, Max: 100},
		}
	}
	if c.Analysis.TieBreak == "" {
		c.Analysis.TieBreak = string(models.TieEarliest)
	}
	if c.Ingest.DefaultFormat == "" {
		c.Ingest.DefaultFormat = "auto"
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = "output"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.ReportTTL == 0 {
		c.Cache.ReportTTL = time.Hour
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = 4
	}
	if c.Batch.BufferSize == 0 {
		c.Batch.BufferSize = 256
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Cache.Backend {
	case "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if c.Ingest.DataDir == "" {
		return fmt.Errorf("ingest.data_dir is required")
	}
	return nil
}

// Params returns the configured analysis defaults as run parameters.
func (c *Config) Params() models.Params {
	return models.Params{
		SamplingRate: c.Analysis.SamplingRate,
		Epochs:       c.Analysis.Epochs,
		Thresholds:   c.Analysis.Thresholds,
		TieBreak:     models.TieBreak(c.Analysis.TieBreak),
	}
}
