package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Charts    ChartsConfig    `yaml:"charts"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Store     StoreConfig     `yaml:"store"`
	Export    ExportConfig    `yaml:"export"`
	Worker    WorkerConfig    `yaml:"worker"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	LoginPath       string   `yaml:"login_path"`
}

// AnalyticsConfig points at the upstream analytics API.
type AnalyticsConfig struct {
	BaseURL    string   `yaml:"base_url"`
	Token      string   `yaml:"-"` // env-only, never in YAML
	Timeout    Duration `yaml:"timeout"`
	MaxRetries uint64   `yaml:"max_retries"`
	RetryBase  Duration `yaml:"retry_base"`
	UserAgent  string   `yaml:"user_agent"`
}

// DashboardConfig tunes tab aggregation.
type DashboardConfig struct {
	ConcurrencyLimit int `yaml:"concurrency_limit"`
}

// ChartsConfig controls chart option building.
type ChartsConfig struct {
	Placeholders bool `yaml:"placeholders"`
}

// MetricsConfig tunes derived score scaling.
type MetricsConfig struct {
	RevenueThreshold float64 `yaml:"revenue_threshold"`
}

// StoreConfig contains the local token cache settings.
type StoreConfig struct {
	Path     string   `yaml:"path"`
	Profile  string   `yaml:"profile"`
	TokenTTL Duration `yaml:"token_ttl"`
}

// ExportConfig controls where exported reports are written.
// With an empty Bucket, reports are only written to Dir.
type ExportConfig struct {
	Dir       string   `yaml:"dir"`
	Bucket    string   `yaml:"bucket"`
	Prefix    string   `yaml:"prefix"`
	Endpoint  string   `yaml:"endpoint"`
	Region    string   `yaml:"region"`
	AccessKey string   `yaml:"-"` // env-only, never in YAML
	SecretKey string   `yaml:"-"` // env-only, never in YAML
	UseSSL    *bool    `yaml:"use_ssl"`
	URLExpiry Duration `yaml:"url_expiry"`
}

// WorkerConfig contains background worker settings.
type WorkerConfig struct {
	TokenSweepInterval Duration `yaml:"token_sweep_interval"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("WISEINVESTOR_CONFIG_PATH", "config/wiseinvestor.yaml")

	// Missing file is not an error
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and explicit path specification.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	useSSL := true
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(60 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
			LoginPath:       "/login",
		},
		Analytics: AnalyticsConfig{
			Timeout:   Duration(30 * time.Second),
			RetryBase: Duration(200 * time.Millisecond),
			UserAgent: "wiseinvestor",
		},
		Dashboard: DashboardConfig{
			ConcurrencyLimit: 16,
		},
		Charts: ChartsConfig{
			Placeholders: true,
		},
		Metrics: MetricsConfig{
			RevenueThreshold: 1_000_000,
		},
		Store: StoreConfig{
			Path:     "data/wiseinvestor.db",
			Profile:  "default",
			TokenTTL: Duration(24 * time.Hour),
		},
		Export: ExportConfig{
			Dir:       "exports",
			Prefix:    "reports",
			Region:    "us-east-1",
			UseSSL:    &useSSL,
			URLExpiry: Duration(15 * time.Minute),
		},
		Worker: WorkerConfig{
			TokenSweepInterval: Duration(1 * time.Hour),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty, parseable env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	envInt("WISEINVESTOR_PORT", &cfg.Server.Port)
	envDuration("WISEINVESTOR_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("WISEINVESTOR_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("WISEINVESTOR_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	envString("WISEINVESTOR_LOGIN_PATH", &cfg.Server.LoginPath)

	// Analytics
	envString("WISEINVESTOR_API_URL", &cfg.Analytics.BaseURL)
	envString("WISEINVESTOR_TOKEN", &cfg.Analytics.Token)
	envDuration("WISEINVESTOR_API_TIMEOUT", &cfg.Analytics.Timeout)
	if v := os.Getenv("WISEINVESTOR_API_MAX_RETRIES"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Analytics.MaxRetries = n
		}
	}
	envDuration("WISEINVESTOR_API_RETRY_BASE", &cfg.Analytics.RetryBase)

	// Dashboard, charts, metrics
	envInt("WISEINVESTOR_DASHBOARD_CONCURRENCY", &cfg.Dashboard.ConcurrencyLimit)
	envBool("WISEINVESTOR_CHART_PLACEHOLDERS", &cfg.Charts.Placeholders)
	if v := os.Getenv("WISEINVESTOR_REVENUE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Metrics.RevenueThreshold = f
		}
	}

	// Store
	envString("WISEINVESTOR_DB_PATH", &cfg.Store.Path)
	envString("WISEINVESTOR_PROFILE", &cfg.Store.Profile)
	envDuration("WISEINVESTOR_TOKEN_TTL", &cfg.Store.TokenTTL)

	// Export
	envString("WISEINVESTOR_EXPORT_DIR", &cfg.Export.Dir)
	envString("WISEINVESTOR_EXPORT_BUCKET", &cfg.Export.Bucket)
	envString("WISEINVESTOR_EXPORT_PREFIX", &cfg.Export.Prefix)
	envString("WISEINVESTOR_S3_ENDPOINT", &cfg.Export.Endpoint)
	envString("WISEINVESTOR_S3_REGION", &cfg.Export.Region)
	envString("WISEINVESTOR_S3_ACCESS_KEY", &cfg.Export.AccessKey)
	envString("WISEINVESTOR_S3_SECRET_KEY", &cfg.Export.SecretKey)
	if v := os.Getenv("WISEINVESTOR_S3_USE_SSL"); v != "" {
		useSSL := v == "true" || v == "1"
		cfg.Export.UseSSL = &useSSL
	}
	envDuration("WISEINVESTOR_S3_URL_EXPIRY", &cfg.Export.URLExpiry)

	// Worker
	envDuration("WISEINVESTOR_TOKEN_SWEEP_INTERVAL", &cfg.Worker.TokenSweepInterval)

	// Log
	envString("WISEINVESTOR_LOG_LEVEL", &cfg.Log.Level)
	envString("WISEINVESTOR_LOG_FORMAT", &cfg.Log.Format)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "true" || v == "1"
	}
}

func envDuration(key string, dst *Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}

// validate checks that required configuration values are set.
// In dev mode (WISEINVESTOR_DEV_MODE=true), the API URL requirement is skipped.
func (c *Config) validate() error {
	if c.Export.Bucket != "" && c.Export.Endpoint == "" {
		return errors.New("WISEINVESTOR_S3_ENDPOINT is required when an export bucket is set")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log format must be json or text, got %q", c.Log.Format)
	}

	if os.Getenv("WISEINVESTOR_DEV_MODE") == "true" {
		return nil
	}

	if c.Analytics.BaseURL == "" {
		return errors.New("WISEINVESTOR_API_URL is required")
	}
	u, err := url.Parse(c.Analytics.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("analytics base URL %q must be an absolute http(s) URL", c.Analytics.BaseURL)
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
