package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fermwerk/biocore/internal/reading"
)

// Config is the root configuration structure for BioCore.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Retention RetentionConfig `yaml:"retention"`
}

// ServiceConfig identifies this deployment.
type ServiceConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings for the optional
// time-series mirror.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// IngestConfig tunes reading validation. The sensor table augments the
// built-in policy; sensor types listed here replace the built-in entry
// for that type.
type IngestConfig struct {
	// FutureToleranceSeconds is the clock-skew allowance for event
	// timestamps, in seconds.
	FutureToleranceSeconds int `yaml:"future_tolerance_seconds"`

	// Sensors maps sensor type to its validation rules.
	Sensors map[string]SensorRuleConfig `yaml:"sensors"`
}

// SensorRuleConfig is one sensor type's validation rules.
type SensorRuleConfig struct {
	Units []string `yaml:"units"`
	Min   *float64 `yaml:"min"`
	Max   *float64 `yaml:"max"`
}

// AnalyticsConfig tunes the analytics engine baselines.
type AnalyticsConfig struct {
	ExpectedHourlyReadings float64 `yaml:"expected_hourly_readings"`
	StableSlopeThreshold   float64 `yaml:"stable_slope_threshold"`
}

// RetentionConfig controls periodic pruning of the reading log.
type RetentionConfig struct {
	Enabled         bool `yaml:"enabled"`
	MaxAgeDays      int  `yaml:"max_age_days"`
	IntervalMinutes int  `yaml:"interval_minutes"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: BIOCORE_SECTION_KEY
// For example: BIOCORE_DATABASE_PATH, BIOCORE_MQTT_HOST
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			ID:       "biocore-001",
			Name:     "BioCore",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path:        "./data/biocore.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: true,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "biocore-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Ingest: IngestConfig{
			FutureToleranceSeconds: 300,
		},
		Analytics: AnalyticsConfig{
			ExpectedHourlyReadings: 1,
			StableSlopeThreshold:   0.001,
		},
		Retention: RetentionConfig{
			Enabled:         false,
			MaxAgeDays:      365,
			IntervalMinutes: 60,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: BIOCORE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BIOCORE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("BIOCORE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("BIOCORE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("BIOCORE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("BIOCORE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("BIOCORE_INFLUXDB_URL"); v != "" {
		cfg.InfluxDB.URL = v
	}
	if v := os.Getenv("BIOCORE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("BIOCORE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Service.ID == "" {
		errs = append(errs, "service.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled (set BIOCORE_INFLUXDB_TOKEN)")
		}
	}

	if c.Ingest.FutureToleranceSeconds < 0 {
		errs = append(errs, "ingest.future_tolerance_seconds must not be negative")
	}
	for sensor, rule := range c.Ingest.Sensors {
		if rule.Min != nil && rule.Max != nil && *rule.Min > *rule.Max {
			errs = append(errs, fmt.Sprintf("ingest.sensors.%s: min exceeds max", sensor))
		}
	}

	if c.Retention.Enabled && c.Retention.MaxAgeDays < 1 {
		errs = append(errs, "retention.max_age_days must be at least 1 when retention is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ReadingPolicy converts the ingest section into a validation policy.
// Sensor types configured here override the built-in entry for that type;
// unconfigured types keep the built-in rules.
func (c *Config) ReadingPolicy() reading.Policy {
	policy := reading.DefaultPolicy()
	if c.Ingest.FutureToleranceSeconds > 0 {
		policy.FutureTolerance = time.Duration(c.Ingest.FutureToleranceSeconds) * time.Second
	}
	for sensor, rule := range c.Ingest.Sensors {
		if len(rule.Units) > 0 {
			policy.Units[sensor] = rule.Units
		}
		if rule.Min != nil && rule.Max != nil {
			policy.Ranges[sensor] = reading.Range{Min: *rule.Min, Max: *rule.Max}
		}
	}
	return policy
}

// RetentionMaxAge returns the retention cutoff age as a Duration.
func (c *Config) RetentionMaxAge() time.Duration {
	return time.Duration(c.Retention.MaxAgeDays) * 24 * time.Hour
}

// RetentionInterval returns how often the pruner runs.
func (c *Config) RetentionInterval() time.Duration {
	return time.Duration(c.Retention.IntervalMinutes) * time.Minute
}
