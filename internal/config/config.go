package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up next to the library.
const FileName = "renga_geometry.cfg.json"

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// MemoryConfig holds in-memory audit backend settings
type MemoryConfig struct {
	Capacity int `json:"capacity" mapstructure:"capacity"`
}

// PostgresConfig holds postgres audit backend settings
type PostgresConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// DSN returns the libpq connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		c.Host, c.Port, c.Username, c.Password, c.Database)
}

// InfluxConfig holds InfluxDB audit backend settings
type InfluxConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Token  string `json:"token" mapstructure:"token"`
	Org    string `json:"org" mapstructure:"org"`
	Bucket string `json:"bucket" mapstructure:"bucket"`
}

// AuditConfig selects and configures the native call journal
type AuditConfig struct {
	Type           string
	FlushInterval  time.Duration
	QueueSize      int
	MaxInputPoints int
	SQLitePath     string
	Memory         MemoryConfig
	Postgres       PostgresConfig
	Influx         InfluxConfig
}

// MonitorConfig holds status monitor settings
type MonitorConfig struct {
	Interval time.Duration
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./geometrylogs")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "renga-geometry")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("audit.type", "memory")
	viper.SetDefault("audit.flushInterval", "5s")
	viper.SetDefault("audit.queueSize", 256)
	viper.SetDefault("audit.maxInputPoints", 64)
	viper.SetDefault("audit.sqlite.path", "")
	viper.SetDefault("audit.memory.capacity", 1024)

	viper.SetDefault("audit.postgres.host", "localhost")
	viper.SetDefault("audit.postgres.port", "5432")
	viper.SetDefault("audit.postgres.username", "postgres")
	viper.SetDefault("audit.postgres.password", "postgres")
	viper.SetDefault("audit.postgres.database", "geometry")

	viper.SetDefault("audit.influx.url", "http://localhost:8086")
	viper.SetDefault("audit.influx.token", "")
	viper.SetDefault("audit.influx.org", "renga")
	viper.SetDefault("audit.influx.bucket", "geometry")

	viper.SetDefault("monitor.interval", "1m")

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetAuditConfig returns the audit journal settings.
func GetAuditConfig() AuditConfig {
	return AuditConfig{
		Type:           viper.GetString("audit.type"),
		FlushInterval:  viper.GetDuration("audit.flushInterval"),
		QueueSize:      viper.GetInt("audit.queueSize"),
		MaxInputPoints: viper.GetInt("audit.maxInputPoints"),
		SQLitePath:     viper.GetString("audit.sqlite.path"),
		Memory: MemoryConfig{
			Capacity: viper.GetInt("audit.memory.capacity"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("audit.postgres.host"),
			Port:     viper.GetString("audit.postgres.port"),
			Username: viper.GetString("audit.postgres.username"),
			Password: viper.GetString("audit.postgres.password"),
			Database: viper.GetString("audit.postgres.database"),
		},
		Influx: InfluxConfig{
			URL:    viper.GetString("audit.influx.url"),
			Token:  viper.GetString("audit.influx.token"),
			Org:    viper.GetString("audit.influx.org"),
			Bucket: viper.GetString("audit.influx.bucket"),
		},
	}
}

// GetMonitorConfig returns the status monitor settings.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Interval: viper.GetDuration("monitor.interval"),
	}
}
