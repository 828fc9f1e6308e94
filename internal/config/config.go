// Package config loads service configuration from the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"noaa-archive/internal/storage"
	"noaa-archive/pkg/database"
)

// Config is the full configuration shared by every binary
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Storage   StorageConfig   `yaml:"storage"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Host            string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string        `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string        `yaml:"password" env:"DB_PASSWORD"`
	Database        string        `yaml:"name" env:"DB_NAME" env-default:"noaa_archive"`
	SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	SQLitePath      string        `yaml:"sqlite_path" env:"DB_SQLITE_PATH" env-default:"metadata.db"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"20"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"DB_CONN_MAX_IDLE_TIME" env-default:"5m"`
}

type LoggingConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// ArchiveConfig points the resolver at the public archives
type ArchiveConfig struct {
	NEXRADBaseURL string        `yaml:"nexrad_base_url" env:"NEXRAD_BASE_URL" env-default:"https://noaa-nexrad-level2.s3.amazonaws.com/"`
	GOESBaseURL   string        `yaml:"goes_base_url" env:"GOES_BASE_URL" env-default:"https://noaa-goes18.s3.amazonaws.com/"`
	ProbeMethod   string        `yaml:"probe_method" env:"PROBE_METHOD" env-default:"HEAD"`
	ProbeTimeout  time.Duration `yaml:"probe_timeout" env:"PROBE_TIMEOUT" env-default:"10s"`
	SitesURL      string        `yaml:"sites_url" env:"NEXRAD_SITES_URL" env-default:"https://www.ncei.noaa.gov/access/homr/file/nexrad-stations.txt"`
	ScrapeTimeout time.Duration `yaml:"scrape_timeout" env:"SCRAPE_TIMEOUT" env-default:"30s"`
}

// StorageConfig configures the S3-compatible client used for listing and
// copying archive objects
type StorageConfig struct {
	Endpoint      string        `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"s3.amazonaws.com"`
	Region        string        `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	AccessKey     string        `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey     string        `yaml:"secret_key" env:"S3_SECRET_KEY"`
	UseSSL        bool          `yaml:"use_ssl" env:"S3_USE_SSL" env-default:"true"`
	UserBucket    string        `yaml:"user_bucket" env:"S3_USER_BUCKET"`
	NEXRADBucket  string        `yaml:"nexrad_bucket" env:"NEXRAD_BUCKET" env-default:"noaa-nexrad-level2"`
	GOESBucket    string        `yaml:"goes_bucket" env:"GOES_BUCKET" env-default:"noaa-goes18"`
	PresignExpiry time.Duration `yaml:"presign_expiry" env:"S3_PRESIGN_EXPIRY" env-default:"1h"`
}

// TelemetryConfig enables the Kafka activity stream when brokers are set
type TelemetryConfig struct {
	KafkaBrokers []string `yaml:"kafka_brokers" env:"KAFKA_BROKERS" env-separator:","`
	KafkaTopic   string   `yaml:"kafka_topic" env:"KAFKA_TOPIC" env-default:"noaa-archive.activity"`
}

// LoadConfig reads CONFIG_FILE (when set) and then the environment, which
// overrides file values.
func LoadConfig() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("no config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks every section and names the offending variable
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Archive.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	return c.Telemetry.Validate()
}

func (s ServerConfig) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", s.Port)
	}
	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (d DatabaseConfig) Validate() error {
	switch d.Driver {
	case "postgres":
		if d.Host == "" {
			return fmt.Errorf("DB_HOST is required for the postgres driver")
		}
		if d.Database == "" {
			return fmt.Errorf("DB_NAME is required for the postgres driver")
		}
	case "sqlite":
		if d.SQLitePath == "" {
			return fmt.Errorf("DB_SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", d.Driver)
	}
	if d.MaxOpenConns < 0 || d.MaxIdleConns < 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS and DB_MAX_IDLE_CONNS must not be negative")
	}
	return nil
}

// DatabaseOptions converts the section into connection settings
func (d DatabaseConfig) DatabaseOptions() *database.Config {
	return &database.Config{
		Driver:          d.Driver,
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		Database:        d.Database,
		SSLMode:         d.SSLMode,
		SQLitePath:      d.SQLitePath,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
	}
}

func (l LoggingConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", l.Level)
}

func (a ArchiveConfig) Validate() error {
	if err := validateBaseURL("NEXRAD_BASE_URL", a.NEXRADBaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("GOES_BASE_URL", a.GOESBaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("NEXRAD_SITES_URL", a.SitesURL); err != nil {
		return err
	}
	switch strings.ToUpper(a.ProbeMethod) {
	case http.MethodHead, http.MethodGet:
	default:
		return fmt.Errorf("PROBE_METHOD must be HEAD or GET, got %q", a.ProbeMethod)
	}
	if a.ProbeTimeout <= 0 {
		return fmt.Errorf("PROBE_TIMEOUT must be positive")
	}
	if a.ScrapeTimeout <= 0 {
		return fmt.Errorf("SCRAPE_TIMEOUT must be positive")
	}
	return nil
}

func (s StorageConfig) Validate() error {
	if s.Endpoint == "" {
		return fmt.Errorf("S3_ENDPOINT is required")
	}
	if s.NEXRADBucket == "" || s.GOESBucket == "" {
		return fmt.Errorf("NEXRAD_BUCKET and GOES_BUCKET are required")
	}
	if (s.AccessKey == "") != (s.SecretKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY must be set together")
	}
	if s.PresignExpiry <= 0 || s.PresignExpiry > 7*24*time.Hour {
		return fmt.Errorf("S3_PRESIGN_EXPIRY must be between 1s and 168h")
	}
	return nil
}

// StoreOptions converts the section into object store settings
func (s StorageConfig) StoreOptions() storage.Config {
	return storage.Config{
		Endpoint:      s.Endpoint,
		Region:        s.Region,
		AccessKey:     s.AccessKey,
		SecretKey:     s.SecretKey,
		UseSSL:        s.UseSSL,
		UserBucket:    s.UserBucket,
		NEXRADBucket:  s.NEXRADBucket,
		GOESBucket:    s.GOESBucket,
		PresignExpiry: s.PresignExpiry,
	}
}

// CopyEnabled reports whether a user bucket is configured
func (s StorageConfig) CopyEnabled() bool {
	return s.UserBucket != ""
}

func (t TelemetryConfig) Validate() error {
	if len(t.KafkaBrokers) > 0 && t.KafkaTopic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

func validateBaseURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", name, raw)
	}
	return nil
}
