package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Autosave  AutosaveConfig  `yaml:"autosave"`
	Store     StoreConfig     `yaml:"store"`
	Export    ExportConfig    `yaml:"export"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // stdio or http
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type AutosaveConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

type StoreConfig struct {
	// WatchInterval is how often the store polls for changes made by other
	// processes. Zero disables polling.
	WatchInterval time.Duration `yaml:"watch_interval"`
}

type ExportConfig struct {
	Driver string   `yaml:"driver"` // fs or s3
	Dir    string   `yaml:"dir"`
	S3     S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		DB: DBConfig{
			Path: "tupad.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Autosave: AutosaveConfig{
			Debounce: 400 * time.Millisecond,
		},
		Store: StoreConfig{
			WatchInterval: 2 * time.Second,
		},
		Export: ExportConfig{
			Driver: "fs",
			Dir:    "exports",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads configuration from an optional .env file, an optional YAML
// file and environment variables, in increasing order of precedence.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("TUPAD_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("TUPAD_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("TUPAD_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid TUPAD_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("TUPAD_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = strings.ToLower(mode)
	}
	if dbPath := os.Getenv("TUPAD_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("TUPAD_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("TUPAD_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if v := os.Getenv("TUPAD_AUTOSAVE_DEBOUNCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TUPAD_AUTOSAVE_DEBOUNCE: %w", err)
		}
		cfg.Autosave.Debounce = d
	}
	if v := os.Getenv("TUPAD_STORE_WATCH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TUPAD_STORE_WATCH_INTERVAL: %w", err)
		}
		cfg.Store.WatchInterval = d
	}
	if driver := os.Getenv("TUPAD_EXPORT_DRIVER"); driver != "" {
		cfg.Export.Driver = strings.ToLower(driver)
	}
	if dir := os.Getenv("TUPAD_EXPORT_DIR"); dir != "" {
		cfg.Export.Dir = dir
	}
	if bucket := os.Getenv("TUPAD_EXPORT_S3_BUCKET"); bucket != "" {
		cfg.Export.S3.Bucket = bucket
	}
	if region := os.Getenv("TUPAD_EXPORT_S3_REGION"); region != "" {
		cfg.Export.S3.Region = region
	}
	if endpoint := os.Getenv("TUPAD_EXPORT_S3_ENDPOINT"); endpoint != "" {
		cfg.Export.S3.Endpoint = endpoint
	}
	if v := os.Getenv("TUPAD_EXPORT_S3_PATH_STYLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TUPAD_EXPORT_S3_PATH_STYLE: %w", err)
		}
		cfg.Export.S3.PathStyle = b
	}
	if v := os.Getenv("TUPAD_METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TUPAD_METRICS_ENABLED: %w", err)
		}
		cfg.Metrics.Enabled = b
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q: want stdio or http", c.Transport.Mode)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Autosave.Debounce <= 0 {
		return fmt.Errorf("autosave debounce must be positive, got %s", c.Autosave.Debounce)
	}
	if c.Store.WatchInterval < 0 {
		return fmt.Errorf("store watch interval must not be negative, got %s", c.Store.WatchInterval)
	}
	switch c.Export.Driver {
	case "fs":
	case "s3":
		if c.Export.S3.Bucket == "" {
			return fmt.Errorf("export driver s3 requires a bucket")
		}
	default:
		return fmt.Errorf("invalid export driver %q: want fs or s3", c.Export.Driver)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
