// Package config loads service settings from the process environment and an
// optional .env file. Keys are lowercase to stay compatible with existing
// deployments (dbhost, dbname, dbuser, dbpassword).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageFS = "fs"
	StorageS3 = "s3"
)

// Database holds the store credentials.
type Database struct {
	Driver   string `env:"dbdriver" envDefault:"mysql"`
	Host     string `env:"dbhost" envDefault:"localhost"`
	Port     int    `env:"dbport"`
	Name     string `env:"dbname"`
	User     string `env:"dbuser"`
	Password string `env:"dbpassword"`
}

// S3 configures the S3 blob store.
type S3 struct {
	Bucket          string `env:"s3_bucket"`
	Region          string `env:"s3_region" envDefault:"us-east-1"`
	Endpoint        string `env:"s3_endpoint"`
	AccessKeyID     string `env:"s3_access_key_id"`
	SecretAccessKey string `env:"s3_secret_access_key"`
	Prefix          string `env:"s3_prefix"`
	UsePathStyle    bool   `env:"s3_use_path_style"`
}

// Config is the full service configuration.
type Config struct {
	Database Database
	S3       S3

	ListenAddr       string            `env:"listen_addr" envDefault:":8080"`
	PublicHost       string            `env:"public_host"`
	Storage          string            `env:"storage" envDefault:"fs"`
	UploadsDir       string            `env:"uploads_dir" envDefault:"uploads"`
	UserFile         string            `env:"user_file" envDefault:"user.json"`
	MaxUploadBytes   int64             `env:"max_upload_bytes" envDefault:"33554432"`
	CORSOrigins      []string          `env:"cors_origins" envDefault:"*" envSeparator:","`
	DefaultHeaders   map[string]string `env:"default_headers"`
	RequestTimeout   time.Duration     `env:"request_timeout" envDefault:"30s"`
	ShutdownTimeout  time.Duration     `env:"shutdown_timeout" envDefault:"10s"`
	ValidateRequests bool              `env:"validate_requests"`
	LogLevel         string            `env:"log_level" envDefault:"info"`
	LogFormat        string            `env:"log_format" envDefault:"json"`
}

// Load reads files in order, then parses the environment. Variables already
// set in the process win over file values. Missing files are skipped.
func Load(files ...string) (Config, error) {
	for _, file := range files {
		if file == "" {
			continue
		}
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", file, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageFS:
		if c.UploadsDir == "" {
			return errors.New("config: uploads_dir is required for fs storage")
		}
	case StorageS3:
		if c.S3.Bucket == "" {
			return errors.New("config: s3_bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("config: unknown storage %q", c.Storage)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("config: unknown log_format %q", c.LogFormat)
	}
	return nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return 0, fmt.Errorf("config: unknown log_level %q", level)
	}
	return l, nil
}
