// Package config provides functionality for managing configuration options
// for the client using command-line flags, a JSON config file, a .env file
// and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends accepted by the -storage flag.
const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Options holds the configuration values for the client.
type Options struct {
	// APIURL is the base URL of the job board API.
	APIURL string `json:"api_url"`

	// Storage selects where the credential and session are persisted.
	Storage string `json:"storage"`

	// StoragePath is the JSON file used by the file backend.
	StoragePath string `json:"storage_path"`

	// StorageDSN is the data source name of the sqlite and postgres backends.
	StorageDSN string `json:"storage_dsn"`

	// RedisAddr and RedisPassword configure the redis backend.
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`

	// CAFile is an optional PEM bundle trusted for the API's TLS certificate.
	CAFile string `json:"ca"`

	// Timeout bounds every API request.
	Timeout time.Duration `json:"-"`

	// LogLevel is passed to the zap logger.
	LogLevel string `json:"log_level"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// Version asks for the build version instead of starting the shell.
	Version bool `json:"-"`
}

// NewFlagSet registers all client flags on fs and returns the Options they fill.
func NewFlagSet(fs *flag.FlagSet) *Options {
	o := &Options{}
	fs.StringVar(&o.APIURL, "url", "http://localhost:8081", "job board API base URL")
	fs.StringVar(&o.Storage, "storage", StorageFile, "session storage: file | sqlite | postgres | redis")
	fs.StringVar(&o.StoragePath, "path", "session.json", "session file for the file storage")
	fs.StringVar(&o.StorageDSN, "dsn", "", "sqlite path or postgres DSN for sql storage")
	fs.StringVar(&o.RedisAddr, "redis", "localhost:6379", "redis address for redis storage")
	fs.StringVar(&o.CAFile, "ca", "", "path to CA cert trusted for the API")
	fs.DurationVar(&o.Timeout, "timeout", 10*time.Second, "API request timeout")
	fs.StringVar(&o.LogLevel, "log", "info", "log level")
	fs.StringVar(&o.Config, "config", "config.json", "path to config file")
	fs.StringVar(&o.Config, "c", "config.json", "path to config file (shorthand)")
	fs.BoolVar(&o.Version, "version", false, "show build version and date")
	return o
}

// Parse parses args into Options. Precedence, lowest first: flag defaults and
// values, config file, environment (including .env).
func Parse(args []string) (*Options, error) {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	options := NewFlagSet(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// .env is optional
	_ = godotenv.Load()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	if v := os.Getenv("API_URL"); v != "" {
		options.APIURL = v
	}
	if v := os.Getenv("STORAGE"); v != "" {
		options.Storage = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		options.StorageDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		options.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		options.RedisPassword = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		options.LogLevel = v
	}

	switch options.Storage {
	case StorageFile, StorageSQLite, StoragePostgres, StorageRedis:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", options.Storage)
	}

	return options, nil
}
