// Package config provides functionality for managing configuration options
// for the client and the server using command-line flags, an optional JSON
// config file and environment variables. Later sources win: flags, then the
// file, then the environment.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
)

// Storage backends accepted by ClientOptions.StorageBackend.
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// ClientOptions holds the configuration values for the client shell.
type ClientOptions struct {
	// BaseURL is the backend API root.
	BaseURL string `json:"base_url" env:"BASE_URL"`

	// StorageDir holds the session and results files for the file backend.
	StorageDir string `json:"storage_dir" env:"STORAGE_DIR"`

	// StorageBackend is one of file, memory or redis.
	StorageBackend string `json:"storage_backend" env:"STORAGE_BACKEND"`

	RedisURL string `json:"redis_url" env:"REDIS_URL"`

	// StorageSecret, when set, encrypts everything written to storage.
	StorageSecret string `json:"storage_secret" env:"STORAGE_SECRET"`

	// CAFile is an extra PEM root for the backend's TLS certificate.
	CAFile string `json:"ca_file" env:"CA_FILE"`

	// Lang is sent with every request so the backend localizes messages.
	Lang string `json:"lang" env:"LANG_CODE"`

	PollInterval   time.Duration `json:"-" env:"POLL_INTERVAL"`
	RequestTimeout time.Duration `json:"-" env:"REQUEST_TIMEOUT"`

	LogLevel string `json:"log_level" env:"LOG_LEVEL"`

	// Config is the path to the Config file.
	Config string `json:"-" env:"CONFIG"`
}

// ServerOptions holds the configuration values for the reference backend.
type ServerOptions struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port" env:"SERVER_ADDRESS"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn" env:"DATABASE_DSN"`

	// JWTSecret signs bearer tokens.
	JWTSecret string `json:"jwt_secret" env:"JWT_SECRET"`

	TokenTTL        time.Duration `json:"-" env:"TOKEN_TTL"`
	CleanupInterval time.Duration `json:"-" env:"CLEANUP_INTERVAL"`

	// CertFile and KeyFile enable HTTPS when both are set.
	CertFile string `json:"cert_file" env:"CERT_FILE"`
	KeyFile  string `json:"key_file" env:"KEY_FILE"`

	LogLevel string `json:"log_level" env:"LOG_LEVEL"`

	// Config is the path to the Config file.
	Config string `json:"-" env:"CONFIG"`
}

// durations is the JSON form of the duration fields, written as Go
// duration strings ("1s", "24h").
type durations struct {
	PollInterval    string `json:"poll_interval"`
	RequestTimeout  string `json:"request_timeout"`
	TokenTTL        string `json:"token_ttl"`
	CleanupInterval string `json:"cleanup_interval"`
}

// ParseClient parses args (without the program name) into ClientOptions.
func ParseClient(args []string) (*ClientOptions, error) {
	opts := &ClientOptions{}
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&opts.BaseURL, "u", "http://localhost:8080", "backend base URL")
	fs.StringVar(&opts.StorageDir, "s", "", "storage directory (default: user config dir)")
	fs.StringVar(&opts.StorageBackend, "storage", StorageFile, "storage backend: file, memory or redis")
	fs.StringVar(&opts.RedisURL, "redis", "", "redis URL for the redis storage backend")
	fs.StringVar(&opts.StorageSecret, "secret", "", "passphrase encrypting stored data")
	fs.StringVar(&opts.CAFile, "ca", "", "path to an extra CA certificate")
	fs.StringVar(&opts.Lang, "lang", "", "language for backend messages")
	fs.DurationVar(&opts.PollInterval, "poll", time.Second, "session poll interval")
	fs.DurationVar(&opts.RequestTimeout, "timeout", 15*time.Second, "request timeout")
	fs.StringVar(&opts.LogLevel, "log", "warn", "log level")
	fs.StringVar(&opts.Config, "config", "", "path to config file")
	fs.StringVar(&opts.Config, "c", "", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var d durations
	if err := load(opts.Config, opts, &d); err != nil {
		return nil, err
	}
	if err := setDuration(&opts.PollInterval, d.PollInterval); err != nil {
		return nil, err
	}
	if err := setDuration(&opts.RequestTimeout, d.RequestTimeout); err != nil {
		return nil, err
	}
	if err := env.Parse(opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	switch opts.StorageBackend {
	case StorageFile, StorageMemory:
	case StorageRedis:
		if opts.RedisURL == "" {
			return nil, errors.New("redis storage needs a redis URL")
		}
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.StorageBackend)
	}
	return opts, nil
}

// ParseServer parses args (without the program name) into ServerOptions.
func ParseServer(args []string) (*ServerOptions, error) {
	opts := &ServerOptions{}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&opts.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&opts.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&opts.JWTSecret, "j", "", "JWT signing secret")
	fs.DurationVar(&opts.TokenTTL, "ttl", 24*time.Hour, "token lifetime")
	fs.DurationVar(&opts.CleanupInterval, "cleanup", time.Hour, "lapsed subscription sweep interval")
	fs.StringVar(&opts.CertFile, "cert", "", "TLS certificate file")
	fs.StringVar(&opts.KeyFile, "key", "", "TLS key file")
	fs.StringVar(&opts.LogLevel, "log", "info", "log level")
	fs.StringVar(&opts.Config, "config", "config.json", "path to config file")
	fs.StringVar(&opts.Config, "c", "config.json", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var d durations
	if err := load(opts.Config, opts, &d); err != nil {
		return nil, err
	}
	if err := setDuration(&opts.TokenTTL, d.TokenTTL); err != nil {
		return nil, err
	}
	if err := setDuration(&opts.CleanupInterval, d.CleanupInterval); err != nil {
		return nil, err
	}
	if err := env.Parse(opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if opts.JWTSecret == "" {
		return nil, errors.New("JWT secret is required")
	}
	return opts, nil
}

// load reads the config file named by path, or by CONFIG when set, into
// opts and d. A missing file is not an error.
func load(path string, opts any, d *durations) error {
	if p := os.Getenv("CONFIG"); p != "" {
		path = p
	}
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, opts); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	if err := json.Unmarshal(data, d); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

func setDuration(dst *time.Duration, s string) error {
	if s == "" {
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	*dst = v
	return nil
}
