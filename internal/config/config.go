package config

import (
	"errors"
	"fmt"
	"time"
)

// DefaultJWTSecret is only suitable for local development.
const DefaultJWTSecret = "change-me-in-production"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	DatabasePath string   `mapstructure:"database_path" yaml:"database_path"`
	SeedChannels []string `mapstructure:"seed_channels" yaml:"seed_channels"`
	HistoryLimit int      `mapstructure:"history_limit" yaml:"history_limit"`

	JWTSecret     string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer     string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience   string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	TokenTTL      time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
	SecureCookies bool          `mapstructure:"secure_cookies" yaml:"secure_cookies"`
	LoginAttempts int           `mapstructure:"login_attempts" yaml:"login_attempts"`
	LoginWindow   time.Duration `mapstructure:"login_window" yaml:"login_window"`
	PasswordCost  int           `mapstructure:"password_cost" yaml:"password_cost"`

	UploadDir      string `mapstructure:"upload_dir" yaml:"upload_dir"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`

	MaxMessageBytes   int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	OutboundQueueSize int           `mapstructure:"outbound_queue_size" yaml:"outbound_queue_size"`
	PingInterval      time.Duration `mapstructure:"ping_interval" yaml:"ping_interval"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	EventsPerSecond   float64       `mapstructure:"events_per_second" yaml:"events_per_second"`
	EventsBurst       int           `mapstructure:"events_burst" yaml:"events_burst"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,

		LogLevel:  "info",
		LogFormat: "console",

		DatabasePath: "wirerelay.db",
		SeedChannels: []string{"General", "Random", "Project-X"},
		HistoryLimit: 50,

		JWTSecret:     DefaultJWTSecret,
		JWTIssuer:     "wirerelay",
		JWTAudience:   "wirerelay-clients",
		TokenTTL:      8 * time.Hour,
		LoginAttempts: 20,
		LoginWindow:   5 * time.Minute,
		PasswordCost:  10,

		UploadDir:      "uploaded_files",
		MaxUploadBytes: 5 << 20,

		MaxMessageBytes:   64 << 10,
		OutboundQueueSize: 64,
		PingInterval:      30 * time.Second,
		WriteTimeout:      10 * time.Second,
		EventsPerSecond:   10,
		EventsBurst:       20,
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token_ttl must be positive, got %s", c.TokenTTL))
	}
	if c.OutboundQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("outbound_queue_size must be positive, got %d", c.OutboundQueueSize))
	}
	if c.HistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("history_limit must be positive, got %d", c.HistoryLimit))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes))
	}
	if c.LoginAttempts <= 0 || c.LoginWindow <= 0 {
		errs = append(errs, errors.New("login_attempts and login_window must be positive"))
	}
	if c.PasswordCost < 4 || c.PasswordCost > 31 {
		errs = append(errs, fmt.Errorf("password_cost must be between 4 and 31, got %d", c.PasswordCost))
	}
	if c.EventsPerSecond < 0 || c.EventsBurst < 0 {
		errs = append(errs, errors.New("events_per_second and events_burst must not be negative"))
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be console or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
