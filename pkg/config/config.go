package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every knob the client SDK reads at startup.
type Config struct {
	// APIBaseURL is the root of the ArborVest REST API.
	APIBaseURL string `env:"ARBORVEST_API_BASE_URL" yaml:"api_base_url"`

	// RequestTimeout bounds a single gateway request end to end.
	RequestTimeout time.Duration `env:"ARBORVEST_REQUEST_TIMEOUT" yaml:"request_timeout"`

	// UserAgent identifies the SDK on outbound requests.
	UserAgent string `env:"ARBORVEST_USER_AGENT" yaml:"user_agent"`

	// CredentialsPath overrides the default credential file location.
	// Empty means the per-user config directory.
	CredentialsPath string `env:"ARBORVEST_CREDENTIALS_PATH" yaml:"credentials_path"`

	// RetryMaxAttempts and RetryBaseDelay configure the optional retry
	// decorator around the gateway. The gateway itself never retries.
	RetryMaxAttempts uint64        `env:"ARBORVEST_RETRY_MAX_ATTEMPTS" yaml:"retry_max_attempts"`
	RetryBaseDelay   time.Duration `env:"ARBORVEST_RETRY_BASE_DELAY" yaml:"retry_base_delay"`

	// LogLevel is one of debug, info, warn, error. LogFormat is json or text.
	LogLevel  string `env:"ARBORVEST_LOG_LEVEL" yaml:"log_level"`
	LogFormat string `env:"ARBORVEST_LOG_FORMAT" yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIBaseURL:       "https://api.arborvest.app",
		RequestTimeout:   15 * time.Second,
		UserAgent:        "arborvest-go/1.0",
		RetryMaxAttempts: 3,
		RetryBaseDelay:   250 * time.Millisecond,
		LogLevel:         "info",
		LogFormat:        "json",
	}
}

var dotenvOnce sync.Once

// Load builds the configuration from defaults, the optional YAML file named
// by ARBORVEST_CONFIG_FILE, and environment variables, in that order of
// precedence. Defaults live in Default() rather than envDefault tags so an
// unset variable never clobbers a value the YAML layer provided.
func Load() (Config, error) {
	dotenvOnce.Do(func() {
		// The .env file is a development convenience and may not exist.
		_ = godotenv.Load()
	})

	cfg := Default()

	if path := os.Getenv("ARBORVEST_CONFIG_FILE"); path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsing, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoad works like Load but panics on failure. Intended for application
// roots where a missing configuration should prevent startup.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks the configuration for values the SDK cannot run with.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return errors.Join(ErrInvalid, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Join(ErrInvalid, fmt.Errorf("api base url %q: scheme must be http or https", c.APIBaseURL))
	}
	if u.Host == "" {
		return errors.Join(ErrInvalid, fmt.Errorf("api base url %q: host is required", c.APIBaseURL))
	}
	if c.RequestTimeout <= 0 {
		return errors.Join(ErrInvalid, errors.New("request timeout must be positive"))
	}
	return nil
}

func loadFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Join(ErrFile, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return errors.Join(ErrFile, err)
	}
	return nil
}
