// Package config handles the XDG configuration directory, the session file
// path and environment settings.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "taskcollab"

	// SessionFile is the token store database filename.
	SessionFile = "session.db"

	// EnvFile is the optional dotenv file read from the config dir and the
	// working directory.
	EnvFile = ".env"

	// DefaultAPIURL is used when TASKCOLLAB_API_URL is unset.
	DefaultAPIURL = "http://localhost:8000"

	// DefaultTimeout bounds one API call.
	DefaultTimeout = 10 * time.Second
)

// Environment variables.
const (
	EnvAPIURL      = "TASKCOLLAB_API_URL"
	EnvTimeout     = "TASKCOLLAB_TIMEOUT"
	EnvLogLevel    = "TASKCOLLAB_LOG_LEVEL"
	EnvLogEncoding = "TASKCOLLAB_LOG_ENCODING"
	EnvPassword    = "TASKCOLLAB_PASSWORD"
)

// LogConfig selects the log level and encoding.
type LogConfig struct {
	Level    string
	Encoding string
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIURL is the base URL of the remote API.
	APIURL string

	// Timeout bounds a single API call.
	Timeout time.Duration

	Log LogConfig

	// Password is taken from the environment for non-interactive logins.
	Password string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a Config for configDir, or the XDG default when empty.
// Environment values may come from a .env file in that directory or in
// the working directory; variables already set win.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	_ = godotenv.Load(filepath.Join(dir, EnvFile))
	_ = godotenv.Load(EnvFile)

	cfg := &Config{
		Dir:     dir,
		Timeout: getDuration(EnvTimeout, DefaultTimeout),
		Log: LogConfig{
			Level:    getString(EnvLogLevel, "warn"),
			Encoding: getString(EnvLogEncoding, "console"),
		},
		Password: os.Getenv(EnvPassword),
	}
	if err := cfg.SetAPIURL(getString(EnvAPIURL, DefaultAPIURL)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetAPIURL validates and sets the API base URL.
func (c *Config) SetAPIURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL: %q", raw)
	}
	c.APIURL = strings.TrimRight(u.String(), "/")
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SessionPath returns the path to the session database.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// EnsureDir creates the config directory with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasSession checks if the session database exists.
func (c *Config) HasSession() bool {
	_, err := os.Stat(c.SessionPath())
	return err == nil
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
