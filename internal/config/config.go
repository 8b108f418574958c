// Package config loads runtime settings for the aiwave client from the
// environment.
//
// Every setting has a default, so an empty environment yields a working
// client that talks to http://127.0.0.1:3000/api and keeps its state under
// ~/.aiwave. Paths left empty are derived from AIWAVE_HOME.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Token store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config holds runtime settings for the aiwave client.
type Config struct {
	APIURL         string        `env:"AIWAVE_API_URL" envDefault:"http://127.0.0.1:3000/api"`
	HTTPTimeout    time.Duration `env:"AIWAVE_HTTP_TIMEOUT" envDefault:"30s"`
	ProfileTimeout time.Duration `env:"AIWAVE_PROFILE_TIMEOUT" envDefault:"10s"`

	TokenStore string `env:"AIWAVE_TOKEN_STORE" envDefault:"file"`
	Home       string `env:"AIWAVE_HOME"`
	TokenFile  string `env:"AIWAVE_TOKEN_FILE"`
	DBPath     string `env:"AIWAVE_DB_PATH"`

	LogFile  string `env:"AIWAVE_LOG_FILE"`
	LogLevel string `env:"AIWAVE_LOG_LEVEL" envDefault:"info"`

	// LoadProfile toggles the facade's profile-fetch side effect.
	LoadProfile bool `env:"AIWAVE_LOAD_PROFILE" envDefault:"true"`
	// LogoutOnRejectedToken makes a 401 on the startup profile fetch
	// behave like logout.
	LogoutOnRejectedToken bool `env:"AIWAVE_LOGOUT_ON_REJECTED_TOKEN" envDefault:"false"`
}

// Load reads the process environment.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom reads settings from environ instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.fillPaths(os.UserHomeDir); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fillPaths(userHome func() (string, error)) error {
	if c.Home == "" {
		home, err := userHome()
		if err != nil {
			return fmt.Errorf("get home dir: %w", err)
		}
		c.Home = filepath.Join(home, ".aiwave")
	}
	if c.TokenFile == "" {
		c.TokenFile = filepath.Join(c.Home, "token")
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.Home, "aiwave.db")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.Home, "aiwave.log")
	}
	return nil
}

// Validate reports settings the client cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.TokenStore {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("AIWAVE_TOKEN_STORE: unknown backend %q", c.TokenStore))
	}
	if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("AIWAVE_API_URL: %q is not an absolute URL", c.APIURL))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("AIWAVE_HTTP_TIMEOUT must be positive"))
	}
	if c.ProfileTimeout <= 0 {
		errs = append(errs, errors.New("AIWAVE_PROFILE_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}
