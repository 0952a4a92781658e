// Package config loads the command line configuration: an optional YAML
// file, then a .env file, then RESUMEFORM_* environment variables, then
// defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultServiceURL = "http://localhost:5000/api"
	DefaultTimeout    = 60 * time.Second
	DefaultOutputDir  = "."
	DefaultLogLevel   = "info"

	EnvPrefix = "RESUMEFORM_"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	ServiceURL    string        `yaml:"service_url"`
	Token         string        `yaml:"token"`
	Timeout       time.Duration `yaml:"timeout"`
	OutputDir     string        `yaml:"output_dir"`
	CatalogDir    string        `yaml:"catalog_dir"`
	LogLevel      string        `yaml:"log_level"`
	ContractCheck bool          `yaml:"contract_check"`
}

// Sources names where Load reads from. Empty paths are skipped; a missing
// file at an explicit path is an error except for the default .env.
type Sources struct {
	File    string
	EnvFile string
	// Lookup reads process environment variables. Defaults to os.LookupEnv.
	Lookup func(key string) (string, bool)
}

// Load resolves the configuration. Later sources win: YAML, .env, process
// environment.
func Load(src Sources) (*Config, error) {
	cfg := &Config{}

	if src.File != "" {
		data, err := os.ReadFile(src.File)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", src.File, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", src.File, err)
		}
	}

	dotenv := map[string]string{}
	envFile := src.EnvFile
	explicit := envFile != ""
	if !explicit {
		envFile = ".env"
	}
	values, err := godotenv.Read(envFile)
	switch {
	case err == nil:
		dotenv = values
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("config: read %s: %w", envFile, err)
	}

	lookup := src.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(name string) (string, bool) {
		key := EnvPrefix + name
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if v, ok := get("SERVICE_URL"); ok {
		cfg.ServiceURL = v
	}
	if v, ok := get("TOKEN"); ok {
		cfg.Token = v
	}
	if v, ok := get("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %sTIMEOUT: %v", ErrInvalid, EnvPrefix, err)
		}
		cfg.Timeout = d
	}
	if v, ok := get("OUTPUT_DIR"); ok {
		cfg.OutputDir = v
	}
	if v, ok := get("CATALOG_DIR"); ok {
		cfg.CatalogDir = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := get("CONTRACT_CHECK"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %sCONTRACT_CHECK: %v", ErrInvalid, EnvPrefix, err)
		}
		cfg.ContractCheck = b
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.ServiceURL = strings.TrimSpace(c.ServiceURL)
	if c.ServiceURL == "" {
		c.ServiceURL = DefaultServiceURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		c.OutputDir = DefaultOutputDir
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServiceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: service_url %q must be an http(s) URL", ErrInvalid, c.ServiceURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalid)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel into a slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return level, nil
}
