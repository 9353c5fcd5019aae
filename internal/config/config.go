package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultConfigPath     = "config.toml"
	DefaultEnvFile        = ".env"
	DefaultHTTPAddr       = ":8080"
	DefaultLogLevel       = "debug"
	DefaultLogFormat      = "text"
	DefaultTavilyURL      = "https://api.tavily.com/search"
	DefaultSerperURL      = "https://google.serper.dev/search"
	DefaultTimeoutSeconds = 20

	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

type Config struct {
	Log        LogConfig        `toml:"log"`
	Server     ServerConfig     `toml:"server"`
	Search     SearchConfig     `toml:"search"`
	Strategies StrategiesConfig `toml:"strategies"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Transport string `toml:"transport"`
	Addr      string `toml:"addr"`
}

// SearchConfig holds provider credentials and endpoints. Credentials may be
// empty: they are only required when the matching provider is called.
type SearchConfig struct {
	TavilyAPIKey   string `toml:"tavily_api_key"`
	SerperAPIKey   string `toml:"serper_api_key"`
	TavilyURL      string `toml:"tavily_url"`
	SerperURL      string `toml:"serper_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type StrategiesConfig struct {
	// Path of a strategy document on disk. Empty selects the bundled document.
	Path string `toml:"path"`
}

// envOverrides maps environment variables onto config fields. They win over
// the TOML file. Values are applied as given; an empty variable is ignored.
var envOverrides = []struct {
	name  string
	apply func(*Config, string)
}{
	{"LOG_LEVEL", func(c *Config, v string) { c.Log.Level = v }},
	{"LOG_FORMAT", func(c *Config, v string) { c.Log.Format = v }},
	{"MCP_TRANSPORT", func(c *Config, v string) { c.Server.Transport = v }},
	{"HTTP_ADDR", func(c *Config, v string) { c.Server.Addr = v }},
	{"TAVILY_API_KEY", func(c *Config, v string) { c.Search.TavilyAPIKey = v }},
	{"SERPER_API_KEY", func(c *Config, v string) { c.Search.SerperAPIKey = v }},
	{"STRATEGIES_PATH", func(c *Config, v string) { c.Strategies.Path = v }},
}

func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Server: ServerConfig{
			Transport: TransportStdio,
			Addr:      DefaultHTTPAddr,
		},
		Search: SearchConfig{
			TavilyURL:      DefaultTavilyURL,
			SerperURL:      DefaultSerperURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
	}
}

// Load reads the .env file (if any), the TOML file at path (if any) and then
// applies environment overrides.
func Load(path string) (Config, error) {
	if err := loadDotEnv(DefaultEnvFile); err != nil {
		return Config{}, err
	}

	cfg := Default()

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}

	applyEnv(&cfg, os.LookupEnv)
	return cfg.Normalize()
}

// Normalize canonicalizes values set from any layer and validates the result.
func (c Config) Normalize() (Config, error) {
	c.Server.Transport = strings.ToLower(strings.TrimSpace(c.Server.Transport))
	if c.Search.TimeoutSeconds == 0 {
		c.Search.TimeoutSeconds = DefaultTimeoutSeconds
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.Server.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unsupported transport %q (want %q or %q)", c.Server.Transport, TransportStdio, TransportHTTP)
	}
	if c.Search.TimeoutSeconds < 0 {
		return fmt.Errorf("search timeout_seconds must be positive, got %d", c.Search.TimeoutSeconds)
	}
	return nil
}

// StrategiesPath returns the configured document path. Relative paths are
// resolved against the directory holding the executable.
func (c StrategiesConfig) StrategiesPath() (string, error) {
	path := strings.TrimSpace(c.Path)
	if path == "" || filepath.IsAbs(path) {
		return path, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), path), nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	for _, o := range envOverrides {
		if value, ok := lookup(o.name); ok && value != "" {
			o.apply(cfg, value)
		}
	}
}

// loadDotEnv populates the process environment from a .env file without
// overriding variables that are already set.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}
