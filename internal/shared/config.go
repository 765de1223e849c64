package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Duration is a [time.Duration] that unmarshals from TOML strings like "30s" or "2m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Jira     JiraConfig     `toml:"jira"`
	Sync     SyncConfig     `toml:"sync"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// JiraConfig contains connection parameters for the Jira REST API.
//
// Either Username + APIToken (basic auth) or AccessToken (bearer) is used; the access token wins when both are set.
type JiraConfig struct {
	BaseURL                string   `toml:"base_url"`
	Username               string   `toml:"username"`
	APIToken               string   `toml:"api_token"`
	AccessToken            string   `toml:"access_token"`
	ConnectTimeout         Duration `toml:"connect_timeout"`
	SocketTimeout          Duration `toml:"socket_timeout"`
	RequestTimeout         Duration `toml:"request_timeout"`
	MaxTotalConnections    int      `toml:"max_total_connections"`
	MaxConnectionsPerRoute int      `toml:"max_connections_per_route"`
	RequestsPerSecond      float64  `toml:"requests_per_second"`
}

// SyncConfig holds CLI defaults for synchronization runs.
type SyncConfig struct {
	MaxIssuesToMove int      `toml:"max_issues_to_move"`
	IssueTypes      []string `toml:"issue_types"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	RecordRuns   bool   `toml:"record_runs"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LogConfig controls the log level ("debug", "info", "warn", "error").
type LogConfig struct {
	Level string `toml:"level"`
}

// Addr returns the host:port pair the HTTP server binds to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their [DefaultConfig] values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidConfig)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the settings the Jira client cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Jira.BaseURL) == "" {
		return fmt.Errorf("%w: jira.base_url is required", ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.Jira.BaseURL, "http://") && !strings.HasPrefix(c.Jira.BaseURL, "https://") {
		return fmt.Errorf("%w: jira.base_url must start with http:// or https://", ErrInvalidConfig)
	}

	for name, d := range map[string]Duration{
		"connect_timeout": c.Jira.ConnectTimeout,
		"socket_timeout":  c.Jira.SocketTimeout,
		"request_timeout": c.Jira.RequestTimeout,
	} {
		if d.Duration < 0 {
			return fmt.Errorf("%w: jira.%s cannot be negative", ErrInvalidConfig, name)
		}
	}

	if c.Jira.MaxTotalConnections <= 0 || c.Jira.MaxConnectionsPerRoute <= 0 {
		return fmt.Errorf("%w: jira connection pool sizes must be positive", ErrInvalidConfig)
	}
	if c.Jira.MaxConnectionsPerRoute > c.Jira.MaxTotalConnections {
		return fmt.Errorf("%w: jira.max_connections_per_route exceeds max_total_connections", ErrInvalidConfig)
	}
	if c.Jira.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: jira.requests_per_second cannot be negative", ErrInvalidConfig)
	}

	return nil
}

// HasCredentials reports whether any Jira credential is configured.
func (j JiraConfig) HasCredentials() bool {
	return j.AccessToken != "" || (j.Username != "" && j.APIToken != "")
}
