// ABOUTME: Configuration loading and parsing for waymark-backend
// ABOUTME: Supports YAML files with environment variable expansion and XDG path defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the complete waymark-backend configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Paths     PathsConfig     `yaml:"paths"`
	Workflowy WorkflowyConfig `yaml:"workflowy"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds the local HTTP API address
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// PathsConfig holds the host-environment directories. Components receive
// these explicitly; nothing reads an ambient singleton.
type PathsConfig struct {
	// DataDir is the writable per-user application data directory
	// (bookmarks.db and the installed server.cjs live here).
	DataDir string `yaml:"data_dir"`
	// ResourceDir is the read-only bundled-resources directory shipped
	// alongside the application.
	ResourceDir string `yaml:"resource_dir"`
}

// WorkflowyConfig holds the remote validation endpoint configuration
type WorkflowyConfig struct {
	// BaseURL overrides the production API endpoint (used in tests).
	BaseURL string `yaml:"base_url"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabasePath returns the bookmarks database location under the data dir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "bookmarks.db")
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded. Missing
// optional fields fall back to defaults from ApplyDefaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with all defaults applied, for running
// without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:7767"
	}
	if c.Paths.DataDir == "" {
		c.Paths.DataDir = DefaultDataDir()
	}
	if c.Paths.ResourceDir == "" {
		c.Paths.ResourceDir = defaultResourceDir()
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Paths.DataDir == "" {
		return fmt.Errorf("paths.data_dir could not be resolved")
	}
	if c.Paths.ResourceDir == "" {
		return fmt.Errorf("paths.resource_dir could not be resolved")
	}
	return nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// DefaultConfigPath returns the path to the backend config file.
// Priority: WAYMARK_CONFIG env var > XDG_CONFIG_HOME/waymark/backend.yaml > ~/.config/waymark/backend.yaml
func DefaultConfigPath() string {
	if envPath := os.Getenv("WAYMARK_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "backend.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "waymark", "backend.yaml")
}

// DefaultDataDir returns the per-user waymark data directory.
// Priority: XDG_DATA_HOME/waymark > ~/.local/share/waymark
func DefaultDataDir() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "waymark")
}

// defaultResourceDir resolves the bundled-resources directory relative to
// the running executable, which is how the desktop bundle lays things out.
func defaultResourceDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "resources" // fallback
	}
	return filepath.Join(filepath.Dir(exe), "resources")
}
