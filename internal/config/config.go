// Package config loads and saves the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Card catalog database settings
	Catalog CatalogConfig `toml:"catalog"`

	// Meta snapshot settings
	Meta MetaConfig `toml:"meta"`

	// Local LLM review settings
	LLM LLMConfig `toml:"llm"`

	// Card pricing settings
	Pricing PricingConfig `toml:"pricing"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// CatalogConfig contains card database settings.
type CatalogConfig struct {
	Path        string `toml:"path"`         // Path to the SQLite catalog
	AutoMigrate bool   `toml:"auto_migrate"` // Apply schema migrations on open
}

// MetaConfig contains meta snapshot settings.
type MetaConfig struct {
	SnapshotPath  string `toml:"snapshot_path"`   // Local TOML snapshot ("" = built-in)
	Watch         bool   `toml:"watch"`           // Hot-reload the snapshot on change
	RemoteBaseURL string `toml:"remote_base_url"` // Remote meta API ("" = disabled)
	RemoteRPM     int    `toml:"remote_rpm"`      // Remote request rate limit
	CacheTTL      string `toml:"cache_ttl"`       // Remote cache TTL (e.g. "4h")
}

// LLMConfig contains Ollama review settings.
type LLMConfig struct {
	Enabled bool   `toml:"enabled"`  // Generate model-written reviews
	BaseURL string `toml:"base_url"` // Ollama endpoint
	Model   string `toml:"model"`    // Model name
}

// PricingConfig contains price lookup settings.
type PricingConfig struct {
	Enabled bool   `toml:"enabled"`  // Price decks during analysis
	BaseURL string `toml:"base_url"` // Price API endpoint ("" = default)
	RPM     int    `toml:"rpm"`      // Request rate limit
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool   `toml:"debug_mode"` // Enable debug logging
	ReportDir string `toml:"report_dir"` // Where HTML reports land ("" = alongside deck)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Path:        "",
			AutoMigrate: true,
		},
		Meta: MetaConfig{
			SnapshotPath: "",
			Watch:        false,
			RemoteRPM:    30,
			CacheTTL:     "4h",
		},
		LLM: LLMConfig{
			Enabled: false,
			BaseURL: "http://localhost:11434",
			Model:   "qwen3:8b",
		},
		Pricing: PricingConfig{
			Enabled: false,
			RPM:     20,
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".ptcg-analyzer")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from the default location. Returns default
// config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from an explicit path. Returns default
// config if the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return config, nil
}

// Save saves the configuration to the default location.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo saves the configuration to an explicit path.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// CatalogPath returns the configured catalog path, defaulting next to the
// config file.
func (c *Config) CatalogPath() (string, error) {
	if c.Catalog.Path != "" {
		return c.Catalog.Path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".ptcg-analyzer", "catalog.db"), nil
}
