package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains the client-credentials identity used to obtain catalog access tokens.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// CatalogConfig controls how the remote catalog is queried.
type CatalogConfig struct {
	BaseURL            string  `toml:"base_url"`
	TokenURL           string  `toml:"token_url"`
	Market             string  `toml:"market"`
	AutocompleteMarket string  `toml:"autocomplete_market"`
	SearchLimit        int     `toml:"search_limit"`
	AutocompleteLimit  int     `toml:"autocomplete_limit"`
	MaxAuthRetries     int     `toml:"max_auth_retries"`
	RequestsPerSecond  float64 `toml:"requests_per_second"`
	TimeoutSeconds     int     `toml:"timeout_seconds"`
}

// Timeout returns the per-request timeout for catalog calls.
func (c CatalogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
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
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays environment variables onto the config using lookup (usually [os.LookupEnv]).
//
// Recognized: SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET, FEATGUESS_DATABASE, FEATGUESS_LOG_LEVEL.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	overlay := map[string]*string{
		"SPOTIFY_CLIENT_ID":     &c.Credentials.Spotify.ClientID,
		"SPOTIFY_CLIENT_SECRET": &c.Credentials.Spotify.ClientSecret,
		"FEATGUESS_DATABASE":    &c.Database.Path,
		"FEATGUESS_LOG_LEVEL":   &c.Log.Level,
	}
	for key, field := range overlay {
		if v, ok := lookup(key); ok && v != "" {
			*field = v
		}
	}
}

// Validate checks numeric bounds and required catalog settings.
func (c *Config) Validate() error {
	switch {
	case c.Catalog.BaseURL == "":
		return fmt.Errorf("%w: catalog.base_url is required", ErrInvalidConfig)
	case c.Catalog.TokenURL == "":
		return fmt.Errorf("%w: catalog.token_url is required", ErrInvalidConfig)
	case c.Catalog.SearchLimit < 1 || c.Catalog.SearchLimit > 50:
		return fmt.Errorf("%w: catalog.search_limit must be between 1 and 50", ErrInvalidConfig)
	case c.Catalog.AutocompleteLimit < 1 || c.Catalog.AutocompleteLimit > 50:
		return fmt.Errorf("%w: catalog.autocomplete_limit must be between 1 and 50", ErrInvalidConfig)
	case c.Catalog.MaxAuthRetries < 0:
		return fmt.Errorf("%w: catalog.max_auth_retries must not be negative", ErrInvalidConfig)
	case c.Catalog.RequestsPerSecond <= 0:
		return fmt.Errorf("%w: catalog.requests_per_second must be positive", ErrInvalidConfig)
	case c.Database.Path == "":
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// HasCredentials reports whether both halves of the client identity are configured.
func (c *Config) HasCredentials() bool {
	return c.Credentials.Spotify.ClientID != "" && c.Credentials.Spotify.ClientSecret != ""
}
