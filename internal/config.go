package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app" toml:"app"`
	Data     DataConfig        `yaml:"data" toml:"data"`
	SQLite   SQLiteConfig      `yaml:"sqlite" toml:"sqlite"`
	Exports  ExportsConfig     `yaml:"exports" toml:"exports"`
	Auth     AuthConfig        `yaml:"auth" toml:"auth"`
	Scryfall ScryfallConfig    `yaml:"scryfall" toml:"scryfall"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Data.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Exports.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Scryfall.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DataConfig names the snapshot and card catalog files.
//
// OraclePath may point at a missing file; the built-in catalog is used then.
// When Watch is set, changes to either file rebuild the engine.
type DataConfig struct {
	SnapshotPath string        `yaml:"snapshot_path" toml:"snapshot_path"`
	OraclePath   string        `yaml:"oracle_path" toml:"oracle_path"`
	Watch        bool          `yaml:"watch" toml:"watch"`
	Debounce     time.Duration `yaml:"debounce" toml:"debounce"`
}

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SnapshotPath, validation.Required),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ExportsConfig holds the directory decklist exports are written to.
type ExportsConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Validate validates the exports configuration.
func (c *ExportsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" toml:"mode"`
	Token string `yaml:"token" toml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// ScryfallConfig configures the remote card lookup. When disabled, card
// lookups are answered from the local catalog.
type ScryfallConfig struct {
	Enabled           bool          `yaml:"enabled" toml:"enabled"`
	BaseURL           string        `yaml:"base_url" toml:"base_url"`
	RequestsPerSecond float64       `yaml:"requests_per_second" toml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout" toml:"timeout"`
}

// Validate validates the Scryfall configuration.
func (c *ScryfallConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.When(c.Enabled, validation.Required)),
		validation.Field(&c.RequestsPerSecond, validation.When(c.Enabled, validation.Required, validation.Min(0.1), validation.Max(10.0))),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// RateLimit converts RequestsPerSecond to the minimum spacing between requests.
func (c *ScryfallConfig) RateLimit() time.Duration {
	if c.RequestsPerSecond <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / c.RequestsPerSecond)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Data: DataConfig{
			SnapshotPath: "./data/mtg_master.json",
			OraclePath:   "./data/oracle.json",
			Watch:        true,
		},
		SQLite: SQLiteConfig{
			Path: "./deckwright.db",
		},
		Exports: ExportsConfig{
			Path: "./exports",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Scryfall: ScryfallConfig{
			Enabled:           false,
			BaseURL:           "https://api.scryfall.com",
			RequestsPerSecond: 10,
			Timeout:           10 * time.Second,
		},
	}
}
