package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notesapi/pkg/database"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Database   DatabaseConfig    `yaml:"database"`
	Pagination PaginationConfig  `yaml:"pagination"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Pagination.Validate(); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogPretty bool       `yaml:"log_pretty"`
	HTTP      HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
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

// DatabaseConfig selects the SQL driver and connection.
//
// Driver is "sqlite3" (DSN is a file path) or "pgx" (DSN is a PostgreSQL
// connection string).
type DatabaseConfig struct {
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	PingAttempts int    `yaml:"ping_attempts"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	ApplySchema  bool   `yaml:"apply_schema"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(database.DriverSQLite, database.DriverPostgres)),
		validation.Field(&c.DSN, validation.Required),
		validation.Field(&c.PingAttempts, validation.Min(0)),
		validation.Field(&c.MaxOpenConns, validation.Min(0)),
	)
}

// PaginationConfig limits listing requests. MaxSize 0 means unlimited.
type PaginationConfig struct {
	MaxSize int `yaml:"max_size"`
}

// Validate validates the pagination configuration.
func (c *PaginationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxSize, validation.Min(0)),
	)
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
		Database: DatabaseConfig{
			Driver:       database.DriverSQLite,
			DSN:          "./notes.db",
			PingAttempts: 5,
			ApplySchema:  true,
		},
	}
}
