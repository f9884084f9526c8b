package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/coursebook/internal/state"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Content source kinds.
const (
	SourceHTTP = "http"
	SourceDir  = "dir"
)

// State drivers.
const (
	StateDriverSQLite = "sqlite"
	StateDriverRedis  = "redis"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	State   StateConfig       `yaml:"state"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if err := c.State.Validate(); err != nil {
		return fmt.Errorf("state: %w", err)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
	CORS     CORSConfig `yaml:"cors"`
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

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ContentConfig describes where course bundles come from.
type ContentConfig struct {
	Source          string        `yaml:"source"`
	BaseURL         string        `yaml:"base_url"`
	Dir             string        `yaml:"dir"`
	Sets            []string      `yaml:"sets"`
	BaseLanguage    string        `yaml:"base_language"`
	OverlayLanguage string        `yaml:"overlay_language"`
	Timeout         time.Duration `yaml:"timeout"`
	StrictIDs       bool          `yaml:"strict_ids"`
	Watch           bool          `yaml:"watch"`
	ChangeThrottle  time.Duration `yaml:"change_throttle"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Source, validation.Required, validation.In(SourceHTTP, SourceDir)),
		validation.Field(&c.BaseURL, validation.When(c.Source == SourceHTTP, validation.Required, validation.By(httpURL))),
		validation.Field(&c.Dir, validation.When(c.Source == SourceDir, validation.Required)),
		validation.Field(&c.Sets, validation.Required, validation.Each(validation.Required)),
		validation.Field(&c.BaseLanguage, validation.Required),
		validation.Field(&c.OverlayLanguage, validation.Required, validation.NotIn(c.BaseLanguage).Error("must differ from base_language")),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.ChangeThrottle, validation.Min(time.Duration(0))),
	)
}

func httpURL(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must be an http or https URL")
	}
	return nil
}

// StateConfig selects the backend for locally persisted learner state.
type StateConfig struct {
	Driver string       `yaml:"driver"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	Redis  RedisConfig  `yaml:"redis"`
}

// Validate validates the state configuration.
func (c *StateConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(StateDriverSQLite, StateDriverRedis)),
	); err != nil {
		return err
	}
	if c.Driver == StateDriverRedis {
		return c.Redis.Validate()
	}
	return c.SQLite.Validate()
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

// Validate validates the Redis configuration.
func (c *RedisConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required, validation.By(func(value any) error {
			_, err := state.ParseURL(value.(string))
			return err
		})),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
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

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			CORS: CORSConfig{
				AllowedOrigins: []string{"http://localhost:5173"},
			},
		},
		Content: ContentConfig{
			Source:          SourceDir,
			Dir:             "./data",
			Sets:            []string{"spring-boot.json", "react.json", "javascript.json", "core-java.json"},
			BaseLanguage:    "english",
			OverlayLanguage: "hinglish",
			Timeout:         15 * time.Second,
			Watch:           true,
			ChangeThrottle:  2 * time.Second,
		},
		State: StateConfig{
			Driver: StateDriverSQLite,
			SQLite: SQLiteConfig{
				Path: "./coursebook.db",
			},
			Redis: RedisConfig{
				Prefix: "coursebook:",
			},
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
