package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/propdesk/internal/index"
	"github.com/starford/propdesk/internal/inbox"
	"github.com/starford/propdesk/internal/sse"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Store     StoreConfig       `yaml:"store"`
	Index     IndexConfig       `yaml:"index"`
	Import    ImportConfig      `yaml:"import"`
	Messaging MessagingConfig   `yaml:"messaging"`
	Events    EventsConfig      `yaml:"events"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	if err := c.Import.Validate(); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if err := c.Messaging.Validate(); err != nil {
		return fmt.Errorf("messaging: %w", err)
	}
	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
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

// StoreConfig controls the in-memory CRM store.
type StoreConfig struct {
	// SeedDemo loads the bundled demo agents, leads and properties at start.
	SeedDemo bool `yaml:"seed_demo"`
	// StrictStatusTransitions rejects lead status moves the pipeline does
	// not allow, such as reopening a lost lead.
	StrictStatusTransitions bool `yaml:"strict_status_transitions"`
}

// IndexConfig holds the search index database location.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ImportConfig holds the CSV inbox settings.
type ImportConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"`
	Settle  time.Duration `yaml:"settle"`
}

// Validate validates the import configuration.
func (c *ImportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.When(c.Enabled, validation.Required)),
		validation.Field(&c.Settle, validation.Min(time.Duration(0))),
	)
}

// MessagingConfig holds outbound message settings.
type MessagingConfig struct {
	SendDelay time.Duration `yaml:"send_delay"`
}

// Validate validates the messaging configuration.
func (c *MessagingConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SendDelay, validation.Min(time.Duration(0)), validation.Max(time.Minute)),
	)
}

// EventsConfig holds the SSE stream settings.
type EventsConfig struct {
	DashboardThrottle time.Duration `yaml:"dashboard_throttle"`
	Heartbeat         time.Duration `yaml:"heartbeat"`
	// Replay is how many recent events a reconnecting client can resume from.
	Replay int `yaml:"replay"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DashboardThrottle, validation.Min(time.Duration(0))),
		validation.Field(&c.Heartbeat, validation.Min(time.Duration(0))),
		validation.Field(&c.Replay, validation.Min(0), validation.Max(10000)),
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
		},
		Store: StoreConfig{
			SeedDemo: true,
		},
		Index: IndexConfig{
			Path: index.MemoryDSN,
		},
		Import: ImportConfig{
			Dir:    "./inbox",
			Settle: inbox.DefaultSettle,
		},
		Messaging: MessagingConfig{
			SendDelay: time.Second,
		},
		Events: EventsConfig{
			DashboardThrottle: sse.DefaultDashboardThrottle,
			Heartbeat:         sse.DefaultHeartbeat,
			Replay:            sse.DefaultReplay,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
