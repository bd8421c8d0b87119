package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"usersearch/internal/eventbus"
)

// Backends understood by the client factory
const (
	BackendREST   = "rest"
	BackendGitHub = "go-github"
)

// DefaultBaseURL is the GitHub search endpoint root
const DefaultBaseURL = "https://api.github.com/search"

// EnvPrefix prefixes every environment override, e.g. USERSEARCH_API_BASE_URL
const EnvPrefix = "USERSEARCH"

// Config represents the application configuration
type Config struct {
	Version    int             `toml:"version" mapstructure:"version"`
	API        APISettings     `toml:"api" mapstructure:"api"`
	Breaker    BreakerSettings `toml:"breaker" mapstructure:"breaker"`
	UISettings UISettings      `toml:"ui" mapstructure:"ui"`
	Log        LogSettings     `toml:"log" mapstructure:"log"`
}

// APISettings configures the remote search API
type APISettings struct {
	BaseURL string `toml:"base_url" mapstructure:"base_url"`
	Backend string `toml:"backend" mapstructure:"backend"`
	PerPage int    `toml:"per_page" mapstructure:"per_page"` // 0 lets the API decide
	Timeout string `toml:"timeout" mapstructure:"timeout"`
}

// BreakerSettings configures the circuit breaker around the search client
type BreakerSettings struct {
	Enabled      bool    `toml:"enabled" mapstructure:"enabled"`
	MaxRequests  uint32  `toml:"max_requests" mapstructure:"max_requests"`
	Interval     string  `toml:"interval" mapstructure:"interval"`
	Timeout      string  `toml:"timeout" mapstructure:"timeout"`
	MinRequests  uint32  `toml:"min_requests" mapstructure:"min_requests"`
	FailureRatio float64 `toml:"failure_ratio" mapstructure:"failure_ratio"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowEmail    bool `toml:"show_email" mapstructure:"show_email"`
	ShowBio      bool `toml:"show_bio" mapstructure:"show_bio"`
	AutoLoadMore bool `toml:"auto_load_more" mapstructure:"auto_load_more"`
}

// LogSettings configures logging output
type LogSettings struct {
	File   string `toml:"file" mapstructure:"file"`
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
}

// RequestTimeout returns the per-request timeout
func (a APISettings) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// Validate checks the values that cannot be defaulted silently
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api.base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q: scheme and host required", c.API.BaseURL)
	}

	switch c.API.Backend {
	case BackendREST, BackendGitHub:
	default:
		return fmt.Errorf("unknown api.backend %q", c.API.Backend)
	}

	if c.API.PerPage < 0 || c.API.PerPage > 100 {
		return fmt.Errorf("api.per_page must be between 0 and 100, got %d", c.API.PerPage)
	}

	for key, value := range map[string]string{
		"api.timeout":      c.API.Timeout,
		"breaker.interval": c.Breaker.Interval,
		"breaker.timeout":  c.Breaker.Timeout,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	if c.Breaker.FailureRatio < 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("breaker.failure_ratio must be within [0, 1], got %v", c.Breaker.FailureRatio)
	}

	return nil
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// DefaultPath returns ~/.config/usersearch/config.toml or a local fallback
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "usersearch", "config.toml")
}

// NewConfigService creates a config service bound to path (DefaultPath when empty)
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{filePath: path}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(path string, bus eventbus.EventBus) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	return cs
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from the service's file. A missing file
// yields the defaults, still subject to environment overrides.
func (cs *configService) Load() (*Config, error) {
	path := cs.filePath
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = ""
	}

	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{
			Path:    path,
			BaseURL: cfg.API.BaseURL,
			Backend: cfg.API.Backend,
		})
	}

	return cfg, nil
}

// Save saves the configuration to the service's file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}

	return nil
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	return read(path)
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// read layers defaults, the TOML file at path (if any) and USERSEARCH_* env vars
func read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.backend", d.API.Backend)
	v.SetDefault("api.per_page", d.API.PerPage)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("breaker.enabled", d.Breaker.Enabled)
	v.SetDefault("breaker.max_requests", d.Breaker.MaxRequests)
	v.SetDefault("breaker.interval", d.Breaker.Interval)
	v.SetDefault("breaker.timeout", d.Breaker.Timeout)
	v.SetDefault("breaker.min_requests", d.Breaker.MinRequests)
	v.SetDefault("breaker.failure_ratio", d.Breaker.FailureRatio)
	v.SetDefault("ui.show_email", d.UISettings.ShowEmail)
	v.SetDefault("ui.show_bio", d.UISettings.ShowBio)
	v.SetDefault("ui.auto_load_more", d.UISettings.AutoLoadMore)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APISettings{
			BaseURL: DefaultBaseURL,
			Backend: BackendREST,
			Timeout: "10s",
		},
		Breaker: BreakerSettings{
			Enabled:      true,
			MaxRequests:  1,
			Interval:     "30s",
			Timeout:      "15s",
			MinRequests:  3,
			FailureRatio: 0.6,
		},
		UISettings: UISettings{
			ShowEmail:    true,
			ShowBio:      true,
			AutoLoadMore: true,
		},
		Log: LogSettings{
			File:   "usersearch.log",
			Level:  "info",
			Format: "text",
		},
	}
}
