package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/homestats/internal/common"
	"github.com/Veraticus/homestats/internal/service"
	"github.com/spf13/viper"
)

const appName = "homestats"

// Config is the fully resolved application configuration.
type Config struct {
	Logging LoggingConfig
	Display DisplayConfig
	Storage StorageConfig
	API     APIConfig
}

// APIConfig describes how to reach the inventory server.
type APIConfig struct {
	URL        string
	Token      string
	Timeout    time.Duration
	RetryDelay time.Duration
	Retries    int
}

// StorageConfig controls the snapshot history database.
type StorageConfig struct {
	Path    string
	Enabled bool
}

// DisplayConfig controls view-side formatting.
type DisplayConfig struct {
	Currency string
	Locale   string
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.retries", 3)
	v.SetDefault("api.retry_delay", 500*time.Millisecond)
	v.SetDefault("storage.enabled", true)
	v.SetDefault("storage.path", filepath.Join(DefaultDataDir(), "history.db"))
	v.SetDefault("display.currency", "USD")
	v.SetDefault("display.locale", "zh-CN")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", filepath.Join(DefaultStateDir(), appName+".log"))
}

// Load reads the configuration out of v. It does not require API settings;
// call RequireAPI before building a live client.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	cfg := Config{
		API: APIConfig{
			URL:        strings.TrimRight(strings.TrimSpace(v.GetString("api.url")), "/"),
			Token:      strings.TrimSpace(v.GetString("api.token")),
			Timeout:    v.GetDuration("api.timeout"),
			Retries:    v.GetInt("api.retries"),
			RetryDelay: v.GetDuration("api.retry_delay"),
		},
		Storage: StorageConfig{
			Path:    ExpandPath(v.GetString("storage.path")),
			Enabled: v.GetBool("storage.enabled"),
		},
		Display: DisplayConfig{
			Currency: strings.ToUpper(strings.TrimSpace(v.GetString("display.currency"))),
			Locale:   strings.TrimSpace(v.GetString("display.locale")),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
			File:   ExpandPath(v.GetString("logging.file")),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.API.Timeout <= 0 {
		return fmt.Errorf("%w: api.timeout must be positive", common.ErrInvalidConfig)
	}
	if c.API.Retries < 1 {
		return fmt.Errorf("%w: api.retries must be at least 1", common.ErrInvalidConfig)
	}
	if c.API.RetryDelay < 0 {
		return fmt.Errorf("%w: api.retry_delay must not be negative", common.ErrInvalidConfig)
	}
	if c.Storage.Enabled && c.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path is empty", common.ErrInvalidConfig)
	}
	if len(c.Display.Currency) != 3 {
		return fmt.Errorf("%w: display.currency must be an ISO 4217 code", common.ErrInvalidConfig)
	}
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// RequireAPI checks the settings a live server connection needs.
func (c Config) RequireAPI() error {
	if c.API.URL == "" {
		return fmt.Errorf("%w: api.url", common.ErrMissingConfig)
	}
	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api.url %q is not an http(s) URL", common.ErrInvalidConfig, c.API.URL)
	}
	if c.API.Token == "" {
		return fmt.Errorf("%w: api.token", common.ErrMissingConfig)
	}
	return nil
}

// RetryOptions converts the API settings into retry options.
func (c APIConfig) RetryOptions() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  c.Retries,
		InitialDelay: c.RetryDelay,
		MaxDelay:     10 * c.RetryDelay,
		Multiplier:   2.0,
	}
}
