package tui

import (
	"context"
	"time"

	"github.com/Veraticus/homestats/internal/service"
	"github.com/Veraticus/homestats/internal/tui/themes"
	"github.com/Veraticus/homestats/internal/tui/viewmodel"
)

// Config holds TUI configuration.
type Config struct {
	Context      context.Context
	Fetcher      service.StatisticsFetcher
	Formatter    viewmodel.Formatter
	Theme        themes.Theme
	Title        string
	FetchTimeout time.Duration
	Width        int
	Height       int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Context:      context.Background(),
		Theme:        themes.Default,
		Formatter:    viewmodel.DefaultFormatter(),
		Title:        "Homebox",
		FetchTimeout: 30 * time.Second,
		Width:        80,
		Height:       24,
	}
}

// WithFetcher sets the statistics source.
func WithFetcher(fetcher service.StatisticsFetcher) Option {
	return func(c *Config) {
		c.Fetcher = fetcher
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithFormatter sets how card values are formatted.
func WithFormatter(formatter viewmodel.Formatter) Option {
	return func(c *Config) {
		c.Formatter = formatter
	}
}

// WithTitle sets the heading shown above the cards.
func WithTitle(title string) Option {
	return func(c *Config) {
		c.Title = title
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithFetchTimeout bounds each statistics fetch.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.FetchTimeout = timeout
	}
}

// WithContext sets the context that fetches derive from.
func WithContext(ctx context.Context) Option {
	return func(c *Config) {
		c.Context = ctx
	}
}
