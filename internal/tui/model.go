package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/homestats/internal/model"
	"github.com/Veraticus/homestats/internal/tui/components"
	"github.com/Veraticus/homestats/internal/tui/themes"
	"github.com/Veraticus/homestats/internal/tui/viewmodel"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrNoFetcher is returned by New when no statistics source is configured.
var ErrNoFetcher = errors.New("tui: statistics fetcher is required")

// Model holds the home view state.
type Model struct {
	ctx      context.Context
	theme    themes.Theme
	stats    *viewmodel.StatisticsViewModel
	cards    components.StatCardsModel
	spinner  spinner.Model
	help     help.Model
	config   Config
	keymap   KeyMap
	status   viewmodel.FetchStatus
	version  uint64
	width    int
	height   int
	quitting bool
}

// New creates the home view model.
func New(opts ...Option) (Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Fetcher == nil {
		return Model{}, ErrNoFetcher
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	return newModel(cfg), nil
}

// newModel creates a new model with the given configuration.
func newModel(cfg Config) Model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(cfg.Theme.StatusPending),
	)

	h := help.New()
	h.Width = cfg.Width

	cards := components.NewStatCardsModel(cfg.Theme, cfg.Formatter)
	cards.Resize(cfg.Width, cfg.Height)

	vm := viewmodel.NewStatisticsViewModel(cfg.Fetcher, viewmodel.WithLogger(slog.Default()))

	m := Model{
		ctx:     cfg.Context,
		theme:   cfg.Theme,
		stats:   vm,
		cards:   cards,
		spinner: s,
		help:    h,
		config:  cfg,
		keymap:  DefaultKeyMap(),
		width:   cfg.Width,
		height:  cfg.Height,
	}
	m.sync()
	return m
}

// Init starts the statistics fetch and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initializeStatistics(), m.spinner.Tick)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			m.stats.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Refresh):
			cmds = append(cmds, m.refetchStatistics())
		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.cards.Resize(msg.Width, msg.Height)

	case statisticsFetchedMsg:
		if msg.err != nil && !errors.Is(msg.err, viewmodel.ErrClosed) {
			slog.Debug("Statistics fetch returned an error",
				"refetch", msg.refetch,
				"version", msg.version,
				"error", msg.err)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.sync()
	return m, tea.Batch(cmds...)
}

// sync re-derives the cards when the view model state has moved.
func (m *Model) sync() {
	cards, status := m.stats.Snapshot()
	if status.Version == m.version && len(m.cards.Cards()) > 0 {
		return
	}
	m.version = status.Version
	m.status = status
	m.cards.SetCards(cards)
}

// Cards returns the cards currently shown.
func (m Model) Cards() []model.StatCard {
	return m.cards.Cards()
}

// Status returns the fetch status currently shown.
func (m Model) Status() viewmodel.FetchStatus {
	return m.status
}

// Close tears down the underlying view model.
func (m Model) Close() {
	m.stats.Close()
}

func (m Model) statusLine() string {
	switch m.status.State {
	case viewmodel.FetchUnfetched, viewmodel.FetchPending:
		return m.spinner.View() + " " + m.theme.StatusPending.Render("Loading statistics...")
	case viewmodel.FetchFailed:
		return m.theme.StatusError.Render(fmt.Sprintf("Failed to load statistics: %v", m.status.Err))
	case viewmodel.FetchResolved:
		return m.theme.StatusSuccess.Render("Updated " + m.status.FetchedAt.Format("15:04:05"))
	default:
		return ""
	}
}
