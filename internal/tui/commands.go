package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// initializeStatistics runs the once-per-view fetch off the render loop.
func (m Model) initializeStatistics() tea.Cmd {
	return m.fetchCmd(false)
}

// refetchStatistics asks the view model for a fresh document.
func (m Model) refetchStatistics() tea.Cmd {
	return m.fetchCmd(true)
}

func (m Model) fetchCmd(refetch bool) tea.Cmd {
	vm := m.stats
	parent := m.ctx
	timeout := m.config.FetchTimeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		var err error
		if refetch {
			err = vm.Refetch(ctx)
		} else {
			err = vm.Initialize(ctx)
		}

		return statisticsFetchedMsg{
			err:     err,
			version: vm.Version(),
			refetch: refetch,
		}
	}
}
