// Package testing provides test utilities for TUI components.
package testing

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// TestRenderer drives a Bubble Tea model without a terminal and keeps what it saw.
type TestRenderer struct {
	// Output contains the last rendered view
	Output string

	// Commands contains all commands returned by Update calls
	Commands []tea.Cmd

	// Messages contains all messages sent to the model
	Messages []tea.Msg
}

// NewTestRenderer creates a new test renderer.
func NewTestRenderer() *TestRenderer {
	return &TestRenderer{
		Commands: make([]tea.Cmd, 0),
		Messages: make([]tea.Msg, 0),
	}
}

// Update sends a message to the model and renders the result.
func (r *TestRenderer) Update(model tea.Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	r.Messages = append(r.Messages, msg)

	newModel, cmd := model.Update(msg)
	if cmd != nil {
		r.Commands = append(r.Commands, cmd)
	}

	r.Output = newModel.View()
	return newModel, cmd
}

// Render renders the model.
func (r *TestRenderer) Render(model tea.Model) string {
	r.Output = model.View()
	return r.Output
}

// Plain returns the last output without ANSI codes.
func (r *TestRenderer) Plain() string {
	return StripANSI(r.Output)
}

// Lines returns the plain output split by newlines.
func (r *TestRenderer) Lines() []string {
	return strings.Split(r.Plain(), "\n")
}

// CollectMsgs runs cmd and returns the messages it produces, expanding batches.
// keep decides which commands of a batch are executed; nil runs them all.
func CollectMsgs(cmd tea.Cmd, keep func(tea.Msg) bool) []tea.Msg {
	if cmd == nil {
		return nil
	}

	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, CollectMsgs(c, keep)...)
		}
		return msgs
	}

	if msg == nil || (keep != nil && !keep(msg)) {
		return nil
	}
	return []tea.Msg{msg}
}
