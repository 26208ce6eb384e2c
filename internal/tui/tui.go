// Package tui renders the interactive chat view: a session sidebar backed
// by the controller's registry and a markdown transcript for the active
// conversation.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"agentic/config"
	"agentic/internal/session"
)

// Start runs the chat view until the user quits. Theme changes written to
// config.yaml while the view is open are applied live.
func Start(ctx context.Context, ctrl *session.Controller, settings *config.Settings) error {
	model := newChatModel(ctrl, settings.Theme)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	stop, err := config.WatchSettings(func(s *config.Settings) {
		program.Send(themeMsg{mode: s.Theme})
	})
	if err == nil {
		defer stop()
	}

	_, err = program.Run()
	return err
}
