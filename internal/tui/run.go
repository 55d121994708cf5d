package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive program and blocks until the user quits.
func Run(opts Options, progOpts ...tea.ProgramOption) error {
	m := New(opts)
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, progOpts...)...)
	_, err := p.Run()
	// a recording started just before quitting still holds the device
	if opts.Pipeline != nil && opts.Pipeline.Abort() {
		m.log.Info("recording discarded on exit")
	}
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
