package tui

import (
	"context"
	"fmt"

	"mintr"

	tea "github.com/charmbracelet/bubbletea"
)

// Start runs the balance view until the user quits. The poller is started
// here and stopped on return.
func Start(ctx context.Context, p *mintr.Poller, net mintr.Network, lookup LookupFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := initialModel(p, net, lookup)
	p.Start(ctx)
	defer p.Stop()

	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
