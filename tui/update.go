package tui

import (
	"context"
	"time"

	"mintr"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"
)

const lookupTimeout = 30 * time.Second

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case refreshMsg:
		cmds = append(cmds, listenForPoller(m.sub))
		m.loading = false
		m.snap = mintr.Snapshot(msg)
		m.lastUpdate = msg.Time
		m.clampCursor()

	case lookupMsg:
		m.loading = false
		m.found = &msg
		if msg.err != nil {
			m.status = errStyle.Render(mintr.Remedy(mintr.Classify(msg.err)))
			cmds = append(cmds, clearStatusAfter(3*time.Second))
		}

	case clearStatusMsg:
		m.status = ""

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if m.lookingUp {
			return m.updateLookup(msg)
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.poller.Unsubscribe(m.sub)
			return m, tea.Quit
		case "up", "k":
			if m.activeIdx > 0 {
				m.activeIdx--
			}
		case "down", "j":
			if m.activeIdx < len(m.snap.Rows)-1 {
				m.activeIdx++
			}
		case "r":
			p := m.poller
			cmds = append(cmds, func() tea.Msg {
				// the snapshot arrives through the subscription
				p.Refresh(context.Background())
				return nil
			})
		case "c":
			if mint, ok := m.selectedMint(); ok {
				if err := clipboard.WriteAll(mint.String()); err != nil {
					m.status = errStyle.Render("Failed to copy to clipboard")
				} else {
					m.status = infoStyle.Render("Mint address copied to clipboard!")
				}
				cmds = append(cmds, clearStatusAfter(2*time.Second))
			}
		case "/", "l":
			m.lookingUp = true
			m.found = nil
			m.lookupInput.SetValue("")
			cmds = append(cmds, m.lookupInput.Focus())
		case "esc":
			m.found = nil
		}
	}

	return m, tea.Batch(cmds...)
}

func (m model) updateLookup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.lookingUp = false
		m.lookupInput.Blur()
		return m, nil
	case "enter":
		m.lookingUp = false
		m.lookupInput.Blur()
		mint, err := mintr.ParseAddress("mint", m.lookupInput.Value())
		if err != nil {
			m.status = errStyle.Render(err.Error())
			return m, clearStatusAfter(3 * time.Second)
		}
		m.loading = true
		return m, runLookup(m.lookup, mint)
	}

	var cmd tea.Cmd
	m.lookupInput, cmd = m.lookupInput.Update(msg)
	return m, cmd
}

func runLookup(lookup LookupFunc, mint solana.PublicKey) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()
		info, ep, err := lookup(ctx, mint)
		return lookupMsg{info: info, endpoint: ep, err: err}
	}
}
