package tui

import (
	"context"
	"time"

	"mintr"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gagliardetto/solana-go"
)

// LookupFunc reads a mint on the selected network.
type LookupFunc func(ctx context.Context, mint solana.PublicKey) (*mintr.TokenInfo, string, error)

// --- Messages ---

type clearStatusMsg struct{}

type refreshMsg mintr.Snapshot

type lookupMsg struct {
	info     *mintr.TokenInfo
	endpoint string
	err      error
}

// --- Model ---

type model struct {
	poller *mintr.Poller
	sub    mintr.Subscriber
	lookup LookupFunc
	net    mintr.Network

	snap       mintr.Snapshot
	loading    bool
	activeIdx  int
	width      int
	height     int
	spinner    spinner.Model
	status     string
	lastUpdate time.Time

	lookingUp   bool
	lookupInput textinput.Model
	found       *lookupMsg
}

func initialModel(p *mintr.Poller, net mintr.Network, lookup LookupFunc) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "mint address"
	ti.Width = 46
	ti.CharLimit = 44

	return model{
		poller:      p,
		sub:         p.Subscribe(),
		lookup:      lookup,
		net:         net,
		snap:        p.Last(),
		loading:     true,
		spinner:     s,
		lookupInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(listenForPoller(m.sub), m.spinner.Tick)
}
