package tui

import (
	"fmt"
	"time"

	"mintr"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"
)

func listenForPoller(sub mintr.Subscriber) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-sub
		if !ok {
			return nil
		}
		return refreshMsg(s)
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// selectedMint is the mint under the cursor, if any.
func (m model) selectedMint() (solana.PublicKey, bool) {
	if m.activeIdx < 0 || m.activeIdx >= len(m.snap.Rows) {
		return solana.PublicKey{}, false
	}
	return m.snap.Rows[m.activeIdx].Mint, true
}

// clampCursor keeps the cursor on a row after the set is replaced.
func (m *model) clampCursor() {
	if m.activeIdx >= len(m.snap.Rows) {
		m.activeIdx = len(m.snap.Rows) - 1
	}
	if m.activeIdx < 0 {
		m.activeIdx = 0
	}
}

func rowLabel(r mintr.BalanceRow) string {
	if r.Symbol != "" {
		return r.Symbol
	}
	return mintr.Short(r.Mint)
}

func fmtAgo(d time.Duration) string {
	secs := int64(d.Seconds())
	if secs < 60 {
		return fmt.Sprintf("%ds ago", secs)
	}
	if secs < 3600 {
		return fmt.Sprintf("%dm ago", secs/60)
	}
	return fmt.Sprintf("%dh ago", secs/3600)
}
