package tui

import (
	"fmt"
	"strings"
	"time"

	"mintr"

	"github.com/charmbracelet/lipgloss"
)

func (m model) View() string {
	var b strings.Builder

	header := titleStyle.Render("mintr") + " " + subtleStyle.Render(m.net.Name)
	if m.snap.Owner != nil {
		header += "  " + subtleStyle.Render(mintr.Short(*m.snap.Owner))
	}
	if m.loading {
		header += "  " + m.spinner.View()
	}
	b.WriteString(header + "\n\n")

	if m.snap.Owner == nil {
		b.WriteString(errStyle.Render(mintr.Remedy(mintr.KindWalletDisconnected)) + "\n")
	} else {
		b.WriteString(m.viewTable())
	}

	if m.snap.Err != nil {
		b.WriteString("\n" + errStyle.Render(mintr.Remedy(mintr.Classify(m.snap.Err))) + "\n")
	}

	if m.lookingUp {
		b.WriteString("\n" + boxStyle.Render("Lookup mint\n"+m.lookupInput.View()) + "\n")
	} else if m.found != nil && m.found.err == nil {
		b.WriteString("\n" + m.viewLookup() + "\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString(m.viewFooter())
	return b.String()
}

func (m model) viewTable() string {
	if len(m.snap.Rows) == 0 {
		if m.loading {
			return subtleStyle.Render("fetching token accounts...") + "\n"
		}
		return subtleStyle.Render("no token accounts") + "\n"
	}

	var b strings.Builder
	b.WriteString(tableHeaderStyle.Render(fmt.Sprintf("%-12s %-46s %20s", "TOKEN", "MINT", "BALANCE")) + "\n")
	for i, r := range m.snap.Rows {
		line := fmt.Sprintf("%-12s %-46s %20s", rowLabel(r), r.Mint.String(), r.Display())
		if i == m.activeIdx {
			line = selectedStyle.Render(line)
		} else {
			line = lipgloss.NewStyle().Padding(0, 1).Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m model) viewLookup() string {
	info := m.found.info
	authority := "none"
	if info.MintAuthority != nil {
		authority = info.MintAuthority.String()
	}
	freeze := "none"
	if info.FreezeAuthority != nil {
		freeze = info.FreezeAuthority.String()
	}
	return boxStyle.Render(strings.Join([]string{
		titleStyle.Render("Mint " + mintr.Short(info.Mint)),
		fmt.Sprintf("decimals   %d", info.Decimals),
		fmt.Sprintf("supply     %s", mintr.FormatRaw(info.Supply, info.Decimals)),
		fmt.Sprintf("authority  %s", authority),
		fmt.Sprintf("freeze     %s", freeze),
		subtleStyle.Render("via " + m.found.endpoint),
		subtleStyle.Render(mintr.ExplorerAddress(m.net, info.Mint)),
	}, "\n"))
}

func (m model) viewFooter() string {
	updated := "never"
	if !m.lastUpdate.IsZero() {
		updated = fmtAgo(time.Since(m.lastUpdate))
	}
	keys := "↑/↓ select • c copy mint • / lookup • r refresh • q quit"
	return subtleStyle.Render(fmt.Sprintf("updated %s • every %s • %s", updated, m.poller.Interval(), keys))
}
