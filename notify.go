package mintr

import (
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/gagliardetto/solana-go"
)

// Notifier is a fire-and-forget status surface.
type Notifier interface {
	Loading(msg string)
	Success(msg string)
	Error(msg string)
}

var (
	okStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

func NewConsoleNotifier(out, errOut io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out, err: errOut}
}

func (n *ConsoleNotifier) Loading(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, dimStyle.Render("… "+msg))
}

func (n *ConsoleNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, okStyle.Render("✓ "+msg))
}

func (n *ConsoleNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.err, errStyle.Render("✗ "+msg))
}

type nopNotifier struct{}

func (nopNotifier) Loading(string) {}
func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

const explorerBase = "https://explorer.solana.com"

func ExplorerTx(n Network, sig solana.Signature) string {
	return explorerURL("tx", sig.String(), n)
}

func ExplorerAddress(n Network, addr solana.PublicKey) string {
	return explorerURL("address", addr.String(), n)
}

func explorerURL(kind, id string, n Network) string {
	u := explorerBase + "/" + kind + "/" + url.PathEscape(id)
	if n.Cluster != "" {
		u += "?cluster=" + n.Cluster
	}
	return u
}
