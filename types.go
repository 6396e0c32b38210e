package mintr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gagliardetto/solana-go"
)

type Network struct {
	Name      string
	Endpoints []string
	Cluster   string
	Faucet    bool
}

// Primary is the endpoint panels submit through. Lookups may fall back to the rest.
func (n Network) Primary() string {
	if len(n.Endpoints) == 0 {
		return ""
	}
	return n.Endpoints[0]
}

const (
	MainnetRPC  = "https://api.mainnet-beta.solana.com"
	DevnetRPC   = "https://api.devnet.solana.com"
	TestnetRPC  = "https://api.testnet.solana.com"
	LocalnetRPC = "http://127.0.0.1:8899"

	DefaultNetwork = "devnet"
)

var Networks = map[string]Network{
	"mainnet": {
		Name:      "mainnet",
		Endpoints: []string{MainnetRPC},
		Cluster:   "",
	},
	"devnet": {
		Name:      "devnet",
		Endpoints: []string{DevnetRPC},
		Cluster:   "devnet",
		Faucet:    true,
	},
	"testnet": {
		Name:      "testnet",
		Endpoints: []string{TestnetRPC},
		Cluster:   "testnet",
		Faucet:    true,
	},
	"localnet": {
		Name:      "localnet",
		Endpoints: []string{LocalnetRPC},
		Cluster:   "custom&customUrl=" + LocalnetRPC,
		Faucet:    true,
	},
}

// LookupNetwork returns the named network. Unknown names are an error; there is
// no implicit fallback to another cluster.
func LookupNetwork(name string) (Network, error) {
	n, ok := Networks[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Network{}, fmt.Errorf("unknown network %q (use: %s)", name, strings.Join(NetworkNames(), ", "))
	}
	return n, nil
}

func NetworkNames() []string {
	out := make([]string, 0, len(Networks))
	for k := range Networks {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// TokenInfo is a read-only snapshot of a mint account.
type TokenInfo struct {
	Mint            solana.PublicKey
	Decimals        uint8
	Supply          uint64
	MintAuthority   *solana.PublicKey
	FreezeAuthority *solana.PublicKey
	Initialized     bool
}

type BalanceRow struct {
	Mint     solana.PublicKey
	Account  solana.PublicKey
	Amount   uint64
	Decimals uint8
	Network  string
	Symbol   string
}

func (r BalanceRow) Display() string {
	return FormatRaw(r.Amount, r.Decimals)
}

// Anchor is the freshness window a submission was signed against.
type Anchor struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

// KnownTokens labels list rows for common mainnet mints.
var KnownTokens = map[string]string{
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": "USDC",
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": "USDT",
	"3NZ9JMVBmGAqocybic2c7LQCJScmgsAZ6vQqTDzcqmJh": "wBTC", // Wormhole
	"HZRCwxP2Vq9PCpPXooayhJ2bxTpo5xfpQrwB1svh332p": "wLTC", // Wormhole
}

func SymbolFor(mint solana.PublicKey) string {
	if sym, ok := KnownTokens[mint.String()]; ok {
		return sym
	}
	return ""
}
