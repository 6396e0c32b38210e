package mintr

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/stretchr/testify/mock"
)

type MockChain struct {
	mock.Mock
	endpoint string
}

var _ Chain = (*MockChain)(nil)

func (m *MockChain) Endpoint() string { return m.endpoint }

func (m *MockChain) MintInfo(ctx context.Context, mint solana.PublicKey) (*TokenInfo, error) {
	args := m.Called(mint)
	info, _ := args.Get(0).(*TokenInfo)
	return info, args.Error(1)
}

func (m *MockChain) AccountExists(ctx context.Context, addr solana.PublicKey) (bool, error) {
	args := m.Called(addr)
	return args.Bool(0), args.Error(1)
}

func (m *MockChain) TokenBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	args := m.Called(account)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockChain) RentForMint(ctx context.Context) (uint64, error) {
	args := m.Called()
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockChain) LatestAnchor(ctx context.Context) (Anchor, error) {
	args := m.Called()
	return args.Get(0).(Anchor), args.Error(1)
}

func (m *MockChain) Send(ctx context.Context, tx *solana.Transaction, o SubmitOpts) (solana.Signature, error) {
	args := m.Called(tx, o)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *MockChain) Confirm(ctx context.Context, sig solana.Signature, anchor Anchor) error {
	args := m.Called(sig, anchor)
	return args.Error(0)
}

func (m *MockChain) TokenAccounts(ctx context.Context, owner solana.PublicKey) ([]BalanceRow, error) {
	args := m.Called(owner)
	rows, _ := args.Get(0).([]BalanceRow)
	return rows, args.Error(1)
}

func (m *MockChain) Balance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	args := m.Called(owner)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockChain) Airdrop(ctx context.Context, owner solana.PublicKey, lamports uint64) (solana.Signature, error) {
	args := m.Called(owner, lamports)
	return args.Get(0).(solana.Signature), args.Error(1)
}

// draftSession records drafts instead of signing them.
type draftSession struct {
	owner  *solana.PublicKey
	sig    solana.Signature
	err    error
	drafts []*Draft
}

func (s *draftSession) Identity() *solana.PublicKey { return s.owner }

func (s *draftSession) Submit(ctx context.Context, d *Draft, chain Chain, o SubmitOpts) (solana.Signature, error) {
	if s.owner == nil {
		return solana.Signature{}, ErrWalletDisconnected
	}
	s.drafts = append(s.drafts, d)
	return s.sig, s.err
}

// fakeTimer fires immediately and records every requested delay.
type fakeTimer struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (t *fakeTimer) After(d time.Duration) <-chan time.Time {
	t.mu.Lock()
	t.delays = append(t.delays, d)
	t.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func (t *fakeTimer) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.delays)
}

// recordingNotifier keeps every message by level.
type recordingNotifier struct {
	mu      sync.Mutex
	loading []string
	success []string
	errors  []string
}

func (n *recordingNotifier) Loading(msg string) {
	n.mu.Lock()
	n.loading = append(n.loading, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	n.success = append(n.success, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	n.errors = append(n.errors, msg)
	n.mu.Unlock()
}

type memLedger struct {
	records map[string]Record
	prefs   map[string]string
}

func newMemLedger() *memLedger {
	return &memLedger{records: map[string]Record{}, prefs: map[string]string{}}
}

func (l *memLedger) SaveRecord(r Record) error {
	l.records[r.ID] = r
	return nil
}

func (l *memLedger) SetPref(key, value string) error {
	l.prefs[key] = value
	return nil
}

// fakeDialer hands out one mock per endpoint.
type fakeDialer struct {
	mu      sync.Mutex
	chains  map[string]*MockChain
	evicted []string
}

func (d *fakeDialer) Chain(endpoint string) Chain {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chains[endpoint]
}

func (d *fakeDialer) Evict(endpoint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.evicted = append(d.evicted, endpoint)
	return true
}

func newKey() solana.PrivateKey {
	k, err := solana.NewRandomPrivateKey()
	if err != nil {
		panic(err)
	}
	return k
}

func pubkey() solana.PublicKey {
	return newKey().PublicKey()
}

var testAnchor = Anchor{
	Blockhash:            solana.Hash(solana.SysVarRentPubkey),
	LastValidBlockHeight: 1000,
}

func httpErr(code int) error {
	return jsonrpc.NewHTTPError(code, fmt.Errorf("http status %d", code))
}
