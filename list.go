package mintr

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

const (
	MinPollInterval = 30 * time.Second
	MaxPollInterval = 60 * time.Second
)

// Snapshot is one complete poll result. Rows always replace the previous set.
type Snapshot struct {
	Owner    *solana.PublicKey
	Network  string
	Endpoint string
	Rows     []BalanceRow
	Err      error
	Time     time.Time
}

// Subscriber is a channel that receives snapshots.
type Subscriber chan Snapshot

type PollerOptions struct {
	Interval time.Duration
	Retry    RetryOptions
	Log      *zap.SugaredLogger
}

// ClampInterval keeps d within the polling bounds.
func ClampInterval(d time.Duration) time.Duration {
	switch {
	case d < MinPollInterval:
		return MinPollInterval
	case d > MaxPollInterval:
		return MaxPollInterval
	}
	return d
}

// Poller keeps the token balances of one owner on one network.
type Poller struct {
	net      Network
	dialer   Dialer
	interval time.Duration
	retry    RetryOptions
	log      *zap.SugaredLogger

	mu          sync.RWMutex
	owner       *solana.PublicKey
	last        Snapshot
	subscribers []Subscriber

	restart  chan struct{}
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewPoller(net Network, d Dialer, o PollerOptions) *Poller {
	if o.Log == nil {
		o.Log = zap.NewNop().Sugar()
	}
	return &Poller{
		net:      net,
		dialer:   d,
		interval: ClampInterval(o.Interval),
		retry:    o.Retry,
		log:      o.Log.With("network", net.Name),
		last:     Snapshot{Network: net.Name},
		restart:  make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
}

func (p *Poller) Interval() time.Duration { return p.interval }

func (p *Poller) Owner() *solana.PublicKey {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.owner
}

// SetOwner switches the polled identity. The current rows are dropped and a
// running loop fetches again immediately.
func (p *Poller) SetOwner(owner *solana.PublicKey) {
	p.mu.Lock()
	if samePubkey(p.owner, owner) {
		p.mu.Unlock()
		return
	}
	p.owner = owner
	p.last = Snapshot{Owner: owner, Network: p.net.Name, Time: time.Now()}
	snap := p.last
	p.mu.Unlock()

	p.notify(snap)
	select {
	case p.restart <- struct{}{}:
	default:
	}
}

// Last returns the most recent snapshot.
func (p *Poller) Last() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := p.last
	s.Rows = append([]BalanceRow(nil), p.last.Rows...)
	return s
}

func (p *Poller) Subscribe() Subscriber {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(Subscriber, 16)
	p.subscribers = append(p.subscribers, ch)
	return ch
}

func (p *Poller) Unsubscribe(ch Subscriber) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, sub := range p.subscribers {
		if sub == ch {
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

func (p *Poller) notify(s Snapshot) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, sub := range p.subscribers {
		select {
		case sub <- s:
		default:
			// slow subscriber, it gets the next one
		}
	}
}

// Start fetches once and then on every interval until Stop or ctx ends.
func (p *Poller) Start(ctx context.Context) {
	go p.pollingLoop(ctx)
}

func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopChan) })
}

func (p *Poller) pollingLoop(ctx context.Context) {
	// an owner set before Start is covered by the first fetch
	select {
	case <-p.restart:
	default:
	}
	p.Refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.Refresh(ctx)
		case <-p.restart:
			p.Refresh(ctx)
			ticker.Reset(p.interval)
		case <-p.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Refresh runs one poll cycle and publishes its snapshot. A failed cycle
// keeps the previous rows and reports the error.
func (p *Poller) Refresh(ctx context.Context) Snapshot {
	owner := p.Owner()
	if owner == nil {
		return p.Last()
	}

	rows, ep, err := readAny(ctx, p.dialer, p.net, p.log, p.retry, "token accounts",
		func(ctx context.Context, c Chain) ([]BalanceRow, error) {
			return c.TokenAccounts(ctx, *owner)
		})

	p.mu.Lock()
	if !samePubkey(p.owner, owner) {
		// owner changed mid-flight; the restart fetch owns the next snapshot
		p.mu.Unlock()
		return p.Last()
	}
	if err != nil {
		p.last.Err = err
		p.last.Time = time.Now()
		p.log.Warnw("poll failed", "owner", owner, "err", err)
	} else {
		for i := range rows {
			rows[i].Network = p.net.Name
		}
		sortRows(rows)
		p.last = Snapshot{
			Owner:    owner,
			Network:  p.net.Name,
			Endpoint: ep,
			Rows:     rows,
			Time:     time.Now(),
		}
		p.log.Debugw("poll", "owner", owner, "rows", len(rows), "endpoint", ep)
	}
	p.mu.Unlock()

	snap := p.Last()
	p.notify(snap)
	return snap
}

// sortRows orders by known symbol first, then by mint address.
func sortRows(rows []BalanceRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if (a.Symbol == "") != (b.Symbol == "") {
			return a.Symbol != ""
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return bytes.Compare(a.Mint[:], b.Mint[:]) < 0
	})
}

func samePubkey(a, b *solana.PublicKey) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equals(*b)
}
