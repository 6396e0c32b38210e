package mintr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

const DefaultConfirmWait = 90 * time.Second

type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateConfirming
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateConfirming:
		return "confirming"
	case StateSettled:
		return "settled"
	}
	return "idle"
}

// Ledger persists submitted operations and small preferences.
type Ledger interface {
	SaveRecord(r Record) error
	SetPref(key, value string) error
}

// Deps are the collaborators a panel submits through.
type Deps struct {
	Session  Session
	Chain    Chain
	Network  Network
	Notifier Notifier
	Ledger   Ledger
	Contacts Contacts
	Log      *zap.SugaredLogger

	Retry       RetryOptions
	ConfirmWait time.Duration
	Submit      SubmitOpts

	// OnState is called synchronously after every update.
	OnState func(kind string, s State)
}

// Operation is the visible state of one panel.
type Operation struct {
	Kind      string
	State     State
	Loading   bool
	Signature solana.Signature
	Err       error
	ErrKind   ErrorKind
	Mint      solana.PublicKey
	To        solana.PublicKey
	Amount    uint64
	Decimals  uint8
	Explorer  string
}

// Done reports whether the last submission confirmed.
func (o Operation) Done() bool {
	return o.Err == nil && !o.Signature.IsZero()
}

// plan is what a panel hands to run once its inputs are checked and its
// reads are done.
type plan struct {
	draft   *Draft
	mint    solana.PublicKey
	to      solana.PublicKey
	amount  uint64
	dec     uint8
	success string
	after   func() error
}

type panel struct {
	kind string
	deps Deps

	busy atomic.Bool

	mu sync.Mutex
	op Operation
}

func newPanel(kind string, d Deps) *panel {
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	if d.ConfirmWait <= 0 {
		d.ConfirmWait = DefaultConfirmWait
	}
	return &panel{kind: kind, deps: d, op: Operation{Kind: kind}}
}

// Last returns a copy of the panel's operation state.
func (p *panel) Last() Operation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.op
}

func (p *panel) Busy() bool {
	return p.busy.Load()
}

func (p *panel) set(fn func(o *Operation)) {
	p.mu.Lock()
	fn(&p.op)
	s := p.op.State
	p.mu.Unlock()
	if p.deps.OnState != nil {
		p.deps.OnState(p.kind, s)
	}
}

func (p *panel) to(s State) {
	p.set(func(o *Operation) { o.State = s })
}

// run drives one submission: validate, prepare (reads + instructions),
// anchor, submit, confirm, settle. It always ends idle.
func (p *panel) run(ctx context.Context, validate func() error, prepare func(ctx context.Context, owner solana.PublicKey) (*plan, error)) (Operation, error) {
	if !p.busy.CompareAndSwap(false, true) {
		p.deps.Notifier.Error(Remedy(KindBusy))
		return p.Last(), ErrBusy
	}
	defer p.busy.Store(false)

	p.set(func(o *Operation) {
		*o = Operation{Kind: p.kind, State: StateValidating}
	})

	owner := p.deps.Session.Identity()
	if owner == nil {
		return p.fail(nil, ErrWalletDisconnected)
	}
	if err := validate(); err != nil {
		return p.fail(nil, err)
	}

	p.set(func(o *Operation) {
		o.State = StateSubmitting
		o.Loading = true
	})
	p.deps.Notifier.Loading(p.kind + ": preparing")

	pl, err := prepare(ctx, *owner)
	if err != nil {
		return p.fail(nil, err)
	}
	p.set(func(o *Operation) {
		o.Mint, o.To, o.Amount, o.Decimals = pl.mint, pl.to, pl.amount, pl.dec
	})

	anchor, err := read(ctx, p, "latest blockhash", p.deps.Chain.LatestAnchor)
	if err != nil {
		return p.fail(nil, err)
	}
	pl.draft.Anchor = anchor

	rec := Record{
		ID:       newRecordID(p.kind),
		Kind:     p.kind,
		Network:  p.deps.Network.Name,
		Mint:     pl.mint.String(),
		To:       pl.to.String(),
		Amount:   pl.amount,
		Decimals: pl.dec,
		Status:   StatusPending,
		Time:     time.Now().Unix(),
	}
	p.record(rec)

	sig, err := p.deps.Session.Submit(ctx, pl.draft, p.deps.Chain, p.deps.Submit)
	if err != nil {
		rec.Status = StatusFail
		if Classify(err).Indeterminate() {
			rec.Status = StatusUnknown
		}
		return p.fail(&rec, err)
	}
	rec.Signature = sig.String()
	rec.Status = StatusSent
	p.record(rec)

	link := ExplorerTx(p.deps.Network, sig)
	p.set(func(o *Operation) {
		o.State = StateConfirming
		o.Signature = sig
		o.Explorer = link
	})
	p.deps.Log.Infow("submitted", "kind", p.kind, "sig", sig, "endpoint", p.deps.Chain.Endpoint())
	p.deps.Notifier.Loading(p.kind + ": confirming " + shortSig(sig))

	cctx, cancel := context.WithTimeout(ctx, p.deps.ConfirmWait)
	err = p.deps.Chain.Confirm(cctx, sig, anchor)
	cancel()
	if err != nil {
		// Once sent, only an on-chain failure is final.
		rec.Status = StatusFail
		if !errors.Is(err, ErrTxFailed) {
			rec.Status = StatusUnknown
			if !Classify(err).Indeterminate() {
				err = fmt.Errorf("%w: %w", ErrUnconfirmed, err)
			}
		}
		return p.fail(&rec, err)
	}

	rec.Status = StatusDone
	p.record(rec)
	if pl.after != nil {
		if err := pl.after(); err != nil {
			p.deps.Log.Warnw("post-confirm step failed", "kind", p.kind, "err", err)
		}
	}

	p.set(func(o *Operation) {
		o.State = StateSettled
		o.Loading = false
	})
	p.deps.Notifier.Success(pl.success + " " + dimStyle.Render(link))
	p.to(StateIdle)
	return p.Last(), nil
}

func (p *panel) fail(rec *Record, err error) (Operation, error) {
	kind := Classify(err)
	if rec != nil {
		p.record(*rec)
	}

	p.set(func(o *Operation) {
		o.State = StateSettled
		o.Loading = false
		o.Err = err
		o.ErrKind = kind
	})

	msg := fmt.Sprintf("%s: %v", p.kind, err)
	if r := Remedy(kind); r != "" {
		msg += " (" + r + ")"
	}
	op := p.Last()
	if kind.Indeterminate() && op.Explorer != "" {
		msg += " " + op.Explorer
	}
	p.deps.Log.Errorw("operation failed", "kind", p.kind, "class", kind, "err", err)
	p.deps.Notifier.Error(msg)

	p.to(StateIdle)
	return p.Last(), err
}

func (p *panel) record(r Record) {
	if p.deps.Ledger == nil {
		return
	}
	if err := p.deps.Ledger.SaveRecord(r); err != nil {
		p.deps.Log.Warnw("ledger write failed", "id", r.ID, "err", err)
	}
}

// read wraps a chain query in Retry and marks its final failure as a ReadError.
func read[T any](ctx context.Context, p *panel, what string, op func(context.Context) (T, error)) (T, error) {
	v, err := Retry(ctx, p.deps.Log, what, op, p.deps.Retry)
	if err != nil {
		var zero T
		return zero, readErr(what, err)
	}
	return v, nil
}

func shortSig(sig solana.Signature) string {
	return sig.String()[:16] + "..."
}
