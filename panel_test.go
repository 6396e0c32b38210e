package mintr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testSig = solana.Signature{1, 2, 3, 4, 5, 6, 7, 8}

type panelEnv struct {
	chain  *MockChain
	sess   *draftSession
	note   *recordingNotifier
	ledger *memLedger
	timer  *fakeTimer
	owner  solana.PublicKey
	deps   Deps
}

func newPanelEnv(t *testing.T) *panelEnv {
	owner := pubkey()
	e := &panelEnv{
		chain:  &MockChain{endpoint: DevnetRPC},
		sess:   &draftSession{owner: &owner, sig: testSig},
		note:   &recordingNotifier{},
		ledger: newMemLedger(),
		timer:  &fakeTimer{},
		owner:  owner,
	}
	e.deps = Deps{
		Session:  e.sess,
		Chain:    e.chain,
		Network:  Networks["devnet"],
		Notifier: e.note,
		Ledger:   e.ledger,
		Log:      zaptest.NewLogger(t).Sugar(),
		Retry:    RetryOptions{MaxRetries: 3, Timer: e.timer},
	}
	return e
}

func (e *panelEnv) disconnect() {
	e.sess.owner = nil
}

func (e *panelEnv) onlyRecord(t *testing.T) Record {
	t.Helper()
	require.Len(t, e.ledger.records, 1)
	for _, r := range e.ledger.records {
		return r
	}
	return Record{}
}

func ata(t *testing.T, owner, mint solana.PublicKey) solana.PublicKey {
	t.Helper()
	a, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	return a
}

func programs(ixs []solana.Instruction) []solana.PublicKey {
	out := make([]solana.PublicKey, 0, len(ixs))
	for _, ix := range ixs {
		out = append(out, ix.ProgramID())
	}
	return out
}

func TestPanel_DisconnectedMakesNoCalls(t *testing.T) {
	e := newPanelEnv(t)
	e.disconnect()

	send := NewSendPanel(e.deps)
	send.Form = SendForm{Mint: pubkey().String(), Recipient: pubkey().String(), Amount: "1"}
	_, err := send.Submit(context.Background())
	require.ErrorIs(t, err, ErrWalletDisconnected)

	mint := NewMintPanel(e.deps)
	mint.Form = MintForm{Mint: pubkey().String(), Amount: "1"}
	_, err = mint.Submit(context.Background())
	require.ErrorIs(t, err, ErrWalletDisconnected)

	create := NewCreatePanel(e.deps)
	op, err := create.Submit(context.Background())
	require.ErrorIs(t, err, ErrWalletDisconnected)
	assert.Equal(t, KindWalletDisconnected, op.ErrKind)
	assert.Equal(t, StateIdle, op.State)

	assert.Empty(t, e.chain.Calls)
	assert.Empty(t, e.sess.drafts)
	require.Len(t, e.note.errors, 3)
	for _, msg := range e.note.errors {
		assert.Contains(t, msg, "connect wallet first")
	}
	assert.Empty(t, e.ledger.records)
}

func TestPanel_ValidationMakesNoCalls(t *testing.T) {
	e := newPanelEnv(t)

	send := NewSendPanel(e.deps)
	send.Form = SendForm{Mint: "nope", Recipient: pubkey().String(), Amount: "1"}
	_, err := send.Submit(context.Background())
	assert.Equal(t, KindValidation, Classify(err))

	send.Form = SendForm{Mint: pubkey().String(), Recipient: "", Amount: "1"}
	_, err = send.Submit(context.Background())
	assert.Equal(t, KindValidation, Classify(err))

	send.Form = SendForm{Mint: pubkey().String(), Recipient: pubkey().String(), Amount: "-2"}
	_, err = send.Submit(context.Background())
	assert.Equal(t, KindValidation, Classify(err))

	assert.Empty(t, e.chain.Calls)
	assert.Len(t, e.note.errors, 3)
}

func TestSend_MissingDestinationCreatesAccountFirst(t *testing.T) {
	e := newPanelEnv(t)
	mint, to := pubkey(), pubkey()
	src, dest := ata(t, e.owner, mint), ata(t, to, mint)

	e.chain.On("MintInfo", mint).Return(&TokenInfo{Mint: mint, Decimals: 0}, nil)
	e.chain.On("AccountExists", src).Return(true, nil)
	e.chain.On("TokenBalance", src).Return(uint64(5000), nil)
	e.chain.On("AccountExists", dest).Return(false, nil)
	e.chain.On("LatestAnchor").Return(testAnchor, nil)
	e.chain.On("Confirm", testSig, testAnchor).Return(nil)

	p := NewSendPanel(e.deps)
	p.Form = SendForm{Mint: mint.String(), Recipient: to.String(), Amount: "1000"}
	op, err := p.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, op.Done())
	assert.Equal(t, uint64(1000), op.Amount)
	assert.Equal(t, StateIdle, op.State)

	require.Len(t, e.sess.drafts, 1)
	d := e.sess.drafts[0]
	assert.Equal(t, []solana.PublicKey{solana.SPLAssociatedTokenAccountProgramID, solana.TokenProgramID}, programs(d.Instructions))
	assert.Equal(t, testAnchor, d.Anchor)

	transfer := d.Instructions[1].(*token.Instruction).Impl.(token.TransferChecked)
	assert.Equal(t, uint64(1000), *transfer.Amount)
	assert.Equal(t, uint8(0), *transfer.Decimals)

	// form keeps the mint, clears the rest
	assert.Equal(t, SendForm{Mint: mint.String()}, p.Form)

	r := e.onlyRecord(t)
	assert.Equal(t, StatusDone, r.Status)
	assert.Equal(t, testSig.String(), r.Signature)
	require.Len(t, e.note.success, 1)
	assert.Contains(t, e.note.success[0], "sent 1000 to "+Short(to))
	e.chain.AssertExpectations(t)
}

func TestSend_ExistingDestination(t *testing.T) {
	e := newPanelEnv(t)
	mint, to := pubkey(), pubkey()
	src, dest := ata(t, e.owner, mint), ata(t, to, mint)

	e.chain.On("MintInfo", mint).Return(&TokenInfo{Mint: mint, Decimals: 6}, nil)
	e.chain.On("AccountExists", src).Return(true, nil)
	e.chain.On("TokenBalance", src).Return(uint64(2_500_000), nil)
	e.chain.On("AccountExists", dest).Return(true, nil)
	e.chain.On("LatestAnchor").Return(testAnchor, nil)
	e.chain.On("Confirm", testSig, testAnchor).Return(nil)

	p := NewSendPanel(e.deps)
	p.Form = SendForm{Mint: mint.String(), Recipient: to.String(), Amount: "2.5"}
	op, err := p.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2_500_000), op.Amount)
	assert.Equal(t, dest, op.To)

	require.Len(t, e.sess.drafts, 1)
	assert.Equal(t, []solana.PublicKey{solana.TokenProgramID}, programs(e.sess.drafts[0].Instructions))
}

func TestSend_InsufficientBalance(t *testing.T) {
	e := newPanelEnv(t)
	mint, to := pubkey(), pubkey()
	src := ata(t, e.owner, mint)

	e.chain.On("MintInfo", mint).Return(&TokenInfo{Mint: mint, Decimals: 2}, nil)
	e.chain.On("AccountExists", src).Return(true, nil)
	e.chain.On("TokenBalance", src).Return(uint64(99), nil)

	p := NewSendPanel(e.deps)
	p.Form = SendForm{Mint: mint.String(), Recipient: to.String(), Amount: "1"}
	op, err := p.Submit(context.Background())
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, KindInsufficientFunds, op.ErrKind)
	assert.Contains(t, err.Error(), "have 0.99, need 1")

	assert.Empty(t, e.sess.drafts)
	e.chain.AssertNotCalled(t, "LatestAnchor")
	assert.Empty(t, e.ledger.records)
	// inputs survive a failure
	assert.Equal(t, "1", p.Form.Amount)
}

func TestSend_NoSourceAccount(t *testing.T) {
	e := newPanelEnv(t)
	mint := pubkey()
	e.chain.On("MintInfo", mint).Return(&TokenInfo{Mint: mint, Decimals: 2}, nil)
	e.chain.On("AccountExists", ata(t, e.owner, mint)).Return(false, nil)

	p := NewSendPanel(e.deps)
	p.Form = SendForm{Mint: mint.String(), Recipient: pubkey().String(), Amount: "1"}
	_, err := p.Submit(context.Background())
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestSend_ContactRecipient(t *testing.T) {
	e := newPanelEnv(t)
	store := openTestStore(t)
	to := pubkey()
	require.NoError(t, AddContact(store, "alice", to.String()))
	e.deps.Contacts = store

	mint := pubkey()
	e.chain.On("MintInfo", mint).Return(&TokenInfo{Mint: mint, Decimals: 0}, nil)
	e.chain.On("AccountExists", ata(t, e.owner, mint)).Return(true, nil)
	e.chain.On("TokenBalance", ata(t, e.owner, mint)).Return(uint64(10), nil)
	e.chain.On("AccountExists", ata(t, to, mint)).Return(true, nil)
	e.chain.On("LatestAnchor").Return(testAnchor, nil)
	e.chain.On("Confirm", testSig, testAnchor).Return(nil)

	p := NewSendPanel(e.deps)
	p.Form = SendForm{Mint: mint.String(), Recipient: "Alice", Amount: "3"}
	op, err := p.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ata(t, to, mint), op.To)
}

func TestPanel_ReadFailsTwiceThenSucceeds(t *testing.T) {
	e := newPanelEnv(t)
	mint := pubkey()
	dest := ata(t, e.owner, mint)

	e.chain.On("MintInfo", mint).Return(nil, errors.New("connection reset")).Twice()
	e.chain.On("MintInfo", mint).Return(&TokenInfo{Mint: mint, Decimals: 3, MintAuthority: &e.owner}, nil).Once()
	e.chain.On("AccountExists", dest).Return(true, nil)
	e.chain.On("LatestAnchor").Return(testAnchor, nil)
	e.chain.On("Confirm", testSig, testAnchor).Return(nil)

	p := NewMintPanel(e.deps)
	p.Form = MintForm{Mint: mint.String(), Amount: "1.5"}
	op, err := p.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, op.Done())
	assert.Equal(t, uint64(1500), op.Amount)

	assert.Equal(t, 2, e.timer.count())
	e.chain.AssertNumberOfCalls(t, "MintInfo", 3)
	assert.Empty(t, e.note.errors)
	require.Len(t, e.note.success, 1)
}

func TestPanel_ReadExhaustsRetries(t *testing.T) {
	e := newPanelEnv(t)
	mint := pubkey()
	e.chain.On("MintInfo", mint).Return(nil, errors.New("connection reset"))

	p := NewMintPanel(e.deps)
	p.Form = MintForm{Mint: mint.String(), Amount: "1"}
	op, err := p.Submit(context.Background())

	var rerr *ReadError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, KindRead, op.ErrKind)
	assert.Contains(t, err.Error(), "could not verify mint")
	e.chain.AssertNumberOfCalls(t, "MintInfo", 4)
	assert.Empty(t, e.sess.drafts)
}

func TestMint_MissingDestinationCreatesAccountFirst(t *testing.T) {
	e := newPanelEnv(t)
	mint, to := pubkey(), pubkey()

	e.chain.On("MintInfo", mint).Return(&TokenInfo{Mint: mint, Decimals: 0, MintAuthority: &e.owner}, nil)
	e.chain.On("AccountExists", ata(t, to, mint)).Return(false, nil)
	e.chain.On("LatestAnchor").Return(testAnchor, nil)
	e.chain.On("Confirm", testSig, testAnchor).Return(nil)

	p := NewMintPanel(e.deps)
	p.Form = MintForm{Mint: mint.String(), Owner: to.String(), Amount: "1000"}
	_, err := p.Submit(context.Background())
	require.NoError(t, err)

	require.Len(t, e.sess.drafts, 1)
	ixs := e.sess.drafts[0].Instructions
	assert.Equal(t, []solana.PublicKey{solana.SPLAssociatedTokenAccountProgramID, solana.TokenProgramID}, programs(ixs))
	mintTo := ixs[1].(*token.Instruction).Impl.(token.MintTo)
	assert.Equal(t, uint64(1000), *mintTo.Amount)

	assert.Equal(t, MintForm{Mint: mint.String()}, p.Form)
}

func TestMint_NotAuthority(t *testing.T) {
	e := newPanelEnv(t)
	mint, other := pubkey(), pubkey()
	e.chain.On("MintInfo", mint).Return(&TokenInfo{Mint: mint, Decimals: 0, MintAuthority: &other}, nil)

	p := NewMintPanel(e.deps)
	p.Form = MintForm{Mint: mint.String(), Amount: "1"}
	op, err := p.Submit(context.Background())
	require.ErrorIs(t, err, ErrNotMintAuthority)
	assert.Equal(t, KindRejected, op.ErrKind)
	assert.Empty(t, e.sess.drafts)
}

func TestCreate_Instructions(t *testing.T) {
	e := newPanelEnv(t)
	mintKey := newKey()
	mint := mintKey.PublicKey()

	e.chain.On("RentForMint").Return(uint64(1_461_600), nil)
	e.chain.On("LatestAnchor").Return(testAnchor, nil)
	e.chain.On("Confirm", testSig, testAnchor).Return(nil)

	p := NewCreatePanel(e.deps)
	p.NewMintKey = func() (solana.PrivateKey, error) { return mintKey, nil }
	p.Form = CreateForm{Decimals: "6", InitialSupply: "1000000"}
	op, err := p.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mint, op.Mint)
	assert.Equal(t, uint64(1_000_000_000_000), op.Amount)

	require.Len(t, e.sess.drafts, 1)
	d := e.sess.drafts[0]
	assert.Equal(t, []solana.PublicKey{
		solana.SystemProgramID,
		solana.TokenProgramID,
		solana.SPLAssociatedTokenAccountProgramID,
		solana.TokenProgramID,
	}, programs(d.Instructions))
	require.Len(t, d.Signers, 1)
	assert.Equal(t, mint, d.Signers[0].PublicKey())

	init := d.Instructions[1].(*token.Instruction).Impl.(token.InitializeMint)
	assert.Equal(t, uint8(6), *init.Decimals)
	assert.Equal(t, e.owner, *init.MintAuthority)
	require.NotNil(t, init.FreezeAuthority)
	assert.Equal(t, e.owner, *init.FreezeAuthority)

	assert.Equal(t, mint.String(), e.ledger.prefs[PrefLastMint])
	assert.Equal(t, ata(t, e.owner, mint).String(), e.ledger.prefs[PrefLastMintATA])
	assert.Equal(t, CreateForm{Decimals: DefaultDecimals}, p.Form)
}

func TestCreate_NoSupplyNoFreeze(t *testing.T) {
	e := newPanelEnv(t)
	e.chain.On("RentForMint").Return(uint64(1_461_600), nil)
	e.chain.On("LatestAnchor").Return(testAnchor, nil)
	e.chain.On("Confirm", testSig, testAnchor).Return(nil)

	p := NewCreatePanel(e.deps)
	p.Form = CreateForm{Decimals: "0", NoFreeze: true}
	_, err := p.Submit(context.Background())
	require.NoError(t, err)

	d := e.sess.drafts[0]
	assert.Len(t, d.Instructions, 3)
	init := d.Instructions[1].(*token.Instruction).Impl.(token.InitializeMint)
	assert.Nil(t, init.FreezeAuthority)
}

func TestCreate_BadDecimals(t *testing.T) {
	e := newPanelEnv(t)
	p := NewCreatePanel(e.deps)
	p.Form = CreateForm{Decimals: "12"}
	_, err := p.Submit(context.Background())
	assert.Equal(t, KindValidation, Classify(err))
	assert.Empty(t, e.chain.Calls)
}

func TestPanel_ConfirmTimeoutIsIndeterminate(t *testing.T) {
	e := newPanelEnv(t)
	mint := pubkey()
	e.chain.On("MintInfo", mint).Return(&TokenInfo{Mint: mint, Decimals: 0, MintAuthority: &e.owner}, nil)
	e.chain.On("AccountExists", ata(t, e.owner, mint)).Return(true, nil)
	e.chain.On("LatestAnchor").Return(testAnchor, nil)
	e.chain.On("Confirm", testSig, testAnchor).Return(ErrConfirmTimeout)

	p := NewMintPanel(e.deps)
	p.Form = MintForm{Mint: mint.String(), Amount: "5"}
	op, err := p.Submit(context.Background())
	require.ErrorIs(t, err, ErrConfirmTimeout)
	assert.Equal(t, KindTimeout, op.ErrKind)
	assert.Equal(t, testSig, op.Signature)

	// submitted once, never again
	assert.Len(t, e.sess.drafts, 1)
	e.chain.AssertNumberOfCalls(t, "Confirm", 1)

	assert.Equal(t, StatusUnknown, e.onlyRecord(t).Status)
	require.Len(t, e.note.errors, 1)
	assert.Contains(t, e.note.errors[0], ExplorerTx(Networks["devnet"], testSig))
	assert.Equal(t, "5", p.Form.Amount)
}

// mintReady stubs the reads a mint of 5 raw units to the owner performs.
func (e *panelEnv) mintReady(t *testing.T) solana.PublicKey {
	mint := pubkey()
	e.chain.On("MintInfo", mint).Return(&TokenInfo{Mint: mint, Decimals: 0, MintAuthority: &e.owner}, nil)
	e.chain.On("AccountExists", ata(t, e.owner, mint)).Return(true, nil)
	e.chain.On("LatestAnchor").Return(testAnchor, nil)
	return mint
}

func TestPanel_SubmitTimeoutIsIndeterminate(t *testing.T) {
	e := newPanelEnv(t)
	mint := e.mintReady(t)
	e.sess.err = fmt.Errorf("send: %w", context.DeadlineExceeded)

	p := NewMintPanel(e.deps)
	p.Form = MintForm{Mint: mint.String(), Amount: "5"}
	op, err := p.Submit(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, KindTimeout, op.ErrKind)
	assert.Equal(t, StatusUnknown, e.onlyRecord(t).Status)
	e.chain.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
	assert.Len(t, e.sess.drafts, 1)
}

func TestPanel_ConfirmInterruptedIsIndeterminate(t *testing.T) {
	e := newPanelEnv(t)
	mint := e.mintReady(t)
	e.chain.On("Confirm", testSig, testAnchor).Return(context.Canceled)

	p := NewMintPanel(e.deps)
	p.Form = MintForm{Mint: mint.String(), Amount: "5"}
	op, err := p.Submit(context.Background())
	require.ErrorIs(t, err, ErrUnconfirmed)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, KindTimeout, op.ErrKind)

	rec := e.onlyRecord(t)
	assert.Equal(t, StatusUnknown, rec.Status)
	assert.Equal(t, testSig.String(), rec.Signature)
	require.Len(t, e.note.errors, 1)
	assert.Contains(t, e.note.errors[0], ExplorerTx(Networks["devnet"], testSig))
}

func TestPanel_ConfirmFailedOnChain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"program error", fmt.Errorf("%w: custom 6", ErrTxFailed), KindRejected},
		{"token funds", fmt.Errorf("%w: %w: custom 1", ErrTxFailed, ErrInsufficientFunds), KindInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newPanelEnv(t)
			mint := e.mintReady(t)
			e.chain.On("Confirm", testSig, testAnchor).Return(tt.err)

			p := NewMintPanel(e.deps)
			p.Form = MintForm{Mint: mint.String(), Amount: "5"}
			op, err := p.Submit(context.Background())
			require.ErrorIs(t, err, ErrTxFailed)
			assert.NotErrorIs(t, err, ErrUnconfirmed)
			assert.Equal(t, tt.want, op.ErrKind)
			assert.Equal(t, StatusFail, e.onlyRecord(t).Status)
		})
	}
}

func TestPanel_SubmitRejected(t *testing.T) {
	e := newPanelEnv(t)
	e.sess.err = errors.New("Transaction simulation failed: insufficient lamports 10, need 20")
	e.chain.On("RentForMint").Return(uint64(1_461_600), nil)
	e.chain.On("LatestAnchor").Return(testAnchor, nil)

	p := NewCreatePanel(e.deps)
	op, err := p.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindInsufficientFunds, op.ErrKind)
	assert.Equal(t, StatusFail, e.onlyRecord(t).Status)
	e.chain.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
	assert.Empty(t, e.ledger.prefs)
}

func TestPanel_BusyGuard(t *testing.T) {
	e := newPanelEnv(t)
	mint := pubkey()
	e.chain.On("MintInfo", mint).Return(&TokenInfo{Mint: mint, Decimals: 0, MintAuthority: &e.owner}, nil)
	e.chain.On("AccountExists", ata(t, e.owner, mint)).Return(true, nil)
	e.chain.On("LatestAnchor").Return(testAnchor, nil)

	release := make(chan struct{})
	e.chain.On("Confirm", testSig, testAnchor).Run(func(mock.Arguments) { <-release }).Return(nil)

	confirming := make(chan struct{})
	var once sync.Once
	e.deps.OnState = func(_ string, s State) {
		if s == StateConfirming {
			once.Do(func() { close(confirming) })
		}
	}

	p := NewMintPanel(e.deps)
	p.Form = MintForm{Mint: mint.String(), Amount: "1"}

	done := make(chan error, 1)
	go func() {
		_, err := p.Submit(context.Background())
		done <- err
	}()

	<-confirming
	assert.True(t, p.Busy())
	_, err := p.Submit(context.Background())
	require.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, p.Busy())
	assert.Len(t, e.sess.drafts, 1)
}

func TestPanel_StateSequence(t *testing.T) {
	e := newPanelEnv(t)
	e.chain.On("RentForMint").Return(uint64(1), nil)
	e.chain.On("LatestAnchor").Return(testAnchor, nil)
	e.chain.On("Confirm", testSig, testAnchor).Return(nil)

	var seen []State
	e.deps.OnState = func(_ string, s State) {
		if len(seen) == 0 || seen[len(seen)-1] != s {
			seen = append(seen, s)
		}
	}

	_, err := NewCreatePanel(e.deps).Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []State{StateValidating, StateSubmitting, StateConfirming, StateSettled, StateIdle}, seen)
}

func TestKeySession_SignsWithAnchor(t *testing.T) {
	e := newPanelEnv(t)
	key := newKey()
	owner := key.PublicKey()
	e.deps.Session = NewKeySession(&key)

	mint := pubkey()
	e.chain.On("MintInfo", mint).Return(&TokenInfo{Mint: mint, Decimals: 0, MintAuthority: &owner}, nil)
	e.chain.On("AccountExists", ata(t, owner, mint)).Return(true, nil)
	e.chain.On("LatestAnchor").Return(testAnchor, nil)

	var sent *solana.Transaction
	e.chain.On("Send", mock.Anything, SubmitOpts{}).Run(func(args mock.Arguments) {
		sent = args.Get(0).(*solana.Transaction)
	}).Return(testSig, nil)
	e.chain.On("Confirm", testSig, testAnchor).Return(nil)

	p := NewMintPanel(e.deps)
	p.Form = MintForm{Mint: mint.String(), Amount: "7"}
	_, err := p.Submit(context.Background())
	require.NoError(t, err)

	require.NotNil(t, sent)
	assert.Equal(t, testAnchor.Blockhash, sent.Message.RecentBlockhash)
	assert.Equal(t, owner, sent.Message.AccountKeys[0])
	require.Len(t, sent.Signatures, 1)
	assert.NoError(t, sent.VerifySignatures())
}
