package mintr

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Draft is an unsigned transaction: ordered instructions, the anchor they are
// signed against, and any signers besides the wallet (a fresh mint keypair).
type Draft struct {
	Instructions []solana.Instruction
	Anchor       Anchor
	Signers      []solana.PrivateKey
}

type SubmitOpts struct {
	SkipPreflight bool
}

// Session is the active wallet. Identity is nil while disconnected.
type Session interface {
	Identity() *solana.PublicKey
	Submit(ctx context.Context, d *Draft, chain Chain, o SubmitOpts) (solana.Signature, error)
}

// KeySession signs with a locally held keypair.
type KeySession struct {
	mu  sync.RWMutex
	key *solana.PrivateKey
}

func NewKeySession(key *solana.PrivateKey) *KeySession {
	return &KeySession{key: key}
}

func (s *KeySession) Identity() *solana.PublicKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == nil {
		return nil
	}
	pk := s.key.PublicKey()
	return &pk
}

func (s *KeySession) Connect(key solana.PrivateKey) {
	s.mu.Lock()
	s.key = &key
	s.mu.Unlock()
}

func (s *KeySession) Disconnect() {
	s.mu.Lock()
	s.key = nil
	s.mu.Unlock()
}

func (s *KeySession) Submit(ctx context.Context, d *Draft, chain Chain, o SubmitOpts) (solana.Signature, error) {
	s.mu.RLock()
	key := s.key
	s.mu.RUnlock()
	if key == nil {
		return solana.Signature{}, ErrWalletDisconnected
	}

	tx, err := BuildTx(d, *key)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := chain.Send(ctx, tx, o)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send: %w", err)
	}
	return sig, nil
}

// BuildTx assembles and signs d with payer as fee payer.
func BuildTx(d *Draft, payer solana.PrivateKey) (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(
		d.Instructions,
		d.Anchor.Blockhash,
		solana.TransactionPayer(payer.PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("tx: %w", err)
	}

	signers := map[solana.PublicKey]solana.PrivateKey{payer.PublicKey(): payer}
	for _, k := range d.Signers {
		signers[k.PublicKey()] = k
	}
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if k, ok := signers[key]; ok {
			return &k
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return tx, nil
}
