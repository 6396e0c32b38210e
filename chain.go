package mintr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// MintSize is the byte length of an SPL token mint account.
const MintSize = 82

var confirmPoll = 500 * time.Millisecond

// Chain is the subset of the Solana JSON-RPC surface the panels use.
// Every method performs exactly one logical query; callers wrap reads in Retry.
type Chain interface {
	Endpoint() string
	MintInfo(ctx context.Context, mint solana.PublicKey) (*TokenInfo, error)
	AccountExists(ctx context.Context, addr solana.PublicKey) (bool, error)
	TokenBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
	RentForMint(ctx context.Context) (uint64, error)
	LatestAnchor(ctx context.Context) (Anchor, error)
	Send(ctx context.Context, tx *solana.Transaction, o SubmitOpts) (solana.Signature, error)
	Confirm(ctx context.Context, sig solana.Signature, anchor Anchor) error
	TokenAccounts(ctx context.Context, owner solana.PublicKey) ([]BalanceRow, error)
	Balance(ctx context.Context, owner solana.PublicKey) (uint64, error)
	Airdrop(ctx context.Context, owner solana.PublicKey, lamports uint64) (solana.Signature, error)
}

var _ Chain = (*Conn)(nil)

func (c *Conn) MintInfo(ctx context.Context, mint solana.PublicKey) (*TokenInfo, error) {
	out, err := c.rpc.GetAccountInfoWithOpts(ctx, mint, &rpc.GetAccountInfoOpts{
		Commitment: c.commitment,
		Encoding:   solana.EncodingBase64,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	if err != nil {
		return nil, fmt.Errorf("mint info: %w", err)
	}
	if !out.Value.Owner.Equals(solana.TokenProgramID) {
		return nil, fmt.Errorf("%w: %s owned by %s", ErrNotAMint, mint, out.Value.Owner)
	}
	return DecodeMint(mint, out.Value.Data.GetBinary())
}

func DecodeMint(addr solana.PublicKey, data []byte) (*TokenInfo, error) {
	if len(data) < MintSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrNotAMint, len(data))
	}
	var m token.Mint
	if err := bin.NewBinDecoder(data).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode mint: %w", err)
	}
	return &TokenInfo{
		Mint:            addr,
		Decimals:        m.Decimals,
		Supply:          m.Supply,
		MintAuthority:   m.MintAuthority,
		FreezeAuthority: m.FreezeAuthority,
		Initialized:     m.IsInitialized,
	}, nil
}

func (c *Conn) AccountExists(ctx context.Context, addr solana.PublicKey) (bool, error) {
	_, err := c.rpc.GetAccountInfoWithOpts(ctx, addr, &rpc.GetAccountInfoOpts{
		Commitment: c.commitment,
		Encoding:   solana.EncodingBase64,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Conn) TokenBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	res, err := c.rpc.GetTokenAccountBalance(ctx, account, c.commitment)
	if err != nil {
		return 0, err
	}
	if res == nil || res.Value == nil {
		return 0, rpc.ErrNotFound
	}
	return strconv.ParseUint(res.Value.Amount, 10, 64)
}

func (c *Conn) RentForMint(ctx context.Context) (uint64, error) {
	return c.rpc.GetMinimumBalanceForRentExemption(ctx, MintSize, c.commitment)
}

func (c *Conn) LatestAnchor(ctx context.Context) (Anchor, error) {
	res, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return Anchor{}, err
	}
	if res == nil || res.Value == nil {
		return Anchor{}, errors.New("empty blockhash response")
	}
	return Anchor{
		Blockhash:            res.Value.Blockhash,
		LastValidBlockHeight: res.Value.LastValidBlockHeight,
	}, nil
}

func (c *Conn) Send(ctx context.Context, tx *solana.Transaction, o SubmitOpts) (solana.Signature, error) {
	return c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       o.SkipPreflight,
		PreflightCommitment: c.commitment,
	})
}

// Confirm waits until sig reaches confirmed commitment. It gives up with
// ErrBlockhashExpired once the chain passes the anchor's last valid height,
// and with ErrConfirmTimeout when ctx's deadline elapses. Neither means the
// transaction failed.
func (c *Conn) Confirm(ctx context.Context, sig solana.Signature, anchor Anchor) error {
	for {
		done, err := c.signatureDone(ctx, sig)
		if done || err != nil {
			return err
		}

		if anchor.LastValidBlockHeight > 0 {
			height, herr := c.rpc.GetBlockHeight(ctx, c.commitment)
			if herr == nil && height > anchor.LastValidBlockHeight {
				// it may have landed in the last valid block
				if done, err := c.signatureDone(ctx, sig); done || err != nil {
					return err
				}
				return fmt.Errorf("%w: height %d > %d", ErrBlockhashExpired, height, anchor.LastValidBlockHeight)
			}
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrConfirmTimeout
			}
			return ctx.Err()
		case <-time.After(confirmPoll):
		}
	}
}

func (c *Conn) signatureDone(ctx context.Context, sig solana.Signature) (bool, error) {
	status, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
	if err != nil || status == nil || len(status.Value) == 0 || status.Value[0] == nil {
		return false, nil
	}
	st := status.Value[0]
	if st.Err != nil {
		if code, ok := customCode(st.Err); ok && code == tokenErrInsufficientFunds {
			return true, fmt.Errorf("%w: %w: %v", ErrTxFailed, ErrInsufficientFunds, st.Err)
		}
		return true, fmt.Errorf("%w: %v", ErrTxFailed, st.Err)
	}
	switch st.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return true, nil
	}
	return false, nil
}

// tokenErrInsufficientFunds is the spl-token program's InsufficientFunds code.
const tokenErrInsufficientFunds = 1

// customCode extracts N from a status error {"InstructionError":[i,{"Custom":N}]}.
func customCode(txErr any) (uint64, bool) {
	m, ok := txErr.(map[string]any)
	if !ok {
		return 0, false
	}
	ie, ok := m["InstructionError"].([]any)
	if !ok || len(ie) != 2 {
		return 0, false
	}
	c, ok := ie[1].(map[string]any)
	if !ok {
		return 0, false
	}
	switch n := c["Custom"].(type) {
	case float64:
		return uint64(n), n >= 0
	case json.Number:
		v, err := strconv.ParseUint(n.String(), 10, 64)
		return v, err == nil
	}
	return 0, false
}

// parsedTokenAccount is the jsonParsed shape of an spl-token account.
type parsedTokenAccount struct {
	Program string `json:"program"`
	Parsed  struct {
		Type string `json:"type"`
		Info struct {
			Mint        string `json:"mint"`
			Owner       string `json:"owner"`
			TokenAmount struct {
				Amount   string `json:"amount"`
				Decimals uint8  `json:"decimals"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

func (c *Conn) TokenAccounts(ctx context.Context, owner solana.PublicKey) ([]BalanceRow, error) {
	out, err := c.rpc.GetTokenAccountsByOwner(ctx, owner,
		&rpc.GetTokenAccountsConfig{ProgramId: solana.TokenProgramID.ToPointer()},
		&rpc.GetTokenAccountsOpts{Commitment: c.commitment, Encoding: solana.EncodingJSONParsed},
	)
	if err != nil {
		return nil, err
	}

	rows := make([]BalanceRow, 0, len(out.Value))
	for _, acc := range out.Value {
		if acc == nil || acc.Account.Data == nil {
			continue
		}
		var p parsedTokenAccount
		if err := json.Unmarshal(acc.Account.Data.GetRawJSON(), &p); err != nil {
			return nil, fmt.Errorf("parse token account %s: %w", acc.Pubkey, err)
		}
		mint, err := solana.PublicKeyFromBase58(p.Parsed.Info.Mint)
		if err != nil {
			return nil, fmt.Errorf("token account %s mint: %w", acc.Pubkey, err)
		}
		amount, err := strconv.ParseUint(p.Parsed.Info.TokenAmount.Amount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("token account %s amount: %w", acc.Pubkey, err)
		}
		rows = append(rows, BalanceRow{
			Mint:     mint,
			Account:  acc.Pubkey,
			Amount:   amount,
			Decimals: p.Parsed.Info.TokenAmount.Decimals,
			Symbol:   SymbolFor(mint),
		})
	}
	return rows, nil
}

func (c *Conn) Balance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	res, err := c.rpc.GetBalance(ctx, owner, c.commitment)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

func (c *Conn) Airdrop(ctx context.Context, owner solana.PublicKey, lamports uint64) (solana.Signature, error) {
	return c.rpc.RequestAirdrop(ctx, owner, lamports, c.commitment)
}
