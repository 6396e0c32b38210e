package mintr

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

type SendForm struct {
	Mint string
	// Recipient is an owner address or a contact label.
	Recipient string
	Amount    string
}

// SendPanel transfers tokens from the wallet's associated account.
type SendPanel struct {
	*panel
	Form SendForm
}

func NewSendPanel(d Deps) *SendPanel {
	return &SendPanel{panel: newPanel("send", d)}
}

func (s *SendPanel) Submit(ctx context.Context) (Operation, error) {
	form := s.Form
	var mint, recipient solana.PublicKey
	validate := func() error {
		var err error
		if mint, err = ParseAddress("mint", form.Mint); err != nil {
			return err
		}
		if recipient, err = ResolveRecipient(s.deps.Contacts, form.Recipient); err != nil {
			return err
		}
		return CheckAmount(form.Amount)
	}

	prepare := func(ctx context.Context, owner solana.PublicKey) (*plan, error) {
		info, err := read(ctx, s.panel, "mint", func(ctx context.Context) (*TokenInfo, error) {
			return s.deps.Chain.MintInfo(ctx, mint)
		})
		if err != nil {
			return nil, err
		}
		raw, err := ToRaw(form.Amount, info.Decimals)
		if err != nil {
			return nil, err
		}

		src, _, err := solana.FindAssociatedTokenAddress(owner, mint)
		if err != nil {
			return nil, fmt.Errorf("derive ata: %w", err)
		}
		if err := s.checkBalance(ctx, src, raw, info.Decimals); err != nil {
			return nil, err
		}

		ixs, dest, err := withATA(ctx, s.panel, owner, recipient, mint)
		if err != nil {
			return nil, err
		}
		ixs = append(ixs, token.NewTransferCheckedInstruction(raw, info.Decimals, src, mint, dest, owner, nil).Build())

		return &plan{
			draft:   &Draft{Instructions: ixs},
			mint:    mint,
			to:      dest,
			amount:  raw,
			dec:     info.Decimals,
			success: fmt.Sprintf("sent %s to %s", FormatRaw(raw, info.Decimals), Short(recipient)),
		}, nil
	}

	op, err := s.run(ctx, validate, prepare)
	if err == nil {
		s.Form.Recipient = ""
		s.Form.Amount = ""
	}
	return op, err
}

func (s *SendPanel) checkBalance(ctx context.Context, src solana.PublicKey, raw uint64, decimals uint8) error {
	exists, err := read(ctx, s.panel, "source account", func(ctx context.Context) (bool, error) {
		return s.deps.Chain.AccountExists(ctx, src)
	})
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: no token account for this mint", ErrInsufficientFunds)
	}

	have, err := read(ctx, s.panel, "balance", func(ctx context.Context) (uint64, error) {
		return s.deps.Chain.TokenBalance(ctx, src)
	})
	if err != nil {
		return err
	}
	if have < raw {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientFunds,
			FormatRaw(have, decimals), FormatRaw(raw, decimals))
	}
	return nil
}
