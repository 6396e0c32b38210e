package mintr

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/token"
)

type MintForm struct {
	Mint string
	// Owner of the receiving account; empty means the wallet itself.
	Owner  string
	Amount string
}

// MintPanel mints new supply of a mint the wallet is authority of.
type MintPanel struct {
	*panel
	Form MintForm
}

func NewMintPanel(d Deps) *MintPanel {
	return &MintPanel{panel: newPanel("mint", d)}
}

func (m *MintPanel) Submit(ctx context.Context) (Operation, error) {
	form := m.Form
	var (
		mint  solana.PublicKey
		owner *solana.PublicKey
	)
	validate := func() error {
		var err error
		if mint, err = ParseAddress("mint", form.Mint); err != nil {
			return err
		}
		if strings.TrimSpace(form.Owner) != "" {
			pk, err := ResolveRecipient(m.deps.Contacts, form.Owner)
			if err != nil {
				return err
			}
			owner = &pk
		}
		return CheckAmount(form.Amount)
	}

	prepare := func(ctx context.Context, authority solana.PublicKey) (*plan, error) {
		info, err := read(ctx, m.panel, "mint", func(ctx context.Context) (*TokenInfo, error) {
			return m.deps.Chain.MintInfo(ctx, mint)
		})
		if err != nil {
			return nil, err
		}
		if info.MintAuthority == nil || !info.MintAuthority.Equals(authority) {
			return nil, fmt.Errorf("%w: %s", ErrNotMintAuthority, Short(mint))
		}
		raw, err := ToRaw(form.Amount, info.Decimals)
		if err != nil {
			return nil, err
		}

		dest := authority
		if owner != nil {
			dest = *owner
		}
		ixs, ata, err := withATA(ctx, m.panel, authority, dest, mint)
		if err != nil {
			return nil, err
		}
		ixs = append(ixs, token.NewMintToInstruction(raw, mint, ata, authority, nil).Build())

		return &plan{
			draft:   &Draft{Instructions: ixs},
			mint:    mint,
			to:      ata,
			amount:  raw,
			dec:     info.Decimals,
			success: fmt.Sprintf("minted %s to %s", FormatRaw(raw, info.Decimals), Short(dest)),
		}, nil
	}

	op, err := m.run(ctx, validate, prepare)
	if err == nil {
		m.Form.Owner = ""
		m.Form.Amount = ""
	}
	return op, err
}

// withATA derives owner's associated account for mint and returns a
// create instruction for it when the account does not exist yet.
func withATA(ctx context.Context, p *panel, payer, owner, mint solana.PublicKey) ([]solana.Instruction, solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("derive ata: %w", err)
	}
	exists, err := read(ctx, p, "destination account", func(ctx context.Context) (bool, error) {
		return p.deps.Chain.AccountExists(ctx, ata)
	})
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	if exists {
		return nil, ata, nil
	}
	p.deps.Log.Debugw("destination account missing, creating", "owner", owner, "ata", ata)
	return []solana.Instruction{
		associatedtokenaccount.NewCreateInstruction(payer, owner, mint).Build(),
	}, ata, nil
}
