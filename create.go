package mintr

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
)

const DefaultDecimals = "9"

type CreateForm struct {
	Decimals string
	// InitialSupply is in whole tokens and may be empty.
	InitialSupply string
	NoFreeze      bool
}

// CreatePanel creates a new mint owned by the wallet, together with the
// wallet's associated account for it.
type CreatePanel struct {
	*panel
	Form CreateForm

	// NewMintKey is replaced in tests.
	NewMintKey func() (solana.PrivateKey, error)
}

func NewCreatePanel(d Deps) *CreatePanel {
	return &CreatePanel{
		panel:      newPanel("create", d),
		Form:       CreateForm{Decimals: DefaultDecimals},
		NewMintKey: solana.NewRandomPrivateKey,
	}
}

func (c *CreatePanel) Submit(ctx context.Context) (Operation, error) {
	form := c.Form
	var (
		decimals uint8
		supply   uint64
	)
	validate := func() error {
		var err error
		if decimals, err = ParseDecimals(form.Decimals); err != nil {
			return err
		}
		if form.InitialSupply != "" {
			if supply, err = ToRaw(form.InitialSupply, decimals); err != nil {
				return err
			}
		}
		return nil
	}

	prepare := func(ctx context.Context, owner solana.PublicKey) (*plan, error) {
		rent, err := read(ctx, c.panel, "rent", c.deps.Chain.RentForMint)
		if err != nil {
			return nil, err
		}
		mintKey, err := c.NewMintKey()
		if err != nil {
			return nil, fmt.Errorf("mint keypair: %w", err)
		}
		mint := mintKey.PublicKey()
		ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
		if err != nil {
			return nil, fmt.Errorf("derive ata: %w", err)
		}

		ixs := CreateMintInstructions(owner, mint, rent, decimals, !form.NoFreeze)
		ixs = append(ixs, associatedtokenaccount.NewCreateInstruction(owner, owner, mint).Build())
		if supply > 0 {
			ixs = append(ixs, token.NewMintToInstruction(supply, mint, ata, owner, nil).Build())
		}

		return &plan{
			draft:   &Draft{Instructions: ixs, Signers: []solana.PrivateKey{mintKey}},
			mint:    mint,
			to:      ata,
			amount:  supply,
			dec:     decimals,
			success: fmt.Sprintf("created mint %s (%d decimals, supply %s)", Short(mint), decimals, FormatRaw(supply, decimals)),
			after: func() error {
				if c.deps.Ledger == nil {
					return nil
				}
				if err := c.deps.Ledger.SetPref(PrefLastMint, mint.String()); err != nil {
					return err
				}
				return c.deps.Ledger.SetPref(PrefLastMintATA, ata.String())
			},
		}, nil
	}

	op, err := c.run(ctx, validate, prepare)
	if err == nil {
		c.Form = CreateForm{Decimals: DefaultDecimals}
	}
	return op, err
}

// CreateMintInstructions allocates a mint account and initializes it with
// authority as mint authority (and freeze authority when freeze is set).
func CreateMintInstructions(authority, mint solana.PublicKey, rent uint64, decimals uint8, freeze bool) []solana.Instruction {
	init := token.NewInitializeMintInstructionBuilder().
		SetDecimals(decimals).
		SetMintAuthority(authority).
		SetMintAccount(mint).
		SetSysVarRentPubkeyAccount(solana.SysVarRentPubkey)
	if freeze {
		init.SetFreezeAuthority(authority)
	}
	return []solana.Instruction{
		system.NewCreateAccountInstruction(rent, MintSize, solana.TokenProgramID, authority, mint).Build(),
		init.Build(),
	}
}
