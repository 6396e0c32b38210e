package tui

import (
	"errors"
	"strings"

	"mintr"

	"github.com/charmbracelet/huh"
)

func requireAddress(field string) func(string) error {
	return func(s string) error {
		_, err := mintr.ParseAddress(field, s)
		return err
	}
}

var errRecipientRequired = errors.New("recipient: required")

func optionalAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return mintr.CheckAmount(s)
}

// CreateForm fills f interactively.
func CreateForm(f *mintr.CreateForm) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Decimals").
				Description("Digits after the decimal point (0-9)").
				Value(&f.Decimals).
				Placeholder(mintr.DefaultDecimals).
				Validate(func(s string) error {
					_, err := mintr.ParseDecimals(s)
					return err
				}),

			huh.NewInput().
				Title("Initial supply").
				Description("Whole tokens minted to you now (optional)").
				Value(&f.InitialSupply).
				Placeholder("0").
				Validate(optionalAmount),

			huh.NewConfirm().
				Title("Disable freeze authority?").
				Affirmative("Yes").
				Negative("No").
				Value(&f.NoFreeze),
		),
	).WithTheme(huh.ThemeCatppuccin())
}

func MintForm(f *mintr.MintForm, labels []string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Mint").
				Value(&f.Mint).
				Placeholder("mint address").
				Validate(requireAddress("mint")),

			huh.NewInput().
				Title("Recipient").
				Description("Owner address or contact (empty: yourself)").
				Value(&f.Owner).
				Suggestions(labels),

			huh.NewInput().
				Title("Amount").
				Value(&f.Amount).
				Placeholder("100").
				Validate(mintr.CheckAmount),
		),
	).WithTheme(huh.ThemeCatppuccin())
}

func SendForm(f *mintr.SendForm, labels []string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Mint").
				Value(&f.Mint).
				Placeholder("mint address").
				Validate(requireAddress("mint")),

			huh.NewInput().
				Title("Recipient").
				Description("Owner address or contact").
				Value(&f.Recipient).
				Suggestions(labels).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errRecipientRequired
					}
					return nil
				}),

			huh.NewInput().
				Title("Amount").
				Value(&f.Amount).
				Placeholder("1.5").
				Validate(mintr.CheckAmount),
		),
	).WithTheme(huh.ThemeCatppuccin())
}
