package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bigincgenesis/bigcli/internal/shares"
)

// BuyInput is the state edited by the buy form. Preset fields are kept as
// defaults.
type BuyInput struct {
	Token   string // "usdt" or "usdc"
	Percent string
	Confirm bool
}

// RunBuyForm asks for the payment token and share percentage, then shows
// preview(token, percent) for confirmation.
func RunBuyForm(in *BuyInput, preview func(token, percent string) string) error {
	if !IsInteractive() {
		return ErrNotInteractive
	}
	if in.Token == "" {
		in.Token = "usdt"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Payment token").
				Options(
					huh.NewOption("USDT", "usdt"),
					huh.NewOption("USDC", "usdc"),
				).
				Value(&in.Token),
			huh.NewInput().
				Title("Share amount (%)").
				Description("Percentage of the company to buy, e.g. 0.5").
				Placeholder("1").
				Validate(func(s string) error {
					_, err := shares.ParsePercent(s)
					return err
				}).
				Value(&in.Percent),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Buy these shares?").
				DescriptionFunc(func() string {
					return preview(in.Token, in.Percent)
				}, in).
				Affirmative("Buy").
				Negative("Cancel").
				Value(&in.Confirm),
		),
	).WithTheme(huh.ThemeBase())

	return form.Run()
}

// WalletInput is the state edited by the wallet form.
type WalletInput struct {
	Name    string
	Kind    string // "key" or "watch"
	Secret  string // private key or address, depending on Kind
	Default bool
}

// RunWalletForm asks for a wallet name and either a private key (hidden
// input) or a watch-only address.
func RunWalletForm(in *WalletInput) error {
	if !IsInteractive() {
		return ErrNotInteractive
	}
	if in.Kind == "" {
		in.Kind = "key"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Wallet name").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}).
				Value(&in.Name),
			huh.NewSelect[string]().
				Title("Wallet type").
				Options(
					huh.NewOption("Import private key (can buy shares)", "key"),
					huh.NewOption("Watch-only address", "watch"),
				).
				Value(&in.Kind),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Private key").
				EchoMode(huh.EchoModePassword).
				Value(&in.Secret),
		).WithHideFunc(func() bool { return in.Kind != "key" }),
		huh.NewGroup(
			huh.NewInput().
				Title("Address").
				Validate(func(s string) error {
					if !common.IsHexAddress(s) {
						return fmt.Errorf("not a valid address")
					}
					return nil
				}).
				Value(&in.Secret),
		).WithHideFunc(func() bool { return in.Kind != "watch" }),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Make this the default wallet?").
				Value(&in.Default),
		),
	).WithTheme(huh.ThemeBase())

	return form.Run()
}
