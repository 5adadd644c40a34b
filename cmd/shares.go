package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/bigincgenesis/bigcli/internal/config"
	"github.com/bigincgenesis/bigcli/internal/contract"
	"github.com/bigincgenesis/bigcli/internal/shares"
	"github.com/bigincgenesis/bigcli/internal/ui"
)

var sharesWallet string

var sharesCmd = &cobra.Command{
	Use:   "shares",
	Short: "Show the share ownership chart",
	Long: `Read the sale contract once and draw the ownership breakdown:
your shares, shares still available, shares sold and the team's remainder.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		g, err := s.genesis(nil)
		if err != nil {
			return err
		}
		if err := s.requireGenesis(g); err != nil {
			return err
		}

		w, err := resolveWallet(walletManager(), sharesWallet)
		if err != nil {
			return err
		}
		var owner *common.Address
		if w != nil {
			a := ownerOf(w)
			owner = &a
		}

		var f shares.Figures
		err = ui.WithSpinner(cmd.ErrOrStderr(), "Reading share state", func() error {
			f, err = readFigures(ctx, g, owner)
			return err
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.RenderShareChart(f, 0))
		fmt.Fprintln(out, ui.ShareSummary(f))
		if w == nil {
			fmt.Fprintln(out, ui.Hint("Connect a wallet to see your shares: bigcli wallet add"))
		}
		return nil
	},
}

// readFigures reads every count the chart needs. The user's count is only
// read when owner is set.
func readFigures(ctx context.Context, g *contract.Genesis, owner *common.Address) (shares.Figures, error) {
	ctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	defer cancel()

	available, err := g.AvailableShares(ctx)
	if err != nil {
		return shares.Figures{}, fmt.Errorf("reading available shares: %w", err)
	}
	sold, err := g.SharesSold(ctx)
	if err != nil {
		return shares.Figures{}, fmt.Errorf("reading shares sold: %w", err)
	}
	holders, err := g.Shareholders(ctx)
	if err != nil {
		return shares.Figures{}, fmt.Errorf("reading shareholders: %w", err)
	}
	var user *big.Int
	if owner != nil {
		if user, err = g.Shares(ctx, *owner); err != nil {
			return shares.Figures{}, fmt.Errorf("reading your shares: %w", err)
		}
	}
	return shares.Derive(available, user, sold, holders), nil
}

func init() {
	sharesCmd.Flags().StringVarP(&sharesWallet, "wallet", "w", "", "wallet whose shares to show (default: default wallet)")
}
