package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/bigincgenesis/bigcli/internal/buyflow"
	"github.com/bigincgenesis/bigcli/internal/config"
	"github.com/bigincgenesis/bigcli/internal/contract"
	"github.com/bigincgenesis/bigcli/internal/shares"
	"github.com/bigincgenesis/bigcli/internal/ui"
)

var (
	allowanceToken  string
	allowanceWallet string

	approveToken  string
	approveWallet string
	approveYes    bool
)

var allowanceCmd = &cobra.Command{
	Use:   "allowance",
	Short: "Show your token balance and the allowance granted to the sale contract",
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
		w, err := resolveWallet(walletManager(), allowanceWallet)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("%w (add one with: bigcli wallet add)", buyflow.ErrWalletNotConnected)
		}
		addr, err := s.tokenAddress(ctx, g, allowanceToken)
		if err != nil {
			return err
		}
		if config.IsPlaceholder(addr) {
			return fmt.Errorf("%w: %s", buyflow.ErrTokenUndeployed, allowanceToken)
		}
		tok, err := s.token(addr, nil)
		if err != nil {
			return err
		}
		decimals, symbol := tokenMeta(ctx, tok, allowanceToken)

		owner := ownerOf(w)
		rctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
		defer cancel()
		balance, err := tok.BalanceOf(rctx, owner)
		if err != nil {
			return fmt.Errorf("reading balance: %w", err)
		}
		allowance, err := tok.Allowance(rctx, owner, g.Address())
		if err != nil {
			return fmt.Errorf("reading allowance: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock(symbol, [][2]string{
			{"Wallet", ui.Addr(owner.Hex())},
			{"Token", ui.Addr(tok.Address().Hex())},
			{"Spender", ui.Addr(g.Address().Hex())},
			{"Balance", ui.Val(shares.FormatTokenAmount(balance, decimals, 2))},
			{"Allowance", ui.Val(formatAllowance(allowance, decimals))},
		}))
		if allowance.Sign() == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Hint("Approve it with: bigcli approve --token "+allowanceToken))
		}
		return nil
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve the sale contract to spend a payment token",
	Long: `Send an unlimited approval for the chosen token to the sale contract.
bigcli buy does this on its own when the allowance is zero.`,
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
		mgr := walletManager()
		w, err := resolveWallet(mgr, approveWallet)
		if err != nil {
			return err
		}
		signer, err := s.transactor(ctx, mgr, w)
		if err != nil {
			return err
		}
		addr, err := s.tokenAddress(ctx, g, approveToken)
		if err != nil {
			return err
		}

		if !approveYes {
			ok, err := ui.Confirm("Approve unlimited "+approveToken+" spending?", "Spender: "+g.Address().Hex())
			if err != nil {
				return fmt.Errorf("%w (or pass --yes)", err)
			}
			if !ok {
				return errCancelled
			}
		}

		ctrl, err := newBuyController(cmd, s, signer, addr)
		if err != nil {
			return err
		}
		err = ui.WithSpinner(cmd.ErrOrStderr(), "Approving "+approveToken, func() error {
			return ctrl.Approve(ctx)
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("state: "+ctrl.State().String()))
		return nil
	},
}

func formatAllowance(v *big.Int, decimals int32) string {
	if v.Cmp(contract.InfiniteApproval()) >= 0 {
		return "unlimited"
	}
	return shares.FormatTokenAmount(v, decimals, 2)
}

func init() {
	f := allowanceCmd.Flags()
	f.StringVar(&allowanceToken, "token", "usdt", "payment token: usdt or usdc")
	f.StringVarP(&allowanceWallet, "wallet", "w", "", "wallet to check (default: default wallet)")

	f = approveCmd.Flags()
	f.StringVar(&approveToken, "token", "usdt", "payment token: usdt or usdc")
	f.StringVarP(&approveWallet, "wallet", "w", "", "signing wallet (default: default wallet)")
	f.BoolVarP(&approveYes, "yes", "y", false, "skip the confirmation prompt")
}
