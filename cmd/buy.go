package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bigincgenesis/bigcli/internal/buyflow"
	"github.com/bigincgenesis/bigcli/internal/config"
	"github.com/bigincgenesis/bigcli/internal/contract"
	"github.com/bigincgenesis/bigcli/internal/shares"
	"github.com/bigincgenesis/bigcli/internal/ui"
)

// A lagging node may report the old allowance right after the approval is
// mined; the buy command re-reads it this many times before giving up.
const (
	allowanceRetries    = 5
	allowanceRetryDelay = 2 * time.Second
)

var (
	buyToken   string
	buyPercent string
	buyWallet  string
	buyYes     bool
)

var buyCmd = &cobra.Command{
	Use:   "buy",
	Short: "Buy shares with USDT or USDC",
	Long: `Approve the payment token if needed, then mint shares.

Without --token and --percent an interactive form asks for them and shows the
cost at the current valuation before anything is sent.`,
	Example: `  bigcli buy
  bigcli buy --token usdc --percent 0.5 --yes`,
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
		w, err := resolveWallet(mgr, buyWallet)
		if err != nil {
			return err
		}
		signer, err := s.transactor(ctx, mgr, w)
		if err != nil {
			return err
		}

		var quotes map[string]quote
		err = ui.WithSpinner(cmd.ErrOrStderr(), "Reading share price", func() error {
			quotes, err = loadQuotes(ctx, s, g)
			return err
		})
		if err != nil {
			return err
		}

		token, percent, err := buyInputs(quotes)
		if err != nil {
			return err
		}
		q := quotes[token]

		ctrl, err := newBuyController(cmd, s, signer, q.address)
		if err != nil {
			return err
		}

		if err := ensureAllowance(ctx, cmd, ctrl, q.symbol); err != nil {
			return err
		}
		err = ui.WithSpinner(cmd.ErrOrStderr(), "Minting shares", func() error {
			return ctrl.Mint(ctx, percent)
		})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Bought %s%% for about %s %s", percent, q.cost(percent), q.symbol)))
		fmt.Fprintln(out, ui.Hint("See the new split: bigcli shares"))
		return nil
	},
}

// quote is what the buy preview needs for one payment token.
type quote struct {
	address   string
	symbol    string
	decimals  int32
	valuation *big.Int
}

func (q quote) cost(percent decimal.Decimal) string {
	return shares.Cost(q.valuation, percent, q.decimals).StringFixed(2)
}

// loadQuotes reads the valuation and both tokens' metadata up front so the
// form preview never touches the network.
func loadQuotes(ctx context.Context, s *session, g *contract.Genesis) (map[string]quote, error) {
	var valuation *big.Int
	rctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	defer cancel()
	presale, err := g.PresaleActive(rctx)
	if err != nil {
		return nil, fmt.Errorf("reading presale state: %w", err)
	}
	if presale {
		valuation, err = g.PresaleShareValuation(rctx)
	} else {
		valuation, err = g.TotalShareValuation(rctx)
	}
	if err != nil {
		return nil, fmt.Errorf("reading share valuation: %w", err)
	}

	quotes := make(map[string]quote, 2)
	for _, choice := range []string{"usdt", "usdc"} {
		addr, err := s.tokenAddress(ctx, g, choice)
		if err != nil {
			return nil, err
		}
		tok, err := s.token(addr, nil)
		if err != nil {
			return nil, err
		}
		decimals, symbol := tokenMeta(ctx, tok, choice)
		quotes[choice] = quote{address: addr, symbol: symbol, decimals: decimals, valuation: valuation}
	}
	return quotes, nil
}

// buyInputs takes token and percent from flags, falling back to the form.
// Flag input still needs a confirmation unless --yes is given.
func buyInputs(quotes map[string]quote) (string, decimal.Decimal, error) {
	preview := func(token, percent string) string {
		q, ok := quotes[strings.ToLower(token)]
		if !ok {
			return ""
		}
		p, err := shares.ParsePercent(percent)
		if err != nil {
			return "Enter a share amount to see the cost"
		}
		return fmt.Sprintf("Cost: %s %s", q.cost(p), q.symbol)
	}

	if buyToken == "" || buyPercent == "" {
		in := ui.BuyInput{Token: strings.ToLower(buyToken), Percent: buyPercent}
		if err := ui.RunBuyForm(&in, preview); err != nil {
			return "", decimal.Zero, err
		}
		if !in.Confirm {
			return "", decimal.Zero, errCancelled
		}
		p, err := shares.ParsePercent(in.Percent)
		return in.Token, p, err
	}

	token := strings.ToLower(buyToken)
	if _, ok := quotes[token]; !ok {
		return "", decimal.Zero, fmt.Errorf("unknown token %q (use usdt or usdc)", buyToken)
	}
	p, err := shares.ParsePercent(buyPercent)
	if err != nil {
		return "", decimal.Zero, err
	}
	if !buyYes {
		ok, err := ui.Confirm(fmt.Sprintf("Buy %s%% of BigInc?", p), preview(token, buyPercent))
		if err != nil {
			return "", decimal.Zero, fmt.Errorf("%w (or pass --yes)", err)
		}
		if !ok {
			return "", decimal.Zero, errCancelled
		}
	}
	return token, p, nil
}

var errCancelled = errors.New("cancelled")

// newBuyController wires the buy flow to the signing bindings of the session.
func newBuyController(cmd *cobra.Command, s *session, signer *bind.TransactOpts, tokenAddr string) (*buyflow.Controller, error) {
	minter, err := s.genesis(signer)
	if err != nil {
		return nil, err
	}
	cfg := buyflow.Config{
		Owner:     signer.From,
		Spender:   minter.Address(),
		Token:     tokenAddr,
		Minter:    minter,
		Confirmer: s.client,
		Notifier:  ui.NewToaster(cmd.ErrOrStderr()),
		Observer:  s.metrics,
	}
	if tok, err := s.token(tokenAddr, signer); err == nil && tok.Deployed() {
		cfg.TokenAPI = tok
	}
	return buyflow.New(cfg), nil
}

// ensureAllowance approves the token when the allowance is zero and waits
// until the node reports the new allowance.
func ensureAllowance(ctx context.Context, cmd *cobra.Command, ctrl *buyflow.Controller, symbol string) error {
	var allowance *big.Int
	err := ui.WithSpinner(cmd.ErrOrStderr(), "Checking "+symbol+" allowance", func() error {
		var err error
		allowance, err = ctrl.RefreshAllowance(ctx)
		return err
	})
	if err != nil {
		return err
	}
	if allowance.Sign() > 0 {
		return nil
	}

	err = ui.WithSpinner(cmd.ErrOrStderr(), "Approving "+symbol, func() error {
		return ctrl.Approve(ctx)
	})
	if err != nil {
		return err
	}
	return awaitReady(ctx, ctrl, allowanceRetryDelay)
}

// awaitReady re-reads the allowance until the flow reaches ReadyToMint.
func awaitReady(ctx context.Context, ctrl *buyflow.Controller, delay time.Duration) error {
	for i := 0; ctrl.State() != buyflow.ReadyToMint; i++ {
		if i == allowanceRetries {
			return fmt.Errorf("%w: approval mined but the node still reports no allowance; try again shortly", buyflow.ErrInsufficientAllowance)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if _, err := ctrl.RefreshAllowance(ctx); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	f := buyCmd.Flags()
	f.StringVar(&buyToken, "token", "", "payment token: usdt or usdc")
	f.StringVar(&buyPercent, "percent", "", "share amount in percent, e.g. 0.5")
	f.StringVarP(&buyWallet, "wallet", "w", "", "signing wallet (default: default wallet)")
	f.BoolVarP(&buyYes, "yes", "y", false, "skip the confirmation prompt")
}

var (
	_ buyflow.TokenAPI = (*contract.Token)(nil)
	_ buyflow.MintAPI  = (*contract.Genesis)(nil)
)
