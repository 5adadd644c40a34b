package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/bigincgenesis/bigcli/internal/contract"
	"github.com/bigincgenesis/bigcli/internal/logging"
	"github.com/bigincgenesis/bigcli/internal/poll"
	"github.com/bigincgenesis/bigcli/internal/shares"
	"github.com/bigincgenesis/bigcli/internal/ui"
)

var (
	watchWallet      string
	watchToken       string
	watchMetricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live share dashboard, refreshed every poll interval",
	Long: `Poll the sale contract and redraw the ownership chart as it changes.

Wallet reads (your shares, token balance and allowance) are only polled when a
wallet is configured. Press r to refresh now and q to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ui.IsInteractive() {
			return fmt.Errorf("watch needs a terminal: %w", ui.ErrNotInteractive)
		}
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

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
		w, err := resolveWallet(walletManager(), watchWallet)
		if err != nil {
			return err
		}
		tokenAddr, err := s.tokenAddress(ctx, g, watchToken)
		if err != nil {
			return err
		}
		tok, err := s.token(tokenAddr, nil)
		if err != nil {
			return err
		}
		decimals, symbol := tokenMeta(ctx, tok, watchToken)

		if watchMetricsAddr != "" {
			srv, errc := s.metrics.Serve(watchMetricsAddr)
			defer func() {
				sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer scancel()
				_ = srv.Shutdown(sctx)
			}()
			go func() {
				if err := <-errc; err != nil {
					logging.Error("metrics server failed", logging.Err(err))
				}
			}()
		}

		sched := poll.NewScheduler(cfg.Poll(), poll.WithObserver(s.metrics))
		sched.Start()
		defer sched.Close()

		d := newDashboardFeed(sched, g, tok, ownerOf(w), w != nil)
		defer d.Close()
		d.network = s.network.DisplayName
		d.decimals, d.symbol = decimals, symbol

		updates := d.fanIn(ctx)
		model := ui.NewDashboardModel(d.snapshot, updates, d.refetch)
		_, err = tea.NewProgram(model,
			tea.WithContext(ctx),
			tea.WithOutput(cmd.OutOrStdout()),
			tea.WithAltScreen(),
		).Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	},
}

// dashboardFeed owns the polled reads behind the live dashboard.
type dashboardFeed struct {
	network  string
	genesis  common.Address
	token    common.Address
	owner    common.Address
	wallet   bool
	decimals int32
	symbol   string

	available  *poll.Hook[*big.Int]
	sold       *poll.Hook[*big.Int]
	holders    *poll.Hook[[]common.Address]
	presale    *poll.Hook[bool]
	presaleVal *poll.Hook[*big.Int]
	totalVal   *poll.Hook[*big.Int]
	user       *poll.Hook[*big.Int]
	balance    *poll.Hook[*big.Int]
	allowance  *poll.Hook[*big.Int]

	mu      sync.Mutex
	updated time.Time
}

// newDashboardFeed subscribes every dashboard read. Wallet reads are
// subscribed disabled when connected is false, and token reads stay disabled
// until the token address is configured.
func newDashboardFeed(s *poll.Scheduler, g *contract.Genesis, tok *contract.Token, owner common.Address, connected bool) *dashboardFeed {
	spender := g.Address()
	tokenOK := connected && tok.Deployed()
	d := &dashboardFeed{
		genesis:  spender,
		token:    tok.Address(),
		owner:    owner,
		wallet:   connected,
		decimals: defaultTokenDecimals,

		available:  poll.Watch(s, poll.Key("get_available_shares"), g.AvailableShares, nil, true),
		sold:       poll.Watch(s, poll.Key("get_shares_sold"), g.SharesSold, nil, true),
		holders:    poll.Watch(s, poll.Key("get_shareholders"), g.Shareholders, nil, true),
		presale:    poll.Watch(s, poll.Key("is_presale_active"), g.PresaleActive, false, true),
		presaleVal: poll.Watch(s, poll.Key("get_presale_share_valuation"), g.PresaleShareValuation, nil, true),
		totalVal:   poll.Watch(s, poll.Key("get_total_share_valuation"), g.TotalShareValuation, nil, true),
		user: poll.Watch(s, poll.Key("get_shares", owner.Hex()), func(ctx context.Context) (*big.Int, error) {
			return g.Shares(ctx, owner)
		}, nil, connected),
		balance: poll.Watch(s, poll.Key("balanceOf", tok.Address().Hex(), owner.Hex()), func(ctx context.Context) (*big.Int, error) {
			return tok.BalanceOf(ctx, owner)
		}, nil, tokenOK),
		allowance: poll.Watch(s, poll.Key("allowance", tok.Address().Hex(), owner.Hex(), spender.Hex()), func(ctx context.Context) (*big.Int, error) {
			return tok.Allowance(ctx, owner, spender)
		}, nil, tokenOK),
	}
	return d
}

type updater interface{ Updates() <-chan struct{} }

func (d *dashboardFeed) sources() []updater {
	return []updater{d.available, d.sold, d.holders, d.presale, d.presaleVal, d.totalVal, d.user, d.balance, d.allowance}
}

// fanIn merges every hook's update signal into one coalesced channel and
// stamps the update time. The goroutines stop with ctx.
func (d *dashboardFeed) fanIn(ctx context.Context) <-chan struct{} {
	out := make(chan struct{}, 1)
	for _, src := range d.sources() {
		go func(ch <-chan struct{}) {
			for {
				select {
				case <-ctx.Done():
					return
				case <-ch:
				}
				d.mu.Lock()
				d.updated = time.Now()
				d.mu.Unlock()
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}(src.Updates())
	}
	return out
}

func (d *dashboardFeed) refetch() {
	d.available.Refetch()
	d.sold.Refetch()
	d.holders.Refetch()
	d.presale.Refetch()
	d.presaleVal.Refetch()
	d.totalVal.Refetch()
	d.user.Refetch()
	d.balance.Refetch()
	d.allowance.Refetch()
}

func (d *dashboardFeed) snapshot() ui.DashboardData {
	avail, sold, holders := d.available.State(), d.sold.State(), d.holders.State()
	presale, pval, tval := d.presale.State(), d.presaleVal.State(), d.totalVal.State()
	user, bal, allow := d.user.State(), d.balance.State(), d.allowance.State()

	var userShares *big.Int
	if d.wallet {
		userShares = user.Data
	}

	out := ui.DashboardData{
		Network:          d.network,
		Genesis:          d.genesis.Hex(),
		Token:            d.token.Hex(),
		Symbol:           d.symbol,
		Figures:          shares.Derive(avail.Data, userShares, sold.Data, holders.Data),
		PresaleActive:    presale.Data,
		PresaleValuation: d.amount(pval.Data),
		TotalValuation:   d.amount(tval.Data),
		Balance:          d.amount(bal.Data),
		Allowance:        d.allowanceText(allow.Data),
		Loading: avail.Loading || sold.Loading || holders.Loading || presale.Loading ||
			pval.Loading || tval.Loading || user.Loading || bal.Loading || allow.Loading,
	}
	if d.wallet {
		out.Wallet = d.owner.Hex()
	}
	if err := errors.Join(avail.Err, sold.Err, holders.Err, presale.Err, pval.Err, tval.Err, user.Err, bal.Err, allow.Err); err != nil {
		out.Err = firstLine(err)
	}

	d.mu.Lock()
	out.UpdatedAt = d.updated
	d.mu.Unlock()
	return out
}

func (d *dashboardFeed) amount(v *big.Int) string {
	if v == nil {
		return ""
	}
	return shares.FormatTokenAmount(v, d.decimals, 2)
}

func (d *dashboardFeed) allowanceText(v *big.Int) string {
	switch {
	case v == nil:
		return ""
	case v.Cmp(contract.InfiniteApproval()) >= 0:
		return "unlimited"
	default:
		return d.amount(v)
	}
}

func (d *dashboardFeed) Close() {
	d.available.Close()
	d.sold.Close()
	d.holders.Close()
	d.presale.Close()
	d.presaleVal.Close()
	d.totalVal.Close()
	d.user.Close()
	d.balance.Close()
	d.allowance.Close()
}

// firstLine keeps the dashboard's error row to one line when several reads
// fail at once.
func firstLine(err error) string {
	msg := err.Error()
	for i, r := range msg {
		if r == '\n' {
			return msg[:i]
		}
	}
	return msg
}

func init() {
	f := watchCmd.Flags()
	f.StringVarP(&watchWallet, "wallet", "w", "", "wallet to show (default: default wallet)")
	f.StringVar(&watchToken, "token", "usdt", "payment token: usdt or usdc")
	f.StringVar(&watchMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
}
