package cmd

import (
	"context"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/time/rate"

	"github.com/bigincgenesis/bigcli/internal/buyflow"
	"github.com/bigincgenesis/bigcli/internal/chain"
	"github.com/bigincgenesis/bigcli/internal/config"
	"github.com/bigincgenesis/bigcli/internal/contract"
	"github.com/bigincgenesis/bigcli/internal/logging"
	"github.com/bigincgenesis/bigcli/internal/metrics"
	"github.com/bigincgenesis/bigcli/internal/rpc"
	"github.com/bigincgenesis/bigcli/internal/wallet"
)

// Shared per-process RPC budget for contract calls.
const (
	callRate  = rate.Limit(20)
	callBurst = 10
)

// session is one connected node plus the contract addresses for its network.
type session struct {
	network *chain.Network
	client  *chain.Client
	addrs   config.ContractAddresses
	metrics *metrics.Collector
	limiter *rate.Limiter
}

func networkName() string {
	if networkFlag != "" {
		return networkFlag
	}
	return cfg.DefaultNetwork
}

func resolveNetwork() (*chain.Network, error) {
	return lookupNetwork(networkName())
}

func lookupNetwork(name string) (*chain.Network, error) {
	n, err := chain.NewRegistry().GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (see: bigcli network list)", err, name)
	}
	return n, nil
}

// endpointURLs lists candidate RPCs: --rpc alone, else custom before built-in.
func endpointURLs(n *chain.Network) []string {
	if rpcFlag != "" {
		return []string{rpcFlag}
	}
	return append(slices.Clone(cfg.GetRPCs(n.Name)), n.RPCs...)
}

func openSession(ctx context.Context) (*session, error) {
	n, err := resolveNetwork()
	if err != nil {
		return nil, err
	}
	algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
	if err != nil {
		return nil, err
	}

	selCtx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	url, err := rpc.BestEVM(selCtx, endpointURLs(n), algo)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", contract.ErrNetwork, n.Name, err)
	}

	client, err := chain.Dial(ctx, url, chain.WithConfirmTimeout(config.TxConfirmTimeout))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contract.ErrNetwork, err)
	}
	logging.Debug("connected", logging.Network(n.Name), "rpc", url)

	return &session{
		network: n,
		client:  client,
		addrs:   cfg.Addresses(n.Name),
		metrics: metrics.New(),
		limiter: rate.NewLimiter(callRate, callBurst),
	}, nil
}

func (s *session) Close() { s.client.Close() }

func (s *session) contractOpts(signer *bind.TransactOpts) []contract.Option {
	opts := []contract.Option{
		contract.WithObserver(s.metrics),
		contract.WithRateLimit(s.limiter),
	}
	if signer != nil {
		opts = append(opts, contract.WithSigner(signer))
	}
	return opts
}

// genesis binds the share sale contract. signer may be nil for reads.
func (s *session) genesis(signer *bind.TransactOpts) (*contract.Genesis, error) {
	return contract.NewGenesis(s.client.Backend(), s.addrs.BigIncGenesis, s.contractOpts(signer)...)
}

func (s *session) token(addr string, signer *bind.TransactOpts) (*contract.Token, error) {
	return contract.NewToken(s.client.Backend(), addr, s.contractOpts(signer)...)
}

// requireGenesis fails early when the sale contract address is not configured.
func (s *session) requireGenesis(g *contract.Genesis) error {
	if g.Deployed() {
		return nil
	}
	return fmt.Errorf("%w: %s on %s (run: bigcli addresses sync)", contract.ErrAddressUnset, config.NameGenesis, s.network.Name)
}

// tokenAddress resolves "usdt" or "usdc": the address the sale contract
// accepts, falling back to the configured mock token.
func (s *session) tokenAddress(ctx context.Context, g *contract.Genesis, choice string) (string, error) {
	var (
		fallback string
		read     func(context.Context) (common.Address, error)
	)
	switch strings.ToLower(choice) {
	case "usdt":
		fallback, read = s.addrs.MockUSDT, g.USDTAddress
	case "usdc":
		fallback, read = s.addrs.MockUSDC, g.USDCAddress
	default:
		return "", fmt.Errorf("unknown token %q (use usdt or usdc)", choice)
	}

	if g.Deployed() {
		rctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
		addr, err := read(rctx)
		cancel()
		if err == nil && addr != (common.Address{}) {
			return addr.Hex(), nil
		}
		if err != nil {
			logging.Debug("token address read failed, using config", "token", choice, logging.Err(err))
		}
	}
	return fallback, nil
}

func walletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewConfigStore(cfg)),
		wallet.WithKeyStore(&lazyKeyStore{dir: cfg.Dir()}),
	)
}

// resolveWallet returns the named wallet, else the configured default, else
// the manager's default. Nil without error means no wallet is configured.
func resolveWallet(mgr *wallet.Manager, name string) (*wallet.Wallet, error) {
	if name == "" {
		name = cfg.DefaultWallet
	}
	if name != "" {
		return mgr.Get(name)
	}
	return mgr.Default(), nil
}

// transactor builds signing options for w on the session's chain.
func (s *session) transactor(ctx context.Context, mgr *wallet.Manager, w *wallet.Wallet) (*bind.TransactOpts, error) {
	if w == nil {
		return nil, fmt.Errorf("%w (add one with: bigcli wallet add)", buyflow.ErrWalletNotConnected)
	}
	signer, err := wallet.NewSigner(w, mgr.KeyStore())
	if err != nil {
		return nil, err
	}
	chainID, err := s.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contract.ErrNetwork, err)
	}
	if chainID.Cmp(big.NewInt(s.network.ChainID)) != 0 {
		return nil, fmt.Errorf("node reports chain %s but %s is %d", chainID, s.network.Name, s.network.ChainID)
	}
	return signer.TransactOpts(ctx, chainID)
}

func ownerOf(w *wallet.Wallet) common.Address {
	if w == nil {
		return common.Address{}
	}
	return common.HexToAddress(w.Address)
}

// Payment tokens use six decimals unless the contract says otherwise.
const defaultTokenDecimals = 6

// tokenMeta reads decimals and symbol once, falling back to six decimals and
// the upper-cased choice when the token cannot be read.
func tokenMeta(ctx context.Context, t *contract.Token, choice string) (int32, string) {
	decimals, symbol := int32(defaultTokenDecimals), strings.ToUpper(choice)
	if !t.Deployed() {
		return decimals, symbol
	}
	ctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	defer cancel()
	if d, err := t.Decimals(ctx); err == nil {
		decimals = int32(d)
	} else {
		logging.Debug("token decimals read failed", logging.Err(err))
	}
	if s, err := t.Symbol(ctx); err == nil && s != "" {
		symbol = s
	}
	return decimals, symbol
}
