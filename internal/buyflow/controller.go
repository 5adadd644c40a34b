// Package buyflow drives the approve-then-mint purchase of shares.
package buyflow

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"

	"github.com/bigincgenesis/bigcli/internal/config"
	"github.com/bigincgenesis/bigcli/internal/contract"
	"github.com/bigincgenesis/bigcli/internal/logging"
)

var (
	ErrWalletNotConnected    = errors.New("wallet not connected")
	ErrTokenUndeployed       = errors.New("payment token not deployed")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInvalidAmount         = errors.New("share amount must be positive")
	ErrBusy                  = errors.New("another buy operation is in progress")
)

// TokenAPI is the payment token surface the flow needs.
type TokenAPI interface {
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, spender common.Address, amount *big.Int) (*types.Transaction, error)
}

// MintAPI is the share sale surface the flow needs.
type MintAPI interface {
	MintShare(ctx context.Context, token common.Address) (*types.Transaction, error)
}

// Confirmer waits for a submitted transaction to be mined.
type Confirmer interface {
	WaitMined(ctx context.Context, tx *types.Transaction) error
}

// Notifier shows toasts to the user.
type Notifier interface {
	Notify(Toast)
}

// Observer is told about every state transition.
type Observer interface {
	ObserveTransition(from, to string)
}

// Config wires a Controller. A zero Owner means no wallet is connected.
type Config struct {
	Owner     common.Address
	Spender   common.Address
	Token     string
	TokenAPI  TokenAPI
	Minter    MintAPI
	Confirmer Confirmer
	Notifier  Notifier
	Observer  Observer
}

// Controller is safe for concurrent use; at most one approve or mint runs
// at a time.
type Controller struct {
	owner     common.Address
	spender   common.Address
	minter    MintAPI
	confirmer Confirmer
	notifier  Notifier
	observer  Observer

	mu        sync.Mutex
	token     string
	tokenAPI  TokenAPI
	state     State
	reason    error
	allowance *big.Int
	busy      bool
}

// New returns a controller in Idle.
func New(cfg Config) *Controller {
	return &Controller{
		owner:     cfg.Owner,
		spender:   cfg.Spender,
		minter:    cfg.Minter,
		confirmer: cfg.Confirmer,
		notifier:  cfg.Notifier,
		observer:  cfg.Observer,
		token:     cfg.Token,
		tokenAPI:  cfg.TokenAPI,
	}
}

// Snapshot is a consistent view of the controller.
type Snapshot struct {
	State     State
	Reason    error
	Allowance *big.Int
	Token     string
}

// Snapshot returns the current state. Allowance is nil until first read.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{State: c.state, Reason: c.reason, Token: c.token}
	if c.allowance != nil {
		s.Allowance = new(big.Int).Set(c.allowance)
	}
	return s
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SelectToken switches the payment token. The known allowance belongs to
// the old token, so it is cleared and the flow restarts from Idle.
func (c *Controller) SelectToken(addr string, api TokenAPI) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return ErrBusy
	}
	c.token = addr
	c.tokenAPI = api
	c.allowance = nil
	c.reason = nil
	if c.state != Idle {
		c.transition(Idle)
	}
	return nil
}

// Reset returns a finished flow to Idle.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settle()
}

// Approve grants the sale contract an unlimited allowance and then re-reads
// it. A zero read-back (lagging node) leaves the flow in Approving until a
// later RefreshAllowance or ObserveAllowance sees the new value.
func (c *Controller) Approve(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	var err error
	switch {
	case !c.connected():
		err = ErrWalletNotConnected
	case config.IsPlaceholder(c.token) || c.tokenAPI == nil:
		err = ErrTokenUndeployed
	case c.spender == (common.Address{}):
		err = fmt.Errorf("sale contract: %w", contract.ErrAddressUnset)
	}
	if err != nil {
		c.mu.Unlock()
		c.notify(failure(msgApproveUnavailable))
		return err
	}
	c.settle()
	c.transition(Approving)
	c.busy = true
	api := c.tokenAPI
	c.mu.Unlock()

	tx, err := api.Approve(ctx, c.spender, contract.InfiniteApproval())
	if err == nil {
		logging.Info("approval submitted", "tx", tx.Hash().Hex(), "token", c.token)
		err = c.confirm(ctx, tx)
	}
	if err != nil {
		c.fail(err)
		c.notify(failure(msgApproveFailed))
		return fmt.Errorf("approving token: %w", err)
	}
	c.notify(success(msgApproveOK))

	c.mu.Lock()
	c.transition(AwaitingAllowanceRefresh)
	c.mu.Unlock()

	v, rerr := api.Allowance(ctx, c.owner, c.spender)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if rerr != nil {
		logging.Warn("allowance read after approval failed", logging.Err(rerr))
		c.transition(Approving)
		return nil
	}
	c.applyAllowance(v)
	return nil
}

// RefreshAllowance reads the allowance from the token and feeds it in.
func (c *Controller) RefreshAllowance(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	if !c.connected() {
		c.mu.Unlock()
		return nil, ErrWalletNotConnected
	}
	if config.IsPlaceholder(c.token) || c.tokenAPI == nil {
		c.mu.Unlock()
		return nil, ErrTokenUndeployed
	}
	api, token := c.tokenAPI, c.token
	c.mu.Unlock()

	v, err := api.Allowance(ctx, c.owner, c.spender)
	if err != nil {
		return nil, fmt.Errorf("reading allowance: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != token {
		// Token switched while the read was in flight.
		return new(big.Int).Set(v), nil
	}
	c.applyAllowance(v)
	return new(big.Int).Set(v), nil
}

// ObserveAllowance feeds an allowance obtained elsewhere, e.g. from polling.
func (c *Controller) ObserveAllowance(v *big.Int) {
	if v == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyAllowance(v)
}

// Mint buys percent of the company paid in the selected token. The amount
// charged is bounded by the allowance; percent is validated here and used
// by callers for the cost preview.
func (c *Controller) Mint(ctx context.Context, percent decimal.Decimal) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	var (
		err   error
		toast Toast
	)
	switch {
	case config.IsPlaceholder(c.token) || c.spender == (common.Address{}):
		err, toast = ErrTokenUndeployed, failure(msgMintUnavailable)
	case c.allowance == nil || c.allowance.Sign() <= 0:
		err, toast = ErrInsufficientAllowance, failure(msgNeedApproval)
	case !percent.IsPositive():
		err, toast = ErrInvalidAmount, failure(msgInvalidAmount)
	case !c.connected():
		err, toast = ErrWalletNotConnected, failure(msgConnectWallet)
	}
	if err != nil {
		c.mu.Unlock()
		c.notify(toast)
		return err
	}
	c.settle()
	if c.state != ReadyToMint {
		c.transition(ReadyToMint)
	}
	c.transition(Minting)
	c.busy = true
	token := common.HexToAddress(c.token)
	c.mu.Unlock()

	logging.Info("minting shares", "percent", percent.String(), logging.Address(token.Hex()))
	tx, err := c.minter.MintShare(ctx, token)
	if err == nil {
		err = c.confirm(ctx, tx)
	}
	if err != nil {
		c.fail(err)
		c.notify(failure(msgMintFailed))
		return fmt.Errorf("minting shares: %w", err)
	}

	c.mu.Lock()
	c.busy = false
	c.transition(Succeeded)
	c.mu.Unlock()
	c.notify(success(msgMintOK))
	return nil
}

func (c *Controller) confirm(ctx context.Context, tx *types.Transaction) error {
	if c.confirmer == nil {
		return nil
	}
	return c.confirmer.WaitMined(ctx, tx)
}

func (c *Controller) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.reason = err
	c.transition(Failed)
}

func (c *Controller) connected() bool {
	return c.owner != (common.Address{})
}

// settle moves a finished flow back to Idle. Caller holds c.mu.
func (c *Controller) settle() {
	if c.state == Failed || c.state == Succeeded {
		c.reason = nil
		c.transition(Idle)
	}
}

// applyAllowance records v and advances the flow. Caller holds c.mu.
func (c *Controller) applyAllowance(v *big.Int) {
	c.allowance = new(big.Int).Set(v)
	positive := v.Sign() > 0

	switch c.state {
	case Idle, Approving, AwaitingAllowanceRefresh:
		if positive {
			c.transition(ReadyToMint)
		} else if c.state == AwaitingAllowanceRefresh {
			c.transition(Approving)
		}
	case ReadyToMint:
		if !positive {
			c.transition(Idle)
		}
	}
}

// transition changes state. Caller holds c.mu.
func (c *Controller) transition(to State) {
	from := c.state
	c.state = to
	logging.Debug("buy flow transition", logging.Component("buyflow"), "from", from.String(), "to", to.String())
	if c.observer != nil {
		c.observer.ObserveTransition(from.String(), to.String())
	}
}

func (c *Controller) notify(t Toast) {
	if c.notifier != nil {
		c.notifier.Notify(t)
	}
}
