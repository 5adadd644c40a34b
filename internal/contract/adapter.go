package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bigincgenesis/bigcli/internal/config"
	"github.com/bigincgenesis/bigcli/internal/logging"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/time/rate"
)

var (
	ErrNotConnected        = errors.New("wallet not connected")
	ErrAddressUnset        = errors.New("contract address not set")
	ErrTransactionRejected = errors.New("transaction rejected")
	ErrNetwork             = errors.New("network error")
	ErrWrongKind           = errors.New("method kind mismatch")
	ErrUnknownMethod       = errors.New("unknown method")
	ErrInvalidArgs         = errors.New("invalid arguments")
)

// Node and wallet messages that mean the write was declined rather than lost.
var rejectionMarkers = []string{
	"rejected",
	"denied",
	"execution reverted",
	"insufficient funds",
	"nonce too low",
	"replacement transaction underpriced",
}

// Observer receives one sample per contract call.
type Observer interface {
	ObserveCall(method string, d time.Duration, err error)
}

// Adapter is the single entry point for talking to one deployed contract.
type Adapter struct {
	target   Target
	address  common.Address
	unset    bool
	abi      abi.ABI
	bound    *bind.BoundContract
	signer   *bind.TransactOpts
	limiter  *rate.Limiter
	observer Observer
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithSigner enables writes. Without it Invoke returns ErrNotConnected.
func WithSigner(opts *bind.TransactOpts) Option {
	return func(a *Adapter) { a.signer = opts }
}

// WithRateLimit throttles every call made through the adapter.
func WithRateLimit(l *rate.Limiter) Option {
	return func(a *Adapter) { a.limiter = l }
}

// WithObserver reports call latency and outcome.
func WithObserver(o Observer) Option {
	return func(a *Adapter) { a.observer = o }
}

// NewAdapter binds target at address. A placeholder address is accepted;
// every call on such an adapter fails with ErrAddressUnset.
func NewAdapter(backend bind.ContractBackend, target Target, address string, opts ...Option) (*Adapter, error) {
	parsed, err := ABI(target)
	if err != nil {
		return nil, err
	}

	a := &Adapter{target: target, abi: parsed}
	if config.IsPlaceholder(address) {
		a.unset = true
	} else {
		if !common.IsHexAddress(address) {
			return nil, fmt.Errorf("invalid %s address %q", target, address)
		}
		a.address = common.HexToAddress(address)
	}
	a.bound = bind.NewBoundContract(a.address, parsed, backend, backend, backend)

	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// Address returns the bound contract address (zero when unset).
func (a *Adapter) Address() common.Address { return a.address }

// Target returns the contract this adapter speaks to.
func (a *Adapter) Target() Target { return a.target }

// Deployed reports whether the adapter has a real contract address.
func (a *Adapter) Deployed() bool { return !a.unset }

// CanWrite reports whether a signer is attached.
func (a *Adapter) CanWrite() bool { return a.signer != nil }

// From returns the signer address, or the zero address for read-only adapters.
func (a *Adapter) From() common.Address {
	if a.signer == nil {
		return common.Address{}
	}
	return a.signer.From
}

// Call runs a read method and returns its decoded outputs.
func (a *Adapter) Call(ctx context.Context, m Method, args ...any) ([]any, error) {
	if err := a.check(m, Read, args); err != nil {
		return nil, err
	}

	var out []any
	err := a.do(ctx, m, func() error {
		return a.bound.Call(&bind.CallOpts{Context: ctx}, &out, m.Name, args...)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Invoke signs and submits a write method. It returns once the node has
// accepted the transaction; it does not wait for it to be mined and
// changes no local state.
func (a *Adapter) Invoke(ctx context.Context, m Method, args ...any) (*types.Transaction, error) {
	if err := a.check(m, Write, args); err != nil {
		return nil, err
	}
	if a.signer == nil {
		return nil, fmt.Errorf("%s: %w", m.Name, ErrNotConnected)
	}

	opts := *a.signer
	opts.Context = ctx

	var tx *types.Transaction
	err := a.do(ctx, m, func() error {
		var err error
		tx, err = a.bound.Transact(&opts, m.Name, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	logging.Info("transaction submitted", logging.Method(m.Name), "tx", tx.Hash().Hex())
	return tx, nil
}

// check validates a call without touching the network.
func (a *Adapter) check(m Method, want Kind, args []any) error {
	if m.Kind != want {
		return fmt.Errorf("%w: %s is a %s method", ErrWrongKind, m.Name, m.Kind)
	}
	if m.Contract != a.target {
		return fmt.Errorf("%w: %s is not a %s method", ErrUnknownMethod, m.Name, a.target)
	}
	if _, ok := a.abi.Methods[m.Name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMethod, m.Name)
	}
	if a.unset {
		return fmt.Errorf("%s: %w", a.target, ErrAddressUnset)
	}
	if len(args) != len(m.Inputs) {
		return fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrInvalidArgs, m.Signature(), len(m.Inputs), len(args))
	}
	if _, err := a.abi.Pack(m.Name, args...); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidArgs, m.Signature(), err)
	}
	return nil
}

func (a *Adapter) do(ctx context.Context, m Method, fn func() error) error {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: %w: %w", m.Name, ErrNetwork, err)
		}
	}

	start := time.Now()
	err := fn()
	if a.observer != nil {
		a.observer.ObserveCall(m.Name, time.Since(start), err)
	}
	if err == nil {
		return nil
	}

	err = classify(m, err)
	logging.Debug("contract call failed", logging.Method(m.Name), logging.Address(a.address.Hex()), logging.Err(err))
	return err
}

// classify maps a backend failure onto the adapter's error taxonomy while
// keeping the original error in the chain.
func classify(m Method, err error) error {
	if m.Kind == Write {
		msg := strings.ToLower(err.Error())
		for _, marker := range rejectionMarkers {
			if strings.Contains(msg, marker) {
				return fmt.Errorf("%s: %w: %w", m.Name, ErrTransactionRejected, err)
			}
		}
	}
	return fmt.Errorf("%s: %w: %w", m.Name, ErrNetwork, err)
}
