package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// InfiniteApproval is the allowance granted by the buy flow: 2^128 - 1.
func InfiniteApproval() *big.Int {
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
}

// Genesis is the typed BigIncGenesis binding.
type Genesis struct {
	*Adapter
}

// NewGenesis binds the share sale contract.
func NewGenesis(backend bind.ContractBackend, address string, opts ...Option) (*Genesis, error) {
	a, err := NewAdapter(backend, GenesisContract, address, opts...)
	if err != nil {
		return nil, err
	}
	return &Genesis{a}, nil
}

func (g *Genesis) AvailableShares(ctx context.Context) (*big.Int, error) {
	return first[*big.Int](g.Call(ctx, GetAvailableShares))
}

func (g *Genesis) Shares(ctx context.Context, holder common.Address) (*big.Int, error) {
	return first[*big.Int](g.Call(ctx, GetShares, holder))
}

func (g *Genesis) SharesSold(ctx context.Context) (*big.Int, error) {
	return first[*big.Int](g.Call(ctx, GetSharesSold))
}

func (g *Genesis) Shareholders(ctx context.Context) ([]common.Address, error) {
	return first[[]common.Address](g.Call(ctx, GetShareholders))
}

func (g *Genesis) PresaleActive(ctx context.Context) (bool, error) {
	return first[bool](g.Call(ctx, IsPresaleActive))
}

func (g *Genesis) USDTAddress(ctx context.Context) (common.Address, error) {
	return first[common.Address](g.Call(ctx, GetUSDTAddress))
}

func (g *Genesis) USDCAddress(ctx context.Context) (common.Address, error) {
	return first[common.Address](g.Call(ctx, GetUSDCAddress))
}

func (g *Genesis) PresaleShareValuation(ctx context.Context) (*big.Int, error) {
	return first[*big.Int](g.Call(ctx, GetPresaleShareValuation))
}

func (g *Genesis) TotalShareValuation(ctx context.Context) (*big.Int, error) {
	return first[*big.Int](g.Call(ctx, GetTotalShareValuation))
}

// MintShare buys shares paid in token. The share amount is derived on-chain
// from the caller's allowance.
func (g *Genesis) MintShare(ctx context.Context, token common.Address) (*types.Transaction, error) {
	return g.Invoke(ctx, MintShare, token)
}

// Token is the typed payment-token binding.
type Token struct {
	*Adapter
}

// NewToken binds a payment token.
func NewToken(backend bind.ContractBackend, address string, opts ...Option) (*Token, error) {
	a, err := NewAdapter(backend, TokenContract, address, opts...)
	if err != nil {
		return nil, err
	}
	return &Token{a}, nil
}

func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return first[*big.Int](t.Call(ctx, BalanceOf, owner))
}

func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return first[*big.Int](t.Call(ctx, Allowance, owner, spender))
}

func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	return first[uint8](t.Call(ctx, Decimals))
}

func (t *Token) Symbol(ctx context.Context) (string, error) {
	return first[string](t.Call(ctx, Symbol))
}

func (t *Token) Approve(ctx context.Context, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	return t.Invoke(ctx, Approve, spender, amount)
}

func first[T any](out []any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if len(out) == 0 {
		return zero, fmt.Errorf("%w: empty result", ErrNetwork)
	}
	v, ok := out[0].(T)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected result type %T", ErrNetwork, out[0])
	}
	return v, nil
}
