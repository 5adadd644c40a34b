package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs transactions for a signing wallet.
type Signer struct {
	wallet *Wallet
	keys   KeyStore
}

// NewSigner creates a signer. Watch-only wallets cannot sign.
func NewSigner(w *Wallet, keys KeyStore) (*Signer, error) {
	if !w.CanSign() {
		return nil, fmt.Errorf("%w: %s", ErrWatchOnly, w.Name)
	}
	return &Signer{wallet: w, keys: keys}, nil
}

// Address returns the wallet's address.
func (s *Signer) Address() common.Address {
	return common.HexToAddress(s.wallet.Address)
}

// Wallet returns the wallet being signed for.
func (s *Signer) Wallet() *Wallet { return s.wallet }

// TransactOpts builds transactor options that sign with the stored key.
// The key is checked against the wallet's recorded address.
func (s *Signer) TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	priv, err := s.privateKey()
	if err != nil {
		return nil, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(priv, chainID)
	if err != nil {
		return nil, fmt.Errorf("building transactor: %w", err)
	}
	if opts.From != s.Address() {
		return nil, fmt.Errorf("%w: stored key does not match %s", ErrInvalidKey, s.wallet.Address)
	}
	opts.Context = ctx
	return opts, nil
}

func (s *Signer) privateKey() (*ecdsa.PrivateKey, error) {
	hexKey, err := s.keys.Retrieve(s.wallet.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}
	priv, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return priv, nil
}
