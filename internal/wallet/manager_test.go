package wallet_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigincgenesis/bigcli/internal/wallet"
)

// Well-known Hardhat/Anvil test account #0. Never fund on mainnet.
const (
	testPrivKeyHex = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddr       = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestAddWatchOnlyWallet(t *testing.T) {
	mgr := wallet.NewManager()

	require.NoError(t, mgr.Add("viewer", "0x1234567890abcdef1234567890abcdef12345678"))

	w, err := mgr.Get("viewer")
	require.NoError(t, err)
	assert.Equal(t, wallet.TypeWatchOnly, w.Type)
	assert.Equal(t, "0x1234567890AbcdEF1234567890aBcdef12345678", w.Address)
	assert.False(t, w.CanSign())
	assert.NotEmpty(t, w.CreatedAt)
}

func TestAddRejectsBadAddress(t *testing.T) {
	mgr := wallet.NewManager()
	err := mgr.Add("bad", "0x123")
	assert.ErrorIs(t, err, wallet.ErrInvalidAddress)
}

func TestAddRejectsEmptyName(t *testing.T) {
	mgr := wallet.NewManager()
	assert.Error(t, mgr.Add("  ", testAddr))
}

func TestAddDuplicateWalletErrors(t *testing.T) {
	mgr := wallet.NewManager()
	require.NoError(t, mgr.Add("dup", testAddr))

	assert.ErrorIs(t, mgr.Add("dup", testAddr), wallet.ErrWalletExists)
	assert.ErrorIs(t, mgr.AddWithKey("dup", testPrivKeyHex), wallet.ErrWalletExists)
}

func TestAddSigningWallet(t *testing.T) {
	keys := wallet.NewMemKeyStore()
	mgr := wallet.NewManager(wallet.WithKeyStore(keys))

	require.NoError(t, mgr.AddWithKey("signer", testPrivKeyHex))

	w, err := mgr.Get("signer")
	require.NoError(t, err)
	assert.Equal(t, wallet.TypeSigning, w.Type)
	assert.Equal(t, testAddr, w.Address)
	assert.Equal(t, "bigcli.signer", w.KeyRef)

	stored, err := keys.Retrieve(w.KeyRef)
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex[2:], stored)
}

func TestAddWithInvalidKey(t *testing.T) {
	mgr := wallet.NewManager()
	err := mgr.AddWithKey("bad", "not-a-key")
	assert.ErrorIs(t, err, wallet.ErrInvalidKey)

	_, err = mgr.Get("bad")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestRemoveDeletesKey(t *testing.T) {
	keys := wallet.NewMemKeyStore()
	mgr := wallet.NewManager(wallet.WithKeyStore(keys))
	require.NoError(t, mgr.AddWithKey("signer", testPrivKeyHex))

	require.NoError(t, mgr.Remove("signer"))

	_, err := mgr.Get("signer")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
	_, err = keys.Retrieve("bigcli.signer")
	assert.ErrorIs(t, err, wallet.ErrKeyNotFound)

	assert.ErrorIs(t, mgr.Remove("signer"), wallet.ErrWalletNotFound)
}

func TestListIsSorted(t *testing.T) {
	mgr := wallet.NewManager()
	require.NoError(t, mgr.Add("zeta", testAddr))
	require.NoError(t, mgr.Add("alpha", testAddr))
	require.NoError(t, mgr.Add("mid", testAddr))

	list, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "mid", list[1].Name)
	assert.Equal(t, "zeta", list[2].Name)
}

func TestDefaultWallet(t *testing.T) {
	mgr := wallet.NewManager()
	assert.Nil(t, mgr.Default())

	require.NoError(t, mgr.Add("only", testAddr))
	require.NotNil(t, mgr.Default())
	assert.Equal(t, "only", mgr.Default().Name)

	require.NoError(t, mgr.Add("second", testAddr))
	assert.Nil(t, mgr.Default())

	require.NoError(t, mgr.SetDefault("second"))
	assert.Equal(t, "second", mgr.Default().Name)

	require.NoError(t, mgr.SetDefault("only"))
	assert.Equal(t, "only", mgr.Default().Name)
	w, _ := mgr.Get("second")
	assert.False(t, w.IsDefault)

	assert.ErrorIs(t, mgr.SetDefault("ghost"), wallet.ErrWalletNotFound)
}

func TestManagerSignerRejectsWatchOnly(t *testing.T) {
	mgr := wallet.NewManager()
	require.NoError(t, mgr.Add("viewer", testAddr))

	_, err := mgr.Signer("viewer")
	assert.ErrorIs(t, err, wallet.ErrWatchOnly)

	_, err = mgr.Signer("ghost")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

type failingStore struct{}

func (failingStore) Load() ([]*wallet.Wallet, error) { return nil, errors.New("disk on fire") }
func (failingStore) Save([]*wallet.Wallet) error     { return nil }

func TestLoadErrorsPropagate(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithStore(failingStore{}))

	_, err := mgr.Get("x")
	assert.ErrorContains(t, err, "disk on fire")
	_, err = mgr.List()
	assert.Error(t, err)
	assert.Nil(t, mgr.Default())
}
