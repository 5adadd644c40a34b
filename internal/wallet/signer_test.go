package wallet

import (
	"context"
	"math/big"
	"testing"

	"github.com/99designs/keyring"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	anvilKey  = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	anvilAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// fileKeystore is isolated to a temp directory so tests never touch the OS
// keychain.
func fileKeystore(t *testing.T) *Keystore {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "bigcli-test",
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: keyring.FixedStringPrompt("testpass"),
	})
	require.NoError(t, err)
	return NewKeystore(ring)
}

func TestNormaliseHexKey(t *testing.T) {
	assert.Equal(t, "abc123", normaliseHexKey("0xabc123"))
	assert.Equal(t, "abc123", normaliseHexKey("0Xabc123"))
	assert.Equal(t, "abc", normaliseHexKey("  0xabc  "))
	assert.Equal(t, "", normaliseHexKey("0x"))
	assert.Equal(t, "", normaliseHexKey(""))
}

func TestFileKeystoreRoundTrip(t *testing.T) {
	ks := fileKeystore(t)

	ref, err := ks.Store("deployer", anvilKey)
	require.NoError(t, err)
	assert.Equal(t, "bigcli.deployer", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, anvilKey, got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// Deleting twice is fine.
	assert.NoError(t, ks.Delete(ref))
}

func TestNewSignerRejectsWatchOnly(t *testing.T) {
	_, err := NewSigner(&Wallet{Name: "viewer", Type: TypeWatchOnly}, NewMemKeyStore())
	assert.ErrorIs(t, err, ErrWatchOnly)
}

func TestTransactOptsSignsForWallet(t *testing.T) {
	ks := fileKeystore(t)
	ref, err := ks.Store("deployer", anvilKey)
	require.NoError(t, err)

	w := &Wallet{Name: "deployer", Address: anvilAddr, Type: TypeSigning, KeyRef: ref}
	s, err := NewSigner(w, ks)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(anvilAddr), s.Address())
	assert.Same(t, w, s.Wallet())

	ctx := context.Background()
	chainID := big.NewInt(31337)
	opts, err := s.TransactOpts(ctx, chainID)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), opts.From)
	assert.Equal(t, ctx, opts.Context)

	tx := types.NewTransaction(0, common.Address{}, big.NewInt(0), 21000, big.NewInt(1e9), nil)
	signed, err := opts.Signer(opts.From, tx)
	require.NoError(t, err)

	sender, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), sender)
}

func TestTransactOptsMissingKey(t *testing.T) {
	w := &Wallet{Name: "ghost", Address: anvilAddr, Type: TypeSigning, KeyRef: "bigcli.ghost"}
	s, err := NewSigner(w, NewMemKeyStore())
	require.NoError(t, err)

	_, err = s.TransactOpts(context.Background(), big.NewInt(1))
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestTransactOptsAddressMismatch(t *testing.T) {
	keys := NewMemKeyStore()
	ref, _ := keys.Store("w", anvilKey)

	w := &Wallet{Name: "w", Address: "0x1234567890abcdef1234567890abcdef12345678", Type: TypeSigning, KeyRef: ref}
	s, err := NewSigner(w, keys)
	require.NoError(t, err)

	_, err = s.TransactOpts(context.Background(), big.NewInt(1))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestTransactOptsCorruptKey(t *testing.T) {
	keys := NewMemKeyStore()
	ref, _ := keys.Store("w", "zz")

	s, err := NewSigner(&Wallet{Name: "w", Address: anvilAddr, Type: TypeSigning, KeyRef: ref}, keys)
	require.NoError(t, err)

	_, err = s.TransactOpts(context.Background(), big.NewInt(1))
	assert.ErrorIs(t, err, ErrInvalidKey)
}
