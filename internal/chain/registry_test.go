package chain_test

import (
	"testing"

	"github.com/bigincgenesis/bigcli/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHasAllNetworks(t *testing.T) {
	registry := chain.NewRegistry()
	assert.Len(t, registry.All(), 3)
}

func TestRegistryGetByName(t *testing.T) {
	registry := chain.NewRegistry()

	tests := []struct {
		name    string
		chainID int64
	}{
		{"local", 31337},
		{"sepolia", 11155111},
		{"ethereum", 1},
		{"SEPOLIA", 11155111},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := registry.GetByName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.chainID, n.ChainID)
		})
	}
}

func TestRegistryGetUnknownNetwork(t *testing.T) {
	registry := chain.NewRegistry()
	_, err := registry.GetByName("katana")
	assert.ErrorIs(t, err, chain.ErrNetworkNotFound)
}

func TestRegistryGetByChainID(t *testing.T) {
	registry := chain.NewRegistry()
	n, err := registry.GetByChainID(31337)
	require.NoError(t, err)
	assert.Equal(t, "local", n.Name)

	_, err = registry.GetByChainID(999)
	assert.ErrorIs(t, err, chain.ErrNetworkNotFound)
}

func TestAllNetworksHaveRPC(t *testing.T) {
	for _, n := range chain.NewRegistry().All() {
		assert.NotEmpty(t, n.RPCs, "network %s has no RPCs", n.Name)
	}
}

func TestLocalDevnetDefaults(t *testing.T) {
	n, err := chain.NewRegistry().GetByName("local")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:8545"}, n.RPCs)
	assert.True(t, n.Testnet)
	assert.Empty(t, n.TxURL("0xabc"))
}

func TestTxURL(t *testing.T) {
	n, err := chain.NewRegistry().GetByName("sepolia")
	require.NoError(t, err)
	assert.Equal(t, "https://sepolia.etherscan.io/tx/0xabc", n.TxURL("0xabc"))
}
