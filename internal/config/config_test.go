package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bigincgenesis/bigcli/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.DefaultNetwork)
	assert.Equal(t, "fastest", cfg.RPCAlgorithm)
	assert.Equal(t, 5, cfg.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.Poll())
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	cfg.DefaultNetwork = "sepolia"
	cfg.DefaultWallet = "mywallet"
	cfg.RPCAlgorithm = "round-robin"
	cfg.PollInterval = 12

	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "sepolia", reloaded.DefaultNetwork)
	assert.Equal(t, "mywallet", reloaded.DefaultWallet)
	assert.Equal(t, "round-robin", reloaded.RPCAlgorithm)
	assert.Equal(t, 12*time.Second, reloaded.Poll())
}

func TestLoadNonPositivePollIntervalFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"poll_interval": 0}`), 0o600))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultPollInterval, cfg.Poll())
}

func TestLoadFromEnvDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvConfigDir, dir)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir())
}

func TestLoadMalformedConfigErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{not json`), 0o600))

	_, err := config.Load(dir)
	assert.ErrorContains(t, err, "parsing config")
}

// ---------------------------------------------------------------------------
// Custom RPCs
// ---------------------------------------------------------------------------

func TestAddCustomRPC(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	require.NoError(t, cfg.AddRPC("sepolia", "https://custom.sepolia.rpc"))

	rpcs := cfg.GetRPCs("sepolia")
	assert.Contains(t, rpcs, "https://custom.sepolia.rpc")
}

func TestAddDuplicateRPCErrors(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)

	cfg.AddRPC("sepolia", "https://custom.sepolia.rpc") //nolint:errcheck
	err := cfg.AddRPC("sepolia", "https://custom.sepolia.rpc")
	assert.Error(t, err)
}

func TestRemoveCustomRPC(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	cfg.AddRPC("local", "http://127.0.0.1:8545") //nolint:errcheck
	cfg.AddRPC("local", "http://127.0.0.1:8546") //nolint:errcheck

	require.NoError(t, cfg.RemoveRPC("local", "http://127.0.0.1:8545"))

	rpcs := cfg.GetRPCs("local")
	assert.NotContains(t, rpcs, "http://127.0.0.1:8545")
	assert.Contains(t, rpcs, "http://127.0.0.1:8546")
}

func TestRemoveNonExistentRPCErrors(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)

	err := cfg.RemoveRPC("sepolia", "https://nonexistent.rpc")
	assert.Error(t, err)
}

func TestConfigFileCreatedOnSave(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	require.NoError(t, cfg.Save())

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err, "config.json should be created on save")
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadFromNonExistentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "subdir")
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.DefaultNetwork)
	assert.DirExists(t, dir)
}

// ---------------------------------------------------------------------------
// Contract addresses
// ---------------------------------------------------------------------------

func TestAddressesUnknownNetworkIsPlaceholder(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	addrs := cfg.Addresses("sepolia")
	assert.True(t, config.IsPlaceholder(addrs.BigIncGenesis))
	assert.True(t, config.IsPlaceholder(addrs.MockUSDT))
	assert.True(t, config.IsPlaceholder(addrs.MockUSDC))
}

func TestAddressesReturnsCopy(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	cfg.SetAddresses("local", config.ContractAddresses{BigIncGenesis: "0xabc"})

	addrs := cfg.Addresses("local")
	addrs.BigIncGenesis = "0xdef"

	assert.Equal(t, "0xabc", cfg.Addresses("local").BigIncGenesis)
}

func TestAddressesPersist(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	cfg.SetAddresses("local", config.ContractAddresses{
		BigIncGenesis: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		MockUSDT:      "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512",
	})
	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", reloaded.Addresses("local").BigIncGenesis)
	assert.Equal(t, "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512", reloaded.Addresses("local").MockUSDT)
	assert.Empty(t, reloaded.Addresses("local").MockUSDC)
}

func TestIsPlaceholder(t *testing.T) {
	for _, addr := range []string{"", "0x", "0x0", "0X0", "0x0000000000000000000000000000000000000000", "  0x00 "} {
		assert.True(t, config.IsPlaceholder(addr), "%q", addr)
	}
	for _, addr := range []string{"0x1", "0x5FbDB2315678afecb367f032d93F642f64180aa3"} {
		assert.False(t, config.IsPlaceholder(addr), "%q", addr)
	}
}

// ---------------------------------------------------------------------------
// SyncState
// ---------------------------------------------------------------------------

func TestLoadSyncDefault(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	st, err := cfg.LoadSync()
	require.NoError(t, err)
	assert.Empty(t, st.Source)
	assert.Empty(t, st.LastSynced)
}

func TestSaveSyncOverwrites(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.SaveSync(&config.SyncState{Source: "first.json"}))
	require.NoError(t, cfg.SaveSync(&config.SyncState{Source: "second.json", Changed: []string{"MockUSDT"}}))

	reloaded, err := cfg.LoadSync()
	require.NoError(t, err)
	assert.Equal(t, "second.json", reloaded.Source)
	assert.Equal(t, []string{"MockUSDT"}, reloaded.Changed)
}
