package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const (
	defaultNetwork   = "local"
	defaultAlgorithm = "fastest"
	defaultLogLevel  = "warn"

	configFile  = "config.json"
	walletsFile = "wallets.json"
	syncFile    = "sync.json"

	// EnvConfigDir overrides the config directory when --config is not given.
	EnvConfigDir = "BIGCLI_CONFIG_DIR"
)

// Load reads config from dir (or creates defaults). dir defaults to
// $BIGCLI_CONFIG_DIR, then ~/.bigcli.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = os.Getenv(EnvConfigDir)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".bigcli")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	if cfg.Contracts == nil {
		cfg.Contracts = make(map[string]ContractAddresses)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = int(DefaultPollInterval / time.Second)
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	return saveJSON(filepath.Join(c.configDir, configFile), c)
}

// Poll returns the polling interval as a duration.
func (c *Config) Poll() time.Duration {
	if c.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return time.Duration(c.PollInterval) * time.Second
}

// Addresses returns a copy of the contract addresses for a network.
// A network with no entry yields an all-placeholder set.
func (c *Config) Addresses(network string) ContractAddresses {
	return c.Contracts[network]
}

// SetAddresses replaces the contract addresses for a network.
func (c *Config) SetAddresses(network string, addrs ContractAddresses) {
	if c.Contracts == nil {
		c.Contracts = make(map[string]ContractAddresses)
	}
	c.Contracts[network] = addrs
}

// AddRPC adds a custom RPC URL for a network.
func (c *Config) AddRPC(network, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[network], url) {
		return fmt.Errorf("RPC %s already exists for network %s", url, network)
	}
	c.CustomRPCs[network] = append(c.CustomRPCs[network], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a network.
func (c *Config) RemoveRPC(network, url string) error {
	rpcs := c.CustomRPCs[network]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for network %s", url, network)
	}
	c.CustomRPCs[network] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a network.
func (c *Config) GetRPCs(network string) []string {
	return c.CustomRPCs[network]
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// LoadWallets reads wallets.json.
func (c *Config) LoadWallets() (*WalletsFile, error) {
	return loadJSON[WalletsFile](filepath.Join(c.configDir, walletsFile))
}

// SaveWallets writes wallets.json.
func (c *Config) SaveWallets(wf *WalletsFile) error {
	return saveJSON(filepath.Join(c.configDir, walletsFile), wf)
}

// LoadSync reads sync.json.
func (c *Config) LoadSync() (*SyncState, error) {
	return loadJSON[SyncState](filepath.Join(c.configDir, syncFile))
}

// SaveSync writes sync.json.
func (c *Config) SaveSync(s *SyncState) error {
	return saveJSON(filepath.Join(c.configDir, syncFile), s)
}

// IsPlaceholder reports whether addr is an unset contract address: empty,
// "0x", or any all-zero hex string.
func IsPlaceholder(addr string) bool {
	s := strings.TrimSpace(addr)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return strings.Trim(s, "0") == ""
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		DefaultNetwork: defaultNetwork,
		RPCAlgorithm:   defaultAlgorithm,
		PollInterval:   int(DefaultPollInterval / time.Second),
		LogLevel:       defaultLogLevel,
		CustomRPCs:     make(map[string][]string),
		Contracts:      make(map[string]ContractAddresses),
		configDir:      dir,
	}
}

func loadJSON[T any](path string) (*T, error) {
	var zero T
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &zero, nil
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
