package config

// Config holds all bigcli configuration.
type Config struct {
	DefaultNetwork string                       `json:"default_network"`
	DefaultWallet  string                       `json:"default_wallet"`
	RPCAlgorithm   string                       `json:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	PollInterval   int                          `json:"poll_interval"` // seconds
	LogLevel       string                       `json:"log_level"`
	CustomRPCs     map[string][]string          `json:"custom_rpcs"`
	Contracts      map[string]ContractAddresses `json:"contracts"`

	// internal: config dir path used for Save()
	configDir string
}

// ContractAddresses is the set of deployed contract addresses for one network.
type ContractAddresses struct {
	BigIncGenesis string `json:"BigIncGenesis" yaml:"BigIncGenesis"`
	MockUSDT      string `json:"MockUSDT"      yaml:"MockUSDT"`
	MockUSDC      string `json:"MockUSDC"      yaml:"MockUSDC"`
}

// Wallet represents a stored wallet entry.
type Wallet struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Type      string `json:"type"`              // "watch-only" | "signing"
	KeyRef    string `json:"key_ref,omitempty"` // keychain reference for signing wallets
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
}

// WalletsFile is the structure of wallets.json.
type WalletsFile struct {
	Wallets []Wallet `json:"wallets"`
}

// SyncState records the last deployment artifact applied by `addresses sync`.
type SyncState struct {
	Source     string   `json:"source"`
	Network    string   `json:"network"`
	LastSynced string   `json:"last_synced"`
	Changed    []string `json:"changed,omitempty"`
}
