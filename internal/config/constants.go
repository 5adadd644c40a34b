package config

import (
	"math/big"
	"time"
)

// SharePrecision is the contract's fixed-point scale: 10^8 units == 100%.
var SharePrecision = big.NewInt(100_000_000)

const (
	DefaultPollInterval = 5 * time.Second
	RPCSelectTimeout    = 10 * time.Second // BestEVM benchmark / RPC selection
	TxConfirmTimeout    = 3 * time.Minute  // transaction confirmation wait
	ReadTimeout         = 15 * time.Second // single contract read
)

// Well-known contract names in the deployment artifact.
const (
	NameGenesis  = "BigIncGenesis"
	NameMockUSDT = "MockUSDT"
	NameMockUSDC = "MockUSDC"
)
