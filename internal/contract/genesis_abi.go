package contract

// BigIncGenesis share sale contract. Shares are fixed-point with 8 decimals:
// 100_000_000 units == 100% of the company.
var (
	GetAvailableShares = Method{
		Name: "get_available_shares", Contract: GenesisContract, Kind: Read,
		Outputs: []Param{{Type: "uint256"}},
	}
	GetShares = Method{
		Name: "get_shares", Contract: GenesisContract, Kind: Read,
		Inputs:  []Param{{Name: "shareholder", Type: "address"}},
		Outputs: []Param{{Type: "uint256"}},
	}
	GetSharesSold = Method{
		Name: "get_shares_sold", Contract: GenesisContract, Kind: Read,
		Outputs: []Param{{Type: "uint256"}},
	}
	GetShareholders = Method{
		Name: "get_shareholders", Contract: GenesisContract, Kind: Read,
		Outputs: []Param{{Type: "address[]"}},
	}
	IsPresaleActive = Method{
		Name: "is_presale_active", Contract: GenesisContract, Kind: Read,
		Outputs: []Param{{Type: "bool"}},
	}
	GetUSDTAddress = Method{
		Name: "get_usdt_address", Contract: GenesisContract, Kind: Read,
		Outputs: []Param{{Type: "address"}},
	}
	GetUSDCAddress = Method{
		Name: "get_usdc_address", Contract: GenesisContract, Kind: Read,
		Outputs: []Param{{Type: "address"}},
	}
	GetPresaleShareValuation = Method{
		Name: "get_presale_share_valuation", Contract: GenesisContract, Kind: Read,
		Outputs: []Param{{Type: "uint256"}},
	}
	GetTotalShareValuation = Method{
		Name: "get_total_share_valuation", Contract: GenesisContract, Kind: Read,
		Outputs: []Param{{Type: "uint256"}},
	}
	MintShare = Method{
		Name: "mint_share", Contract: GenesisContract, Kind: Write,
		Inputs: []Param{{Name: "token_address", Type: "address"}},
	}
)

var genesisMethods = []Method{
	GetAvailableShares,
	GetShares,
	GetSharesSold,
	GetShareholders,
	IsPresaleActive,
	GetUSDTAddress,
	GetUSDCAddress,
	GetPresaleShareValuation,
	GetTotalShareValuation,
	MintShare,
}
