package contract

// Payment token surface (MockUSDT / MockUSDC). Names follow the deployed
// contracts, which use snake_case entry points.
var (
	BalanceOf = Method{
		Name: "balance_of", Contract: TokenContract, Kind: Read,
		Inputs:  []Param{{Name: "account", Type: "address"}},
		Outputs: []Param{{Type: "uint256"}},
	}
	Allowance = Method{
		Name: "allowance", Contract: TokenContract, Kind: Read,
		Inputs:  []Param{{Name: "owner", Type: "address"}, {Name: "spender", Type: "address"}},
		Outputs: []Param{{Type: "uint256"}},
	}
	Decimals = Method{
		Name: "decimals", Contract: TokenContract, Kind: Read,
		Outputs: []Param{{Type: "uint8"}},
	}
	Symbol = Method{
		Name: "symbol", Contract: TokenContract, Kind: Read,
		Outputs: []Param{{Type: "string"}},
	}
	Approve = Method{
		Name: "approve", Contract: TokenContract, Kind: Write,
		Inputs:  []Param{{Name: "spender", Type: "address"}, {Name: "amount", Type: "uint256"}},
		Outputs: []Param{{Type: "bool"}},
	}
)

var tokenMethods = []Method{BalanceOf, Allowance, Decimals, Symbol, Approve}
