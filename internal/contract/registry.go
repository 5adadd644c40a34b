package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// abiEntry is one function in the JSON ABI format understood by go-ethereum.
type abiEntry struct {
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Inputs          []Param `json:"inputs"`
	Outputs         []Param `json:"outputs"`
	StateMutability string  `json:"stateMutability"`
}

var (
	genesisABI = sync.OnceValues(func() (abi.ABI, error) { return buildABI(genesisMethods) })
	tokenABI   = sync.OnceValues(func() (abi.ABI, error) { return buildABI(tokenMethods) })
)

// Methods returns every known method, Genesis first.
func Methods() []Method {
	out := make([]Method, 0, len(genesisMethods)+len(tokenMethods))
	out = append(out, genesisMethods...)
	return append(out, tokenMethods...)
}

// MethodsFor returns the methods of one contract.
func MethodsFor(t Target) []Method {
	switch t {
	case GenesisContract:
		return append([]Method(nil), genesisMethods...)
	case TokenContract:
		return append([]Method(nil), tokenMethods...)
	}
	return nil
}

// Lookup finds a method by contract and name.
func Lookup(t Target, name string) (Method, bool) {
	for _, m := range MethodsFor(t) {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

// ABI returns the parsed go-ethereum ABI for a contract.
func ABI(t Target) (abi.ABI, error) {
	switch t {
	case GenesisContract:
		return genesisABI()
	case TokenContract:
		return tokenABI()
	}
	return abi.ABI{}, fmt.Errorf("%w: contract %q", ErrUnknownMethod, t)
}

func buildABI(methods []Method) (abi.ABI, error) {
	entries := make([]abiEntry, len(methods))
	for i, m := range methods {
		mut := "view"
		if m.Kind == Write {
			mut = "nonpayable"
		}
		entries[i] = abiEntry{
			Name:            m.Name,
			Type:            "function",
			Inputs:          nonNil(m.Inputs),
			Outputs:         nonNil(m.Outputs),
			StateMutability: mut,
		}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return abi.ABI{}, err
	}
	return abi.JSON(bytes.NewReader(raw))
}

func nonNil(p []Param) []Param {
	if p == nil {
		return []Param{}
	}
	return p
}
