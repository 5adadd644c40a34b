package contract

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Target names the contract a method belongs to.
type Target string

const (
	GenesisContract Target = "BigIncGenesis"
	TokenContract   Target = "ERC20"
)

// Kind separates view calls from state-changing transactions.
type Kind int

const (
	Read Kind = iota
	Write
)

func (k Kind) String() string {
	if k == Write {
		return "write"
	}
	return "read"
}

// Param is one ABI input or output.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Method describes one callable entry point. The set of methods is fixed at
// compile time; there is no lookup by arbitrary name at call sites.
type Method struct {
	Name     string
	Contract Target
	Kind     Kind
	Inputs   []Param
	Outputs  []Param
}

// Signature returns the canonical form, e.g. "get_shares(address)".
func (m Method) Signature() string {
	types := make([]string, len(m.Inputs))
	for i, p := range m.Inputs {
		types[i] = p.Type
	}
	return m.Name + "(" + strings.Join(types, ",") + ")"
}

// Selector returns the 4-byte function selector as 0x-prefixed hex.
func (m Method) Selector() string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(m.Signature()))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

func (m Method) String() string {
	return string(m.Contract) + "." + m.Signature()
}
