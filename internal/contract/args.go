package contract

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParseArgs converts command-line strings into the Go values expected by m.
func ParseArgs(m Method, raw []string) ([]any, error) {
	if len(raw) != len(m.Inputs) {
		return nil, fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrInvalidArgs, m.Signature(), len(m.Inputs), len(raw))
	}
	out := make([]any, len(raw))
	for i, p := range m.Inputs {
		v, err := parseArg(p.Type, raw[i])
		if err != nil {
			name := p.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgs, name, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseArg(typ, s string) (any, error) {
	s = strings.TrimSpace(s)
	switch {
	case typ == "address":
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil
	case typ == "bool":
		return strconv.ParseBool(s)
	case strings.HasPrefix(typ, "uint"):
		n, ok := new(big.Int).SetString(s, 0)
		if !ok || n.Sign() < 0 {
			return nil, fmt.Errorf("invalid unsigned integer %q", s)
		}
		return n, nil
	}
	return nil, fmt.Errorf("unsupported parameter type %s", typ)
}

// FormatValue renders a decoded output for terminal display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case *big.Int:
		return x.String()
	case common.Address:
		return x.Hex()
	case []common.Address:
		parts := make([]string, len(x))
		for i, a := range x {
			parts[i] = a.Hex()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}
