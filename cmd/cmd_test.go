package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/bigincgenesis/bigcli/internal/contract"
	"github.com/bigincgenesis/bigcli/internal/wallet"
)

const (
	genesisAddr = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	usdtAddr    = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
	testKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddr    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// run executes the root command against a fresh config directory state.
// Flag values from earlier runs are reset first.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(wallet.EnvKeyringBackend, "file")
	t.Setenv(wallet.EnvKeyringPassword, "test-password")

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", dir}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// fakeNode answers eth_call by selector and accepts signed transactions,
// mining each one immediately.
type fakeNode struct {
	t   *testing.T
	srv *httptest.Server

	mu      sync.Mutex
	outputs map[string][]byte
	calls   map[string]int
	onSend  map[string]map[string][]byte
	sent    []*types.Transaction
}

func newFakeNode(t *testing.T) *fakeNode {
	t.Helper()
	n := &fakeNode{
		t:       t,
		outputs: map[string][]byte{},
		calls:   map[string]int{},
		onSend:  map[string]map[string][]byte{},
	}
	n.srv = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.srv.Close)
	return n
}

func (n *fakeNode) URL() string { return n.srv.URL }

func (n *fakeNode) pack(m contract.Method, values ...any) []byte {
	n.t.Helper()
	parsed, err := contract.ABI(m.Contract)
	require.NoError(n.t, err)
	out, err := parsed.Methods[m.Name].Outputs.Pack(values...)
	require.NoError(n.t, err)
	return out
}

func (n *fakeNode) returns(m contract.Method, values ...any) {
	n.t.Helper()
	out := n.pack(m, values...)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.outputs[m.Selector()] = out
}

// whenSent makes m return values once a transaction calling sent arrives.
func (n *fakeNode) whenSent(sent, m contract.Method, values ...any) {
	n.t.Helper()
	out := n.pack(m, values...)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.onSend[sent.Selector()] == nil {
		n.onSend[sent.Selector()] = map[string][]byte{}
	}
	n.onSend[sent.Selector()][m.Selector()] = out
}

func (n *fakeNode) sentTxs() []*types.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*types.Transaction(nil), n.sent...)
}

func (n *fakeNode) callCount(m contract.Method) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[m.Selector()]
}

func (n *fakeNode) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage   `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	result, rpcErr := n.handle(req.Method, req.Params)
	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != "" {
		resp["error"] = map[string]any{"code": -32000, "message": rpcErr}
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

func (n *fakeNode) handle(method string, params []json.RawMessage) (any, string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch method {
	case "eth_chainId":
		return "0x7a69", ""
	case "eth_blockNumber":
		return "0x10", ""
	case "eth_call":
		var arg struct {
			Input hexutil.Bytes `json:"input"`
			Data  hexutil.Bytes `json:"data"`
		}
		if len(params) == 0 || json.Unmarshal(params[0], &arg) != nil {
			return nil, "invalid params"
		}
		data := arg.Input
		if len(data) == 0 {
			data = arg.Data
		}
		if len(data) < 4 {
			return nil, "missing selector"
		}
		sel := hexutil.Encode(data[:4])
		n.calls[sel]++
		out, ok := n.outputs[sel]
		if !ok {
			return nil, "execution reverted: unknown selector " + sel
		}
		return hexutil.Encode(out), ""
	case "eth_getCode":
		return "0x6001", ""
	case "eth_getTransactionCount":
		return hexutil.EncodeUint64(uint64(len(n.sent))), ""
	case "eth_gasPrice":
		return "0x3b9aca00", ""
	case "eth_estimateGas":
		return "0x30d40", ""
	case "eth_getBlockByNumber":
		// Pre-London header: no base fee, so transactions are legacy.
		return map[string]any{
			"parentHash":       zeroHash,
			"sha3Uncles":       zeroHash,
			"miner":            common.Address{}.Hex(),
			"stateRoot":        zeroHash,
			"transactionsRoot": zeroHash,
			"receiptsRoot":     zeroHash,
			"logsBloom":        zeroBloom,
			"difficulty":       "0x0",
			"number":           "0x10",
			"gasLimit":         "0x1c9c380",
			"gasUsed":          "0x0",
			"timestamp":        "0x0",
			"extraData":        "0x",
			"mixHash":          zeroHash,
			"nonce":            "0x0000000000000000",
		}, ""
	case "eth_sendRawTransaction":
		var raw string
		if len(params) == 0 || json.Unmarshal(params[0], &raw) != nil {
			return nil, "invalid params"
		}
		b, err := hexutil.Decode(raw)
		if err != nil {
			return nil, err.Error()
		}
		tx := new(types.Transaction)
		if err := tx.UnmarshalBinary(b); err != nil {
			return nil, err.Error()
		}
		n.sent = append(n.sent, tx)
		if len(tx.Data()) >= 4 {
			for sel, out := range n.onSend[hexutil.Encode(tx.Data()[:4])] {
				n.outputs[sel] = out
			}
		}
		return tx.Hash().Hex(), ""
	case "eth_getTransactionReceipt":
		var hash common.Hash
		if len(params) == 0 || json.Unmarshal(params[0], &hash) != nil {
			return nil, "invalid params"
		}
		for _, tx := range n.sent {
			if tx.Hash() == hash {
				return map[string]any{
					"type":              "0x0",
					"status":            "0x1",
					"cumulativeGasUsed": "0x30d40",
					"gasUsed":           "0x30d40",
					"effectiveGasPrice": "0x3b9aca00",
					"logsBloom":         zeroBloom,
					"logs":              []any{},
					"transactionHash":   hash.Hex(),
					"blockHash":         zeroHash,
					"blockNumber":       "0x11",
					"transactionIndex":  "0x0",
				}, ""
			}
		}
		return nil, ""
	}
	return nil, "method not found: " + method
}

var (
	zeroHash  = common.Hash{}.Hex()
	zeroBloom = hexutil.Encode(make([]byte, types.BloomByteLength))
)
