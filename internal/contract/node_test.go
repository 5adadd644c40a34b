package contract_test

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bigincgenesis/bigcli/internal/contract"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/require"
)

// fakeNode is a JSON-RPC server that answers eth_call by selector and
// records raw transactions.
type fakeNode struct {
	t   *testing.T
	srv *httptest.Server

	mu      sync.Mutex
	outputs map[string][]byte // selector -> ABI-encoded return data
	callErr string
	sendErr string
	calls   []string // selectors seen by eth_call
	sent    []*types.Transaction
}

func newFakeNode(t *testing.T) *fakeNode {
	t.Helper()
	n := &fakeNode{t: t, outputs: map[string][]byte{}}
	n.srv = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.srv.Close)
	return n
}

// returns registers the packed outputs of m.
func (n *fakeNode) returns(m contract.Method, values ...any) {
	n.t.Helper()
	parsed, err := contract.ABI(m.Contract)
	require.NoError(n.t, err)
	out, err := parsed.Methods[m.Name].Outputs.Pack(values...)
	require.NoError(n.t, err)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.outputs[m.Selector()] = out
}

func (n *fakeNode) failCalls(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.callErr = msg
}

func (n *fakeNode) failSends(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sendErr = msg
}

func (n *fakeNode) callCount(m contract.Method) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, sel := range n.calls {
		if sel == m.Selector() {
			c++
		}
	}
	return c
}

func (n *fakeNode) totalCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func (n *fakeNode) sentTxs() []*types.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*types.Transaction(nil), n.sent...)
}

func (n *fakeNode) backend() *ethclient.Client {
	n.t.Helper()
	c, err := ethclient.DialContext(context.Background(), n.srv.URL)
	require.NoError(n.t, err)
	n.t.Cleanup(c.Close)
	return c
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
	case "eth_getCode":
		return "0x6001", ""
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
		n.calls = append(n.calls, sel)
		if n.callErr != "" {
			return nil, n.callErr
		}
		out, ok := n.outputs[sel]
		if !ok {
			return nil, "execution reverted: unknown selector " + sel
		}
		return hexutil.Encode(out), ""
	case "eth_sendRawTransaction":
		if n.sendErr != "" {
			return nil, n.sendErr
		}
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
		return tx.Hash().Hex(), ""
	}
	return nil, "method not found: " + strings.TrimSpace(method)
}

// testSigner returns transact options that skip gas estimation and nonce
// lookups so the fake node only has to accept the raw transaction.
func testSigner(t *testing.T) (*bind.TransactOpts, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	opts, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(31337))
	require.NoError(t, err)
	opts.GasPrice = big.NewInt(1_000_000_000)
	opts.GasLimit = 200_000
	opts.Nonce = big.NewInt(0)
	return opts, key
}
