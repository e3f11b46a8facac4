package transfer_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voltpay/voltcli/internal/chain"
	"github.com/voltpay/voltcli/internal/contract"
	"github.com/voltpay/voltcli/internal/transfer"
	"github.com/voltpay/voltcli/internal/wallet"
)

const (
	contractAddr = "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"
	recipient    = "0xC4C7AACE8A168B7DCdD0dD0bded0D1F329aaD1dc"
	// Hardhat dev key 0.
	testKey  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

	txHash = "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b"
)

// rpcRecorder serves canned JSON-RPC responses and records every method
// called, so tests can assert what did (or did not) reach the network.
type rpcRecorder struct {
	mu      sync.Mutex
	methods []string
	receipt interface{} // result for eth_getTransactionReceipt
}

func (rec *rpcRecorder) calls(method string) int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	n := 0
	for _, m := range rec.methods {
		if m == method {
			n++
		}
	}
	return n
}

func (rec *rpcRecorder) serve(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string        `json:"method"`
			ID     int           `json:"id"`
			Params []interface{} `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		rec.mu.Lock()
		rec.methods = append(rec.methods, req.Method)
		receipt := rec.receipt
		rec.mu.Unlock()

		var result interface{}
		switch req.Method {
		case "eth_estimateGas":
			result = "0xea60" // 60000
		case "eth_gasPrice":
			result = "0x3b9aca00" // 1 gwei
		case "eth_getTransactionCount":
			result = "0x0"
		case "eth_chainId":
			result = "0xaa36a7" // sepolia
		case "eth_sendRawTransaction":
			result = txHash
		case "eth_getTransactionReceipt":
			result = receipt
		default:
			t.Fatalf("unexpected RPC method: %s", req.Method)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
}

func newSigner(t *testing.T) *wallet.Signer {
	t.Helper()
	ks := wallet.NewInMemoryKeystore()
	ref, err := ks.Store(testAddr, testKey)
	require.NoError(t, err)
	return wallet.NewSigner(testAddr, ref, ks)
}

func newInitiator(srvURL string) *transfer.Initiator {
	return transfer.New(
		chain.NewClient(srvURL),
		contractAddr,
		contract.ChargeTokenABI,
		transfer.WithConfirmTimeout(2*time.Second, 10*time.Millisecond),
	)
}

// ---------------------------------------------------------------------------
// validation
// ---------------------------------------------------------------------------

func TestSubmitTransferMalformedRecipient(t *testing.T) {
	rec := &rpcRecorder{}
	srv := rec.serve(t)
	defer srv.Close()

	init := newInitiator(srv.URL)

	for _, bad := range []string{"", "0x1234", "not-an-address", "0xZZZ7AACE8A168B7DCdD0dD0bded0D1F329aaD1dc"} {
		_, err := init.SubmitTransfer(context.Background(), newSigner(t), bad, big.NewInt(5))
		assert.ErrorIs(t, err, transfer.ErrInvalidRecipient, "recipient %q", bad)
	}

	// Validation failures never reach the network.
	assert.Zero(t, rec.calls("eth_sendRawTransaction"))
	assert.Empty(t, rec.methods)
}

func TestSubmitTransferNegativeAmount(t *testing.T) {
	rec := &rpcRecorder{}
	srv := rec.serve(t)
	defer srv.Close()

	init := newInitiator(srv.URL)

	_, err := init.SubmitTransfer(context.Background(), newSigner(t), recipient, big.NewInt(-1))
	assert.ErrorIs(t, err, transfer.ErrInvalidAmount)

	_, err = init.SubmitTransfer(context.Background(), newSigner(t), recipient, nil)
	assert.ErrorIs(t, err, transfer.ErrInvalidAmount)

	assert.Empty(t, rec.methods)
}

// ---------------------------------------------------------------------------
// end-to-end scenarios
// ---------------------------------------------------------------------------

func TestTransferConfirmed(t *testing.T) {
	rec := &rpcRecorder{receipt: map[string]string{
		"status":      "0x1",
		"blockNumber": "0x10",
		"gasUsed":     "0xc350",
	}}
	srv := rec.serve(t)
	defer srv.Close()

	init := newInitiator(srv.URL)

	pending, err := init.SubmitTransfer(context.Background(), newSigner(t), recipient, big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, transfer.StateSubmitted, pending.State())
	assert.NotEmpty(t, pending.Hash)

	receipt, err := init.AwaitConfirmation(context.Background(), pending)
	require.NoError(t, err)
	assert.Equal(t, transfer.StateConfirmed, pending.State())
	assert.Equal(t, txHash, receipt.TxHash)
	assert.NotEmpty(t, receipt.TxHash)
	assert.Equal(t, uint64(16), receipt.BlockNumber)

	assert.Equal(t, 1, rec.calls("eth_sendRawTransaction"))
}

func TestTransferRejected(t *testing.T) {
	rec := &rpcRecorder{receipt: map[string]string{
		"status":      "0x0",
		"blockNumber": "0x10",
		"gasUsed":     "0xc350",
	}}
	srv := rec.serve(t)
	defer srv.Close()

	init := newInitiator(srv.URL)

	pending, err := init.SubmitTransfer(context.Background(), newSigner(t), recipient, big.NewInt(5))
	require.NoError(t, err)

	receipt, err := init.AwaitConfirmation(context.Background(), pending)
	assert.ErrorIs(t, err, transfer.ErrTransactionRejected)
	assert.Nil(t, receipt)
	assert.Equal(t, transfer.StateRejected, pending.State())

	// The flow is re-enterable after a rejection.
	pending2, err := init.SubmitTransfer(context.Background(), newSigner(t), recipient, big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, transfer.StateSubmitted, pending2.State())
}

func TestTransferTimesOut(t *testing.T) {
	rec := &rpcRecorder{receipt: nil} // never mined
	srv := rec.serve(t)
	defer srv.Close()

	init := transfer.New(
		chain.NewClient(srv.URL),
		contractAddr,
		contract.ChargeTokenABI,
		transfer.WithConfirmTimeout(50*time.Millisecond, 10*time.Millisecond),
	)

	pending, err := init.SubmitTransfer(context.Background(), newSigner(t), recipient, big.NewInt(5))
	require.NoError(t, err)

	_, err = init.AwaitConfirmation(context.Background(), pending)
	assert.ErrorIs(t, err, transfer.ErrNetworkUnavailable)
	assert.Equal(t, transfer.StateTimedOut, pending.State())
}

// ---------------------------------------------------------------------------
// serialization
// ---------------------------------------------------------------------------

func TestSecondSubmitWhileInFlight(t *testing.T) {
	rec := &rpcRecorder{receipt: map[string]string{"status": "0x1", "blockNumber": "0x10", "gasUsed": "0xc350"}}
	srv := rec.serve(t)
	defer srv.Close()

	init := newInitiator(srv.URL)

	pending, err := init.SubmitTransfer(context.Background(), newSigner(t), recipient, big.NewInt(5))
	require.NoError(t, err)
	assert.True(t, init.InFlight())

	_, err = init.SubmitTransfer(context.Background(), newSigner(t), recipient, big.NewInt(5))
	assert.ErrorIs(t, err, transfer.ErrTransferInFlight)

	_, err = init.AwaitConfirmation(context.Background(), pending)
	require.NoError(t, err)
	assert.False(t, init.InFlight())

	// Resolved; a new transfer may start.
	_, err = init.SubmitTransfer(context.Background(), newSigner(t), recipient, big.NewInt(1))
	require.NoError(t, err)
}

func TestFailedSubmitReleasesGuard(t *testing.T) {
	// Server that errors on broadcast.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int    `json:"id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")

		if req.Method == "eth_sendRawTransaction" {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0", "id": req.ID,
				"error": map[string]interface{}{"code": -32000, "message": "nonce too low"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0", "id": req.ID, "result": "0x1",
		})
	}))
	defer srv.Close()

	init := newInitiator(srv.URL)

	_, err := init.SubmitTransfer(context.Background(), newSigner(t), recipient, big.NewInt(5))
	require.Error(t, err)
	assert.False(t, init.InFlight())
}

// ---------------------------------------------------------------------------
// calldata on the wire
// ---------------------------------------------------------------------------

func TestSubmittedTransactionTargetsContract(t *testing.T) {
	var rawTx string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string        `json:"method"`
			ID     int           `json:"id"`
			Params []interface{} `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var result interface{}
		switch req.Method {
		case "eth_estimateGas":
			result = "0xea60"
		case "eth_gasPrice":
			result = "0x3b9aca00"
		case "eth_getTransactionCount":
			result = "0x0"
		case "eth_chainId":
			result = "0xaa36a7"
		case "eth_sendRawTransaction":
			rawTx = req.Params[0].(string)
			result = txHash
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0", "id": req.ID, "result": result,
		})
	}))
	defer srv.Close()

	init := newInitiator(srv.URL)
	_, err := init.SubmitTransfer(context.Background(), newSigner(t), recipient, big.NewInt(5))
	require.NoError(t, err)
	require.NotEmpty(t, rawTx)

	decoded := decodeRawTx(t, rawTx)
	assert.Equal(t, contractAddr, decoded.To().Hex())
	// transfer(recipient, 5)
	data := decoded.Data()
	assert.Equal(t, []byte{0xa9, 0x05, 0x9c, 0xbb}, data[:4])
	assert.Equal(t, byte(5), data[len(data)-1])
}

func decodeRawTx(t *testing.T, raw string) *types.Transaction {
	t.Helper()
	b, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
	require.NoError(t, err)
	var tx types.Transaction
	require.NoError(t, tx.UnmarshalBinary(b))
	return &tx
}
