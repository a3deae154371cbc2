// Package rpctest provides a fake in-process EVM JSON-RPC node for tests.
package rpctest

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Node is a fake JSON-RPC node backed by in-memory state. Serve it with
// net/http/httptest and point a rpc.Client at the test server URL.
type Node struct {
	mu sync.Mutex

	ChainID  *big.Int
	GasPrice *big.Int
	Balances map[common.Address]*big.Int
	Nonces   map[common.Address]uint64

	// PendingPolls is the number of eth_getTransactionReceipt calls that
	// return null before the receipt appears.
	PendingPolls int

	// Sent collects every transaction accepted via eth_sendRawTransaction.
	Sent []*types.Transaction

	receiptPolls int
}

// NewNode returns a Node with a chain ID of 1 and a 1 gwei gas price.
func NewNode() *Node {
	return &Node{
		ChainID:  big.NewInt(1),
		GasPrice: big.NewInt(1_000_000_000),
		Balances: make(map[common.Address]*big.Int),
		Nonces:   make(map[common.Address]uint64),
	}
}

type request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     int               `json:"id"`
}

// ServeHTTP implements http.Handler for the JSON-RPC surface burner uses.
func (n *Node) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch req.Method {
	case "eth_chainId":
		n.result(w, req.ID, hexutil.EncodeBig(n.ChainID))
	case "eth_gasPrice":
		n.result(w, req.ID, hexutil.EncodeBig(n.GasPrice))
	case "eth_getBalance":
		addr := n.addrParam(req, 0)
		bal, ok := n.Balances[addr]
		if !ok {
			bal = new(big.Int)
		}
		n.result(w, req.ID, hexutil.EncodeBig(bal))
	case "eth_getTransactionCount":
		addr := n.addrParam(req, 0)
		n.result(w, req.ID, hexutil.EncodeUint64(n.Nonces[addr]))
	case "eth_sendRawTransaction":
		var rawHex string
		json.Unmarshal(req.Params[0], &rawHex)
		raw, err := hexutil.Decode(rawHex)
		if err != nil {
			n.rpcError(w, req.ID, -32602, fmt.Sprintf("bad raw tx: %v", err))
			return
		}
		tx := new(types.Transaction)
		if err := tx.UnmarshalBinary(raw); err != nil {
			n.rpcError(w, req.ID, -32602, fmt.Sprintf("undecodable tx: %v", err))
			return
		}
		n.Sent = append(n.Sent, tx)
		n.result(w, req.ID, tx.Hash().Hex())
	case "eth_getTransactionReceipt":
		if n.receiptPolls < n.PendingPolls {
			n.receiptPolls++
			n.rawResult(w, req.ID, json.RawMessage("null"))
			return
		}
		var hash string
		json.Unmarshal(req.Params[0], &hash)
		n.result(w, req.ID, map[string]string{
			"transactionHash": hash,
			"status":          "0x1",
			"blockNumber":     "0x10",
			"gasUsed":         "0x5208",
		})
	case "web3_clientVersion":
		n.result(w, req.ID, "rpctest/0.0.0")
	default:
		n.rpcError(w, req.ID, -32601, "method not found: "+req.Method)
	}
}

// LastSent returns the most recently submitted transaction, or nil.
func (n *Node) LastSent() *types.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Sent) == 0 {
		return nil
	}
	return n.Sent[len(n.Sent)-1]
}

func (n *Node) addrParam(req request, i int) common.Address {
	var s string
	json.Unmarshal(req.Params[i], &s)
	return common.HexToAddress(s)
}

func (n *Node) result(w http.ResponseWriter, id int, result interface{}) {
	raw, _ := json.Marshal(result)
	n.rawResult(w, id, raw)
}

func (n *Node) rawResult(w http.ResponseWriter, id int, result json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}

func (n *Node) rpcError(w http.ResponseWriter, id, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   map[string]interface{}{"code": code, "message": msg},
	})
}
