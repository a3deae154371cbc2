// Package rpc provides a minimal EVM JSON-RPC client for burner.
//
// The client is deliberately thin: one HTTP POST per call, no connection
// pooling, no retries. Network failures propagate unchanged to the caller.
// The endpoint URL is supplied at construction and threaded explicitly
// through every operation that needs it.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Default timing for receipt polling. ConfirmTimeout is a conservative
// upper bound for a transaction to be mined on a public network.
const (
	ReceiptPollInterval = 2 * time.Second
	ConfirmTimeout      = 3 * time.Minute
)

// Client is a client for EVM JSON-RPC.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

// NewClient creates a new EVM JSON-RPC client for the given endpoint URL.
func NewClient(endpoint string) *Client {
	return &Client{
		Endpoint: endpoint,
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// jsonRPCRequest represents a JSON-RPC request.
type jsonRPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// jsonRPCResponse represents a JSON-RPC response.
type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *jsonRPCError   `json:"error,omitempty"`
	ID      int             `json:"id"`
}

// jsonRPCError represents a JSON-RPC error.
type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// call makes a JSON-RPC call.
func (c *Client) call(ctx context.Context, method string, params []interface{}) (*jsonRPCResponse, error) {
	req := jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.Endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, c.Endpoint)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var rpcResp jsonRPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, fmt.Errorf("RPC error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	return &rpcResp, nil
}

// resultBig decodes a quantity-encoded (0x-hex) result into a big.Int.
func resultBig(resp *jsonRPCResponse, what string) (*big.Int, error) {
	var hexVal string
	if err := json.Unmarshal(resp.Result, &hexVal); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", what, err)
	}
	v, err := hexutil.DecodeBig(hexVal)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s %q: %w", what, hexVal, err)
	}
	return v, nil
}

// ChainID fetches the chain ID via eth_chainId.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	resp, err := c.call(ctx, "eth_chainId", []interface{}{})
	if err != nil {
		return nil, err
	}
	return resultBig(resp, "chain ID")
}

// BalanceAt fetches the latest wei balance of an address via eth_getBalance.
func (c *Client) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	resp, err := c.call(ctx, "eth_getBalance", []interface{}{addr.Hex(), "latest"})
	if err != nil {
		return nil, err
	}
	return resultBig(resp, "balance")
}

// NonceAt fetches the pending nonce of an address via eth_getTransactionCount.
func (c *Client) NonceAt(ctx context.Context, addr common.Address) (uint64, error) {
	resp, err := c.call(ctx, "eth_getTransactionCount", []interface{}{addr.Hex(), "pending"})
	if err != nil {
		return 0, err
	}
	v, err := resultBig(resp, "nonce")
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// GasPrice fetches the current gas price via eth_gasPrice.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	resp, err := c.call(ctx, "eth_gasPrice", []interface{}{})
	if err != nil {
		return nil, err
	}
	return resultBig(resp, "gas price")
}

// SendRawTransaction submits a signed, RLP-encoded transaction via
// eth_sendRawTransaction and returns the transaction hash.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	resp, err := c.call(ctx, "eth_sendRawTransaction", []interface{}{hexutil.Encode(raw)})
	if err != nil {
		return common.Hash{}, err
	}

	var hexHash string
	if err := json.Unmarshal(resp.Result, &hexHash); err != nil {
		return common.Hash{}, fmt.Errorf("failed to parse transaction hash: %w", err)
	}
	return common.HexToHash(hexHash), nil
}

// Receipt holds the subset of a transaction receipt burner cares about.
type Receipt struct {
	TxHash      common.Hash
	Status      uint64
	BlockNumber uint64
	GasUsed     uint64
}

// receiptJSON mirrors the wire shape of eth_getTransactionReceipt.
type receiptJSON struct {
	TransactionHash string `json:"transactionHash"`
	Status          string `json:"status"`
	BlockNumber     string `json:"blockNumber"`
	GasUsed         string `json:"gasUsed"`
}

// TransactionReceipt fetches the receipt for a transaction hash.
// Returns (nil, nil) when the transaction is not yet mined.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	resp, err := c.call(ctx, "eth_getTransactionReceipt", []interface{}{hash.Hex()})
	if err != nil {
		return nil, err
	}

	if string(resp.Result) == "null" || len(resp.Result) == 0 {
		return nil, nil
	}

	var raw receiptJSON
	if err := json.Unmarshal(resp.Result, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse receipt: %w", err)
	}

	receipt := &Receipt{TxHash: common.HexToHash(raw.TransactionHash)}
	if raw.Status != "" {
		v, err := hexutil.DecodeUint64(raw.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to decode receipt status %q: %w", raw.Status, err)
		}
		receipt.Status = v
	}
	if raw.BlockNumber != "" {
		v, err := hexutil.DecodeUint64(raw.BlockNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to decode receipt block number %q: %w", raw.BlockNumber, err)
		}
		receipt.BlockNumber = v
	}
	if raw.GasUsed != "" {
		v, err := hexutil.DecodeUint64(raw.GasUsed)
		if err != nil {
			return nil, fmt.Errorf("failed to decode receipt gas used %q: %w", raw.GasUsed, err)
		}
		receipt.GasUsed = v
	}

	return receipt, nil
}

// WaitForReceipt polls for a transaction receipt until it appears, the
// context is cancelled, or ConfirmTimeout elapses.
func (c *Client) WaitForReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(ReceiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.TransactionReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for receipt of %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// ClientVersion fetches the client version via web3_clientVersion.
func (c *Client) ClientVersion(ctx context.Context) (string, error) {
	resp, err := c.call(ctx, "web3_clientVersion", []interface{}{})
	if err != nil {
		return "", err
	}

	var version string
	if err := json.Unmarshal(resp.Result, &version); err != nil {
		return "", fmt.Errorf("failed to parse client version: %w", err)
	}

	return version, nil
}
