package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// RPCClient represents an Ethereum JSON-RPC client
type RPCClient struct {
	URL     string
	client  *http.Client
	timeout time.Duration
	nextID  atomic.Int64
}

// NewRPCClient creates a new RPC client with the given URL
func NewRPCClient(url string) *RPCClient {
	return &RPCClient{
		URL:     url,
		client:  &http.Client{},
		timeout: 30 * time.Second,
	}
}

// SetTimeout sets the timeout for RPC requests
func (r *RPCClient) SetTimeout(timeout time.Duration) {
	r.timeout = timeout
	r.client.Timeout = timeout
}

// JSONRPCRequest represents a JSON-RPC request
type JSONRPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int64         `json:"id"`
}

// JSONRPCResponse represents a JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is an error reported by the JSON-RPC endpoint itself.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("RPC error %d: %s (%s)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// CallMsg is the transaction object of an eth_call request
type CallMsg struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Data string `json:"data"`
}

// Call makes a JSON-RPC call. An error object in the response is returned as
// *RPCError.
func (r *RPCClient) Call(ctx context.Context, method string, params []interface{}) (*JSONRPCResponse, error) {
	if params == nil {
		params = []interface{}{}
	}
	request := JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      r.nextID.Add(1),
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var response JSONRPCResponse
	if err := json.Unmarshal(body, &response); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected HTTP status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if response.Error != nil {
		return nil, response.Error
	}

	return &response, nil
}

// EthCall executes a read-only call against the latest block and returns the
// hex-encoded return data.
func (r *RPCClient) EthCall(ctx context.Context, to common.Address, data []byte) (string, error) {
	msg := CallMsg{
		To:   to.Hex(),
		Data: hexutil.Encode(data),
	}
	response, err := r.Call(ctx, "eth_call", []interface{}{msg, "latest"})
	if err != nil {
		return "", err
	}

	var result string
	if err := json.Unmarshal(response.Result, &result); err != nil {
		return "", fmt.Errorf("invalid eth_call result: %w", err)
	}
	if !strings.HasPrefix(result, "0x") {
		return "", fmt.Errorf("invalid eth_call result %q: missing 0x prefix", result)
	}
	return result, nil
}

// ChainID returns the chain ID reported by eth_chainId in decimal form.
func (r *RPCClient) ChainID(ctx context.Context) (string, error) {
	response, err := r.Call(ctx, "eth_chainId", nil)
	if err != nil {
		return "", err
	}

	var raw string
	if err := json.Unmarshal(response.Result, &raw); err != nil {
		return "", fmt.Errorf("invalid chain ID format: %w", err)
	}

	// Some nodes answer in decimal
	if !strings.HasPrefix(raw, "0x") {
		if _, ok := new(big.Int).SetString(raw, 10); !ok {
			return "", fmt.Errorf("invalid chain ID: %q", raw)
		}
		return raw, nil
	}

	id, err := hexutil.DecodeBig(raw)
	if err != nil {
		return "", fmt.Errorf("invalid chain ID %q: %w", raw, err)
	}
	return id.String(), nil
}
