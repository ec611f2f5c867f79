package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/rxtech-lab/collection-search-mcp/internal/utils"
)

// ContractCaller executes a read-only contract call and returns the raw
// 0x-prefixed hex return data. Endpoint failures are reported as
// *utils.RPCError.
type ContractCaller interface {
	CallContract(ctx context.Context, to common.Address, data []byte) (string, error)
}

// CallerDialer opens a ContractCaller for an RPC endpoint. The returned
// function releases the connection.
type CallerDialer func(ctx context.Context, rpcURL string) (ContractCaller, func(), error)

type rpcCaller struct {
	client *utils.RPCClient
}

// NewRPCCaller returns a ContractCaller backed by the plain JSON-RPC client.
func NewRPCCaller(client *utils.RPCClient) ContractCaller {
	return &rpcCaller{client: client}
}

func (c *rpcCaller) CallContract(ctx context.Context, to common.Address, data []byte) (string, error) {
	return c.client.EthCall(ctx, to, data)
}

// NewRPCCallerDialer returns a dialer for JSON-RPC callers with the given
// request timeout.
func NewRPCCallerDialer(timeout time.Duration) CallerDialer {
	return func(ctx context.Context, rpcURL string) (ContractCaller, func(), error) {
		if rpcURL == "" {
			return nil, nil, fmt.Errorf("rpc url is required")
		}
		client := utils.NewRPCClient(rpcURL)
		if timeout > 0 {
			client.SetTimeout(timeout)
		}
		return NewRPCCaller(client), func() {}, nil
	}
}

type ethClientCaller struct {
	client *ethclient.Client
}

// DialEthClientCaller dials rpcURL with go-ethereum's ethclient.
func DialEthClientCaller(ctx context.Context, rpcURL string) (ContractCaller, func(), error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}
	return &ethClientCaller{client: client}, client.Close, nil
}

func (c *ethClientCaller) CallContract(ctx context.Context, to common.Address, data []byte) (string, error) {
	out, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		var rpcErr gethrpc.Error
		if errors.As(err, &rpcErr) {
			return "", &utils.RPCError{Code: rpcErr.ErrorCode(), Message: rpcErr.Error()}
		}
		return "", err
	}
	return hexutil.Encode(out), nil
}
