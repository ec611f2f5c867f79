package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rxtech-lab/collection-search-mcp/internal/codec"
	"github.com/rxtech-lab/collection-search-mcp/internal/contracts"
	"github.com/rxtech-lab/collection-search-mcp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNode(t *testing.T, result string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func sampleResult(t *testing.T) string {
	encoded, err := codec.Encode(contracts.CollectionResultsToValue([]models.CollectionResult{
		{
			CollectionAddress: common.HexToAddress(defaultCollections[0]),
			Name:              "Porcini Pets",
			Tokens:            []models.TokenRecord{{ID: big.NewInt(11), URI: "ipfs://pets/11.json"}},
		},
		{
			CollectionAddress: common.HexToAddress(defaultCollections[1]),
			Name:              "Items",
			Tokens:            []models.TokenRecord{},
		},
	}))
	require.NoError(t, err)
	return hexutil.Encode(encoded)
}

func defaultOptions(rpc string) *searchOptions {
	return &searchOptions{
		rpc:         rpc,
		contract:    defaultContract,
		collections: defaultCollections,
		owner:       defaultOwner,
		limit:       "100",
		timeout:     5 * time.Second,
	}
}

func TestRunSearch(t *testing.T) {
	node := newNode(t, sampleResult(t))

	for _, useEthClient := range []bool{false, true} {
		opts := defaultOptions(node.URL)
		opts.ethclient = useEthClient

		var out bytes.Buffer
		require.NoError(t, runSearch(context.Background(), opts, &out))

		var results []struct {
			Name   string `json:"name"`
			Tokens []struct {
				ID  string `json:"id"`
				URI string `json:"uri"`
			} `json:"tokens"`
		}
		require.NoError(t, json.Unmarshal(out.Bytes(), &results))
		require.Len(t, results, 2)
		assert.Equal(t, "Porcini Pets", results[0].Name)
		assert.Equal(t, "11", results[0].Tokens[0].ID)
		assert.Empty(t, results[1].Tokens)
		assert.Contains(t, out.String(), "\n  ")
	}
}

func TestRunSearchEmptyResponse(t *testing.T) {
	node := newNode(t, "0x")

	var out bytes.Buffer
	require.NoError(t, runSearch(context.Background(), defaultOptions(node.URL), &out))
	assert.Equal(t, "[]\n", out.String())
}

func TestRunSearchInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *searchOptions)
	}{
		{"bad contract", func(o *searchOptions) { o.contract = "0x12" }},
		{"bad owner", func(o *searchOptions) { o.owner = "owner" }},
		{"bad collection", func(o *searchOptions) { o.collections = []string{"0xzz"} }},
		{"bad limit", func(o *searchOptions) { o.limit = "ten" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions("http://127.0.0.1:1")
			tt.mutate(opts)
			assert.Error(t, runSearch(context.Background(), opts, &bytes.Buffer{}))
		})
	}
}

func TestRootCommandFlags(t *testing.T) {
	t.Setenv("SEARCH_OWNER_ADDRESS", "0x0000000000000000000000000000000000000001")
	node := newNode(t, "0x")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"--rpc", node.URL,
		"--collection", defaultCollections[0],
		"--limit", "0x10",
	})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "[]\n", out.String())

	owner, err := cmd.Flags().GetString("owner")
	require.NoError(t, err)
	assert.Equal(t, "0x0000000000000000000000000000000000000001", owner)

	collections, err := cmd.Flags().GetStringArray("collection")
	require.NoError(t, err)
	assert.Equal(t, []string{defaultCollections[0]}, collections)
}
