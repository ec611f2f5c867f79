package services

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rxtech-lab/collection-search-mcp/internal/codec"
	"github.com/rxtech-lab/collection-search-mcp/internal/contracts"
	"github.com/rxtech-lab/collection-search-mcp/internal/models"
	"github.com/rxtech-lab/collection-search-mcp/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	searchContract = common.HexToAddress("0x130Db38980De698796F01873C4a28B3581428422")
	ownerAddress   = common.HexToAddress("0x81f85e63Ce049a6f72f78C4A60b8186e04EbC215")
	erc721Pets     = common.HexToAddress("0xfc3De4990a8EBe9C8dEbd7C826936Eb62Ef457B4")
	erc721Items    = common.HexToAddress("0xc6851Cd880B742163B09377Ee4092Bcd7e2266b4")
)

// fakeNode is a minimal JSON-RPC endpoint answering eth_call.
type fakeNode struct {
	mu       sync.Mutex
	result   string
	rpcErr   *utils.RPCError
	calls    int
	lastCall map[string]interface{}
}

func (n *fakeNode) serve(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		n.mu.Lock()
		switch {
		case req.Method != "eth_call":
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
		case n.rpcErr != nil:
			resp["error"] = n.rpcErr
		default:
			n.calls++
			var call map[string]interface{}
			if len(req.Params) > 0 {
				_ = json.Unmarshal(req.Params[0], &call)
			}
			n.lastCall = call
			resp["result"] = n.result
		}
		n.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

// calldata returns the hex calldata the node received, whichever field the
// client used for it.
func (n *fakeNode) calldata() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, key := range []string{"data", "input"} {
		if v, ok := n.lastCall[key].(string); ok {
			return v
		}
	}
	return ""
}

func sampleQuery() models.FindByOwnerQuery {
	return models.FindByOwnerQuery{
		Collections: []common.Address{erc721Pets, erc721Items},
		Owner:       ownerAddress,
		Limit:       big.NewInt(100),
	}
}

func sampleResponse(t *testing.T) string {
	t.Helper()
	encoded, err := codec.Encode(contracts.CollectionResultsToValue([]models.CollectionResult{
		{
			CollectionAddress: erc721Pets,
			Name:              "Porcini Pets",
			Tokens: []models.TokenRecord{
				{ID: big.NewInt(1), URI: "ipfs://QmLongerUriForTheFirstToken/1.json"},
				{ID: big.NewInt(42), URI: "ar://x"},
			},
		},
	}))
	require.NoError(t, err)
	return hexutil.Encode(encoded)
}

func newTestSearchService(t *testing.T, dial CallerDialer, chains ChainService) (SearchService, *SearchMetrics) {
	metrics := NewSearchMetrics(prometheus.NewRegistry())
	return NewSearchService(chains, dial, zaptest.NewLogger(t), metrics), metrics
}

func TestFindByOwner(t *testing.T) {
	dialers := map[string]CallerDialer{
		"json-rpc":  NewRPCCallerDialer(5 * time.Second),
		"ethclient": DialEthClientCaller,
	}

	for name, dial := range dialers {
		t.Run(name, func(t *testing.T) {
			node := &fakeNode{result: sampleResponse(t)}
			server := node.serve(t)
			service, metrics := newTestSearchService(t, dial, nil)

			results, err := service.FindByOwner(context.Background(), server.URL, searchContract, sampleQuery())
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, erc721Pets, results[0].CollectionAddress)
			assert.Equal(t, "Porcini Pets", results[0].Name)
			require.Len(t, results[0].Tokens, 2)
			assert.Equal(t, "42", results[0].Tokens[1].ID.String())
			assert.Equal(t, "ar://x", results[0].Tokens[1].URI)

			expected, err := contracts.EncodeFindByOwner(sampleQuery())
			require.NoError(t, err)
			assert.Equal(t, hexutil.Encode(expected), node.calldata())
			assert.Equal(t, 1, node.calls)

			assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Queries.WithLabelValues(OutcomeSuccess)))
			assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Results))
			assert.Equal(t, float64(2), testutil.ToFloat64(metrics.Tokens))
		})
	}
}

func TestFindByOwnerRPCError(t *testing.T) {
	dialers := map[string]CallerDialer{
		"json-rpc":  NewRPCCallerDialer(5 * time.Second),
		"ethclient": DialEthClientCaller,
	}

	for name, dial := range dialers {
		t.Run(name, func(t *testing.T) {
			node := &fakeNode{rpcErr: &utils.RPCError{Code: -32000, Message: "execution reverted"}}
			server := node.serve(t)
			service, metrics := newTestSearchService(t, dial, nil)

			results, err := service.FindByOwner(context.Background(), server.URL, searchContract, sampleQuery())
			require.Error(t, err)
			assert.Nil(t, results)

			var rpcErr *utils.RPCError
			require.ErrorAs(t, err, &rpcErr)
			assert.Equal(t, -32000, rpcErr.Code)
			assert.Contains(t, rpcErr.Message, "execution reverted")
			assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Queries.WithLabelValues(OutcomeRPCError)))
		})
	}
}

func TestFindByOwnerEmptyResponse(t *testing.T) {
	node := &fakeNode{result: "0x"}
	server := node.serve(t)
	service, _ := newTestSearchService(t, NewRPCCallerDialer(time.Second), nil)

	results, err := service.FindByOwner(context.Background(), server.URL, searchContract, sampleQuery())
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestFindByOwnerDecodeFailurePropagates(t *testing.T) {
	full := sampleResponse(t)
	node := &fakeNode{result: full[:len(full)-128]}
	server := node.serve(t)
	service, metrics := newTestSearchService(t, NewRPCCallerDialer(time.Second), nil)

	results, err := service.FindByOwner(context.Background(), server.URL, searchContract, sampleQuery())
	assert.ErrorIs(t, err, codec.ErrTruncatedData)
	assert.Nil(t, results)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Queries.WithLabelValues(OutcomeDecodeError)))
}

func TestFindByOwnerEncodeFailureSkipsCall(t *testing.T) {
	node := &fakeNode{result: "0x"}
	server := node.serve(t)
	service, metrics := newTestSearchService(t, NewRPCCallerDialer(time.Second), nil)

	query := sampleQuery()
	query.Limit = nil
	_, err := service.FindByOwner(context.Background(), server.URL, searchContract, query)
	assert.ErrorIs(t, err, codec.ErrTypeMismatch)
	assert.Equal(t, 0, node.calls)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Queries.WithLabelValues(OutcomeEncodeError)))
}

func TestFindByOwnerOnActiveChain(t *testing.T) {
	db, err := NewSqliteDBService(filepath.Join(t.TempDir(), "search.db"))
	require.NoError(t, err)
	defer db.Close()
	chains := NewChainService(db.GetDB())

	node := &fakeNode{result: sampleResponse(t)}
	server := node.serve(t)
	service, _ := newTestSearchService(t, NewRPCCallerDialer(time.Second), chains)

	_, _, err = service.FindByOwnerOnActiveChain(context.Background(), sampleQuery())
	assert.ErrorIs(t, err, ErrNoActiveChain)

	chain := &models.Chain{
		ChainType: models.ChainTypeEthereum,
		RPC:       server.URL,
		NetworkID: "7672",
		Name:      "Porcini",
	}
	require.NoError(t, chains.CreateChain(chain))
	require.NoError(t, chains.SetActiveChainByID(chain.ID))

	_, _, err = service.FindByOwnerOnActiveChain(context.Background(), sampleQuery())
	assert.ErrorContains(t, err, "no valid search contract")

	_, err = chains.UpsertChain(&models.Chain{
		ChainType:      models.ChainTypeEthereum,
		RPC:            server.URL,
		NetworkID:      "7672",
		SearchContract: searchContract.Hex(),
	})
	require.NoError(t, err)

	results, active, err := service.FindByOwnerOnActiveChain(context.Background(), sampleQuery())
	require.NoError(t, err)
	assert.Equal(t, chain.ID, active.ID)
	require.Len(t, results, 1)
	assert.Equal(t, "Porcini Pets", results[0].Name)

	node.mu.Lock()
	to, _ := node.lastCall["to"].(string)
	node.mu.Unlock()
	assert.Equal(t, searchContract, common.HexToAddress(to))
}

func TestEncodeDecodeFindByOwner(t *testing.T) {
	service, _ := newTestSearchService(t, NewRPCCallerDialer(time.Second), nil)

	calldata, err := service.EncodeFindByOwner(sampleQuery())
	require.NoError(t, err)
	assert.Equal(t, "0x657d2411", calldata[:10])

	results, err := service.DecodeFindByOwner(sampleResponse(t))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Len(t, results[0].Tokens, 2)
}
