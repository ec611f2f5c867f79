package tools

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/collection-search-mcp/internal/codec"
	"github.com/rxtech-lab/collection-search-mcp/internal/contracts"
	"github.com/rxtech-lab/collection-search-mcp/internal/models"
	"github.com/rxtech-lab/collection-search-mcp/internal/services"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	testSearchContract = "0x130Db38980De698796F01873C4a28B3581428422"
	testOwner          = "0x81f85e63Ce049a6f72f78C4A60b8186e04EbC215"
	testCollection     = "0xfc3De4990a8EBe9C8dEbd7C826936Eb62Ef457B4"
)

func setupTestDatabase(t *testing.T) services.ChainService {
	db, err := services.NewSqliteDBService(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return services.NewChainService(db.GetDB())
}

func newTestSearchService(t *testing.T, chainService services.ChainService) services.SearchService {
	return services.NewSearchService(
		chainService,
		services.NewRPCCallerDialer(5*time.Second),
		zaptest.NewLogger(t),
		services.NewSearchMetrics(prometheus.NewRegistry()),
	)
}

func encodedSampleResults(t *testing.T) string {
	t.Helper()
	encoded, err := codec.Encode(contracts.CollectionResultsToValue([]models.CollectionResult{
		{
			CollectionAddress: common.HexToAddress(testCollection),
			Name:              "Porcini Pets",
			Tokens: []models.TokenRecord{
				{ID: big.NewInt(7), URI: "ipfs://pets/7.json"},
			},
		},
	}))
	require.NoError(t, err)
	return hexutil.Encode(encoded)
}

// newMockRPC answers eth_chainId with chainID and eth_call with callResult.
// A callResult of "" makes eth_call fail with execution reverted.
func newMockRPC(t *testing.T, chainID, callResult string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		switch {
		case req.Method == "eth_chainId":
			resp["result"] = chainID
		case req.Method == "eth_call" && callResult != "":
			resp["result"] = callResult
		default:
			resp["error"] = map[string]interface{}{"code": -32000, "message": "execution reverted"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func newRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[len(result.Content)-1].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}
