package api

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/collection-search-mcp/internal/codec"
	"github.com/rxtech-lab/collection-search-mcp/internal/contracts"
	"github.com/rxtech-lab/collection-search-mcp/internal/models"
	"github.com/rxtech-lab/collection-search-mcp/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

const (
	testSearchContract = "0x130Db38980De698796F01873C4a28B3581428422"
	testOwner          = "0x81f85e63Ce049a6f72f78C4A60b8186e04EbC215"
	testCollection     = "0xfc3De4990a8EBe9C8dEbd7C826936Eb62Ef457B4"
)

type APIServerTestSuite struct {
	suite.Suite
	db           services.DBService
	chainService services.ChainService
	apiServer    *APIServer
	rpc          *httptest.Server
	rpcResult    string
}

func (suite *APIServerTestSuite) SetupTest() {
	db, err := services.NewSqliteDBService(filepath.Join(suite.T().TempDir(), "api.db"))
	suite.Require().NoError(err)
	suite.db = db
	suite.chainService = services.NewChainService(db.GetDB())

	registry := prometheus.NewRegistry()
	searchService := services.NewSearchService(
		suite.chainService,
		services.NewRPCCallerDialer(5*time.Second),
		zaptest.NewLogger(suite.T()),
		services.NewSearchMetrics(registry),
	)
	suite.apiServer = NewAPIServer(suite.chainService, searchService, registry, zaptest.NewLogger(suite.T()))

	suite.rpcResult = suite.sampleResults()
	suite.rpc = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if suite.rpcResult == "" {
			resp["error"] = map[string]interface{}{"code": 3, "message": "execution reverted"}
		} else {
			resp["result"] = suite.rpcResult
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func (suite *APIServerTestSuite) TearDownTest() {
	suite.rpc.Close()
	suite.db.Close()
}

func (suite *APIServerTestSuite) sampleResults() string {
	encoded, err := codec.Encode(contracts.CollectionResultsToValue([]models.CollectionResult{
		{
			CollectionAddress: common.HexToAddress(testCollection),
			Name:              "Porcini Pets",
			Tokens: []models.TokenRecord{
				{ID: big.NewInt(3), URI: "ipfs://pets/3.json"},
				{ID: big.NewInt(4), URI: "ipfs://pets/4.json"},
			},
		},
	}))
	suite.Require().NoError(err)
	return hexutil.Encode(encoded)
}

func (suite *APIServerTestSuite) activateChain() *models.Chain {
	chain := &models.Chain{
		ChainType:      models.ChainTypeEthereum,
		RPC:            suite.rpc.URL,
		NetworkID:      "7672",
		Name:           "Root Network Porcini",
		SearchContract: testSearchContract,
	}
	suite.Require().NoError(suite.chainService.CreateChain(chain))
	suite.Require().NoError(suite.chainService.SetActiveChainByID(chain.ID))
	return chain
}

func (suite *APIServerTestSuite) post(path string, body interface{}) (*http.Response, map[string]interface{}) {
	payload, err := json.Marshal(body)
	suite.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := suite.apiServer.App().Test(req, -1)
	suite.Require().NoError(err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	suite.Require().NoError(json.Unmarshal(raw, &decoded), string(raw))
	return resp, decoded
}

func (suite *APIServerTestSuite) TestHealth() {
	resp, err := suite.apiServer.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	suite.Require().NoError(err)
	suite.Equal(http.StatusOK, resp.StatusCode)
}

func (suite *APIServerTestSuite) TestContractArtifact() {
	resp, err := suite.apiServer.App().Test(httptest.NewRequest(http.MethodGet, "/api/contracts/"+contracts.CollectionSearchName, nil))
	suite.Require().NoError(err)
	suite.Equal(http.StatusOK, resp.StatusCode)

	var artifact contracts.ContractArtifact
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&artifact))
	suite.Equal(contracts.CollectionSearchName, artifact.ContractName)
	suite.NotNil(artifact.ABI)

	resp, err = suite.apiServer.App().Test(httptest.NewRequest(http.MethodGet, "/api/contracts/UnknownContract", nil))
	suite.Require().NoError(err)
	suite.Equal(http.StatusNotFound, resp.StatusCode)
}

func (suite *APIServerTestSuite) TestListChains() {
	suite.activateChain()

	resp, err := suite.apiServer.App().Test(httptest.NewRequest(http.MethodGet, "/api/chains", nil))
	suite.Require().NoError(err)
	suite.Equal(http.StatusOK, resp.StatusCode)

	var body struct {
		Chains []models.Chain `json:"chains"`
		Total  int            `json:"total"`
	}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	suite.Equal(1, body.Total)
	suite.Equal(testSearchContract, body.Chains[0].SearchContract)
	suite.True(body.Chains[0].IsActive)
}

func (suite *APIServerTestSuite) TestFindByOwnerOnActiveChain() {
	suite.activateChain()

	resp, body := suite.post("/api/find-by-owner", map[string]interface{}{
		"collection_addresses": []string{testCollection},
		"owner_address":        testOwner,
		"limit":                2,
	})
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal(testSearchContract, body["contract"])
	suite.Equal("7672", body["chain_id"])

	results := body["results"].([]interface{})
	suite.Require().Len(results, 1)
	result := results[0].(map[string]interface{})
	suite.Equal("Porcini Pets", result["name"])
	tokens := result["tokens"].([]interface{})
	suite.Require().Len(tokens, 2)
	suite.Equal("4", tokens[1].(map[string]interface{})["id"])
}

func (suite *APIServerTestSuite) TestFindByOwnerIgnoresCallerEndpoint() {
	var hits atomic.Int32
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer other.Close()

	args := map[string]interface{}{
		"collection_addresses": []string{testCollection},
		"owner_address":        testOwner,
		"rpc":                  other.URL,
		"contract":             testCollection,
	}

	resp, body := suite.post("/api/find-by-owner", args)
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Equal("No active chain selected", body["error"])

	suite.activateChain()
	resp, body = suite.post("/api/find-by-owner", args)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal(testSearchContract, body["contract"])
	suite.Len(body["results"], 1)

	suite.Equal(int32(0), hits.Load())
}

func (suite *APIServerTestSuite) TestFindByOwnerValidation() {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing owner", map[string]interface{}{"collection_addresses": []string{testCollection}}},
		{"bad collection", map[string]interface{}{"collection_addresses": []string{"0x1"}, "owner_address": testOwner}},
		{"empty collections", map[string]interface{}{"collection_addresses": []string{}, "owner_address": testOwner}},
		{"limit above uint256", map[string]interface{}{"collection_addresses": []string{testCollection}, "owner_address": testOwner, "limit": strings.Repeat("9", 80)}},
		{"negative limit", map[string]interface{}{"collection_addresses": []string{testCollection}, "owner_address": testOwner, "limit": "-5"}},
		{"no active chain", map[string]interface{}{"collection_addresses": []string{testCollection}, "owner_address": testOwner}},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			resp, body := suite.post("/api/find-by-owner", tt.body)
			suite.Equal(http.StatusBadRequest, resp.StatusCode)
			suite.NotEmpty(body["error"])
		})
	}
}

func (suite *APIServerTestSuite) TestFindByOwnerUpstreamErrors() {
	suite.activateChain()
	args := map[string]interface{}{
		"collection_addresses": []string{testCollection},
		"owner_address":        testOwner,
	}

	suite.Run("rpc error", func() {
		suite.rpcResult = ""
		resp, body := suite.post("/api/find-by-owner", args)
		suite.Equal(http.StatusBadGateway, resp.StatusCode)
		suite.Equal(float64(3), body["code"])
		suite.Equal("execution reverted", body["message"])
	})

	suite.Run("corrupt response", func() {
		suite.rpcResult = "0x0000000000000000000000000000000000000000000000000000000000000020"
		resp, body := suite.post("/api/find-by-owner", args)
		suite.Equal(http.StatusBadGateway, resp.StatusCode)
		suite.Contains(body["error"], "truncated")
	})
}

func (suite *APIServerTestSuite) TestMetrics() {
	suite.activateChain()
	suite.post("/api/find-by-owner", map[string]interface{}{
		"collection_addresses": []string{testCollection},
		"owner_address":        testOwner,
	})

	resp, err := suite.apiServer.App().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	suite.Require().NoError(err)
	suite.Equal(http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	suite.Contains(string(raw), `collection_search_queries_total{outcome="success"} 1`)
	suite.Contains(string(raw), "collection_search_tokens_total 2")
}

func TestAPIServerTestSuite(t *testing.T) {
	suite.Run(t, new(APIServerTestSuite))
}

func TestStreamableHttpRequiresMCPServer(t *testing.T) {
	apiServer := NewAPIServer(nil, nil, nil, nil)
	assert.Error(t, apiServer.EnableStreamableHttp())
}
