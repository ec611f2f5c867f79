package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/collection-search-mcp/internal/constants"
	"github.com/rxtech-lab/collection-search-mcp/internal/models"
	"github.com/rxtech-lab/collection-search-mcp/internal/services"
	"github.com/rxtech-lab/collection-search-mcp/internal/utils"
)

const chainIDTimeout = 10 * time.Second

// fetchChainIDFromRPC asks the endpoint for its chain ID via eth_chainId.
func fetchChainIDFromRPC(ctx context.Context, rpcURL string) (string, error) {
	client := utils.NewRPCClient(rpcURL)
	client.SetTimeout(chainIDTimeout)
	return client.ChainID(ctx)
}

func defaultChainName(chainID string) string {
	switch chainID {
	case "1":
		return "Ethereum Mainnet"
	case "11155111":
		return "Ethereum Sepolia"
	case constants.RootNetworkChainID:
		return "Root Network"
	case constants.PorciniChainID:
		return "Root Network Porcini"
	default:
		return fmt.Sprintf("Ethereum Chain %s", chainID)
	}
}

// chainExists reports whether an ethereum chain with chainID is registered.
func chainExists(chainService services.ChainService, chainID string) bool {
	chains, err := chainService.ListChains()
	if err != nil {
		return false
	}
	for _, c := range chains {
		if c.ChainType == models.ChainTypeEthereum && c.NetworkID == chainID {
			return true
		}
	}
	return false
}

func NewSetChainTool(chainService services.ChainService) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("set_chain",
		mcp.WithDescription("Configure a target EVM chain with its RPC endpoint and collection search contract. Creates the chain, or updates the one with the same chain ID."),
		mcp.WithString("chain_type",
			mcp.Required(),
			mcp.Description("The blockchain type. Only ethereum (EVM) chains are supported"),
		),
		mcp.WithString("rpc",
			mcp.Required(),
			mcp.Description("The RPC endpoint URL for the blockchain"),
		),
		mcp.WithString("chain_id",
			mcp.Description("The chain ID (e.g., '1' for Ethereum mainnet, '7672' for Root Network Porcini). If not provided, will be auto-detected from RPC endpoint."),
		),
		mcp.WithString("name",
			mcp.Description("Optional name for the chain configuration (e.g., 'Root Network Porcini')"),
		),
		mcp.WithString("search_contract",
			mcp.Description("Address of the collection search contract deployed on this chain (e.g., 0x130D...)"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		chainType, err := request.RequireString("chain_type")
		if err != nil {
			return nil, fmt.Errorf("chain_type parameter is required: %w", err)
		}

		rpc, err := request.RequireString("rpc")
		if err != nil {
			return nil, fmt.Errorf("rpc parameter is required: %w", err)
		}

		if models.ChainType(chainType) != models.ChainTypeEthereum {
			return mcp.NewToolResultError("Invalid chain_type. Supported values: ethereum"), nil
		}

		searchContract := request.GetString("search_contract", "")
		if searchContract != "" && !utils.IsValidEthereumAddress(searchContract) {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid search_contract address: %s", searchContract)), nil
		}

		chainID := request.GetString("chain_id", "")
		autoDetected := false
		if chainID == "" {
			fetchedChainID, err := fetchChainIDFromRPC(ctx, rpc)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Could not auto-detect chain ID from RPC: %v. Please provide chain_id parameter.", err)), nil
			}
			chainID = fetchedChainID
			autoDetected = true
		}

		name := request.GetString("name", "")
		if name == "" && !chainExists(chainService, chainID) {
			name = defaultChainName(chainID)
		}

		chain := &models.Chain{
			ChainType:      models.ChainTypeEthereum,
			RPC:            rpc,
			NetworkID:      chainID,
			Name:           name,
			SearchContract: searchContract,
		}

		saved, err := chainService.UpsertChain(chain)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error saving chain configuration: %v", err)), nil
		}

		message := fmt.Sprintf("Successfully configured %s", saved.Name)
		if autoDetected {
			message += fmt.Sprintf(" (auto-detected chain ID: %s)", chainID)
		}

		result := map[string]interface{}{
			"id":              saved.ID,
			"chain_type":      saved.ChainType,
			"rpc":             saved.RPC,
			"chain_id":        saved.NetworkID,
			"name":            saved.Name,
			"search_contract": saved.SearchContract,
			"is_active":       saved.IsActive,
			"message":         message,
		}

		resultJSON, _ := json.Marshal(result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent("Success message: "),
				mcp.NewTextContent(string(resultJSON)),
			},
		}, nil
	}

	return tool, handler
}
