package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/collection-search-mcp/internal/services"
	"github.com/rxtech-lab/collection-search-mcp/internal/utils"
)

type findByOwnerTool struct {
	searchService services.SearchService
}

func NewFindByOwnerTool(searchService services.SearchService) *findByOwnerTool {
	return &findByOwnerTool{searchService: searchService}
}

func (f *findByOwnerTool) GetTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Find the tokens an owner holds across ERC-721 collections by calling findByOwner on the active chain's collection search contract. Read-only, no transaction is sent."),
	}, findByOwnerQueryOptions()...)
	return mcp.NewTool("find_by_owner", opts...)
}

func (f *findByOwnerTool) GetHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, toolErr, err := bindFindByOwnerArguments(request)
		if err != nil || toolErr != nil {
			return toolErr, err
		}

		results, chain, err := f.searchService.FindByOwnerOnActiveChain(ctx, query)
		if err != nil {
			if errors.Is(err, services.ErrNoActiveChain) {
				return mcp.NewToolResultError("No active chain selected. Please use set_chain and select_chain first"), nil
			}
			var rpcErr *utils.RPCError
			if errors.As(err, &rpcErr) {
				return mcp.NewToolResultError(fmt.Sprintf("Contract call rejected by RPC endpoint (code %d): %s", rpcErr.Code, rpcErr.Message)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Failed to find tokens: %v", err)), nil
		}

		result := resultsSummary(results)
		result["chain"] = map[string]interface{}{
			"id":              chain.ID,
			"name":            chain.Name,
			"chain_id":        chain.NetworkID,
			"search_contract": chain.SearchContract,
		}
		result["owner"] = query.Owner.Hex()

		resultJSON, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to format results: %v", err)), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent("Tokens found: "),
				mcp.NewTextContent(string(resultJSON)),
			},
		}, nil
	}
}
