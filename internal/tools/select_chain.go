package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/collection-search-mcp/internal/services"
)

func NewSelectChainTool(chainService services.ChainService) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("select_chain",
		mcp.WithDescription("Select the chain that find_by_owner queries. Takes the database id shown by list_chains and marks that chain as active."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The id of the chain in the database (see list_chains)"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		idStr, err := request.RequireString("id")
		if err != nil {
			return nil, fmt.Errorf("id parameter is required: %w", err)
		}

		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid id: %v", err)), nil
		}

		if err := chainService.SetActiveChainByID(uint(id)); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error setting active chain: %v", err)), nil
		}

		activeChain, err := chainService.GetActiveChain()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error getting active chain: %v", err)), nil
		}

		result := map[string]interface{}{
			"id":              activeChain.ID,
			"chain_type":      activeChain.ChainType,
			"name":            activeChain.Name,
			"rpc":             activeChain.RPC,
			"chain_id":        activeChain.NetworkID,
			"search_contract": activeChain.SearchContract,
			"is_active":       activeChain.IsActive,
			"message":         fmt.Sprintf("Successfully selected %s (ID: %d)", activeChain.Name, activeChain.ID),
		}

		resultJSON, _ := json.Marshal(result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(string(resultJSON)),
			},
		}, nil
	}

	return tool, handler
}
