package tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rxtech-lab/collection-search-mcp/internal/models"
)

// bindFindByOwnerArguments binds and validates the request. A non-nil result
// is a tool error to hand back to the client.
func bindFindByOwnerArguments(request mcp.CallToolRequest) (models.FindByOwnerQuery, *mcp.CallToolResult, error) {
	var args models.FindByOwnerArguments
	if err := request.BindArguments(&args); err != nil {
		return models.FindByOwnerQuery{}, nil, fmt.Errorf("failed to bind arguments: %w", err)
	}

	query, err := args.Query()
	if err != nil {
		return models.FindByOwnerQuery{}, mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
	}
	return query, nil, nil
}

func findByOwnerQueryOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithArray("collection_addresses",
			mcp.Required(),
			mcp.Description("ERC-721 collection contract addresses to search (e.g., [\"0xfc3De4990a8EBe9C8dEbd7C826936Eb62Ef457B4\"])"),
			mcp.Items(map[string]interface{}{
				"type":        "string",
				"description": "Collection contract address",
			}),
		),
		mcp.WithString("owner_address",
			mcp.Required(),
			mcp.Description("Address whose tokens are looked up (e.g., 0x81f8...)"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of tokens the contract returns per collection. Defaults to %d", models.DefaultFindByOwnerLimit)),
		),
	}
}

func resultsSummary(results []models.CollectionResult) map[string]interface{} {
	tokens := 0
	for _, r := range results {
		tokens += len(r.Tokens)
	}
	return map[string]interface{}{
		"results":     results,
		"collections": len(results),
		"tokens":      tokens,
	}
}
