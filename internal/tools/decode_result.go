package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/collection-search-mcp/internal/services"
)

func NewDecodeResultTool(searchService services.SearchService) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("decode_result",
		mcp.WithDescription("Decode the raw hex return data of a findByOwner call into collections and token records."),
		mcp.WithString("data",
			mcp.Required(),
			mcp.Description("Hex return data of the eth_call, with or without the 0x prefix"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := request.RequireString("data")
		if err != nil {
			return nil, fmt.Errorf("data parameter is required: %w", err)
		}

		results, err := searchService.DecodeFindByOwner(data)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to decode result: %v", err)), nil
		}

		resultJSON, _ := json.Marshal(resultsSummary(results))
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(string(resultJSON)),
			},
		}, nil
	}

	return tool, handler
}
