package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/collection-search-mcp/internal/contracts"
	"github.com/rxtech-lab/collection-search-mcp/internal/services"
)

func NewEncodeCallTool(searchService services.SearchService) (mcp.Tool, server.ToolHandlerFunc) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Encode a findByOwner call into ABI calldata without contacting any node. Returns the function signature, selector and 0x-prefixed calldata."),
	}, findByOwnerQueryOptions()...)
	tool := mcp.NewTool("encode_call", opts...)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, toolErr, err := bindFindByOwnerArguments(request)
		if err != nil || toolErr != nil {
			return toolErr, err
		}

		calldata, err := searchService.EncodeFindByOwner(query)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to encode call: %v", err)), nil
		}

		method := contracts.FindByOwnerMethod()
		signature, err := method.Signature()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to build signature: %v", err)), nil
		}
		selector, err := method.Selector()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to compute selector: %v", err)), nil
		}

		result := map[string]interface{}{
			"signature": signature,
			"selector":  hexutil.Encode(selector[:]),
			"calldata":  calldata,
			"limit":     query.Limit.String(),
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
