package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/collection-search-mcp/internal/services"
	"github.com/rxtech-lab/collection-search-mcp/internal/tools"
)

type MCPServer struct {
	server *server.MCPServer
}

func NewMCPServer(chainService services.ChainService, searchService services.SearchService, version string) *MCPServer {
	mcpServer := &MCPServer{}
	mcpServer.InitializeTools(chainService, searchService, version)
	return mcpServer
}

func (s *MCPServer) InitializeTools(chainService services.ChainService, searchService services.SearchService, version string) {
	srv := server.NewMCPServer(
		"Collection Search MCP Server",
		version,
		server.WithToolCapabilities(true),
	)

	srv.AddPrompt(mcp.NewPrompt("collection-search-usage",
		mcp.WithPromptDescription("Instructions and guidance for using the collection search MCP tools"),
		mcp.WithArgument("tool_category",
			mcp.ArgumentDescription("Category of tools to get instructions for (chain, search, or all)"),
			mcp.RequiredArgument(),
		),
	), func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		category := request.Params.Arguments["tool_category"]
		if category == "" {
			return nil, fmt.Errorf("tool_category is required")
		}

		return mcp.NewGetPromptResult(
			fmt.Sprintf("Collection Search MCP Tools - %s", category),
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(
					mcp.RoleUser,
					mcp.NewTextContent(getToolInstructions(category)),
				),
			},
		), nil
	})

	// Chain Management Tools
	setChainTool, setChainHandler := tools.NewSetChainTool(chainService)
	srv.AddTool(setChainTool, setChainHandler)

	selectChainTool, selectChainHandler := tools.NewSelectChainTool(chainService)
	srv.AddTool(selectChainTool, selectChainHandler)

	listChainsTool, listChainsHandler := tools.NewListChainsTool(chainService)
	srv.AddTool(listChainsTool, listChainsHandler)

	// Search Tools
	findByOwnerTool := tools.NewFindByOwnerTool(searchService)
	srv.AddTool(findByOwnerTool.GetTool(), findByOwnerTool.GetHandler())

	encodeCallTool, encodeCallHandler := tools.NewEncodeCallTool(searchService)
	srv.AddTool(encodeCallTool, encodeCallHandler)

	decodeResultTool, decodeResultHandler := tools.NewDecodeResultTool(searchService)
	srv.AddTool(decodeResultTool, decodeResultHandler)

	s.server = srv
}

func getToolInstructions(category string) string {
	switch category {
	case "chain":
		return `Chain Management Tools:

1. set_chain - Register an EVM chain with its RPC endpoint and collection search contract
   Usage: Provide chain_type "ethereum", the rpc URL and search_contract. chain_id is auto-detected when omitted

2. select_chain - Mark a registered chain as active
   Usage: Pass the database id shown by list_chains

3. list_chains - List registered chains and the active one`

	case "search":
		return `Search Tools:

1. find_by_owner - Find the tokens an owner holds across ERC-721 collections
   Usage: Requires an active chain with a search contract. Pass collection_addresses, owner_address and optionally limit (default 100)

2. encode_call - Build findByOwner calldata without contacting a node
   Usage: Same arguments as find_by_owner. Returns the signature, selector and calldata

3. decode_result - Decode the raw hex returned by a findByOwner eth_call
   Usage: Pass data as a hex string. Empty data decodes to no results`

	case "all":
		return `Collection Search MCP Tools Overview:

This MCP server provides 6 tools for querying NFT ownership through an on-chain collection search contract:

CHAIN MANAGEMENT (3 tools):
- set_chain: Register RPC endpoint and search contract
- select_chain: Choose the active chain
- list_chains: View registered chains

SEARCH (3 tools):
- find_by_owner: Query tokens held by an owner
- encode_call: Encode findByOwner calldata offline
- decode_result: Decode a raw findByOwner response

All calls are read-only eth_call requests. No transaction is ever signed or sent.`

	default:
		return `Invalid category. Available categories: chain, search, all`
	}
}

func (s *MCPServer) StartStdioServer() error {
	return server.ServeStdio(s.server)
}

// GetServer returns the underlying mcp-go server.
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.server
}
