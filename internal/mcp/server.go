package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	app "github.com/rxtech-lab/hashnipe/internal/server"
	"github.com/rxtech-lab/hashnipe/internal/tools"
)

const (
	ServerName    = "HaShnipe MCP Server"
	ServerVersion = "1.0.0"
)

type MCPServer struct {
	server   *server.MCPServer
	services *app.Services
}

func NewMCPServer(svc *app.Services) *MCPServer {
	mcpServer := &MCPServer{
		services: svc,
	}
	mcpServer.InitializeTools(svc)
	return mcpServer
}

func (s *MCPServer) InitializeTools(svc *app.Services) {
	srv := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
	)

	srv.AddPrompt(mcp.NewPrompt("hashnipe-usage",
		mcp.WithPromptDescription("Instructions and guidance for using the HaShnipe MCP tools"),
		mcp.WithArgument("tool_category",
			mcp.ArgumentDescription("Category of tools to get instructions for (launches, tokens, trading, snipe, or all)"),
			mcp.RequiredArgument(),
		),
	), func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		category := request.Params.Arguments["tool_category"]
		if category == "" {
			return nil, fmt.Errorf("tool_category is required")
		}

		instructions := getToolInstructions(category)

		return mcp.NewGetPromptResult(
			fmt.Sprintf("HaShnipe MCP Tools - %s", category),
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(
					mcp.RoleUser,
					mcp.NewTextContent(instructions),
				),
			},
		), nil
	})

	// Launch Tools
	listLaunchesTool, listLaunchesHandler := tools.NewListGenesisLaunchesTool(svc.Launches)
	srv.AddTool(listLaunchesTool, listLaunchesHandler)

	launchScoreTool, launchScoreHandler := tools.NewGetLaunchScoreTool(svc.Launches)
	srv.AddTool(launchScoreTool, launchScoreHandler)

	topSnipesTool, topSnipesHandler := tools.NewListTopSnipesTool(svc.Launches)
	srv.AddTool(topSnipesTool, topSnipesHandler)

	// Token Tools
	agentTokensTool, agentTokensHandler := tools.NewListAgentTokensTool(svc.Virtuals, svc.Config.PageSize)
	srv.AddTool(agentTokensTool, agentTokensHandler)

	if svc.Tokenomics != nil {
		tokenomicsTool, tokenomicsHandler := tools.NewGetTokenomicsTool(svc.Tokenomics)
		srv.AddTool(tokenomicsTool, tokenomicsHandler)
	}

	// Trading Tools
	quoteTool, quoteHandler := tools.NewGetSwapQuoteTool(svc.Trader, svc.Market)
	srv.AddTool(quoteTool, quoteHandler)

	swapTool, swapHandler := tools.NewSwapTokensTool(svc.Trader, svc.Market)
	srv.AddTool(swapTool, swapHandler)

	balanceTool, balanceHandler := tools.NewQueryBalanceTool(svc.Trader, svc.Market)
	srv.AddTool(balanceTool, balanceHandler)

	// Snipe Tools
	if svc.Snipes != nil {
		snipeTool, snipeHandler := tools.NewRegisterSnipeTool(svc.Snipes, svc.Auth)
		srv.AddTool(snipeTool, snipeHandler)
	}

	s.server = srv
}

func getToolInstructions(category string) string {
	switch category {
	case "launches":
		return `Genesis Launch Tools:

1. list_genesis_launches - List Genesis launches with snipe scores
   Usage: filter is one of all, active, ended, upcoming, top-snipe. Each page replaces the previous one.

2. get_launch_score - Score breakdown of one launch
   Usage: Shows participant, funding, commitment and timing sub-scores and hours remaining

3. list_top_snipes - Best active launches ranked by score
   Usage: A score of 70 or more is a snipe, 50 or more is worth subscribing to`

	case "tokens":
		return `Agent Token Tools:

1. list_agent_tokens - List launched agent tokens by market cap
   Usage: category is sentient (graduated) or prototype (bonding curve)

2. get_tokenomics - Supply allocation of an agent token
   Usage: Pass the numeric virtual_id; locked allocations and vesting releases are included`

	case "trading":
		return `Trading Tools:

1. get_swap_quote - Estimate a buy or sell (read-only)
   Usage: Amounts are in human units; buy spends VIRTUAL, sell spends the agent token

2. swap_tokens - Buy or sell an agent token against VIRTUAL
   Usage: The amount must be positive and no more than the connected wallet's balance

3. query_balance - Balance of the connected wallet
   Usage: token_address defaults to VIRTUAL`

	case "snipe":
		return `Snipe Tools:

1. register_snipe - Deposit VIRTUAL to buy a token as soon as its Genesis launch goes live
   Usage: wallet_address defaults to the connected wallet; launch_time is RFC3339`

	case "all":
		return `HaShnipe MCP Tools Overview:

This MCP server tracks Virtual Protocol Genesis launches, scores them for sniping and trades agent tokens:

LAUNCHES (3 tools):
- list_genesis_launches: Browse launches with scores
- get_launch_score: Score breakdown of one launch
- list_top_snipes: Best active launches

TOKENS (2 tools):
- list_agent_tokens: Sentient and prototype agent tokens
- get_tokenomics: Supply allocation and vesting

TRADING (3 tools):
- get_swap_quote: Estimate a buy or sell
- swap_tokens: Buy or sell through the backend
- query_balance: Wallet balances

SNIPE (1 tool):
- register_snipe: Register a snipe deposit

Scores run from 0 to 100. 70 and above is a snipe, 50 and above is worth subscribing to.
Trades and snipes use the bearer token of the request, or the configured one in stdio mode.`

	default:
		return `Invalid category. Available categories: launches, tokens, trading, snipe, all`
	}
}

// GetServer returns the underlying mcp-go server
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.server
}

func (s *MCPServer) StartStdioServer() error {
	return server.ServeStdio(s.server)
}

// StreamableHTTPServer returns an http.Handler serving MCP over streamable HTTP.
// contextFunc runs for every request and usually places the authenticated user in the context.
func (s *MCPServer) StreamableHTTPServer(contextFunc server.HTTPContextFunc) *server.StreamableHTTPServer {
	opts := []server.StreamableHTTPOption{}
	if contextFunc != nil {
		opts = append(opts, server.WithHTTPContextFunc(contextFunc))
	}
	return server.NewStreamableHTTPServer(s.server, opts...)
}
