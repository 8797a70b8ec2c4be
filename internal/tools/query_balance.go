package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/quote"
	"github.com/rxtech-lab/hashnipe/internal/utils"
)

func NewQueryBalanceTool(trader *quote.Trader, market quote.Market) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("query_balance",
		mcp.WithDescription("Query the connected wallet's balance of VIRTUAL or of an agent token."),
		mcp.WithString("token_address",
			mcp.Description("Token contract address. Defaults to VIRTUAL."),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		token := request.GetString("token_address", market.VirtualToken)
		if !utils.IsValidEthereumAddress(token) {
			return errorResult(errs.Validation("token_address", fmt.Sprintf("Invalid token address %q", token)))
		}

		balance, err := trader.Balance(ctx, token)
		if err != nil {
			return errorResult(err)
		}

		symbol := ""
		if utils.SameAddress(token, market.VirtualToken) {
			symbol = "VIRTUAL"
		}
		return jsonResult("Balance: ", map[string]interface{}{
			"token_address": token,
			"symbol":        symbol,
			"balance":       utils.FormatAmount(balance),
		})
	}

	return tool, handler
}
