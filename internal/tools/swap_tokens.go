package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/hashnipe/internal/quote"
)

func NewSwapTokensTool(trader *quote.Trader, market quote.Market) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("swap_tokens",
		mcp.WithDescription("Buy or sell an agent token against VIRTUAL through the backend. The amount is checked against the connected wallet's balance before anything is sent."),
		directionOption(),
		tokenOption(),
		mcp.WithString("amount",
			mcp.Required(),
			mcp.Description("Amount to spend in human units, e.g. '1.5'"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pair, err := pairFromRequest(request, market)
		if err != nil {
			return errorResult(err)
		}
		amount, err := request.RequireString("amount")
		if err != nil {
			return nil, fmt.Errorf("amount parameter is required: %w", err)
		}

		balance, err := trader.SpendableBalance(ctx, pair)
		if err != nil {
			return errorResult(err)
		}

		receipt, err := trader.Submit(ctx, pair, amount, balance)
		if err != nil {
			return errorResult(err)
		}

		result := map[string]interface{}{
			"trade_id":   receipt.Record.ID,
			"direction":  pair.Direction,
			"from_token": receipt.Record.FromTokenAddress,
			"to_token":   receipt.Record.ToTokenAddress,
			"amount":     receipt.Record.Amount,
			"message":    receipt.Message,
			"response":   receipt.Record.Response,
		}
		if receipt.Balance != "" {
			result["balance"] = receipt.Balance
		}
		return jsonResult("Success message: ", result)
	}

	return tool, handler
}
