package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/quote"
	"github.com/rxtech-lab/hashnipe/internal/utils"
)

func directionOption() mcp.ToolOption {
	return mcp.WithString("direction",
		mcp.Required(),
		mcp.Description("buy spends VIRTUAL for the token, sell spends the token for VIRTUAL"),
		mcp.Enum(string(models.TradeDirectionBuy), string(models.TradeDirectionSell)),
	)
}

func tokenOption() mcp.ToolOption {
	return mcp.WithString("token_address",
		mcp.Required(),
		mcp.Description("Address of the agent token"),
	)
}

// pairFromRequest reads the direction and token address arguments
func pairFromRequest(request mcp.CallToolRequest, market quote.Market) (quote.Pair, error) {
	direction, err := request.RequireString("direction")
	if err != nil {
		return quote.Pair{}, fmt.Errorf("direction parameter is required: %w", err)
	}
	token, err := request.RequireString("token_address")
	if err != nil {
		return quote.Pair{}, fmt.Errorf("token_address parameter is required: %w", err)
	}
	pair := market.Pair(models.TradeDirection(direction), token)
	if err := pair.Validate(); err != nil {
		return quote.Pair{}, errs.Validation("token", err.Error())
	}
	return pair, nil
}

func NewGetSwapQuoteTool(trader *quote.Trader, market quote.Market) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("get_swap_quote",
		mcp.WithDescription("Estimate the output of buying or selling an agent token against VIRTUAL (read-only)."),
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
		input, err := request.RequireString("amount")
		if err != nil {
			return nil, fmt.Errorf("amount parameter is required: %w", err)
		}
		amount, err := utils.ParseAmount(input)
		if err != nil {
			return errorResult(errs.Validation("amount", "Please enter a valid amount"))
		}

		q, err := trader.Quote(ctx, pair, amount)
		if err != nil {
			return errorResult(err)
		}

		return jsonResult(fmt.Sprintf("Quote for %s %s: ", pair.Direction, q.AmountIn), map[string]interface{}{
			"direction":  pair.Direction,
			"from_token": q.FromToken,
			"to_token":   q.ToToken,
			"amount_in":  q.AmountIn,
			"amount_out": q.AmountOut,
			"decimals":   q.Decimals,
		})
	}

	return tool, handler
}
