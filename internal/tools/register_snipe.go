package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/hashnipe/internal/auth"
	"github.com/rxtech-lab/hashnipe/internal/backend"
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/services"
)

func NewRegisterSnipeTool(snipes services.SnipeService, wallet auth.WalletCollaborator) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("register_snipe",
		mcp.WithDescription("Register a snipe: a deposit the backend spends to buy the token when the Genesis launch goes live."),
		mcp.WithString("genesis_id",
			mcp.Required(),
			mcp.Description("Genesis launch id"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the launching agent"),
		),
		mcp.WithString("token",
			mcp.Required(),
			mcp.Description("Token the snipe buys (agent token symbol or address)"),
		),
		mcp.WithString("amount",
			mcp.Required(),
			mcp.Description("VIRTUAL amount to deposit in human units"),
		),
		mcp.WithString("wallet_address",
			mcp.Description("Wallet that owns the deposit. Defaults to the connected wallet."),
		),
		mcp.WithString("launch_time",
			mcp.Description("Expected launch time in RFC3339 format. Optional."),
		),
		mcp.WithString("market_cap",
			mcp.Description("Market cap at launch. Optional."),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		genesisID, err := request.RequireString("genesis_id")
		if err != nil {
			return nil, fmt.Errorf("genesis_id parameter is required: %w", err)
		}
		name, err := request.RequireString("name")
		if err != nil {
			return nil, fmt.Errorf("name parameter is required: %w", err)
		}
		token, err := request.RequireString("token")
		if err != nil {
			return nil, fmt.Errorf("token parameter is required: %w", err)
		}
		amount, err := request.RequireString("amount")
		if err != nil {
			return nil, fmt.Errorf("amount parameter is required: %w", err)
		}

		walletAddress := request.GetString("wallet_address", "")
		if walletAddress == "" {
			walletAddress, err = wallet.ConnectedAddress(ctx)
			if err != nil {
				return errorResult(err)
			}
		}

		req := backend.SnipeRequest{
			GenesisID:     genesisID,
			Name:          name,
			WalletAddress: walletAddress,
			Token:         token,
			Amount:        amount,
			MarketCap:     request.GetString("market_cap", ""),
		}
		if raw := request.GetString("launch_time", ""); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return errorResult(errs.Validation("launch_time", "launch_time must be RFC3339, e.g. 2025-03-01T12:00:00Z"))
			}
			req.LaunchTime = &t
		}

		order, err := snipes.Register(ctx, req)
		if err != nil {
			return errorResult(err)
		}

		result := map[string]interface{}{
			"snipe_id":       order.ID,
			"genesis_id":     order.GenesisID,
			"wallet_address": order.WalletAddress,
			"amount":         order.Amount,
			"final_amount":   order.FinalAmount,
			"status":         order.Status,
		}
		if order.LaunchTime != nil {
			result["launch_time"] = order.LaunchTime.Format(time.RFC3339)
		}
		return jsonResult("Snipe registered: ", result)
	}

	return tool, handler
}
