package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/hashnipe/internal/feed"
	"github.com/rxtech-lab/hashnipe/internal/virtuals"
)

func NewListAgentTokensTool(source feed.TokenSource, pageSize int) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("list_agent_tokens",
		mcp.WithDescription("List launched Virtual Protocol agent tokens by category, sorted by market cap in VIRTUAL."),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Token category: sentient (graduated) or prototype (bonding curve)"),
			mcp.Enum(string(virtuals.CategorySentient), string(virtuals.CategoryPrototype)),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number starting at 1. Defaults to 1."),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("category")
		if err != nil {
			return nil, fmt.Errorf("category parameter is required: %w", err)
		}
		category, err := virtuals.ParseCategory(name)
		if err != nil {
			return errorResult(err)
		}
		page := request.GetInt("page", 1)
		if page < 1 {
			page = 1
		}

		result, err := source.ListVirtuals(ctx, virtuals.VirtualQuery{Page: page, PageSize: pageSize, Category: category})
		if err != nil {
			return errorResult(err)
		}

		tokens := make([]map[string]interface{}, 0, len(result.Items))
		for _, v := range result.Items {
			tokens = append(tokens, map[string]interface{}{
				"id":                       v.ID,
				"name":                     v.Name,
				"symbol":                   v.Symbol,
				"token_address":            v.Address(),
				"market_cap_virtual":       v.MarketCapInVirtual,
				"holder_count":             v.HolderCount,
				"volume_24h":               v.Volume24h,
				"price_change_percent_24h": v.PriceChangePercent24h,
			})
		}

		return jsonResult(fmt.Sprintf("Found %d %s tokens: ", len(tokens), category), map[string]interface{}{
			"category":   category,
			"tokens":     tokens,
			"pagination": result.Pagination,
		})
	}

	return tool, handler
}
