package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/hashnipe/internal/services"
)

func NewGetTokenomicsTool(tokenomics services.TokenomicsService) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("get_tokenomics",
		mcp.WithDescription("Get the supply allocation of an agent token: each allocation in basis points, which allocations are locked and their vesting releases."),
		mcp.WithNumber("virtual_id",
			mcp.Required(),
			mcp.Description("Numeric id of the virtual (agent token)"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireFloat("virtual_id")
		if err != nil {
			return nil, fmt.Errorf("virtual_id parameter is required: %w", err)
		}

		summary, err := tokenomics.GetTokenomics(ctx, int64(id))
		if err != nil {
			return errorResult(err)
		}

		allocations := make([]map[string]interface{}, 0, len(summary.Entries))
		for _, e := range summary.Entries {
			allocations = append(allocations, map[string]interface{}{
				"name":      e.Name,
				"bips":      e.Bips,
				"percent":   e.Percent(),
				"is_locked": e.IsLocked,
				"releases":  e.Releases,
			})
		}

		return jsonResult(fmt.Sprintf("Tokenomics of %s: ", summary.Symbol), map[string]interface{}{
			"virtual_id":       summary.VirtualID,
			"symbol":           summary.Symbol,
			"total_bips":       summary.TotalBips,
			"locked_bips":      summary.LockedBips,
			"locked_percent":   summary.LockedPercent(),
			"unallocated_bips": summary.Unallocated,
			"allocations":      allocations,
		})
	}

	return tool, handler
}
