package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/hashnipe/internal/feed"
)

func NewListTopSnipesTool(launches *feed.Launches) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("list_top_snipes",
		mcp.WithDescription("Rank the currently active Genesis launches by snipe score and return the best ones, highest first."),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		top, active, err := launches.Top(ctx)
		if err != nil {
			return errorResult(err)
		}

		items := make([]map[string]interface{}, 0, len(top))
		for i, l := range top {
			summary := launchSummary(l)
			summary["rank"] = i + 1
			items = append(items, summary)
		}

		return jsonResult(fmt.Sprintf("Top %d of %d active launches: ", len(items), len(active)), map[string]interface{}{
			"launches":     items,
			"active_count": len(active),
		})
	}

	return tool, handler
}
