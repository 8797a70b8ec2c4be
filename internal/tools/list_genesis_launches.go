package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/hashnipe/internal/feed"
)

func NewListGenesisLaunchesTool(launches *feed.Launches) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("list_genesis_launches",
		mcp.WithDescription("List Virtual Protocol Genesis launches with their snipe score (0-100) and recommendation. Items replace the previous page; use page to move through results."),
		mcp.WithString("filter",
			mcp.Description("Launch filter: all, active, ended, upcoming or top-snipe. Defaults to all."),
			mcp.Enum("all", "active", "ended", "upcoming", "top-snipe"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number starting at 1. Defaults to 1."),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Number of launches per page. Defaults to the configured page size."),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter, err := feed.ParseFilter(request.GetString("filter", ""))
		if err != nil {
			return errorResult(err)
		}
		page := request.GetInt("page", 1)
		if page < 1 {
			page = 1
		}
		pageSize := request.GetInt("page_size", 0)

		result, err := launches.List(ctx, filter, page, pageSize)
		if err != nil {
			return errorResult(err)
		}

		items := make([]map[string]interface{}, 0, len(result.Items))
		for _, l := range result.Items {
			items = append(items, launchSummary(l))
		}

		return jsonResult(fmt.Sprintf("Found %d %s launches: ", len(items), filter), map[string]interface{}{
			"filter":     filter,
			"launches":   items,
			"pagination": result.Pagination,
		})
	}

	return tool, handler
}
