package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/hashnipe/internal/feed"
	"github.com/rxtech-lab/hashnipe/internal/scoring"
)

func NewGetLaunchScoreTool(launches *feed.Launches) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("get_launch_score",
		mcp.WithDescription("Get the snipe score breakdown of one Genesis launch: participant, funding, commitment and timing sub-scores, hours remaining and recommendation."),
		mcp.WithString("genesis_id",
			mcp.Required(),
			mcp.Description("Genesis launch id"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("genesis_id")
		if err != nil {
			return nil, fmt.Errorf("genesis_id parameter is required: %w", err)
		}

		launch, err := launches.Get(ctx, id)
		if err != nil {
			return errorResult(err)
		}

		summary := launchSummary(*launch)
		summary["breakdown"] = launch.Score
		summary["snipe_threshold"] = scoring.SnipeThreshold
		summary["subscribe_threshold"] = scoring.SubscribeThreshold
		return jsonResult(fmt.Sprintf("Launch %s scores %d: ", launch.Key(), launch.Score.Total), summary)
	}

	return tool, handler
}
