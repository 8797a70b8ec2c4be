package tools

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/scoring"
)

func jsonResult(message string, v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error encoding result: %v", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
			mcp.NewTextContent(string(data)),
		},
	}, nil
}

func errorResult(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf("Error: %s", errs.UserMessage(err))), nil
}

func launchSummary(l scoring.ScoredLaunch) map[string]interface{} {
	return map[string]interface{}{
		"id":                 l.ID,
		"genesis_id":         l.GenesisID,
		"name":               l.Virtual.Name,
		"symbol":             l.Virtual.Symbol,
		"status":             l.Status,
		"starts_at":          l.StartsAt.Format(time.RFC3339),
		"ends_at":            l.EndsAt.Format(time.RFC3339),
		"total_participants": l.TotalParticipants,
		"total_virtuals":     l.TotalVirtuals,
		"total_points":       l.TotalPoints,
		"score":              l.Score.Total,
		"recommendation":     l.Score.Recommendation,
	}
}
