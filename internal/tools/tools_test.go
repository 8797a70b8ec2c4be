package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rxtech-lab/hashnipe/internal/auth"
	"github.com/rxtech-lab/hashnipe/internal/backend"
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/feed"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/quote"
	"github.com/rxtech-lab/hashnipe/internal/scoring"
	"github.com/rxtech-lab/hashnipe/internal/utils"
	"github.com/rxtech-lab/hashnipe/internal/virtuals"
	"github.com/stretchr/testify/require"
)

const (
	testVirtual = "0x0b3e328455c4059EEb9e3f84b5543F74E24e7E1b"
	testAgent   = "0x1111111111111111111111111111111111111111"
	testWallet  = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func mcpRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	result, err := handler(context.Background(), mcpRequest(args))
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

// decodeResult parses the JSON payload of a successful result
func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.False(t, result.IsError, "unexpected error result: %v", result.Content)
	require.Len(t, result.Content, 2)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(result.Content[1].(mcp.TextContent).Text), &payload))
	return payload
}

func errorText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.True(t, result.IsError)
	require.NotEmpty(t, result.Content)
	return result.Content[0].(mcp.TextContent).Text
}

func launchFixture(id string, participants int64, raised, points float64, hoursLeft float64) models.Launch {
	return models.Launch{
		GenesisID:         id,
		Status:            models.LaunchStatusStarted,
		StartsAt:          testNow.Add(-24 * time.Hour),
		EndsAt:            testNow.Add(time.Duration(hoursLeft * float64(time.Hour))),
		TotalParticipants: participants,
		TotalVirtuals:     raised,
		TotalPoints:       points,
		Virtual:           models.VirtualToken{Name: "Agent " + id, Symbol: "A" + id},
	}
}

type fakeLaunchSource struct {
	launches []models.Launch
	queries  []virtuals.GenesisQuery
	err      error
}

func (f *fakeLaunchSource) ListGeneses(ctx context.Context, q virtuals.GenesisQuery) (*models.Page[models.Launch], error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Page[models.Launch]{
		Items:      f.launches,
		Pagination: models.Pagination{Page: q.Page, PageSize: q.PageSize, PageCount: 4, Total: 40},
	}, nil
}

func (f *fakeLaunchSource) GetGenesis(ctx context.Context, id string) (*models.Launch, error) {
	for _, l := range f.launches {
		if l.GenesisID == id {
			return &l, nil
		}
	}
	return nil, &errs.NetworkError{Op: "get genesis", StatusCode: 404, Message: "Not Found"}
}

func newTestLaunches(source *fakeLaunchSource) *feed.Launches {
	return feed.NewLaunches(source, scoring.NewScorer(utils.NewFakeClock(testNow)), feed.LaunchesConfig{PageSize: 10, TopCount: 2})
}

type fakeBackend struct {
	swaps   []backend.SwapRequest
	balance string
	swapErr error
}

func (f *fakeBackend) SwapQuote(ctx context.Context, req backend.SwapRequest) (*backend.SwapQuote, error) {
	return &backend.SwapQuote{ToTokenAmount: "4200000000000000000", ToTokenDecimals: 18}, nil
}

func (f *fakeBackend) Swap(ctx context.Context, req backend.SwapRequest) (*backend.SwapResult, error) {
	f.swaps = append(f.swaps, req)
	if f.swapErr != nil {
		return &backend.SwapResult{Success: false}, f.swapErr
	}
	return &backend.SwapResult{Success: true, Message: "Swap submitted", Data: json.RawMessage(`{"txHash":"0xfeed"}`)}, nil
}

func (f *fakeBackend) GetBalance(ctx context.Context, tokenAddress, walletAddress string) (*backend.Balance, error) {
	return &backend.Balance{TokenAddress: tokenAddress, WalletAddress: walletAddress, Formatted: f.balance}, nil
}

func newTestTrader(b quote.Backend) (*quote.Trader, quote.Market) {
	market := quote.Market{VirtualToken: testVirtual, VirtualDecimals: 18}
	return quote.NewTrader(b, auth.NewStatic("token", testWallet), quote.Settings{ChainID: 8453}), market
}

type fakeTokenomics struct{}

func (fakeTokenomics) GetTokenomics(ctx context.Context, virtualID int64) (*models.TokenomicsSummary, error) {
	if virtualID != 42 {
		return nil, &errs.NetworkError{Op: "get virtual", StatusCode: 404, Message: "Not Found"}
	}
	s := models.Summarize(42, "AIXBT", []models.Tokenomic{
		{Name: "Liquidity", Bips: 6000},
		{Name: "Team", Bips: 4000, IsLocked: true},
	})
	return &s, nil
}

func (fakeTokenomics) Invalidate(int64) error { return nil }

type fakeSnipes struct {
	requests []backend.SnipeRequest
}

func (f *fakeSnipes) Register(ctx context.Context, req backend.SnipeRequest) (*models.SnipeOrder, error) {
	f.requests = append(f.requests, req)
	if req.Amount == "0" {
		return nil, errs.Validation("amount", "Amount must be greater than 0")
	}
	return &models.SnipeOrder{
		ID:            fmt.Sprintf("snipe-%d", len(f.requests)),
		GenesisID:     req.GenesisID,
		WalletAddress: req.WalletAddress,
		Amount:        req.Amount,
		FinalAmount:   "99",
		LaunchTime:    req.LaunchTime,
		Status:        models.OrderStatusRegistered,
	}, nil
}

func (f *fakeSnipes) GetSnipe(id string) (*models.SnipeOrder, error) { return nil, nil }

func (f *fakeSnipes) ListSnipes(walletAddress string) ([]models.SnipeOrder, error) { return nil, nil }

func textAt(t *testing.T, result *mcp.CallToolResult, i int) string {
	t.Helper()
	require.Greater(t, len(result.Content), i)
	return result.Content[i].(mcp.TextContent).Text
}
