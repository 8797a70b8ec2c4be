package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/feed"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/quote"
	"github.com/rxtech-lab/hashnipe/internal/scoring"
	"github.com/rxtech-lab/hashnipe/internal/utils"
	"github.com/rxtech-lab/hashnipe/internal/virtuals"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tuiNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const (
	virtualToken = "0x0b3e328455c4059EEb9e3f84b5543F74E24e7E1b"
	agentToken   = "0x4F9Fd6Be4a90f2620860d680c0d4d5Fb53d1A825"
)

func strPtr(s string) *string { return &s }

func testLaunch(id string, participants int64, raised float64) models.Launch {
	return models.Launch{
		ID:                1,
		GenesisID:         id,
		Status:            models.LaunchStatusStarted,
		StartsAt:          tuiNow.Add(-24 * time.Hour),
		EndsAt:            tuiNow.Add(18 * time.Hour),
		TotalParticipants: participants,
		TotalVirtuals:     raised,
		Virtual: models.VirtualToken{
			ID:           42,
			Name:         "Agent " + id,
			Symbol:       "AIX",
			TokenAddress: strPtr(agentToken),
		},
	}
}

type fakeLaunchSource struct {
	mu      sync.Mutex
	queries []virtuals.GenesisQuery
	err     error
}

func (f *fakeLaunchSource) ListGeneses(ctx context.Context, q virtuals.GenesisQuery) (*models.Page[models.Launch], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	items := []models.Launch{testLaunch("a", 300, 112000), testLaunch("b", 20, 1000)}
	if q.Page == 2 {
		items = []models.Launch{testLaunch("c", 50, 5000)}
	}
	return &models.Page[models.Launch]{
		Items:      items,
		Pagination: models.Pagination{Page: q.Page, PageSize: 2, PageCount: 2, Total: 3},
	}, nil
}

func (f *fakeLaunchSource) GetGenesis(ctx context.Context, id string) (*models.Launch, error) {
	l := testLaunch(id, 1, 1)
	return &l, nil
}

func (f *fakeLaunchSource) lastQuery() virtuals.GenesisQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

type fakeTokenSource struct{}

func (fakeTokenSource) ListVirtuals(ctx context.Context, q virtuals.VirtualQuery) (*models.Page[models.VirtualToken], error) {
	items := []models.VirtualToken{
		{ID: 7, Name: string(q.Category) + " one", Symbol: "ONE"},
		{ID: 8, Name: string(q.Category) + " two", Symbol: "TWO", TokenAddress: strPtr(agentToken)},
	}
	return &models.Page[models.VirtualToken]{
		Items:      items,
		Pagination: models.Pagination{Page: q.Page, PageSize: q.PageSize, PageCount: 3, Total: 6},
	}, nil
}

type fakeTrader struct {
	mu      sync.Mutex
	balance decimal.Decimal
	submits []string
}

func (f *fakeTrader) QuoteFunc(pair quote.Pair) quote.QuoteFunc {
	return func(ctx context.Context, amount decimal.Decimal) (*models.Quote, error) {
		return &models.Quote{AmountIn: amount.String(), AmountOut: amount.Mul(decimal.NewFromInt(2)).String(), Decimals: 18}, nil
	}
}

func (f *fakeTrader) SpendableBalance(ctx context.Context, pair quote.Pair) (decimal.Decimal, error) {
	return f.balance, nil
}

func (f *fakeTrader) Submit(ctx context.Context, pair quote.Pair, amount string, balance decimal.Decimal) (*quote.Receipt, error) {
	if _, err := quote.ValidateAmount(amount, balance); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.submits = append(f.submits, amount)
	f.mu.Unlock()
	return &quote.Receipt{Success: true, Message: "Swap submitted"}, nil
}

type fixture struct {
	source *fakeLaunchSource
	trader *fakeTrader
	clock  *utils.FakeClock
	model  Model
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := utils.NewFakeClock(tuiNow)
	source := &fakeLaunchSource{}
	launches := feed.NewLaunches(source, scoring.NewScorer(clock), feed.LaunchesConfig{PageSize: 2, TopCount: 2})
	dashboard := &feed.Dashboard{
		Launches:  feed.NewLaunchFeed(launches, nil),
		Sentient:  feed.NewTokenFeed(fakeTokenSource{}, virtuals.CategorySentient, 2),
		Prototype: feed.NewTokenFeed(fakeTokenSource{}, virtuals.CategoryPrototype, 2),
	}
	t.Cleanup(dashboard.Close)

	trader := &fakeTrader{balance: decimal.NewFromInt(10)}
	styles := NewStyles(LightTheme())
	m := New(context.Background(), Options{
		Dashboard:       dashboard,
		Trader:          trader,
		Market:          quote.Market{VirtualToken: virtualToken, VirtualDecimals: 18},
		ThrottleOptions: []quote.ThrottleOption{quote.WithClock(clock), quote.WithDebounce(time.Second)},
		Styles:          &styles,
	})
	return &fixture{source: source, trader: trader, clock: clock, model: m}
}

// apply runs cmd and feeds its message back into the model
func apply(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	require.NotNil(t, msg)
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.model = apply(t, f.model, f.model.Init())
	return f
}

func TestModel_InitLoadsFirstPage(t *testing.T) {
	f := loaded(t)
	m := f.model

	assert.Equal(t, feed.FilterAll, m.ActiveTab().Filter)
	assert.Equal(t, 1, f.source.lastQuery().Page)
	require.Len(t, m.table.Rows(), 2)
	assert.Equal(t, "a", m.table.Rows()[0][0])
	assert.Equal(t, "SNIPE", m.table.Rows()[0][7])
	assert.Equal(t, "-", m.table.Rows()[1][7])
	assert.Contains(t, m.View(), "Page 1 of 2 (3 total)")
}

func TestModel_TabNavigation(t *testing.T) {
	f := loaded(t)
	m := f.model

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, feed.FilterActive, m.ActiveTab().Filter)
	assert.Empty(t, m.table.Rows())
	m = apply(t, m, cmd)
	assert.Equal(t, []models.LaunchStatus{models.LaunchStatusStarted}, f.source.lastQuery().Statuses)
	assert.Len(t, m.table.Rows(), 2)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, feed.FilterAll, m.ActiveTab().Filter)

	// wraps to the last token tab
	m, cmd = press(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, virtuals.CategoryPrototype, m.ActiveTab().Category)
	m = apply(t, m, cmd)
	require.Len(t, m.table.Rows(), 2)
	assert.Equal(t, "prototype one", m.table.Rows()[0][1])
	assert.Equal(t, "not launched", m.table.Rows()[0][6])

	// a token feed keeps its page when revisited
	m, cmd = press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, feed.FilterAll, m.ActiveTab().Filter)
	m = apply(t, m, cmd)
	m, cmd = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Nil(t, cmd)
	assert.Len(t, m.table.Rows(), 2)
}

func TestModel_Paging(t *testing.T) {
	f := loaded(t)
	m := f.model

	m, cmd := press(m, runes("n"))
	m = apply(t, m, cmd)
	assert.Equal(t, 2, f.source.lastQuery().Page)
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "c", m.table.Rows()[0][0])

	_, cmd = press(m, runes("n"))
	assert.Nil(t, cmd, "no page after the last one")

	m, cmd = press(m, runes("p"))
	m = apply(t, m, cmd)
	assert.Equal(t, 1, f.source.lastQuery().Page)
	assert.Len(t, m.table.Rows(), 2)

	_, cmd = press(m, runes("p"))
	assert.Nil(t, cmd)
}

func TestModel_FetchErrorKeepsItems(t *testing.T) {
	f := loaded(t)
	f.source.err = &errs.RateLimitError{Op: "list geneses", RetryAfter: 5 * time.Second}

	m, cmd := press(f.model, runes("r"))
	m = apply(t, m, cmd)
	assert.Equal(t, "Too many requests. Please try again in 5 seconds.", m.Status())
	assert.Len(t, m.table.Rows(), 2)
	assert.Contains(t, m.View(), "Too many requests")
}

func TestModel_TokenNotLaunched(t *testing.T) {
	f := loaded(t)
	m, cmd := press(f.model, tea.KeyMsg{Type: tea.KeyShiftTab})
	m = apply(t, m, cmd)

	m, cmd = press(m, runes("b"))
	assert.Nil(t, cmd)
	assert.Nil(t, m.Form())
	assert.Contains(t, m.Status(), "has not launched a token yet")
}

func TestModel_TradeForm(t *testing.T) {
	f := loaded(t)

	m, cmd := press(f.model, runes("b"))
	form := m.Form()
	require.NotNil(t, form)
	defer form.Close()
	assert.Equal(t, models.TradeDirectionBuy, form.Pair().Direction)
	assert.Equal(t, agentToken, form.Pair().AgentToken)
	assert.Equal(t, "AIX", form.Pair().AgentSymbol)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	require.Len(t, batch, 2)
	m = apply(t, m, batch[0])
	listen := batch[1]

	// live validation against the balance
	m, _ = press(m, runes("100"))
	assert.Equal(t, "Insufficient balance", form.Validation())
	assert.False(t, form.CanSubmit())
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "1", form.Amount())
	assert.Empty(t, form.Validation())
	assert.True(t, form.CanSubmit())
	assert.Equal(t, quote.StateDebouncing, form.Quote().State)

	// the debounce fires and the listener delivers the quote
	f.clock.Advance(time.Second)
	msg := listen()
	require.IsType(t, quoteChangedMsg{}, msg)
	next, relisten := m.Update(msg)
	m = next.(Model)
	assert.NotNil(t, relisten)
	require.Equal(t, quote.StateQuoted, form.Quote().State)
	assert.Equal(t, "2", form.Quote().Quote.AmountOut)
	assert.Contains(t, m.View(), "You receive")

	m, cmd = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, form.CanSubmit(), "submit is disabled while submitting")
	next, cmd = m.Update(cmd())
	m = next.(Model)
	assert.NotNil(t, cmd, "balance is reloaded after a trade")
	assert.Equal(t, "Swap submitted", form.Message())
	assert.Empty(t, form.Amount())
	assert.Equal(t, []string{"1"}, f.trader.submits)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.Form())
	assert.Nil(t, relisten(), "listener stops when the form closes")
}

func TestModel_MessagesFromClosedFormAreIgnored(t *testing.T) {
	f := loaded(t)

	m, cmd := press(f.model, runes("s"))
	stale := m.Form()
	require.NotNil(t, stale)
	assert.Equal(t, models.TradeDirectionSell, stale.Pair().Direction)
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})

	batch := cmd().(tea.BatchMsg)
	next, follow := m.Update(batch[0]())
	assert.Nil(t, follow)
	assert.Nil(t, next.(Model).Form())
}

func TestTabs(t *testing.T) {
	tabs := Tabs()
	require.Len(t, tabs, len(feed.Filters)+2)
	assert.Equal(t, "all", tabs[0].Title)
	assert.Equal(t, "top-snipe", tabs[4].Title)
	assert.Equal(t, virtuals.CategorySentient, tabs[5].Category)
	assert.Equal(t, virtuals.CategoryPrototype, tabs[6].Category)
}

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "not launched", shortAddress(""))
	assert.Equal(t, "0x4F9F…A825", shortAddress(agentToken))
	assert.Equal(t, "pending", shortAddress("pending"))
}
