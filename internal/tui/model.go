package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/hashnipe/internal/feed"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/quote"
	"github.com/rxtech-lab/hashnipe/internal/scoring"
	"github.com/rxtech-lab/hashnipe/internal/virtuals"
	"go.uber.org/zap"
)

// Tab is one feed view: a genesis filter over the shared launch feed, or a token category
type Tab struct {
	Title    string
	Filter   feed.Filter
	Category virtuals.Category
}

func (t Tab) isTokens() bool {
	return t.Category != ""
}

// Tabs lists the genesis filters followed by the two token categories
func Tabs() []Tab {
	tabs := make([]Tab, 0, len(feed.Filters)+2)
	for _, f := range feed.Filters {
		tabs = append(tabs, Tab{Title: string(f), Filter: f})
	}
	return append(tabs,
		Tab{Title: string(virtuals.CategorySentient), Category: virtuals.CategorySentient},
		Tab{Title: string(virtuals.CategoryPrototype), Category: virtuals.CategoryPrototype},
	)
}

type launchesMsg struct {
	state feed.State[scoring.ScoredLaunch]
	err   error
}

type tokensMsg struct {
	category virtuals.Category
	state    feed.State[models.VirtualToken]
	err      error
}

// Options configures the dashboard model
type Options struct {
	Dashboard *feed.Dashboard
	Trader    Trader
	Market    quote.Market
	// ThrottleOptions are passed to the quote throttle of every trade form
	ThrottleOptions []quote.ThrottleOption
	Logger          *zap.Logger
	Styles          *Styles
}

// Model is the dashboard page
type Model struct {
	ctx       context.Context
	dashboard *feed.Dashboard
	trader    Trader
	market    quote.Market
	throttle  []quote.ThrottleOption
	logger    *zap.Logger

	tabs      []Tab
	activeTab int
	table     table.Model
	launches  feed.State[scoring.ScoredLaunch]
	tokens    map[virtuals.Category]feed.State[models.VirtualToken]
	loading   bool
	status    string
	form      *TradeForm

	styles Styles
	width  int
	height int
}

func New(ctx context.Context, opts Options) Model {
	styles := DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	t := table.New(
		table.WithColumns(launchColumns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	return Model{
		ctx:       ctx,
		dashboard: opts.Dashboard,
		trader:    opts.Trader,
		market:    opts.Market,
		throttle:  opts.ThrottleOptions,
		logger:    logger,
		tabs:      Tabs(),
		table:     t,
		tokens:    make(map[virtuals.Category]feed.State[models.VirtualToken]),
		styles:    styles,
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadTab()
}

func (m Model) ActiveTab() Tab {
	return m.tabs[m.activeTab]
}

// Form returns the open trade form, or nil
func (m Model) Form() *TradeForm {
	return m.form
}

func (m Model) Status() string {
	return m.status
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if h := msg.Height - 10; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case launchesMsg:
		m.launches = msg.state
		m.loading = msg.state.Loading
		m.status = msg.state.Err
		m.syncRows()
		return m, nil

	case tokensMsg:
		m.tokens[msg.category] = msg.state
		m.loading = msg.state.Loading
		m.status = msg.state.Err
		m.syncRows()
		return m, nil

	case quoteChangedMsg:
		if m.form != msg.form {
			return m, nil
		}
		return m, m.form.Update(msg)

	case balanceMsg:
		if m.form != msg.form {
			return m, nil
		}
		return m, m.form.Update(msg)

	case submitMsg:
		if m.form != msg.form {
			return m, nil
		}
		return m, m.form.Update(msg)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.closeForm()
			return m, tea.Quit
		}
		if m.form != nil {
			if msg.Type == tea.KeyEsc {
				m.closeForm()
				return m, nil
			}
			return m, m.form.Update(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "right", "l":
		m.activeTab = (m.activeTab + 1) % len(m.tabs)
		m.syncRows()
		cmd := m.loadTab()
		return m, cmd
	case "shift+tab", "left", "h":
		m.activeTab = (m.activeTab - 1 + len(m.tabs)) % len(m.tabs)
		m.syncRows()
		cmd := m.loadTab()
		return m, cmd
	case "n", "pgdown":
		cmd := m.nextPage()
		return m, cmd
	case "p", "pgup":
		cmd := m.prevPage()
		return m, cmd
	case "r":
		cmd := m.refresh()
		return m, cmd
	case "b":
		return m.openForm(models.TradeDirectionBuy)
	case "s":
		return m.openForm(models.TradeDirectionSell)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) closeForm() {
	if m.form != nil {
		m.form.Close()
		m.form = nil
	}
}

// loadTab shows the first page of a genesis filter, or the current page of a token feed
func (m *Model) loadTab() tea.Cmd {
	tab := m.ActiveTab()
	if tab.isTokens() {
		f := m.tokenFeed(tab.Category)
		if f.State().Page > 0 {
			return nil
		}
		m.loading = true
		return m.tokenCmd(tab.Category, func(ctx context.Context) (feed.State[models.VirtualToken], error) {
			return f.Fetch(ctx, 1, "")
		})
	}

	if m.launches.Filter == string(tab.Filter) && m.launches.Page > 0 {
		return nil
	}
	m.loading = true
	launches, filter := m.dashboard.Launches, string(tab.Filter)
	return m.launchCmd(func(ctx context.Context) (feed.State[scoring.ScoredLaunch], error) {
		return launches.Fetch(ctx, 1, filter)
	})
}

func (m *Model) nextPage() tea.Cmd {
	tab := m.ActiveTab()
	if tab.isTokens() {
		f := m.tokenFeed(tab.Category)
		if !f.State().Pagination.HasNext() {
			return nil
		}
		m.loading = true
		return m.tokenCmd(tab.Category, f.Next)
	}
	if m.launches.Filter != string(tab.Filter) {
		return m.loadTab()
	}
	if !m.launches.Pagination.HasNext() {
		return nil
	}
	m.loading = true
	return m.launchCmd(m.dashboard.Launches.Next)
}

func (m *Model) prevPage() tea.Cmd {
	tab := m.ActiveTab()
	if tab.isTokens() {
		f := m.tokenFeed(tab.Category)
		if f.State().Page <= 1 {
			return nil
		}
		m.loading = true
		return m.tokenCmd(tab.Category, f.Prev)
	}
	if m.launches.Filter != string(tab.Filter) {
		return m.loadTab()
	}
	if m.launches.Page <= 1 {
		return nil
	}
	m.loading = true
	return m.launchCmd(m.dashboard.Launches.Prev)
}

func (m *Model) refresh() tea.Cmd {
	tab := m.ActiveTab()
	m.loading = true
	if tab.isTokens() {
		f := m.tokenFeed(tab.Category)
		if f.State().Page == 0 {
			return m.tokenCmd(tab.Category, func(ctx context.Context) (feed.State[models.VirtualToken], error) {
				return f.Fetch(ctx, 1, "")
			})
		}
		return m.tokenCmd(tab.Category, f.Refresh)
	}
	launches, filter := m.dashboard.Launches, string(tab.Filter)
	page := m.launches.Page
	if m.launches.Filter != filter || page < 1 {
		page = 1
	}
	return m.launchCmd(func(ctx context.Context) (feed.State[scoring.ScoredLaunch], error) {
		return launches.Fetch(ctx, page, filter)
	})
}

func (m Model) tokenFeed(category virtuals.Category) *feed.Feed[models.VirtualToken] {
	if category == virtuals.CategoryPrototype {
		return m.dashboard.Prototype
	}
	return m.dashboard.Sentient
}

func (m Model) launchCmd(do func(context.Context) (feed.State[scoring.ScoredLaunch], error)) tea.Cmd {
	ctx, logger := m.ctx, m.logger
	return func() tea.Msg {
		state, err := do(ctx)
		if errors.Is(err, feed.ErrStale) || errors.Is(err, feed.ErrClosed) {
			return nil
		}
		if err != nil {
			logger.Debug("launch feed fetch failed", zap.Error(err))
		}
		return launchesMsg{state: state, err: err}
	}
}

func (m Model) tokenCmd(category virtuals.Category, do func(context.Context) (feed.State[models.VirtualToken], error)) tea.Cmd {
	ctx, logger := m.ctx, m.logger
	return func() tea.Msg {
		state, err := do(ctx)
		if errors.Is(err, feed.ErrStale) || errors.Is(err, feed.ErrClosed) {
			return nil
		}
		if err != nil {
			logger.Debug("token feed fetch failed", zap.String("category", string(category)), zap.Error(err))
		}
		return tokensMsg{category: category, state: state, err: err}
	}
}

// syncRows rebuilds the table for the active tab. Rows are cleared before the columns
// change so no row is rendered against the wrong column set.
func (m *Model) syncRows() {
	tab := m.ActiveTab()
	m.table.SetRows(nil)
	if tab.isTokens() {
		m.table.SetColumns(tokenColumns)
		m.table.SetRows(tokenRows(m.tokens[tab.Category].Items))
	} else {
		m.table.SetColumns(launchColumns)
		if m.launches.Filter == string(tab.Filter) {
			m.table.SetRows(launchRows(m.launches.Items))
		}
	}
	if m.table.Cursor() >= len(m.table.Rows()) {
		m.table.SetCursor(0)
	}
}

// selectedToken returns the token under the cursor
func (m Model) selectedToken() (models.VirtualToken, bool) {
	tab := m.ActiveTab()
	i := m.table.Cursor()
	if tab.isTokens() {
		items := m.tokens[tab.Category].Items
		if i < 0 || i >= len(items) {
			return models.VirtualToken{}, false
		}
		return items[i], true
	}
	if m.launches.Filter != string(tab.Filter) || i < 0 || i >= len(m.launches.Items) {
		return models.VirtualToken{}, false
	}
	return m.launches.Items[i].Virtual, true
}

func (m Model) openForm(direction models.TradeDirection) (tea.Model, tea.Cmd) {
	if m.trader == nil {
		m.status = "Trading is not available"
		return m, nil
	}
	token, ok := m.selectedToken()
	if !ok {
		return m, nil
	}
	if !token.Launched() {
		m.status = fmt.Sprintf("%s has not launched a token yet", tokenLabel(token))
		return m, nil
	}

	pair := m.market.Pair(direction, token.Address())
	pair.AgentSymbol = token.Symbol
	if err := pair.Validate(); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.status = ""
	m.form = NewTradeForm(m.ctx, m.trader, pair, m.throttle...)
	cmd := m.form.Init()
	return m, cmd
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("HaShnipe"))
	sb.WriteString("\n\n")
	sb.WriteString(m.renderTabs())
	sb.WriteString("\n\n")

	body := m.styles.Content.Render(m.table.View())
	if m.form != nil {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.form.View(m.styles))
	}
	sb.WriteString(body)
	sb.WriteString("\n")
	sb.WriteString(m.renderStatus())
	sb.WriteString("\n")
	sb.WriteString(m.styles.Footer.Render("tab/shift+tab switch feed  n/p page  r refresh  b buy  s sell  q quit"))
	return sb.String()
}

func (m Model) renderTabs() string {
	parts := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		if i == m.activeTab {
			parts[i] = m.styles.ActiveTab.Render(t.Title)
		} else {
			parts[i] = m.styles.Tab.Render(t.Title)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderStatus() string {
	if m.loading {
		return m.styles.Muted.Render("Loading...")
	}
	if m.status != "" {
		return m.styles.Error.Render(m.status)
	}

	var p models.Pagination
	tab := m.ActiveTab()
	if tab.isTokens() {
		p = m.tokens[tab.Category].Pagination
	} else if m.launches.Filter == string(tab.Filter) {
		p = m.launches.Pagination
	}
	if p.PageCount == 0 {
		return m.styles.Muted.Render("No results")
	}
	return m.styles.Muted.Render(fmt.Sprintf("Page %d of %d (%d total)", p.Page, p.PageCount, p.Total))
}
