package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/quote"
	"github.com/rxtech-lab/hashnipe/internal/utils"
	"github.com/shopspring/decimal"
)

// Trader is the trading side of the dashboard; *quote.Trader implements it
type Trader interface {
	QuoteFunc(pair quote.Pair) quote.QuoteFunc
	SpendableBalance(ctx context.Context, pair quote.Pair) (decimal.Decimal, error)
	Submit(ctx context.Context, pair quote.Pair, amount string, balance decimal.Decimal) (*quote.Receipt, error)
}

type quoteChangedMsg struct{ form *TradeForm }

type balanceMsg struct {
	form    *TradeForm
	balance decimal.Decimal
	err     error
}

type submitMsg struct {
	form    *TradeForm
	receipt *quote.Receipt
	err     error
}

// TradeForm is the buy or sell box for one agent token. Every keystroke re-validates the
// amount and restarts the quote debounce; quote updates arrive as quoteChangedMsg.
type TradeForm struct {
	ctx    context.Context
	trader Trader
	form   *quote.Form
	input  textinput.Model

	changed   chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	snap          quote.Snapshot
	balanceLoaded bool
	submitting    bool
	message       string
	err           string
}

func NewTradeForm(ctx context.Context, trader Trader, pair quote.Pair, opts ...quote.ThrottleOption) *TradeForm {
	f := &TradeForm{
		ctx:     ctx,
		trader:  trader,
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	opts = append(opts, quote.OnChange(func(quote.Snapshot) { f.signal() }))
	f.form = quote.NewForm(pair, quote.NewThrottle(trader.QuoteFunc(pair), opts...))

	ti := textinput.New()
	ti.Placeholder = "0.0"
	ti.CharLimit = 40
	ti.Width = 24
	ti.Focus()
	f.input = ti
	return f
}

// signal wakes the listener without blocking; one pending signal is enough since the
// listener reads the latest snapshot
func (f *TradeForm) signal() {
	select {
	case f.changed <- struct{}{}:
	default:
	}
}

// Init loads the spendable balance and starts listening for quote updates
func (f *TradeForm) Init() tea.Cmd {
	return tea.Batch(f.fetchBalance(), f.waitForQuote())
}

func (f *TradeForm) waitForQuote() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-f.changed:
		case <-f.done:
			return nil
		}
		select {
		case <-f.done:
			return nil
		default:
			return quoteChangedMsg{form: f}
		}
	}
}

func (f *TradeForm) fetchBalance() tea.Cmd {
	pair := f.form.Pair()
	return func() tea.Msg {
		balance, err := f.trader.SpendableBalance(f.ctx, pair)
		return balanceMsg{form: f, balance: balance, err: err}
	}
}

func (f *TradeForm) submit() tea.Cmd {
	pair := f.form.Pair()
	amount := f.form.Amount()
	balance := f.form.Balance()
	return func() tea.Msg {
		receipt, err := f.trader.Submit(f.ctx, pair, amount, balance)
		return submitMsg{form: f, receipt: receipt, err: err}
	}
}

func (f *TradeForm) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case quoteChangedMsg:
		f.snap = f.form.Quote()
		return f.waitForQuote()

	case balanceMsg:
		if msg.err != nil {
			f.err = errs.UserMessage(msg.err)
			return nil
		}
		f.form.SetBalance(msg.balance)
		f.balanceLoaded = true
		return nil

	case submitMsg:
		f.submitting = false
		if msg.err != nil {
			f.message = ""
			f.err = errs.UserMessage(msg.err)
			return nil
		}
		f.err = ""
		f.message = msg.receipt.Message
		f.form.Clear()
		f.input.Reset()
		return f.fetchBalance()

	case tea.KeyMsg:
		if msg.Type == tea.KeyEnter {
			if f.submitting || !f.form.CanSubmit() {
				return nil
			}
			f.submitting = true
			f.message = ""
			f.err = ""
			return f.submit()
		}

		before := f.input.Value()
		var cmd tea.Cmd
		f.input, cmd = f.input.Update(msg)
		if value := f.input.Value(); value != before {
			_ = f.form.SetAmount(value)
			f.snap = f.form.Quote()
		}
		return cmd
	}
	return nil
}

// Close stops the quote loop and the update listener
func (f *TradeForm) Close() {
	f.closeOnce.Do(func() {
		close(f.done)
		f.form.Close()
	})
}

func (f *TradeForm) Pair() quote.Pair {
	return f.form.Pair()
}

func (f *TradeForm) Amount() string {
	return f.form.Amount()
}

func (f *TradeForm) CanSubmit() bool {
	return !f.submitting && f.form.CanSubmit()
}

// Validation is the message shown under the amount, empty when the amount is valid
func (f *TradeForm) Validation() string {
	if f.form.Amount() == "" {
		return ""
	}
	return errs.UserMessage(f.form.Validation())
}

func (f *TradeForm) Quote() quote.Snapshot {
	return f.snap
}

func (f *TradeForm) Message() string {
	return f.message
}

func (f *TradeForm) Err() string {
	return f.err
}

func (f *TradeForm) symbols() (string, string) {
	pair := f.form.Pair()
	agent := pair.AgentSymbol
	if agent == "" {
		agent = "TOKEN"
	}
	if pair.Direction == models.TradeDirectionSell {
		return agent, "VIRTUAL"
	}
	return "VIRTUAL", agent
}

func (f *TradeForm) View(styles Styles) string {
	pair := f.form.Pair()
	from, to := f.symbols()

	var sb strings.Builder
	verb := "Buy"
	if pair.Direction == models.TradeDirectionSell {
		verb = "Sell"
	}
	sb.WriteString(styles.Title.Render(fmt.Sprintf("%s %s", verb, f.symbolOrAddress())))
	sb.WriteString("\n")

	balance := "loading..."
	if f.balanceLoaded {
		balance = utils.FormatAmount(f.form.Balance())
	}
	sb.WriteString(styles.Muted.Render(fmt.Sprintf("Balance: %s %s", balance, from)))
	sb.WriteString("\n\n")
	sb.WriteString(f.input.View())
	sb.WriteString(" " + from + "\n")

	if v := f.Validation(); v != "" {
		sb.WriteString(styles.Error.Render(v))
	}
	sb.WriteString("\n")

	switch f.snap.State {
	case quote.StateDebouncing:
		sb.WriteString(styles.Muted.Render("..."))
	case quote.StateFetching:
		sb.WriteString(styles.Muted.Render("Fetching quote..."))
	case quote.StateQuoted:
		if f.snap.Quote != nil {
			sb.WriteString(styles.Info.Render(fmt.Sprintf("You receive ≈ %s %s", f.snap.Quote.AmountOut, to)))
		}
	case quote.StateErrored:
		sb.WriteString(styles.Error.Render(f.snap.Err))
	}
	sb.WriteString("\n\n")

	switch {
	case f.submitting:
		sb.WriteString(styles.Muted.Render("Submitting..."))
	case f.err != "":
		sb.WriteString(styles.Error.Render(f.err))
	case f.message != "":
		sb.WriteString(styles.Success.Render(f.message))
	}
	sb.WriteString("\n")

	hint := "[enter] submit  [esc] close"
	if f.CanSubmit() {
		sb.WriteString(styles.Bold.Render(hint))
	} else {
		sb.WriteString(styles.Muted.Render(hint))
	}
	return styles.Box.Render(sb.String())
}

func (f *TradeForm) symbolOrAddress() string {
	pair := f.form.Pair()
	if pair.AgentSymbol != "" {
		return "$" + pair.AgentSymbol
	}
	return shortAddress(pair.AgentToken)
}
