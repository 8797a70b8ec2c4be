// Package quote drives the buy and sell forms: a debounced quote loop, synchronous amount
// validation and trade submission.
package quote

import (
	"context"
	"sync"
	"time"

	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/logging"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultDebounce = time.Second
	DefaultTimeout  = 15 * time.Second
)

type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateFetching
	StateQuoted
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateFetching:
		return "fetching"
	case StateQuoted:
		return "quoted"
	case StateErrored:
		return "errored"
	}
	return "unknown"
}

// QuoteFunc fetches a quote for a positive amount in human units
type QuoteFunc func(ctx context.Context, amount decimal.Decimal) (*models.Quote, error)

// Snapshot is the observable state of a quote box
type Snapshot struct {
	State      State
	Amount     string
	Quote      *models.Quote
	Err        string
	Generation uint64
}

// Throttle turns keystrokes into at most one quote request per pause in typing. Only the
// latest keystroke can change the state: superseded timers and responses are dropped.
type Throttle struct {
	clock    utils.Clock
	delay    time.Duration
	timeout  time.Duration
	quote    QuoteFunc
	onChange func(Snapshot)
	logger   *zap.Logger

	mu     sync.Mutex
	gen    uint64
	timer  utils.Timer
	cancel context.CancelFunc
	snap   Snapshot
	closed bool
}

type ThrottleOption func(*Throttle)

func WithClock(clock utils.Clock) ThrottleOption {
	return func(t *Throttle) {
		if clock != nil {
			t.clock = clock
		}
	}
}

func WithDebounce(d time.Duration) ThrottleOption {
	return func(t *Throttle) {
		if d > 0 {
			t.delay = d
		}
	}
}

func WithRequestTimeout(d time.Duration) ThrottleOption {
	return func(t *Throttle) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// OnChange registers a callback invoked after every state transition. It is called without
// the throttle lock held and may call back into the throttle.
func OnChange(fn func(Snapshot)) ThrottleOption {
	return func(t *Throttle) {
		t.onChange = fn
	}
}

func WithThrottleLogger(logger *zap.Logger) ThrottleOption {
	return func(t *Throttle) {
		t.logger = logging.OrNop(logger)
	}
}

func NewThrottle(quote QuoteFunc, opts ...ThrottleOption) *Throttle {
	t := &Throttle{
		clock:   utils.RealClock(),
		delay:   DefaultDebounce,
		timeout: DefaultTimeout,
		quote:   quote,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Snapshot returns the current state
func (t *Throttle) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// Input records a keystroke. Any pending timer is reset, any in-flight request is cancelled
// and the previous quote is cleared.
func (t *Throttle) Input(amount string) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.gen++
	gen := t.gen
	t.stopLocked()
	t.snap = Snapshot{State: StateDebouncing, Amount: amount, Generation: gen}
	t.timer = t.clock.AfterFunc(t.delay, func() { t.fire(gen) })
	snap := t.snap
	t.mu.Unlock()

	t.notify(snap)
}

// Reset returns to Idle without issuing a request
func (t *Throttle) Reset() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.gen++
	t.stopLocked()
	t.snap = Snapshot{State: StateIdle, Generation: t.gen}
	snap := t.snap
	t.mu.Unlock()

	t.notify(snap)
}

// Close stops the timer and marks any in-flight request as ignorable
func (t *Throttle) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	t.gen++
	t.stopLocked()
}

func (t *Throttle) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *Throttle) fire(gen uint64) {
	t.mu.Lock()
	if t.closed || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.timer = nil

	amount, err := utils.ParseAmount(t.snap.Amount)
	if err != nil || !amount.IsPositive() {
		t.snap = Snapshot{State: StateIdle, Amount: t.snap.Amount, Generation: gen}
		snap := t.snap
		t.mu.Unlock()
		t.notify(snap)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	t.cancel = cancel
	t.snap.State = StateFetching
	snap := t.snap
	t.mu.Unlock()
	t.notify(snap)

	q, err := t.quote(ctx, amount)
	cancel()

	t.mu.Lock()
	if t.closed || gen != t.gen {
		t.mu.Unlock()
		t.logger.Debug("discarding superseded quote", zap.Uint64("generation", gen))
		return
	}
	t.cancel = nil
	if err != nil {
		t.snap.State = StateErrored
		t.snap.Err = errs.UserMessage(err)
	} else {
		t.snap.State = StateQuoted
		t.snap.Quote = q
	}
	snap = t.snap
	t.mu.Unlock()
	t.notify(snap)
}

func (t *Throttle) notify(snap Snapshot) {
	if t.onChange != nil {
		t.onChange(snap)
	}
}
