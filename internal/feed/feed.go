// Package feed holds the paginated list containers behind the dashboard. Each feed owns
// its items, cursor, loading flag and error slot, and only the most recently issued
// request may update them.
package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"go.uber.org/zap"
)

const DefaultTimeout = 15 * time.Second

// ErrStale is returned by Fetch when a newer request was issued before this one finished.
// The feed state was not modified.
var ErrStale = errors.New("feed: response superseded by a newer request")

// ErrClosed is returned by Fetch after Close
var ErrClosed = errors.New("feed: closed")

// FetchFunc loads one page for a filter
type FetchFunc[T any] func(ctx context.Context, page int, filter string) (*models.Page[T], error)

// State is a snapshot of a feed. Items is replaced on every successful fetch and never
// modified in place.
type State[T any] struct {
	Items      []T               `json:"items"`
	Pagination models.Pagination `json:"pagination"`
	Page       int               `json:"page"`
	Filter     string            `json:"filter"`
	Loading    bool              `json:"loading"`
	Err        string            `json:"error,omitempty"`
	Seq        uint64            `json:"seq"`
}

type Feed[T any] struct {
	name     string
	fetch    FetchFunc[T]
	timeout  time.Duration
	logger   *zap.Logger
	onChange func(State[T])

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	state  State[T]
	closed bool
}

type Option[T any] func(*Feed[T])

func WithTimeout[T any](d time.Duration) Option[T] {
	return func(f *Feed[T]) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func WithLogger[T any](logger *zap.Logger) Option[T] {
	return func(f *Feed[T]) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// OnChange registers a callback invoked with a snapshot after every state change.
// It runs on the goroutine that called Fetch, outside the feed's lock.
func OnChange[T any](fn func(State[T])) Option[T] {
	return func(f *Feed[T]) {
		f.onChange = fn
	}
}

func New[T any](name string, fetch FetchFunc[T], opts ...Option[T]) *Feed[T] {
	f := &Feed[T]{
		name:    name,
		fetch:   fetch,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Feed[T]) Name() string {
	return f.name
}

// State returns the current snapshot
func (f *Feed[T]) State() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Fetch loads a page and, if no newer request has been issued meanwhile, replaces the
// feed's items and cursor with it. A superseded request's context is cancelled and its
// result is reported as ErrStale. On failure the items are kept and the error slot set.
func (f *Feed[T]) Fetch(ctx context.Context, page int, filter string) (State[T], error) {
	if page < 1 {
		page = 1
	}

	f.mu.Lock()
	if f.closed {
		s := f.state
		f.mu.Unlock()
		return s, ErrClosed
	}
	f.seq++
	seq := f.seq
	if f.cancel != nil {
		f.cancel()
	}
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	f.cancel = cancel
	f.state.Loading = true
	f.state.Seq = seq
	loading := f.state
	f.mu.Unlock()
	f.notify(loading)

	result, err := f.fetch(reqCtx, page, filter)

	f.mu.Lock()
	if seq != f.seq || f.closed {
		s := f.state
		f.mu.Unlock()
		cancel()
		f.logger.Debug("discarding stale feed response",
			zap.String("feed", f.name),
			zap.Uint64("seq", seq),
			zap.Int("page", page),
			zap.String("filter", filter),
		)
		return s, ErrStale
	}
	f.cancel = nil
	cancel()

	f.state.Loading = false
	switch {
	case err != nil:
		f.state.Err = errs.UserMessage(err)
		f.logger.Warn("feed fetch failed", zap.String("feed", f.name), zap.Error(err))
	case result == nil:
		err = errs.Malformed(f.name, errors.New("empty page"))
		f.state.Err = errs.UserMessage(err)
	default:
		f.state.Items = result.Items
		f.state.Pagination = result.Pagination
		f.state.Page = page
		f.state.Filter = filter
		f.state.Err = ""
	}
	s := f.state
	f.mu.Unlock()
	f.notify(s)
	return s, err
}

// Refresh reloads the current page and filter
func (f *Feed[T]) Refresh(ctx context.Context) (State[T], error) {
	s := f.State()
	return f.Fetch(ctx, s.Page, s.Filter)
}

// Next loads the page after the current one if there is one
func (f *Feed[T]) Next(ctx context.Context) (State[T], error) {
	s := f.State()
	if !s.Pagination.HasNext() {
		return s, nil
	}
	return f.Fetch(ctx, s.Page+1, s.Filter)
}

// Prev loads the page before the current one if there is one
func (f *Feed[T]) Prev(ctx context.Context) (State[T], error) {
	s := f.State()
	if s.Page <= 1 {
		return s, nil
	}
	return f.Fetch(ctx, s.Page-1, s.Filter)
}

// Close cancels any request in flight and makes its result ignorable
func (f *Feed[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.seq++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.state.Loading = false
}

func (f *Feed[T]) notify(s State[T]) {
	if f.onChange != nil {
		f.onChange(s)
	}
}
