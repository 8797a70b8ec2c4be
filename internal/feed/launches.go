package feed

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/scoring"
	"github.com/rxtech-lab/hashnipe/internal/virtuals"
)

// Filter is the genesis launch filter vocabulary
type Filter string

const (
	FilterAll      Filter = "all"
	FilterActive   Filter = "active"
	FilterEnded    Filter = "ended"
	FilterUpcoming Filter = "upcoming"
	FilterTopSnipe Filter = "top-snipe"
)

const (
	DefaultTopCount = 6
	DefaultPoolSize = 100
)

// Filters lists the filters in display order
var Filters = []Filter{FilterAll, FilterActive, FilterEnded, FilterUpcoming, FilterTopSnipe}

// ParseFilter accepts a filter name; empty means all
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errs.Validation("filter", fmt.Sprintf("unknown filter %q, expected one of all, active, ended, upcoming, top-snipe", s))
}

// Statuses maps a filter to the upstream status filter. Top-snipe reads the active set.
func (f Filter) Statuses() []models.LaunchStatus {
	switch f {
	case FilterActive, FilterTopSnipe:
		return []models.LaunchStatus{models.LaunchStatusStarted}
	case FilterEnded:
		return []models.LaunchStatus{models.LaunchStatusFailed, models.LaunchStatusFinalized}
	case FilterUpcoming:
		return []models.LaunchStatus{models.LaunchStatusInitialized}
	}
	return nil
}

// LaunchSource is the upstream genesis API
type LaunchSource interface {
	ListGeneses(ctx context.Context, q virtuals.GenesisQuery) (*models.Page[models.Launch], error)
	GetGenesis(ctx context.Context, id string) (*models.Launch, error)
}

// Launches answers launch queries without keeping any state. It backs the HTTP API and
// the MCP tools; LaunchFeed adds the per-view state on top of it.
type Launches struct {
	source   LaunchSource
	scorer   *scoring.Scorer
	pageSize int
	poolSize int
	topCount int
}

type LaunchesConfig struct {
	PageSize int
	PoolSize int
	TopCount int
}

func NewLaunches(source LaunchSource, scorer *scoring.Scorer, cfg LaunchesConfig) *Launches {
	if scorer == nil {
		scorer = scoring.NewScorer(nil)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = virtuals.DefaultPageSize
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = DefaultPoolSize
	}
	if cfg.TopCount <= 0 {
		cfg.TopCount = DefaultTopCount
	}
	return &Launches{
		source:   source,
		scorer:   scorer,
		pageSize: cfg.PageSize,
		poolSize: cfg.PoolSize,
		topCount: cfg.TopCount,
	}
}

func (l *Launches) PageSize() int { return l.pageSize }

func (l *Launches) TopCount() int { return l.topCount }

func (l *Launches) Scorer() *scoring.Scorer { return l.scorer }

// List returns one page of scored launches. Top-snipe is a single page ranked from the
// active set.
func (l *Launches) List(ctx context.Context, filter Filter, page, pageSize int) (*models.Page[scoring.ScoredLaunch], error) {
	if filter == FilterTopSnipe {
		top, _, err := l.Top(ctx)
		if err != nil {
			return nil, err
		}
		return &models.Page[scoring.ScoredLaunch]{Items: top, Pagination: models.SinglePage(len(top))}, nil
	}

	if pageSize <= 0 {
		pageSize = l.pageSize
	}
	p, err := l.source.ListGeneses(ctx, virtuals.GenesisQuery{
		Page:     page,
		PageSize: pageSize,
		Statuses: filter.Statuses(),
	})
	if err != nil {
		return nil, err
	}
	return &models.Page[scoring.ScoredLaunch]{Items: l.scorer.ScoreAll(p.Items), Pagination: p.Pagination}, nil
}

// Top fetches the active set and ranks it. It returns the ranked list and the active set
// it was computed from.
func (l *Launches) Top(ctx context.Context) ([]scoring.ScoredLaunch, []models.Launch, error) {
	active, err := l.ActiveSet(ctx)
	if err != nil {
		return nil, nil, err
	}
	return l.scorer.Rank(active, l.topCount), active, nil
}

// ActiveSet loads the first pool-sized page of started launches
func (l *Launches) ActiveSet(ctx context.Context) ([]models.Launch, error) {
	p, err := l.source.ListGeneses(ctx, virtuals.GenesisQuery{
		Page:     1,
		PageSize: l.poolSize,
		Statuses: FilterActive.Statuses(),
	})
	if err != nil {
		return nil, err
	}
	return p.Items, nil
}

// Get returns one launch with its score
func (l *Launches) Get(ctx context.Context, id string) (*scoring.ScoredLaunch, error) {
	launch, err := l.source.GetGenesis(ctx, id)
	if err != nil {
		return nil, err
	}
	return &scoring.ScoredLaunch{Launch: *launch, Score: l.scorer.Score(*launch)}, nil
}

// LaunchFeed is the stateful genesis launch view. Besides the generic feed state it keeps
// the most recently loaded active set and the top-snipe ranking derived from it.
type LaunchFeed struct {
	*Feed[scoring.ScoredLaunch]
	launches *Launches

	mu           sync.Mutex
	issued       uint64
	applied      uint64
	active       []models.Launch
	top          []scoring.ScoredLaunch
	onTopChanged func([]scoring.ScoredLaunch)
}

type LaunchFeedOption func(*LaunchFeed)

// OnTopChanged is called with the new ranking every time the active set changes
func OnTopChanged(fn func([]scoring.ScoredLaunch)) LaunchFeedOption {
	return func(lf *LaunchFeed) {
		lf.onTopChanged = fn
	}
}

func NewLaunchFeed(launches *Launches, feedOpts []Option[scoring.ScoredLaunch], opts ...LaunchFeedOption) *LaunchFeed {
	lf := &LaunchFeed{launches: launches}
	for _, opt := range opts {
		opt(lf)
	}
	lf.Feed = New("genesis launches", lf.fetchPage, feedOpts...)
	return lf
}

func (lf *LaunchFeed) fetchPage(ctx context.Context, page int, filterName string) (*models.Page[scoring.ScoredLaunch], error) {
	filter, err := ParseFilter(filterName)
	if err != nil {
		return nil, err
	}

	switch filter {
	case FilterTopSnipe:
		ticket := lf.issue()
		active, err := lf.launches.ActiveSet(ctx)
		if err != nil {
			return nil, err
		}
		top := lf.applyActive(ticket, active)
		return &models.Page[scoring.ScoredLaunch]{Items: top, Pagination: models.SinglePage(len(top))}, nil
	case FilterActive:
		ticket := lf.issue()
		p, err := lf.launches.List(ctx, filter, page, 0)
		if err != nil {
			return nil, err
		}
		set := make([]models.Launch, len(p.Items))
		for i, s := range p.Items {
			set[i] = s.Launch
		}
		lf.applyActive(ticket, set)
		return p, nil
	}
	return lf.launches.List(ctx, filter, page, 0)
}

func (lf *LaunchFeed) issue() uint64 {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	lf.issued++
	return lf.issued
}

// applyActive installs a newly loaded active set unless a later-issued one is already in
// place, and returns the ranking that is current afterwards
func (lf *LaunchFeed) applyActive(ticket uint64, active []models.Launch) []scoring.ScoredLaunch {
	lf.mu.Lock()
	if ticket < lf.applied {
		top := lf.top
		lf.mu.Unlock()
		return top
	}
	lf.applied = ticket
	lf.active = active
	lf.top = lf.launches.scorer.Rank(active, lf.launches.topCount)
	top := lf.top
	cb := lf.onTopChanged
	lf.mu.Unlock()

	if cb != nil {
		cb(top)
	}
	return top
}

// UpdateActive replaces the active set from outside the feed, for example after a
// launch's totals changed, and recomputes the ranking
func (lf *LaunchFeed) UpdateActive(active []models.Launch) []scoring.ScoredLaunch {
	return lf.applyActive(lf.issue(), active)
}

// Recompute re-ranks the current active set at the scorer's current time
func (lf *LaunchFeed) Recompute() []scoring.ScoredLaunch {
	lf.mu.Lock()
	active := lf.active
	lf.mu.Unlock()
	return lf.UpdateActive(active)
}

// ActiveSet returns the most recently loaded active launches
func (lf *LaunchFeed) ActiveSet() []models.Launch {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	return lf.active
}

// TopSnipes returns the ranking derived from the current active set
func (lf *LaunchFeed) TopSnipes() []scoring.ScoredLaunch {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	return lf.top
}
