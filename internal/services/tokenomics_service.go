package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenomicsSource loads a virtual, including its tokenomics, from upstream
type TokenomicsSource interface {
	GetVirtual(ctx context.Context, id int64) (*models.VirtualToken, error)
}

type TokenomicsService interface {
	GetTokenomics(ctx context.Context, virtualID int64) (*models.TokenomicsSummary, error)
	Invalidate(virtualID int64) error
}

type tokenomicsService struct {
	db     *gorm.DB
	source TokenomicsSource
	ttl    time.Duration
	now    func() time.Time
	group  singleflight.Group
}

// NewTokenomicsService creates a read-through cache over source. A ttl of zero keeps
// entries forever.
func NewTokenomicsService(db *gorm.DB, source TokenomicsSource, ttl time.Duration) TokenomicsService {
	return &tokenomicsService{db: db, source: source, ttl: ttl, now: time.Now}
}

// GetTokenomics returns the cached summary, fetching it from upstream on a miss. Concurrent
// misses for the same virtual share one upstream request.
func (s *tokenomicsService) GetTokenomics(ctx context.Context, virtualID int64) (*models.TokenomicsSummary, error) {
	if virtualID <= 0 {
		return nil, errs.Validation("virtual_id", "Virtual id must be a positive number")
	}

	if cached, err := s.cached(virtualID); err != nil {
		return nil, err
	} else if cached != nil {
		summary := models.Summarize(cached.VirtualID, cached.Symbol, cached.Tokenomics)
		return &summary, nil
	}

	// The shared fetch outlives any single caller; the upstream client bounds it with its
	// own request timeout.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(strconv.FormatInt(virtualID, 10), func() (interface{}, error) {
		return s.populate(fetchCtx, virtualID)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	entry := res.Val.(*models.TokenomicsCache)
	summary := models.Summarize(entry.VirtualID, entry.Symbol, entry.Tokenomics)
	return &summary, nil
}

func (s *tokenomicsService) cached(virtualID int64) (*models.TokenomicsCache, error) {
	var entry models.TokenomicsCache
	err := s.db.First(&entry, "virtual_id = ?", virtualID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tokenomics cache: %w", err)
	}
	if s.ttl > 0 && s.now().Sub(entry.FetchedAt) >= s.ttl {
		return nil, nil
	}
	return &entry, nil
}

func (s *tokenomicsService) populate(ctx context.Context, virtualID int64) (*models.TokenomicsCache, error) {
	virtual, err := s.source.GetVirtual(ctx, virtualID)
	if err != nil {
		return nil, err
	}

	entry := &models.TokenomicsCache{
		VirtualID:  virtualID,
		Symbol:     virtual.Symbol,
		Tokenomics: virtual.Tokenomics,
		FetchedAt:  s.now(),
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "virtual_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"symbol", "tokenomics", "fetched_at", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		return nil, fmt.Errorf("failed to store tokenomics: %w", err)
	}
	return entry, nil
}

// Invalidate drops the cached entry so the next read goes upstream
func (s *tokenomicsService) Invalidate(virtualID int64) error {
	return s.db.Delete(&models.TokenomicsCache{}, "virtual_id = ?", virtualID).Error
}
