package feed

import (
	"context"

	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/virtuals"
)

// TokenSource is the upstream token list API
type TokenSource interface {
	ListVirtuals(ctx context.Context, q virtuals.VirtualQuery) (*models.Page[models.VirtualToken], error)
}

// NewTokenFeed creates the feed of one token category. The filter argument of Fetch is
// not used; each category has its own feed and cursor.
func NewTokenFeed(source TokenSource, category virtuals.Category, pageSize int, opts ...Option[models.VirtualToken]) *Feed[models.VirtualToken] {
	fetch := func(ctx context.Context, page int, _ string) (*models.Page[models.VirtualToken], error) {
		return source.ListVirtuals(ctx, virtuals.VirtualQuery{
			Page:     page,
			PageSize: pageSize,
			Category: category,
		})
	}
	return New(string(category)+" tokens", fetch, opts...)
}
