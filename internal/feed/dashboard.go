package feed

import (
	"context"
	"errors"

	"github.com/rxtech-lab/hashnipe/internal/models"
	"golang.org/x/sync/errgroup"
)

// Dashboard composes the three independent feeds shown on the launch page
type Dashboard struct {
	Launches  *LaunchFeed
	Sentient  *Feed[models.VirtualToken]
	Prototype *Feed[models.VirtualToken]
}

// Refresh reloads the current page of every feed in parallel. A failing feed records
// its own error and does not cancel the others; the first error is returned.
func (d *Dashboard) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		return IgnoreStale(refresh(ctx, d.Launches.Feed))
	})
	g.Go(func() error {
		return IgnoreStale(refresh(ctx, d.Sentient))
	})
	g.Go(func() error {
		return IgnoreStale(refresh(ctx, d.Prototype))
	})
	return g.Wait()
}

// Close cancels all in-flight requests
func (d *Dashboard) Close() {
	d.Launches.Close()
	d.Sentient.Close()
	d.Prototype.Close()
}

func refresh[T any](ctx context.Context, f *Feed[T]) error {
	_, err := f.Refresh(ctx)
	return err
}

// IgnoreStale reports nil for ErrStale so callers can drop superseded responses quietly
func IgnoreStale(err error) error {
	if errors.Is(err, ErrStale) {
		return nil
	}
	return err
}
