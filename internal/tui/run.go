package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/hashnipe/internal/feed"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/quote"
	"github.com/rxtech-lab/hashnipe/internal/scoring"
	app "github.com/rxtech-lab/hashnipe/internal/server"
	"github.com/rxtech-lab/hashnipe/internal/virtuals"
)

// NewDashboard builds the three feeds of the launch page from the services
func NewDashboard(svc *app.Services) *feed.Dashboard {
	cfg := svc.Config
	logger := svc.Logger.Named("feed")
	tokenOpts := []feed.Option[models.VirtualToken]{
		feed.WithTimeout[models.VirtualToken](cfg.RequestTimeout),
		feed.WithLogger[models.VirtualToken](logger),
	}
	return &feed.Dashboard{
		Launches: feed.NewLaunchFeed(svc.Launches, []feed.Option[scoring.ScoredLaunch]{
			feed.WithTimeout[scoring.ScoredLaunch](cfg.RequestTimeout),
			feed.WithLogger[scoring.ScoredLaunch](logger),
		}),
		Sentient:  feed.NewTokenFeed(svc.Virtuals, virtuals.CategorySentient, cfg.PageSize, tokenOpts...),
		Prototype: feed.NewTokenFeed(svc.Virtuals, virtuals.CategoryPrototype, cfg.PageSize, tokenOpts...),
	}
}

// Run shows the dashboard until the user quits or ctx is cancelled
func Run(ctx context.Context, svc *app.Services) error {
	dashboard := NewDashboard(svc)
	defer dashboard.Close()

	m := New(ctx, Options{
		Dashboard: dashboard,
		Trader:    svc.Trader,
		Market:    svc.Market,
		ThrottleOptions: []quote.ThrottleOption{
			quote.WithDebounce(svc.Config.QuoteDebounce),
			quote.WithRequestTimeout(svc.Config.RequestTimeout),
			quote.WithThrottleLogger(svc.Logger.Named("quote")),
		},
		Logger: svc.Logger.Named("tui"),
	})

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if fm, ok := final.(Model); ok {
		fm.closeForm()
	}
	return err
}
