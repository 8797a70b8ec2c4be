package server

import (
	"github.com/rxtech-lab/hashnipe/internal/auth"
	"github.com/rxtech-lab/hashnipe/internal/backend"
	"github.com/rxtech-lab/hashnipe/internal/config"
	"github.com/rxtech-lab/hashnipe/internal/feed"
	"github.com/rxtech-lab/hashnipe/internal/logging"
	"github.com/rxtech-lab/hashnipe/internal/quote"
	"github.com/rxtech-lab/hashnipe/internal/scoring"
	"github.com/rxtech-lab/hashnipe/internal/services"
	"github.com/rxtech-lab/hashnipe/internal/virtuals"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services is everything the MCP server, the HTTP API and the CLI are built from
type Services struct {
	Config *config.Config
	Logger *zap.Logger

	// Auth resolves the session from the request context, falling back to the static
	// token and wallet from the environment
	Auth *auth.FromContext

	Virtuals *virtuals.Client
	Backend  *backend.Client
	Launches *feed.Launches
	Market   quote.Market
	Trader   *quote.Trader

	Tokenomics services.TokenomicsService
	Snipes     services.SnipeService
	Trades     services.TradeHistoryService
}

// InitializeServices wires the upstream clients and the database backed services. A nil db
// leaves the persistence services unset; the CLI runs that way.
func InitializeServices(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *Services {
	logger = logging.OrNop(logger)

	collab := &auth.FromContext{Fallback: auth.NewStatic(cfg.BearerToken, cfg.WalletAddress)}

	virtualsClient := virtuals.NewClient(cfg.VirtualsAPIURL,
		virtuals.WithTimeout(cfg.RequestTimeout),
		virtuals.WithLogger(logger.Named("virtuals")),
	)
	backendClient := backend.NewClient(cfg.BackendURL, collab,
		backend.WithTimeout(cfg.RequestTimeout),
		backend.WithLogger(logger.Named("backend")),
	)

	launches := feed.NewLaunches(virtualsClient, scoring.NewScorer(nil), feed.LaunchesConfig{
		PageSize: cfg.PageSize,
		PoolSize: cfg.ActivePoolSize,
		TopCount: cfg.TopSnipeCount,
	})

	svc := &Services{
		Config:   cfg,
		Logger:   logger,
		Auth:     collab,
		Virtuals: virtualsClient,
		Backend:  backendClient,
		Launches: launches,
		Market: quote.Market{
			VirtualToken:    cfg.VirtualTokenAddress,
			VirtualDecimals: cfg.VirtualDecimals,
		},
	}

	traderOpts := []quote.TraderOption{quote.WithTraderLogger(logger.Named("trader"))}
	if db != nil {
		svc.Tokenomics = services.NewTokenomicsService(db, virtualsClient, cfg.TokenomicsTTL)
		svc.Snipes = services.NewSnipeService(db, backendClient)
		svc.Trades = services.NewTradeHistoryService(db)
		traderOpts = append(traderOpts, quote.WithRecorder(svc.Trades))
	}
	svc.Trader = quote.NewTrader(backendClient, collab, quote.Settings{
		ChainID:  cfg.ChainID,
		Slippage: cfg.Slippage,
	}, traderOpts...)

	return svc
}

// OpenDatabase connects to Postgres when a URL is configured and to SQLite otherwise
func OpenDatabase(cfg *config.Config, logger *zap.Logger) (services.DBService, error) {
	if cfg.PostgresURL != "" {
		return services.NewPostgresDBService(cfg.PostgresURL, services.WithDBLogger(logger))
	}
	return services.NewSqliteDBService(cfg.DBPath, services.WithDBLogger(logger))
}
