package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file if present
	"github.com/rxtech-lab/hashnipe/internal/config"
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/logging"
	"github.com/rxtech-lab/hashnipe/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Build information (set via ldflags)
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

// cli holds the state shared by every subcommand
type cli struct {
	verbose bool
	jsonOut bool

	// lookup reads configuration; os.LookupEnv outside tests
	lookup func(string) (string, bool)

	logger *zap.Logger
	svc    *server.Services
}

func newRootCmd(lookup func(string) (string, bool)) *cobra.Command {
	c := &cli{lookup: lookup}

	root := &cobra.Command{
		Use:   "hashnipe",
		Short: "HaShnipe - Virtual Protocol genesis launch sniper",
		Long: `HaShnipe scores Virtual Protocol genesis launches, lists agent tokens and quotes
swaps against VIRTUAL.

Run "hashnipe tui" for the interactive dashboard.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, CommitHash, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFrom(c.lookup)
			if err != nil {
				return err
			}

			c.logger = zap.NewNop()
			if c.verbose {
				if c.logger, err = logging.New(cfg.Debug); err != nil {
					return err
				}
			}
			// The CLI keeps no local state, so the persistence services stay unset
			c.svc = server.InitializeServices(cfg, nil, c.logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log to stderr")
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "Print JSON instead of tables")

	root.AddCommand(
		c.launchesCmd(),
		c.topCmd(),
		c.tokensCmd(),
		c.scoreCmd(),
		c.quoteCmd(),
		c.tuiCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.LookupEnv).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", errs.UserMessage(err))
		stop()
		os.Exit(1)
	}
}
