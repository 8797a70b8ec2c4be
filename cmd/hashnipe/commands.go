package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/feed"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/scoring"
	"github.com/rxtech-lab/hashnipe/internal/tui"
	"github.com/rxtech-lab/hashnipe/internal/utils"
	"github.com/rxtech-lab/hashnipe/internal/virtuals"
	"github.com/spf13/cobra"
)

func (c *cli) launchesCmd() *cobra.Command {
	var (
		filter   string
		page     int
		pageSize int
	)
	cmd := &cobra.Command{
		Use:   "launches",
		Short: "List genesis launches with their snipe scores",
		Long: `Lists one page of genesis launches, scored and annotated with a recommendation.

Filters: all, active, ended, upcoming, top-snipe

Example:
  hashnipe launches --filter active --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := feed.ParseFilter(filter)
			if err != nil {
				return err
			}
			result, err := c.svc.Launches.List(cmd.Context(), f, page, pageSize)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderLaunches(result.Items))
			fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d (%d total)\n",
				result.Pagination.Page, result.Pagination.PageCount, result.Pagination.Total)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", string(feed.FilterAll), "Launch filter")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Items per page (default from HASHNIPE_PAGE_SIZE)")
	return cmd
}

func (c *cli) topCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "top",
		Short: "Rank the active launches by snipe score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			top, active, err := c.svc.Launches.Top(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"items":        top,
					"active_count": len(active),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderLaunches(top))
			fmt.Fprintf(cmd.OutOrStdout(), "Top %d of %d active launches\n", len(top), len(active))
			return nil
		},
	}
}

func (c *cli) tokensCmd() *cobra.Command {
	var (
		page     int
		pageSize int
	)
	cmd := &cobra.Command{
		Use:   "tokens [sentient|prototype]",
		Short: "List agent tokens of one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := virtuals.ParseCategory(args[0])
			if err != nil {
				return err
			}
			if pageSize <= 0 {
				pageSize = c.svc.Config.PageSize
			}
			result, err := c.svc.Virtuals.ListVirtuals(cmd.Context(), virtuals.VirtualQuery{
				Page:     page,
				PageSize: pageSize,
				Category: category,
			})
			if err != nil {
				return err
			}
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTokens(result.Items))
			fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d (%d total)\n",
				result.Pagination.Page, result.Pagination.PageCount, result.Pagination.Total)
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Items per page (default from HASHNIPE_PAGE_SIZE)")
	return cmd
}

func (c *cli) scoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score [genesis-id]",
		Short: "Show the score breakdown of one launch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			launch, err := c.svc.Launches.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), launch)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderBreakdown(*launch))
			return nil
		},
	}
}

func (c *cli) quoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote [buy|sell] [token-address] [amount]",
		Short: "Quote a swap between VIRTUAL and an agent token",
		Long: `Quotes a swap for the configured wallet (HASHNIPE_WALLET_ADDRESS). Buying spends
VIRTUAL, selling spends the agent token.

Example:
  hashnipe quote buy 0x4F9Fd6Be4a90f2620860d680c0d4d5Fb53d1A825 150`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pair := c.svc.Market.Pair(models.TradeDirection(args[0]), args[1])
			if err := pair.Validate(); err != nil {
				return errs.Validation("token", err.Error())
			}
			amount, err := utils.ParseAmount(args[2])
			if err != nil {
				return errs.Validation("amount", "Please enter a valid amount")
			}

			q, err := c.svc.Trader.Quote(cmd.Context(), pair, amount)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), q)
			}
			from, _ := pair.From()
			to, _ := pair.To()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s %s\n", q.AmountIn, from, q.AmountOut, to)
			return nil
		},
	}
}

func (c *cli) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cmd.Context(), c.svc)
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderLaunches(items []scoring.ScoredLaunch) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("GENESIS", "TOKEN", "STATUS", "PARTICIPANTS", "FUNDED", "ENDS IN", "SCORE", "PICK")
	for _, l := range items {
		t.Row(
			l.Key(),
			tokenName(l.Virtual),
			string(l.Status),
			strconv.FormatInt(l.TotalParticipants, 10),
			fmt.Sprintf("%.1f%%", l.Score.FundingPercent),
			fmt.Sprintf("%.1fh", l.Score.HoursRemaining),
			strconv.Itoa(l.Score.Total),
			pick(l.Score.Recommendation),
		)
	}
	return t.Render()
}

func renderTokens(items []models.VirtualToken) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "SYMBOL", "HOLDERS", "MCAP (VIRTUAL)", "ADDRESS")
	for _, v := range items {
		address := v.Address()
		if address == "" {
			address = "not launched"
		}
		t.Row(
			strconv.FormatInt(v.ID, 10),
			v.Name,
			v.Symbol,
			strconv.FormatInt(v.HolderCount, 10),
			strconv.FormatFloat(v.MarketCapInVirtual, 'f', 2, 64),
			address,
		)
	}
	return t.Render()
}

func renderBreakdown(l scoring.ScoredLaunch) string {
	b := l.Score
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("COMPONENT", "POINTS", "MAX")
	row := func(name string, points, limit float64) {
		t.Row(name, fmt.Sprintf("%.1f", points), fmt.Sprintf("%.0f", limit))
	}
	row("participants", b.Participants, scoring.MaxParticipantScore)
	row("funding", b.Funding, scoring.MaxFundingScore)
	row("commitment", b.Commitment, scoring.MaxCommitmentScore)
	row("timing", b.Timing, scoring.MaxTimingScore)
	return fmt.Sprintf("%s  %s\n%s\nScore: %d  Recommendation: %s  (%.1f%% funded, %.1fh remaining)",
		l.Key(), tokenName(l.Virtual), t.Render(), b.Total, pick(b.Recommendation), b.FundingPercent, b.HoursRemaining)
}

func tokenName(v models.VirtualToken) string {
	if v.Symbol == "" {
		return v.Name
	}
	return fmt.Sprintf("%s ($%s)", v.Name, v.Symbol)
}

func pick(r scoring.Recommendation) string {
	switch r {
	case scoring.RecommendationSnipe:
		return "SNIPE"
	case scoring.RecommendationSubscribe:
		return "subscribe"
	}
	return "-"
}
