package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/scoring"
	"github.com/rxtech-lab/hashnipe/internal/utils"
)

var launchColumns = []table.Column{
	{Title: "Genesis", Width: 10},
	{Title: "Token", Width: 18},
	{Title: "Status", Width: 10},
	{Title: "Participants", Width: 12},
	{Title: "Funded", Width: 8},
	{Title: "Ends in", Width: 8},
	{Title: "Score", Width: 6},
	{Title: "Pick", Width: 10},
}

var tokenColumns = []table.Column{
	{Title: "ID", Width: 8},
	{Title: "Name", Width: 20},
	{Title: "Symbol", Width: 10},
	{Title: "Holders", Width: 9},
	{Title: "MCap (VIRTUAL)", Width: 15},
	{Title: "24h %", Width: 8},
	{Title: "Address", Width: 14},
}

func launchRows(items []scoring.ScoredLaunch) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, l := range items {
		rows = append(rows, table.Row{
			l.Key(),
			tokenLabel(l.Virtual),
			string(l.Status),
			strconv.FormatInt(l.TotalParticipants, 10),
			fmt.Sprintf("%.1f%%", l.Score.FundingPercent),
			fmt.Sprintf("%.1fh", l.Score.HoursRemaining),
			strconv.Itoa(l.Score.Total),
			recommendationLabel(l.Score.Recommendation),
		})
	}
	return rows
}

func tokenRows(items []models.VirtualToken) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, v := range items {
		rows = append(rows, table.Row{
			strconv.FormatInt(v.ID, 10),
			v.Name,
			v.Symbol,
			strconv.FormatInt(v.HolderCount, 10),
			strconv.FormatFloat(v.MarketCapInVirtual, 'f', 2, 64),
			fmt.Sprintf("%+.2f", v.PriceChangePercent24h),
			shortAddress(v.Address()),
		})
	}
	return rows
}

func tokenLabel(v models.VirtualToken) string {
	if v.Symbol == "" {
		return v.Name
	}
	return fmt.Sprintf("%s ($%s)", v.Name, v.Symbol)
}

func recommendationLabel(r scoring.Recommendation) string {
	switch r {
	case scoring.RecommendationSnipe:
		return "SNIPE"
	case scoring.RecommendationSubscribe:
		return "subscribe"
	}
	return "-"
}

// shortAddress abbreviates a hex address as 0x1234…abcd
func shortAddress(address string) string {
	if address == "" {
		return "not launched"
	}
	if !utils.IsValidEthereumAddress(address) {
		return address
	}
	return address[:6] + "…" + address[len(address)-4:]
}
