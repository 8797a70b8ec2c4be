package models

import "time"

// TotalBips is the full supply expressed in basis points
const TotalBips = 10000

// Tokenomic is one allocation slice of a token's supply
type Tokenomic struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Recipient   string    `json:"recipient,omitempty"`
	Bips        int64     `json:"bips"`
	IsLocked    bool      `json:"isLocked"`
	Releases    []Release `json:"releases,omitempty"`
}

// Percent returns the allocation as a percentage of total supply
func (t Tokenomic) Percent() float64 {
	return float64(t.Bips) / TotalBips * 100
}

// Release is one vesting step of a locked allocation
type Release struct {
	ID           int64     `json:"id"`
	Type         string    `json:"type"`
	StartsAt     time.Time `json:"startsAt"`
	Bips         int64     `json:"bips"`
	Duration     int64     `json:"duration"`
	DurationUnit string    `json:"durationUnit"`
}

// TokenomicsSummary aggregates an allocation list
type TokenomicsSummary struct {
	VirtualID   int64       `json:"virtual_id"`
	Symbol      string      `json:"symbol"`
	TotalBips   int64       `json:"total_bips"`
	LockedBips  int64       `json:"locked_bips"`
	Unallocated int64       `json:"unallocated_bips"`
	Entries     []Tokenomic `json:"entries"`
}

// Summarize totals the allocations. Allocations conceptually sum to TotalBips; any shortfall
// is reported as unallocated rather than treated as an error.
func Summarize(virtualID int64, symbol string, entries []Tokenomic) TokenomicsSummary {
	s := TokenomicsSummary{VirtualID: virtualID, Symbol: symbol, Entries: entries}
	for _, e := range entries {
		s.TotalBips += e.Bips
		if e.IsLocked {
			s.LockedBips += e.Bips
		}
	}
	if s.TotalBips < TotalBips {
		s.Unallocated = TotalBips - s.TotalBips
	}
	return s
}

// LockedPercent returns the locked share of total supply
func (s TokenomicsSummary) LockedPercent() float64 {
	return float64(s.LockedBips) / TotalBips * 100
}
