package models

import (
	"fmt"
	"time"
)

type LaunchStatus string

const (
	LaunchStatusInitialized LaunchStatus = "INITIALIZED"
	LaunchStatusStarted     LaunchStatus = "STARTED"
	LaunchStatusFinalized   LaunchStatus = "FINALIZED"
	LaunchStatusFailed      LaunchStatus = "FAILED"
)

// Valid reports whether s is one of the upstream lifecycle states
func (s LaunchStatus) Valid() bool {
	switch s {
	case LaunchStatusInitialized, LaunchStatusStarted, LaunchStatusFinalized, LaunchStatusFailed:
		return true
	}
	return false
}

// Launch is a Genesis Launch: a time-boxed subscription window for a new agent token.
// Status and the aggregate totals are owned by the upstream API and never changed locally.
type Launch struct {
	ID                int64        `json:"id"`
	GenesisID         string       `json:"genesisId"`
	Status            LaunchStatus `json:"status"`
	StartsAt          time.Time    `json:"startsAt"`
	EndsAt            time.Time    `json:"endsAt"`
	TotalParticipants int64        `json:"totalParticipants"`
	TotalPoints       float64      `json:"totalPoints"`
	TotalVirtuals     float64      `json:"totalVirtuals"`
	Virtual           VirtualToken `json:"virtual"`
}

// Validate checks the invariants every launch from upstream must satisfy
func (l Launch) Validate() error {
	if l.GenesisID == "" && l.ID == 0 {
		return fmt.Errorf("launch has no identifier")
	}
	if !l.Status.Valid() {
		return fmt.Errorf("launch %s: unknown status %q", l.Key(), l.Status)
	}
	if !l.EndsAt.After(l.StartsAt) {
		return fmt.Errorf("launch %s: endsAt must be after startsAt", l.Key())
	}
	if l.TotalVirtuals < 0 {
		return fmt.Errorf("launch %s: totalVirtuals must not be negative", l.Key())
	}
	if l.TotalParticipants < 0 || l.TotalPoints < 0 {
		return fmt.Errorf("launch %s: totals must not be negative", l.Key())
	}
	return nil
}

// Key is the identifier used for display and list keys
func (l Launch) Key() string {
	if l.GenesisID != "" {
		return l.GenesisID
	}
	return fmt.Sprintf("%d", l.ID)
}

// ImageRef is an upstream media reference
type ImageRef struct {
	URL string `json:"url"`
}

// VirtualToken describes the agent token behind a launch, and is also the item type of the
// sentient and prototype token lists
type VirtualToken struct {
	ID                    int64       `json:"id"`
	Name                  string      `json:"name"`
	Symbol                string      `json:"symbol"`
	Chain                 string      `json:"chain"`
	Description           string      `json:"description"`
	Image                 *ImageRef   `json:"image,omitempty"`
	TokenAddress          *string     `json:"tokenAddress"`
	Status                string      `json:"status,omitempty"`
	LPAddress             *string     `json:"lpAddress,omitempty"`
	MarketCapInVirtual    float64     `json:"mcapInVirtual,omitempty"`
	HolderCount           int64       `json:"holderCount,omitempty"`
	Volume24h             float64     `json:"volume24h,omitempty"`
	PriceChangePercent24h float64     `json:"priceChangePercent24h,omitempty"`
	Tokenomics            []Tokenomic `json:"tokenomics,omitempty"`
}

// Launched reports whether the token has an on-chain address yet
func (v VirtualToken) Launched() bool {
	return v.TokenAddress != nil && *v.TokenAddress != ""
}

// Address returns the token address or an empty string before launch
func (v VirtualToken) Address() string {
	if v.TokenAddress == nil {
		return ""
	}
	return *v.TokenAddress
}

// ImageURL returns the image url or an empty string
func (v VirtualToken) ImageURL() string {
	if v.Image == nil {
		return ""
	}
	return v.Image.URL
}
