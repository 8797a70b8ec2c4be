package virtuals

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rxtech-lab/hashnipe/internal/models"
)

// number decodes a JSON number, a numeric string or null. The upstream API is not
// consistent about quoting aggregates.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*n = 0
		return nil
	}
	if s[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("non-finite number %q", s)
	}
	*n = number(f)
	return nil
}

// text decodes a JSON string or number as a string
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*t = ""
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*t = text(v)
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("invalid identifier %s", s)
	}
	*t = text(s)
	return nil
}

type listResponse[T any] struct {
	Data []T `json:"data"`
	Meta struct {
		Pagination *models.Pagination `json:"pagination"`
	} `json:"meta"`
}

type itemResponse[T any] struct {
	Data *T `json:"data"`
}

type genesisDTO struct {
	ID                number      `json:"id"`
	GenesisID         text        `json:"genesisId"`
	Status            string      `json:"status"`
	StartsAt          time.Time   `json:"startsAt"`
	EndsAt            time.Time   `json:"endsAt"`
	TotalParticipants number      `json:"totalParticipants"`
	TotalPoints       number      `json:"totalPoints"`
	TotalVirtuals     number      `json:"totalVirtuals"`
	Virtual           *virtualDTO `json:"virtual"`
}

func (g genesisDTO) toLaunch() (models.Launch, error) {
	l := models.Launch{
		ID:                int64(g.ID),
		GenesisID:         string(g.GenesisID),
		Status:            models.LaunchStatus(strings.ToUpper(g.Status)),
		StartsAt:          g.StartsAt,
		EndsAt:            g.EndsAt,
		TotalParticipants: int64(g.TotalParticipants),
		TotalPoints:       float64(g.TotalPoints),
		TotalVirtuals:     float64(g.TotalVirtuals),
	}
	if g.Virtual != nil {
		l.Virtual = g.Virtual.toToken()
	}
	if err := l.Validate(); err != nil {
		return models.Launch{}, err
	}
	return l, nil
}

type virtualDTO struct {
	ID                    number           `json:"id"`
	Name                  string           `json:"name"`
	Symbol                string           `json:"symbol"`
	Chain                 string           `json:"chain"`
	Description           string           `json:"description"`
	Image                 *models.ImageRef `json:"image"`
	TokenAddress          *string          `json:"tokenAddress"`
	Status                string           `json:"status"`
	LPAddress             *string          `json:"lpAddress"`
	MarketCapInVirtual    number           `json:"mcapInVirtual"`
	HolderCount           number           `json:"holderCount"`
	Volume24h             number           `json:"volume24h"`
	PriceChangePercent24h number           `json:"priceChangePercent24h"`
	Tokenomics            []tokenomicDTO   `json:"tokenomics"`
}

func (v virtualDTO) toToken() models.VirtualToken {
	t := models.VirtualToken{
		ID:                    int64(v.ID),
		Name:                  v.Name,
		Symbol:                v.Symbol,
		Chain:                 v.Chain,
		Description:           v.Description,
		Image:                 v.Image,
		TokenAddress:          v.TokenAddress,
		Status:                v.Status,
		LPAddress:             v.LPAddress,
		MarketCapInVirtual:    float64(v.MarketCapInVirtual),
		HolderCount:           int64(v.HolderCount),
		Volume24h:             float64(v.Volume24h),
		PriceChangePercent24h: float64(v.PriceChangePercent24h),
	}
	for _, e := range v.Tokenomics {
		t.Tokenomics = append(t.Tokenomics, e.toTokenomic())
	}
	return t
}

type tokenomicDTO struct {
	ID          number       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Recipient   string       `json:"recipient"`
	Bips        number       `json:"bips"`
	IsLocked    bool         `json:"isLocked"`
	Releases    []releaseDTO `json:"releases"`
}

func (e tokenomicDTO) toTokenomic() models.Tokenomic {
	t := models.Tokenomic{
		ID:          int64(e.ID),
		Name:        e.Name,
		Description: e.Description,
		Recipient:   e.Recipient,
		Bips:        int64(e.Bips),
		IsLocked:    e.IsLocked,
	}
	for _, r := range e.Releases {
		rel := models.Release{
			ID:           int64(r.ID),
			Type:         r.Type,
			Bips:         int64(r.Bips),
			Duration:     int64(r.Duration),
			DurationUnit: r.DurationUnit,
		}
		if r.StartsAt != nil {
			rel.StartsAt = *r.StartsAt
		}
		t.Releases = append(t.Releases, rel)
	}
	return t
}

type releaseDTO struct {
	ID           number     `json:"id"`
	Type         string     `json:"type"`
	StartsAt     *time.Time `json:"startsAt"`
	Bips         number     `json:"bips"`
	Duration     number     `json:"duration"`
	DurationUnit string     `json:"durationUnit"`
}
