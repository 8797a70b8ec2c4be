package scoring

import (
	"math"
	"time"

	"github.com/rxtech-lab/hashnipe/internal/models"
)

const (
	// FundingTarget is the VIRTUAL amount at which a launch earns the full funding sub-score
	FundingTarget = 112000.0

	MaxParticipantScore = 30.0
	MaxFundingScore     = 30.0
	MaxCommitmentScore  = 20.0
	MaxTimingScore      = 20.0

	SnipeThreshold     = 70
	SubscribeThreshold = 50

	sweetSpotStartHours = 12.0
	sweetSpotEndHours   = 24.0
)

type Recommendation string

const (
	RecommendationNone      Recommendation = ""
	RecommendationSnipe     Recommendation = "snipe"
	RecommendationSubscribe Recommendation = "subscribe"
)

// Breakdown is a launch score together with the sub-scores it was summed from
type Breakdown struct {
	Participants   float64        `json:"participants"`
	Funding        float64        `json:"funding"`
	Commitment     float64        `json:"commitment"`
	Timing         float64        `json:"timing"`
	HoursRemaining float64        `json:"hours_remaining"`
	FundingPercent float64        `json:"funding_percent"`
	Total          int            `json:"total"`
	Recommendation Recommendation `json:"recommendation,omitempty"`
}

// ParticipantScore awards one point per ten participants, capped at 30
func ParticipantScore(totalParticipants int64) float64 {
	if totalParticipants <= 0 {
		return 0
	}
	return math.Min(float64(totalParticipants)/10, MaxParticipantScore)
}

// FundingPercent is progress toward FundingTarget
func FundingPercent(totalVirtuals float64) float64 {
	if totalVirtuals <= 0 {
		return 0
	}
	return totalVirtuals / FundingTarget * 100
}

// FundingScore reaches 30 once funding progress hits 100%
func FundingScore(totalVirtuals float64) float64 {
	return math.Min(FundingPercent(totalVirtuals)/3.33, MaxFundingScore)
}

// CommitmentScore is based on the average points per participant. It is zero when
// there are no participants.
func CommitmentScore(totalPoints float64, totalParticipants int64) float64 {
	if totalParticipants <= 0 || totalPoints <= 0 {
		return 0
	}
	avg := totalPoints / float64(totalParticipants)
	return math.Min(avg/100, MaxCommitmentScore)
}

// HoursRemaining is the time left until endsAt, floored at zero
func HoursRemaining(endsAt, now time.Time) float64 {
	h := endsAt.Sub(now).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// TimingScore peaks at 20 between 12 and 24 hours before the end, ramps linearly down
// to zero as the end approaches and decays by 10 points per 12 hours beyond the window.
func TimingScore(hoursRemaining float64) float64 {
	h := math.Max(hoursRemaining, 0)
	switch {
	case h < sweetSpotStartHours:
		return h / sweetSpotStartHours * MaxTimingScore
	case h <= sweetSpotEndHours:
		return MaxTimingScore
	default:
		return math.Max(0, MaxTimingScore-(h-sweetSpotEndHours)/12*10)
	}
}

// Score computes the breakdown of a launch at the given instant
func Score(l models.Launch, now time.Time) Breakdown {
	hours := HoursRemaining(l.EndsAt, now)
	b := Breakdown{
		Participants:   ParticipantScore(l.TotalParticipants),
		Funding:        FundingScore(l.TotalVirtuals),
		Commitment:     CommitmentScore(l.TotalPoints, l.TotalParticipants),
		Timing:         TimingScore(hours),
		HoursRemaining: hours,
		FundingPercent: FundingPercent(l.TotalVirtuals),
	}

	total := int(math.Round(b.Participants + b.Funding + b.Commitment + b.Timing))
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	b.Total = total
	b.Recommendation = Recommend(total)
	return b
}

// Recommend derives the badge for a score
func Recommend(score int) Recommendation {
	switch {
	case score >= SnipeThreshold:
		return RecommendationSnipe
	case score >= SubscribeThreshold:
		return RecommendationSubscribe
	}
	return RecommendationNone
}

// IsRecommendedToSnipe reports whether the launch scores at least 70
func IsRecommendedToSnipe(l models.Launch, now time.Time) bool {
	return Score(l, now).Recommendation == RecommendationSnipe
}

// IsRecommendedToSubscribe reports whether the launch scores in [50, 70)
func IsRecommendedToSubscribe(l models.Launch, now time.Time) bool {
	return Score(l, now).Recommendation == RecommendationSubscribe
}
