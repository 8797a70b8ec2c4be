package scoring

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func launchEndingIn(h float64, participants int64, virtuals, points float64) models.Launch {
	return models.Launch{
		ID:                1,
		GenesisID:         "1",
		Status:            models.LaunchStatusStarted,
		StartsAt:          testNow.Add(-48 * time.Hour),
		EndsAt:            testNow.Add(time.Duration(h * float64(time.Hour))),
		TotalParticipants: participants,
		TotalVirtuals:     virtuals,
		TotalPoints:       points,
	}
}

func TestCommitmentScore_NoParticipants(t *testing.T) {
	for _, points := range []float64{0, 1, 1e9} {
		assert.Equal(t, 0.0, CommitmentScore(points, 0))
		b := Score(launchEndingIn(18, 0, 0, points), testNow)
		assert.Equal(t, 0.0, b.Commitment)
		assert.Equal(t, 20, b.Total)
	}
}

func TestTimingScore(t *testing.T) {
	tests := []struct {
		hours float64
		want  float64
	}{
		{0, 0},
		{6, 10},
		{12, 20},
		{18, 20},
		{24, 20},
		{36, 10},
		{48, 0},
		{100, 0},
		{-5, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, TimingScore(tt.hours), 1e-9, "hours=%v", tt.hours)
	}

	for h := 12.0; h <= 24.0; h += 0.25 {
		assert.Equal(t, MaxTimingScore, TimingScore(h))
	}
	for h := 0.0; h <= 200; h += 0.5 {
		assert.LessOrEqual(t, TimingScore(h), MaxTimingScore)
	}
}

func TestHoursRemaining_FlooredAtZero(t *testing.T) {
	assert.Equal(t, 0.0, HoursRemaining(testNow.Add(-time.Hour), testNow))
	assert.InDelta(t, 2.5, HoursRemaining(testNow.Add(150*time.Minute), testNow), 1e-9)

	b := Score(launchEndingIn(-10, 100, 1000, 1000), testNow)
	assert.Equal(t, 0.0, b.Timing)
	assert.Equal(t, 0.0, b.HoursRemaining)
}

func TestScore_WorkedExample(t *testing.T) {
	l := launchEndingIn(18, 300, 112000, 30000)
	b := Score(l, testNow)

	assert.InDelta(t, 30, b.Participants, 1e-9)
	assert.InDelta(t, 30, b.Funding, 1e-9)
	assert.InDelta(t, 1, b.Commitment, 1e-9)
	assert.InDelta(t, 20, b.Timing, 1e-9)
	assert.Equal(t, 81, b.Total)
	assert.InDelta(t, 100, b.FundingPercent, 1e-9)
	assert.True(t, IsRecommendedToSnipe(l, testNow))
	assert.False(t, IsRecommendedToSubscribe(l, testNow))
}

func TestScore_AllCapsReachHundred(t *testing.T) {
	l := launchEndingIn(18, 300, 112000, 600000)
	b := Score(l, testNow)
	assert.Equal(t, 100, b.Total)
	assert.Equal(t, RecommendationSnipe, b.Recommendation)

	huge := launchEndingIn(20, 1e6, 1e9, 1e12)
	assert.Equal(t, 100, Score(huge, testNow).Total)
}

func TestScore_MonotoneInVirtuals(t *testing.T) {
	prev := -1
	for v := 0.0; v <= 250000; v += 997 {
		s := Score(launchEndingIn(30, 120, v, 5000), testNow).Total
		assert.GreaterOrEqual(t, s, prev, "virtuals=%v", v)
		prev = s
	}
}

func TestScore_MonotoneInPoints(t *testing.T) {
	prev := -1
	for p := 0.0; p <= 1e6; p += 4999 {
		s := Score(launchEndingIn(30, 120, 50000, p), testNow).Total
		assert.GreaterOrEqual(t, s, prev, "points=%v", p)
		prev = s
	}
}

func TestScore_MonotoneInParticipants(t *testing.T) {
	t.Run("no points", func(t *testing.T) {
		prev := -1
		for n := int64(0); n <= 1000; n += 7 {
			s := Score(launchEndingIn(30, n, 50000, 0), testNow).Total
			assert.GreaterOrEqual(t, s, prev, "participants=%d", n)
			prev = s
		}
	})

	t.Run("points term capped", func(t *testing.T) {
		prev := -1
		for n := int64(0); n <= 500; n += 3 {
			s := Score(launchEndingIn(30, n, 50000, 1e7), testNow).Total
			assert.GreaterOrEqual(t, s, prev, "participants=%d", n)
			prev = s
		}
	})

	t.Run("uncapped average dilutes", func(t *testing.T) {
		few := Score(launchEndingIn(18, 1000, 0, 1e6), testNow)
		many := Score(launchEndingIn(18, 2000, 0, 1e6), testNow)
		assert.Equal(t, few.Participants, many.Participants)
		assert.Greater(t, few.Commitment, many.Commitment)
	})
}

func TestScore_BoundsAndExclusiveRecommendations(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		l := launchEndingIn(
			r.Float64()*200-20,
			r.Int63n(5000),
			r.Float64()*300000,
			r.Float64()*2e6,
		)
		b := Score(l, testNow)
		require.GreaterOrEqual(t, b.Total, 0)
		require.LessOrEqual(t, b.Total, 100)

		snipe := IsRecommendedToSnipe(l, testNow)
		subscribe := IsRecommendedToSubscribe(l, testNow)
		require.False(t, snipe && subscribe, "launch %+v", l)
		if b.Total < SubscribeThreshold {
			require.False(t, snipe || subscribe)
		}
	}
}

func TestRecommend(t *testing.T) {
	assert.Equal(t, RecommendationNone, Recommend(0))
	assert.Equal(t, RecommendationNone, Recommend(49))
	assert.Equal(t, RecommendationSubscribe, Recommend(50))
	assert.Equal(t, RecommendationSubscribe, Recommend(69))
	assert.Equal(t, RecommendationSnipe, Recommend(70))
	assert.Equal(t, RecommendationSnipe, Recommend(100))
}

func TestScore_Deterministic(t *testing.T) {
	l := launchEndingIn(15, 210, 70000, 42000)
	assert.Equal(t, Score(l, testNow), Score(l, testNow))
}

func TestScorer_UsesClock(t *testing.T) {
	clock := utils.NewFakeClock(testNow)
	scorer := NewScorer(clock)
	l := launchEndingIn(18, 300, 112000, 600000)

	assert.Equal(t, 100, scorer.Score(l).Total)

	clock.Advance(18 * time.Hour)
	b := scorer.Score(l)
	assert.Equal(t, 0.0, b.Timing)
	assert.Equal(t, 80, b.Total)
}
