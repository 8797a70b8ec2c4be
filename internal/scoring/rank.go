package scoring

import (
	"sort"
	"time"

	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/utils"
)

// ScoredLaunch pairs a launch with its score at ranking time
type ScoredLaunch struct {
	models.Launch
	Score Breakdown `json:"score"`
}

// ScoreAll scores every launch, keeping input order
func ScoreAll(launches []models.Launch, now time.Time) []ScoredLaunch {
	out := make([]ScoredLaunch, len(launches))
	for i, l := range launches {
		out[i] = ScoredLaunch{Launch: l, Score: Score(l, now)}
	}
	return out
}

// Rank scores the launches and returns at most n of them, best first. Equal scores keep
// the higher funded launch first, then input order. n <= 0 returns all of them.
func Rank(launches []models.Launch, now time.Time, n int) []ScoredLaunch {
	scored := ScoreAll(launches, now)
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score.Total != scored[j].Score.Total {
			return scored[i].Score.Total > scored[j].Score.Total
		}
		return scored[i].TotalVirtuals > scored[j].TotalVirtuals
	})
	if n > 0 && len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

// Scorer binds the scoring functions to a clock
type Scorer struct {
	clock utils.Clock
}

func NewScorer(clock utils.Clock) *Scorer {
	if clock == nil {
		clock = utils.RealClock()
	}
	return &Scorer{clock: clock}
}

func (s *Scorer) Now() time.Time {
	return s.clock.Now()
}

func (s *Scorer) Score(l models.Launch) Breakdown {
	return Score(l, s.clock.Now())
}

func (s *Scorer) ScoreAll(launches []models.Launch) []ScoredLaunch {
	return ScoreAll(launches, s.clock.Now())
}

func (s *Scorer) Rank(launches []models.Launch, n int) []ScoredLaunch {
	return Rank(launches, s.clock.Now(), n)
}
