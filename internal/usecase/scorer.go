package usecase

import (
	"math"

	"IdeaValidator/internal/domain"
)

// MaxOpportunityScore bounds every computed score.
const MaxOpportunityScore = 1000

// Weights are the constants of the opportunity formula. DefaultWeights
// reproduces the recorded fixtures; callers may tune a copy.
type Weights struct {
	PainMultiplier float64
	PainCap        float64

	EngagementDivisor float64
	EngagementCap     float64

	WTPBonus map[domain.WillingnessToPay]float64

	MeTooMultiplier float64
	MeTooCap        float64

	ReachLargeThreshold  int
	ReachMediumThreshold int
	ReachLarge           float64
	ReachMedium          float64
	ReachSmall           float64

	NoCompetition      float64
	GapsOutnumber      float64
	CrowdedCompetition float64
}

// DefaultWeights returns the fixed scoring constants.
func DefaultWeights() Weights {
	return Weights{
		PainMultiplier:    2.5,
		PainCap:           250,
		EngagementDivisor: 5,
		EngagementCap:     100,
		WTPBonus: map[domain.WillingnessToPay]float64{
			domain.WTPHigh:   200,
			domain.WTPMedium: 100,
			domain.WTPLow:    50,
			domain.WTPNone:   0,
		},
		MeTooMultiplier:      10,
		MeTooCap:             80,
		ReachLargeThreshold:  5000,
		ReachMediumThreshold: 1000,
		ReachLarge:           80,
		ReachMedium:          50,
		ReachSmall:           20,
		NoCompetition:        80,
		GapsOutnumber:        60,
		CrowdedCompetition:   30,
	}
}

var defaultWeights = DefaultWeights()

// ScoreOpportunity scores an item and its signal with DefaultWeights.
func ScoreOpportunity(item domain.ContentItem, signal domain.Signal) int {
	return defaultWeights.Score(item, signal)
}

// Score combines engagement and judged signals into an integer in [0, 1000].
// Each term is clamped before summing.
func (w Weights) Score(item domain.ContentItem, signal domain.Signal) int {
	pain := clamp(float64(signal.PainScore)*w.PainMultiplier, 0, w.PainCap)

	engagement := float64(item.NumComments)
	if w.EngagementDivisor > 0 {
		engagement += float64(item.Score) / w.EngagementDivisor
	}
	engagement = clamp(engagement, 0, w.EngagementCap)

	wtp := w.WTPBonus[signal.WillingnessToPay]

	social := clamp(float64(signal.MeTooCount)*w.MeTooMultiplier, 0, w.MeTooCap)

	var reach float64
	switch {
	case signal.PeopleAffected > w.ReachLargeThreshold:
		reach = w.ReachLarge
	case signal.PeopleAffected > w.ReachMediumThreshold:
		reach = w.ReachMedium
	default:
		reach = w.ReachSmall
	}

	var competition float64
	switch {
	case len(signal.ExistingSolutions) == 0:
		competition = w.NoCompetition
	case len(signal.SolutionGaps) > len(signal.ExistingSolutions):
		competition = w.GapsOutnumber
	default:
		competition = w.CrowdedCompetition
	}

	total := math.Trunc(pain + engagement + wtp + social + reach + competition)
	return int(clamp(total, 0, MaxOpportunityScore))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
